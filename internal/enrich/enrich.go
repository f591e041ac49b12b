// Package enrich attaches short generated commentary to calendar events.
//
// Enrichment is best-effort by contract: every failure path (no
// credential, timeout, quota, malformed response) falls back to a
// deterministic template, so the caller always gets non-empty text and
// delivery is never blocked on the generator.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fxwire/internal/feed"
	logx "fxwire/pkg/logx"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4"
	requestTimeout = 15 * time.Second
	maxTokens      = 160
)

type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API host (tests).
	BaseURL string
}

type Generator struct {
	cfg  Config
	log  logx.Logger
	http *http.Client
}

func New(cfg Config, log logx.Logger) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Generator{cfg: cfg, log: log, http: &http.Client{Timeout: requestTimeout}}
}

// Enrich returns commentary for the event. It never fails and never
// returns an empty string.
func (g *Generator) Enrich(ctx context.Context, ev feed.CalendarEvent) string {
	if strings.TrimSpace(g.cfg.APIKey) != "" {
		if text, err := g.generate(ctx, ev); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		} else if err != nil {
			g.log.Debug("generation failed; using template", logx.String("event", ev.Title), logx.Err(err))
		}
	}
	return Fallback(ev)
}

const systemPrompt = "Jesteś ekspertem finansowym, mówisz po polsku."

func userPrompt(ev feed.CalendarEvent) string {
	return fmt.Sprintf(`Jesteś asystentem rynkowym. W kilku (2-4) krótkich zdaniach po polsku:
- opisz znaczenie wydarzenia ekonomicznego dla rynków walutowych,
- wskaż możliwy kierunek wpływu na odpowiednią walutę (np. umocnienie/osłabienie),
- oceń krótkoterminowy poziom zmienności (niski/średni/wysoki).

Dane wydarzenia:
Nazwa: %s
Waluta: %s
Impact: %s
Czas: %s
Forecast: %s
Actual: %s

Odpowiedz tylko i wyłącznie po polsku, maksymalnie 4 zdania.`,
		ev.Title, ev.Currency, ev.Impact, ev.Time, ev.Forecast, ev.Actual)
}

func (g *Generator) generate(ctx context.Context, ev feed.CalendarEvent) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	payload := struct {
		Model       string    `json:"model"`
		Messages    []message `json:"messages"`
		MaxTokens   int       `json:"max_tokens"`
		Temperature float64   `json:"temperature"`
	}{
		Model: g.cfg.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(ev)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return out.Choices[0].Message.Content, nil
}
