package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the whole process configuration.
//
// It can come from a JSON or YAML file, from environment variables, or both;
// the environment always wins. A missing file is fine - the enumerated
// env surface (TELEGRAM_TOKEN, TARGET_CHAT_ID, ...) is enough to run.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Social   SocialConfig   `json:"social"`
	Calendar CalendarConfig `json:"calendar"`
	Enrich   EnrichConfig   `json:"enrich,omitempty"`
	Ledger   LedgerConfig   `json:"ledger"`
	Logging  LoggingConfig  `json:"logging"`
	Health   HealthConfig   `json:"health,omitempty"`
}

type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type SocialConfig struct {
	// Handle and BearerToken are both required to enable the social source.
	// Leaving either empty disables it without error.
	Handle      string `json:"handle,omitempty"`
	BearerToken string `json:"bearer_token,omitempty"`
	// PollInterval accepts a Go duration string or a bare number of seconds.
	PollInterval string `json:"poll_interval,omitempty"`
}

type CalendarConfig struct {
	URL string `json:"url,omitempty"`
	// DailyHour is the UTC hour (0-23) of the daily calendar job.
	DailyHour int `json:"daily_hour"`
}

// EnrichConfig controls the optional commentary generator.
// An empty APIKey disables the external call; the deterministic
// template fallback still runs.
type EnrichConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`
}

type LedgerConfig struct {
	// Driver: "sqlite" (default) or "file".
	Driver string `json:"driver,omitempty"`
	Path   string `json:"path,omitempty"`
	// BusyTimeout is a Go duration string (sqlite only).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

type HealthConfig struct {
	// Addr is the liveness HTTP listen address. Empty disables the server.
	Addr string `json:"addr,omitempty"`
}

const (
	DefaultCalendarURL  = "https://www.forexfactory.com/calendar.php"
	DefaultPollInterval = 300 * time.Second
	DefaultDailyHour    = 8
	DefaultLedgerPath   = "./fxwire.db"
)

// Default returns a config with all non-credential defaults filled in.
func Default() *Config {
	return &Config{
		Calendar: CalendarConfig{URL: DefaultCalendarURL, DailyHour: DefaultDailyHour},
		Social:   SocialConfig{PollInterval: DefaultPollInterval.String()},
		Ledger:   LedgerConfig{Driver: "sqlite", Path: DefaultLedgerPath},
		Logging:  LoggingConfig{Level: "info", Console: true},
	}
}

// Load reads the optional config file at path, applies environment
// overrides and validates the result. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	jb, err := toJSON(path, b)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("config %s: trailing data", path)
		}
		return err
	}
	return nil
}

func applyEnv(cfg *Config) {
	setStr := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	setStr(&cfg.Telegram.Token, "TELEGRAM_TOKEN")
	if v := os.Getenv("TARGET_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	setStr(&cfg.Social.Handle, "X_USERNAME")
	setStr(&cfg.Social.BearerToken, "X_BEARER_TOKEN")
	setStr(&cfg.Social.PollInterval, "POLL_INTERVAL")
	setStr(&cfg.Calendar.URL, "CALENDAR_URL", "FOREX_FACTORY_URL")
	if v := os.Getenv("CALENDAR_DAILY_HOUR"); v != "" {
		if h, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Calendar.DailyHour = h
		}
	}
	setStr(&cfg.Enrich.APIKey, "OPENAI_API_KEY")
	setStr(&cfg.Enrich.Model, "OPENAI_MODEL")
	setStr(&cfg.Ledger.Driver, "LEDGER_DRIVER")
	setStr(&cfg.Ledger.Path, "LEDGER_PATH", "DB_PATH")
	setStr(&cfg.Health.Addr, "HEALTH_ADDR")
	setStr(&cfg.Logging.Level, "LOG_LEVEL")
}

// Validate enforces the startup contract: a half-configured process must
// refuse to start. Optional features validate only when enabled.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required (TELEGRAM_TOKEN)")
	}
	if c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required (TARGET_CHAT_ID)")
	}
	if c.Calendar.DailyHour < 0 || c.Calendar.DailyHour > 23 {
		return fmt.Errorf("calendar.daily_hour out of range: %d", c.Calendar.DailyHour)
	}
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Ledger.Driver)) {
	case "", "sqlite", "sqlite3", "file":
	default:
		return fmt.Errorf("unknown ledger driver: %s", c.Ledger.Driver)
	}
	return nil
}

// PollInterval parses social.poll_interval, accepting either a Go
// duration string ("5m") or a bare number of seconds ("300").
func (c *Config) PollInterval() (time.Duration, error) {
	raw := strings.TrimSpace(c.Social.PollInterval)
	if raw == "" {
		return DefaultPollInterval, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("poll_interval must be positive: %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("poll_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive: %s", d)
	}
	return d, nil
}

// TelegramPollTimeout parses telegram.poll_timeout with a sane default.
func (c *Config) TelegramPollTimeout() time.Duration {
	raw := strings.TrimSpace(c.Telegram.PollTimeout)
	if raw == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// LedgerBusyTimeout parses ledger.busy_timeout; 0 means driver default.
func (c *Config) LedgerBusyTimeout() time.Duration {
	raw := strings.TrimSpace(c.Ledger.BusyTimeout)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
