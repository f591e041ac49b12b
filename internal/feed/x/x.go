// Package x fetches new posts from a monitored X account.
//
// The adapter is deliberately forgiving: missing credentials disable the
// source, and any upstream failure yields an empty batch plus a warning.
// A failed poll never surfaces as an error - the next scheduled poll is
// the retry.
package x

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"fxwire/internal/feed"
	logx "fxwire/pkg/logx"
)

const (
	defaultBaseURL  = "https://api.twitter.com"
	defaultPageSize = 5
	requestTimeout  = 15 * time.Second
)

type Config struct {
	Handle      string
	BearerToken string

	// BaseURL overrides the API host (tests).
	BaseURL  string
	PageSize int
}

type Client struct {
	cfg  Config
	log  logx.Logger
	http *http.Client

	// userID caches the resolved numeric id for the handle.
	userID string
}

func New(cfg Config, log logx.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:  cfg,
		log:  log,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Enabled reports whether the source is configured at all.
func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.cfg.Handle) != "" && strings.TrimSpace(c.cfg.BearerToken) != ""
}

// FetchNew returns posts strictly newer than sinceID, oldest first.
// sinceID may be empty (first poll after startup).
func (c *Client) FetchNew(ctx context.Context, sinceID string) []feed.SocialPost {
	if !c.Enabled() {
		return nil
	}

	userID, err := c.resolveUser(ctx)
	if err != nil {
		c.log.Warn("resolving user failed", logx.String("handle", c.cfg.Handle), logx.Err(err))
		return nil
	}

	posts, err := c.listPosts(ctx, userID, sinceID)
	if err != nil {
		c.log.Warn("listing posts failed", logx.String("handle", c.cfg.Handle), logx.Err(err))
		return nil
	}

	// Deliver oldest first.
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt < posts[j].CreatedAt })
	return posts
}

func (c *Client) resolveUser(ctx context.Context) (string, error) {
	if c.userID != "" {
		return c.userID, nil
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	u := c.cfg.BaseURL + "/2/users/by/username/" + url.PathEscape(c.cfg.Handle)
	if err := c.getJSON(ctx, u, &out); err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("no user id for handle %q", c.cfg.Handle)
	}
	c.userID = out.Data.ID
	return c.userID, nil
}

func (c *Client) listPosts(ctx context.Context, userID, sinceID string) ([]feed.SocialPost, error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(c.cfg.PageSize))
	q.Set("tweet.fields", "created_at,text")
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}

	var out struct {
		Data []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			CreatedAt string `json:"created_at"`
		} `json:"data"`
	}
	u := c.cfg.BaseURL + "/2/users/" + url.PathEscape(userID) + "/tweets?" + q.Encode()
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}

	posts := make([]feed.SocialPost, 0, len(out.Data))
	for _, t := range out.Data {
		if t.ID == "" {
			continue
		}
		posts = append(posts, feed.SocialPost{
			PostID:    t.ID,
			Text:      t.Text,
			CreatedAt: t.CreatedAt,
			URL:       "https://x.com/" + c.cfg.Handle + "/status/" + t.ID,
		})
	}
	return posts, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Keep a bounded slice of the body for diagnostics.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
