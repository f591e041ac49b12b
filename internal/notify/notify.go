// Package notify delivers pipeline messages to the configured chat.
//
// Delivery is synchronous on purpose: the pipeline records an item only
// after a successful send, so the send result must be known in-line.
// There is no internal retry - a failed send leaves the item unrecorded
// and the next scheduled run retries it naturally.
package notify

import (
	"context"
	"errors"
	"time"

	kit "fxwire/internal/transport"
	logx "fxwire/pkg/logx"

	"golang.org/x/time/rate"
)

const (
	// ParseModeHTML requests Telegram HTML rendering for rich blocks.
	ParseModeHTML = "HTML"

	defaultRatePerSec = 3
	sendTimeout       = 15 * time.Second
)

var ErrNoAdapter = errors.New("notify: no adapter")

type Config struct {
	Chat       kit.ChatTarget
	RatePerSec int
}

type Service struct {
	cfg     Config
	adapter kit.Adapter
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger) *Service {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:     cfg,
		adapter: adapter,
		// Token bucket: burst = rate per sec, so short spikes don't block too hard.
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		log:     log,
	}
}

// Send delivers text to the configured chat. parseMode may be empty
// (plain text) or ParseModeHTML. The call is bounded by sendTimeout so
// a stuck transport cannot hang a scheduler job past its own firing.
func (s *Service) Send(ctx context.Context, text, parseMode string) error {
	if s.adapter == nil {
		return ErrNoAdapter
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	opt := &kit.SendOptions{ParseMode: parseMode}
	_, err := s.adapter.SendText(callCtx, s.cfg.Chat, text, opt)
	return err
}
