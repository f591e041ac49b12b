// Package app wires the process together: config, ledger, transport,
// sources, pipeline, scheduler and the liveness surface. Everything is
// constructed once here and passed down as explicit dependencies.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fxwire/internal/config"
	"fxwire/internal/enrich"
	"fxwire/internal/feed/calendar"
	"fxwire/internal/feed/x"
	"fxwire/internal/health"
	"fxwire/internal/ledger"
	"fxwire/internal/metrics"
	"fxwire/internal/notify"
	"fxwire/internal/pipeline"
	"fxwire/internal/scheduler"
	kit "fxwire/internal/transport"
	"fxwire/internal/transport/telegram"
	logx "fxwire/pkg/logx"
)

const (
	jobPoll  = "x.poll"
	jobDaily = "calendar.daily"
)

type App struct {
	cfgMgr *config.Manager
	log    logx.Logger

	store    ledger.Store
	adapter  *telegram.Adapter
	notifier *notify.Service
	pipe     *pipeline.Pipeline
	sched    *scheduler.Service
	health   *health.Service
	metrics  *metrics.Metrics

	social *x.Client
	cal    *calendar.Client

	// cursor is the poll job's process-lifetime state. Losing it on
	// restart is fine; the ledger prevents re-delivery.
	cursorMu sync.Mutex
	cursor   string

	startedAt time.Time
}

// New loads config and constructs every component. A config error here
// is fatal by contract: the process refuses to start half-configured.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	a := &App{log: log, startedAt: time.Now()}
	a.cfgMgr = config.NewManager(cfgPath, cfg, log.With(logx.String("comp", "config")))

	a.store, err = ledger.Open(ledger.Config{
		Driver:      cfg.Ledger.Driver,
		Path:        cfg.Ledger.Path,
		BusyTimeout: cfg.LedgerBusyTimeout(),
	}, log.With(logx.String("comp", "ledger")))
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}

	a.adapter, err = telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: cfg.TelegramPollTimeout(),
		StatusText:  a.statusText,
		HelpText:    "/status - bot status\n/help - this message",
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	a.notifier = notify.New(notify.Config{
		Chat: kit.ChatTarget{ChatID: cfg.Telegram.ChatID},
	}, a.adapter, log.With(logx.String("comp", "notify")))

	a.social = x.New(x.Config{
		Handle:      cfg.Social.Handle,
		BearerToken: cfg.Social.BearerToken,
	}, log.With(logx.String("comp", "x")))

	a.cal = calendar.New(calendar.Config{
		URL: cfg.Calendar.URL,
	}, log.With(logx.String("comp", "calendar")))

	enricher := enrich.New(enrich.Config{
		APIKey: cfg.Enrich.APIKey,
		Model:  cfg.Enrich.Model,
	}, log.With(logx.String("comp", "enrich")))

	a.pipe = pipeline.New(a.store, a.notifier, enricher, cfg.Social.Handle,
		log.With(logx.String("comp", "pipeline")))

	a.metrics = metrics.New()
	a.sched = scheduler.New(log.With(logx.String("comp", "scheduler")))

	interval, err := cfg.PollInterval()
	if err != nil {
		return nil, err
	}
	a.sched.AddInterval(jobPoll, interval, true, a.runPoll)
	a.sched.AddDaily(jobDaily, cfg.Calendar.DailyHour, a.runDaily)

	a.health = health.New(health.Config{Addr: cfg.Health.Addr},
		a.statusText, a.metrics.Registry(), log.With(logx.String("comp", "health")))

	return a, nil
}

func (a *App) Start(ctx context.Context) error {
	if err := a.adapter.Start(ctx); err != nil {
		return err
	}
	if err := a.sched.Start(ctx); err != nil {
		return err
	}
	if err := a.health.Start(ctx); err != nil {
		return err
	}

	// Hot reload: only the trigger timings and nothing else; credentials
	// and storage changes need a restart.
	go func() {
		if err := a.cfgMgr.Watch(ctx); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	go a.applyReloads(ctx, a.cfgMgr.Subscribe(1))

	a.log.Info("started",
		logx.Bool("social_enabled", a.social.Enabled()),
		logx.Time("at", a.startedAt))
	return nil
}

func (a *App) Stop(ctx context.Context) {
	a.sched.Stop(ctx)
	a.health.Stop(ctx)
	_ = a.adapter.Stop(ctx)
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.log.Close()
}

func (a *App) applyReloads(ctx context.Context, updates <-chan *config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-updates:
			if !ok {
				return
			}
			if interval, err := cfg.PollInterval(); err == nil {
				a.sched.SetInterval(jobPoll, interval)
			}
			a.sched.SetDailyHour(jobDaily, cfg.Calendar.DailyHour)
		}
	}
}

// runPoll is the incremental social job.
func (a *App) runPoll(ctx context.Context) {
	start := time.Now()
	defer func() { a.metrics.ObserveJob(jobPoll, time.Since(start).Seconds()) }()

	a.cursorMu.Lock()
	cursor := a.cursor
	a.cursorMu.Unlock()

	posts := a.social.FetchNew(ctx, cursor)
	report, next := a.pipe.RunSocial(ctx, posts, cursor)

	a.cursorMu.Lock()
	a.cursor = next
	a.cursorMu.Unlock()

	a.metrics.ObserveReport(report)
	a.logReport(jobPoll, report)
}

// runDaily is the full-rescan calendar job.
func (a *App) runDaily(ctx context.Context) {
	start := time.Now()
	defer func() { a.metrics.ObserveJob(jobDaily, time.Since(start).Seconds()) }()

	events := a.cal.FetchToday(ctx)
	if len(events) == 0 {
		// Empty scan and scan failure look the same here; say so in chat
		// instead of staying silent.
		if err := a.notifier.Send(ctx, "📅 Kalendarz: brak wydarzeń medium/high lub błąd pobierania.", ""); err != nil {
			a.log.Warn("empty-day notice failed", logx.Err(err))
		}
		return
	}

	report := a.pipe.RunCalendar(ctx, events)
	a.metrics.ObserveReport(report)
	a.logReport(jobDaily, report)
}

func (a *App) logReport(job string, r pipeline.Report) {
	if r.Delivered == 0 && r.Failed == 0 && r.Skipped == 0 {
		return
	}
	a.log.Info("job report",
		logx.String("job", job),
		logx.Int("delivered", r.Delivered),
		logx.Int("skipped", r.Skipped),
		logx.Int("failed", r.Failed))
}

func (a *App) statusText() string {
	cfg := a.cfgMgr.Get()
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Bot is running\n")
	fmt.Fprintf(&b, "Server time: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Uptime: %s\n", time.Since(a.startedAt).Round(time.Second))
	handle := "unset"
	if cfg != nil && strings.TrimSpace(cfg.Social.Handle) != "" {
		handle = cfg.Social.Handle
	}
	fmt.Fprintf(&b, "X handle: %s\n", handle)
	if cfg != nil {
		fmt.Fprintf(&b, "Calendar: %s\n", cfg.Calendar.URL)
	}
	for _, js := range a.sched.Snapshot() {
		last := "never"
		if !js.LastRun.IsZero() {
			last = js.LastRun.UTC().Format("15:04:05")
		}
		fmt.Fprintf(&b, "job %s: runs=%d last=%s\n", js.Name, js.Runs, last)
	}
	return strings.TrimRight(b.String(), "\n")
}
