// Package pipeline implements the per-item dispatch sequence:
// filter against the ledger, enrich, format, send, record.
//
// Failure policy per item:
//   - ledger read fault: logged, item treated as not yet delivered
//     (an extra delivery is preferred over a lost one)
//   - enrich/format fault: a fallback message is still sent
//   - send fault: item left unrecorded; the next run retries it
//   - record fault after send: logged, unrecorded (same trade-off)
package pipeline

import (
	"context"

	"fxwire/internal/feed"
	"fxwire/internal/ledger"
	"fxwire/internal/notify"
	logx "fxwire/pkg/logx"
)

// Sender is the outbound notification capability.
type Sender interface {
	Send(ctx context.Context, text, parseMode string) error
}

// Enricher produces commentary for calendar events. Implementations
// never fail; worst case they return template text.
type Enricher interface {
	Enrich(ctx context.Context, ev feed.CalendarEvent) string
}

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// ItemResult is the typed outcome for a single item.
type ItemResult struct {
	ID     string
	Status Status
	Err    error
}

// Report aggregates one pipeline run for boundary logging and metrics.
type Report struct {
	Source    feed.Source
	Delivered int
	Skipped   int
	Failed    int
	Items     []ItemResult
}

func (r *Report) add(res ItemResult) {
	r.Items = append(r.Items, res)
	switch res.Status {
	case StatusDelivered:
		r.Delivered++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

type Pipeline struct {
	store    ledger.Store
	sender   Sender
	enricher Enricher
	log      logx.Logger

	// handle names the monitored account in social message headers.
	handle string
}

func New(store ledger.Store, sender Sender, enricher Enricher, handle string, log logx.Logger) *Pipeline {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Pipeline{store: store, sender: sender, enricher: enricher, log: log, handle: handle}
}

// RunSocial dispatches posts oldest-first and returns the new cursor.
//
// The cursor advances only past items that were both delivered and
// recorded. On the first delivery failure the batch stops: processing
// later posts would push the cursor past the failed one and the
// incremental fetch would never present it again.
func (p *Pipeline) RunSocial(ctx context.Context, posts []feed.SocialPost, cursor string) (Report, string) {
	report := Report{Source: feed.SourceSocial}
	for _, post := range posts {
		post := post
		res := p.dispatch(ctx, post, func() string { return formatSocial(p.handle, post) }, "")
		report.add(res)
		if res.Status == StatusFailed {
			break
		}
		if res.Status == StatusDelivered {
			cursor = post.PostID
		}
	}
	return report, cursor
}

// RunCalendar dispatches events independently; one failed event never
// stops the rest (the ledger is the only dedup, so order is free).
func (p *Pipeline) RunCalendar(ctx context.Context, events []feed.CalendarEvent) Report {
	report := Report{Source: feed.SourceCalendar}
	for _, ev := range events {
		ev := ev
		report.add(p.dispatch(ctx, ev, func() string {
			commentary := ""
			if p.enricher != nil {
				commentary = p.enricher.Enrich(ctx, ev)
			}
			return formatCalendar(ev, commentary)
		}, notify.ParseModeHTML))
	}
	return report
}

// dispatch runs the filter-format-send-record sequence for one item.
// format is invoked only after the dedup check passes: a recorded item
// must stay entirely side-effect free, enrichment included (the
// generator call costs money per invocation).
func (p *Pipeline) dispatch(ctx context.Context, it feed.Item, format func() string, parseMode string) ItemResult {
	id := it.ID()

	recorded, err := p.store.WasRecorded(ctx, id)
	if err != nil {
		// Ledger unavailable: deliver anyway rather than lose the item.
		p.log.Error("ledger read failed; treating item as unseen", logx.String("id", id), logx.Err(err))
	}
	if recorded {
		return ItemResult{ID: id, Status: StatusSkipped}
	}

	text := format()
	if text == "" {
		// Formatting produced nothing usable; still deliver something.
		text = id
	}

	if err := p.sender.Send(ctx, text, parseMode); err != nil {
		p.log.Warn("delivery failed", logx.String("id", id), logx.Err(err))
		return ItemResult{ID: id, Status: StatusFailed, Err: err}
	}

	if err := p.store.Record(ctx, id, string(it.Source())); err != nil {
		// Delivered but not recorded: the item may be sent once more on
		// the next cycle.
		p.log.Error("ledger write failed after delivery", logx.String("id", id), logx.Err(err))
		return ItemResult{ID: id, Status: StatusFailed, Err: err}
	}

	p.log.Info("item delivered", logx.String("id", id), logx.String("source", string(it.Source())))
	return ItemResult{ID: id, Status: StatusDelivered}
}
