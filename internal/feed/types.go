// Package feed defines the notifiable items produced by source adapters.
package feed

// Source names an item-id namespace in the ledger. The two sources use
// disjoint namespaces, so the scheduled jobs never contend on ids.
type Source string

const (
	SourceSocial   Source = "x"
	SourceCalendar Source = "forex"
)

// Item is a single notifiable unit from either source.
//
// ID must be deterministic: derived only from source-native fields so
// the same real-world item always maps to the same ledger key, across
// process restarts included.
type Item interface {
	ID() string
	Source() Source
}

// SocialPost is one post from the monitored account.
type SocialPost struct {
	PostID    string // source-native id, also the cursor value
	Text      string
	CreatedAt string // RFC3339 from the API; used for ordering only
	URL       string
}

func (p SocialPost) ID() string     { return "x:" + p.PostID }
func (p SocialPost) Source() Source { return SourceSocial }

// CalendarEvent is one medium/high-impact row from the daily scan.
//
// The source exposes no stable per-row identifier, so the id is
// synthesized from the row fields plus the scan date.
type CalendarEvent struct {
	Day      string // scan date, ISO (2006-01-02)
	Time     string
	Currency string
	Impact   string
	Title    string
	Forecast string
	Actual   string
}

func (e CalendarEvent) ID() string {
	return "ff:" + e.Day + ":" + e.Currency + ":" + e.Title + ":" + e.Time
}

func (e CalendarEvent) Source() Source { return SourceCalendar }
