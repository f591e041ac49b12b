package pipeline

import (
	"fmt"
	"strings"

	"fxwire/internal/feed"
	"fxwire/pkg/tgui"
)

// formatSocial renders a plain-text message for a new post.
func formatSocial(handle string, post feed.SocialPost) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 Nowy wpis z X (%s):\n\n", handle)
	b.WriteString(strings.TrimSpace(post.Text))
	if post.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(post.URL)
	}
	return b.String()
}

// formatCalendar renders the structured HTML block for one event.
func formatCalendar(ev feed.CalendarEvent, commentary string) string {
	header := tgui.B(fmt.Sprintf("%s | %s | %s", orDash(ev.Time), orDash(ev.Currency), orDash(ev.Impact)))
	meta := tgui.Esc(fmt.Sprintf("Prognoza: %s | Wynik: %s", orDash(ev.Forecast), orDash(ev.Actual)))

	msg := tgui.JoinH("\n", header, tgui.Esc(ev.Title), meta).String()
	if strings.TrimSpace(commentary) != "" {
		msg += "\n\n" + tgui.Esc(commentary).String()
	}
	return msg
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
