package enrich

import (
	"fmt"
	"strings"

	"fxwire/internal/feed"
)

// Fallback derives commentary from the event fields alone. Keyword rules
// are keyed off the title: inflation, employment and growth events each
// get their own framing; everything else gets a generic volatility note.
func Fallback(ev feed.CalendarEvent) string {
	title := strings.ToLower(ev.Title)
	cur := ev.Currency

	direction := "możliwe większe wahania."
	switch {
	case strings.Contains(title, "cpi") || strings.Contains(title, "inflation"):
		direction = fmt.Sprintf("możliwe umocnienie %s jeśli dane będą powyżej oczekiwań, osłabienie jeśli poniżej.", cur)
	case strings.Contains(title, "unemployment") || strings.Contains(title, "job") || strings.Contains(title, "nfp"):
		direction = fmt.Sprintf("duży wpływ na rynek pracy i %s, zwiększona zmienność.", cur)
	case strings.Contains(title, "gdp"):
		direction = fmt.Sprintf("długoterminowy wpływ na postrzeganie kondycji gospodarki i %s.", cur)
	}

	return fmt.Sprintf("%s (%s) — %s Krótkoterminowo spodziewana zmienność: wysoka.", ev.Title, cur, direction)
}
