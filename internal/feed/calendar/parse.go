package calendar

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"fxwire/internal/feed"
)

// parseEvents extracts event rows from the calendar HTML document.
//
// Expected shape: a table with id="calendar" whose body rows carry at
// least six cells: time, currency, impact, title, actual, forecast.
// Rows with fewer cells (day separators, spacers) are skipped.
func parseEvents(r io.Reader, day string) ([]feed.CalendarEvent, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	table := findByTagID(doc, atom.Table, "calendar")
	if table == nil {
		return nil, errors.New("calendar table not found")
	}

	var events []feed.CalendarEvent
	for _, tr := range findAllByTag(table, atom.Tr) {
		tds := findAllByTag(tr, atom.Td)
		if len(tds) < 6 {
			continue
		}
		impact := collectText(tds[2])
		if !includeImpact(impact) {
			continue
		}
		events = append(events, feed.CalendarEvent{
			Day:      day,
			Time:     collectText(tds[0]),
			Currency: collectText(tds[1]),
			Impact:   impact,
			Title:    collectText(tds[3]),
			Actual:   collectText(tds[4]),
			Forecast: collectText(tds[5]),
		})
	}
	return events, nil
}

func findByTagID(root *html.Node, tag atom.Atom, id string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == tag && getAttr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func findAllByTag(root *html.Node, tag atom.Atom) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == tag {
			results = append(results, n)
			// td/tr don't nest in sane markup; no need to descend further.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return results
}

// collectText gathers and trims the text content under a node.
func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
