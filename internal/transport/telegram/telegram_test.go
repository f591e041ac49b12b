package telegram

import (
	"strings"
	"testing"

	logx "fxwire/pkg/logx"
)

func TestSplitTelegramTextShortPassthrough(t *testing.T) {
	t.Parallel()
	got := splitTelegramText("hello", 4000, "")
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitTelegramTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("line one\n", 10) + strings.Repeat("x", 30)
	chunks := splitTelegramText(text, 50, "")

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c == "" {
			t.Fatalf("chunk %d is empty", i)
		}
		if len([]rune(c)) > 50 {
			t.Fatalf("chunk %d too long: %d runes", i, len([]rune(c)))
		}
	}
	// A newline-boundary split keeps lines intact.
	if strings.Contains(chunks[0], "line on\n") {
		t.Fatalf("line split mid-word: %q", chunks[0])
	}
}

func TestSplitTelegramTextAvoidsDanglingHTMLTag(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("x", 40) + "<b>bold text here</b>" + strings.Repeat("y", 40)
	chunks := splitTelegramText(text, 45, "HTML")

	for i, c := range chunks {
		opens := strings.Count(c, "<")
		closes := strings.Count(c, ">")
		if opens != closes {
			t.Fatalf("chunk %d splits inside a tag: %q", i, c)
		}
	}
}

func TestSplitTelegramTextReassembles(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("abcdefghij", 20)
	chunks := splitTelegramText(text, 30, "")

	var total int
	for _, c := range chunks {
		total += len([]rune(c))
	}
	// No newlines in the input, so nothing is trimmed.
	if total != len([]rune(text)) {
		t.Fatalf("reassembled %d runes, want %d", total, len([]rune(text)))
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks do not reassemble to the input")
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
