package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var plainStyle = lipgloss.NewStyle()

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("what is the capital of France", 12, plainStyle)
	want := "what is the\ncapital of\nFrance"
	if got != want {
		t.Fatalf("unexpected wrap:\n%q\nwant\n%q", got, want)
	}
}

func TestWrapTextSplitsLongWord(t *testing.T) {
	got := wrapText("abcdefgh", 3, plainStyle)
	if got != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("한국의 수도", 6, plainStyle)
	for _, line := range strings.Split(got, "\n") {
		if lipgloss.Width(line) > 6 {
			t.Fatalf("line %q wider than 6 columns", line)
		}
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("expected a break, got %q", got)
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	if got := wrapText("one two", 0, plainStyle); got != "one two" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestBuildStyledRunesFlattensNewlines(t *testing.T) {
	runes := buildStyledRunes("a\nb", plainStyle)
	if len(runes) != 3 || !runes[1].isSpace {
		t.Fatalf("expected newline to become a space: %+v", runes)
	}
}
