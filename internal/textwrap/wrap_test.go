package textwrap

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapBreaksAtSpaces(t *testing.T) {
	got := Wrap("the quick brown fox", 10)
	want := "the quick\nbrown fox"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapHardBreaksLongWords(t *testing.T) {
	got := Wrap("abcdefghij", 4)
	want := "abcd\nefgh\nij"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapShortTextUnchanged(t *testing.T) {
	if got := Wrap("short", 10); got != "short" {
		t.Fatalf("expected unchanged text, got %q", got)
	}
	if got := Wrap("no width", 0); got != "no width" {
		t.Fatalf("expected unchanged text for zero width, got %q", got)
	}
}

func TestWrapRespectsWideRunes(t *testing.T) {
	got := Wrap("日本語 日本語", 6)
	for _, line := range strings.Split(got, "\n") {
		if w := runewidth.StringWidth(line); w > 6 {
			t.Fatalf("line %q is %d columns wide", line, w)
		}
	}
	if got != "日本語\n日本語" {
		t.Fatalf("unexpected wrap %q", got)
	}
}
