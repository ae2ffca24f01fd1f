package compactor

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSummarizeShortTextUnchanged(t *testing.T) {
	c := New(Standard)
	got := c.Summarize("  Intimação   para\nciência  ")
	if got != "Intimação para ciência" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeTruncatesByRunes(t *testing.T) {
	c := New(Standard)
	text := strings.Repeat("ã", 250)
	got := c.Summarize(text)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	body := strings.TrimSuffix(got, "...")
	if n := utf8.RuneCountInString(body); n != 200 {
		t.Fatalf("expected 200 runes before ellipsis, got %d", n)
	}
	if !utf8.ValidString(got) {
		t.Fatal("summary is not valid UTF-8")
	}
}

func TestSummarizeExactBoundary(t *testing.T) {
	c := New(Minimal)
	text := strings.Repeat("a", 120)
	if got := c.Summarize(text); got != text {
		t.Fatalf("expected text at bound to be unchanged, got %d runes", utf8.RuneCountInString(got))
	}
}

func TestMaxRunesPerVerbosity(t *testing.T) {
	tests := []struct {
		v    Verbosity
		want int
	}{
		{Minimal, 120},
		{Standard, 200},
		{Full, 1000},
	}
	for _, tt := range tests {
		if got := New(tt.v).MaxRunes(); got != tt.want {
			t.Errorf("verbosity %d: MaxRunes() = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := map[string]Verbosity{
		"minimal":  Minimal,
		"standard": Standard,
		"full":     Full,
		"loud":     Standard,
		"":         Standard,
	}
	for in, want := range tests {
		if got := ParseVerbosity(in); got != want {
			t.Errorf("ParseVerbosity(%q) = %d, want %d", in, got, want)
		}
	}
}
