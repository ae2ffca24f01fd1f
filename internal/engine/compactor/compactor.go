package compactor

import (
	"unicode/utf8"

	"github.com/crimson-sun/djenbridge/internal/engine/textnorm"
)

// Verbosity controls how much notification text survives in the summary.
type Verbosity int

const (
	Minimal  Verbosity = iota // 120 runes
	Standard                  // 200 runes
	Full                      // 1000 runes
)

// ParseVerbosity maps "minimal", "standard", "full" to a Verbosity.
// Unknown strings yield Standard.
func ParseVerbosity(s string) Verbosity {
	switch s {
	case "minimal":
		return Minimal
	case "full":
		return Full
	default:
		return Standard
	}
}

// Compactor bounds summary length.
type Compactor struct {
	Verbosity Verbosity
}

// New creates a Compactor with the given verbosity level.
func New(v Verbosity) *Compactor {
	return &Compactor{Verbosity: v}
}

// MaxRunes is the summary bound for the configured verbosity, excluding the
// trailing ellipsis.
func (c *Compactor) MaxRunes() int {
	switch c.Verbosity {
	case Minimal:
		return 120
	case Full:
		return 1000
	default:
		return 200
	}
}

// Summarize collapses whitespace and truncates to MaxRunes, appending "..."
// when text was cut. Truncation never splits a multi-byte rune.
func (c *Compactor) Summarize(text string) string {
	return truncate(textnorm.CollapseSpace(text), c.MaxRunes())
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
