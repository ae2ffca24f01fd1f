package classifier

import (
	"strings"

	"github.com/crimson-sun/djenbridge/internal/engine/taxonomy"
	"github.com/crimson-sun/djenbridge/internal/engine/textnorm"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// Result holds the outcome of classifying a single notification.
type Result struct {
	Type    model.NotificationType
	Keyword string // matched keyword as written in the taxonomy; empty for the catch-all
}

type rule struct {
	typ      model.NotificationType
	keywords []string // as written
	folded   []string // comparison form
}

// Classifier assigns notification types by ordered keyword rules.
// First matching rule wins; no match yields the taxonomy's catch-all.
// Safe for concurrent use.
type Classifier struct {
	rules    []rule
	catchAll model.NotificationType
}

// New creates a Classifier from the taxonomy's rule order.
func New(tax *taxonomy.Taxonomy) *Classifier {
	c := &Classifier{catchAll: tax.CatchAll()}
	for _, e := range tax.Rules() {
		r := rule{typ: e.Type, keywords: e.Keywords}
		for _, kw := range e.Keywords {
			r.folded = append(r.folded, textnorm.Fold(kw))
		}
		c.rules = append(c.rules, r)
	}
	return c
}

// Classify matches category and text against the rules. Both are folded
// (accents stripped, case folded) before matching.
func (c *Classifier) Classify(category, text string) Result {
	haystack := textnorm.Fold(category + " " + text)
	if haystack == "" {
		return Result{Type: c.catchAll}
	}
	for _, r := range c.rules {
		for i, kw := range r.folded {
			if kw != "" && strings.Contains(haystack, kw) {
				return Result{Type: r.typ, Keyword: r.keywords[i]}
			}
		}
	}
	return Result{Type: c.catchAll}
}
