package taxonomy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/djenbridge/internal/model"
)

// Entry describes one notification type: how to recognise it and what it implies.
type Entry struct {
	Type     model.NotificationType
	Desc     string
	Keywords []string
	Deadline string
	Actions  []string
}

// Taxonomy is the ordered, versioned rule table.
type Taxonomy struct {
	version  string
	catchAll model.NotificationType
	entries  []Entry // declaration order, catch-all included
	byType   map[model.NotificationType]Entry
}

type fileFormat struct {
	Version  string      `yaml:"version"`
	CatchAll string      `yaml:"catch_all"`
	Types    []entryYAML `yaml:"types"`
}

type entryYAML struct {
	Name     string   `yaml:"name"`
	Desc     string   `yaml:"desc"`
	Keywords []string `yaml:"keywords"`
	Deadline string   `yaml:"deadline"`
	Actions  []string `yaml:"actions"`
}

// Load reads a taxonomy YAML file from disk.
func Load(path string) (*Taxonomy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a taxonomy document. Every type must belong to
// the closed enumeration, names must be unique, the catch-all must be present
// and carry no keywords, and every other type needs keywords and actions.
func Parse(data []byte) (*Taxonomy, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}

	var errs []error
	if f.Version == "" {
		errs = append(errs, errors.New("taxonomy: version is required"))
	}
	catchAll, ok := member(f.CatchAll)
	if !ok {
		errs = append(errs, fmt.Errorf("taxonomy: catch_all %q is not a notification type", f.CatchAll))
	}

	t := &Taxonomy{
		version:  f.Version,
		catchAll: catchAll,
		byType:   make(map[model.NotificationType]Entry, len(f.Types)),
	}
	for i, raw := range f.Types {
		typ, ok := member(raw.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("taxonomy: types[%d]: unknown type %q", i, raw.Name))
			continue
		}
		if _, dup := t.byType[typ]; dup {
			errs = append(errs, fmt.Errorf("taxonomy: types[%d]: duplicate type %q", i, raw.Name))
			continue
		}
		switch {
		case typ == catchAll && len(raw.Keywords) > 0:
			errs = append(errs, fmt.Errorf("taxonomy: catch-all %q must not have keywords", raw.Name))
		case typ != catchAll && len(raw.Keywords) == 0:
			errs = append(errs, fmt.Errorf("taxonomy: %q has no keywords", raw.Name))
		case typ != catchAll && len(raw.Actions) == 0:
			errs = append(errs, fmt.Errorf("taxonomy: %q has no actions", raw.Name))
		}
		e := Entry{
			Type:     typ,
			Desc:     raw.Desc,
			Keywords: raw.Keywords,
			Deadline: raw.Deadline,
			Actions:  dedupeActions(raw.Actions),
		}
		t.entries = append(t.entries, e)
		t.byType[typ] = e
	}
	if ok {
		if _, found := t.byType[catchAll]; !found {
			errs = append(errs, fmt.Errorf("taxonomy: catch-all %q has no entry", f.CatchAll))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return t, nil
}

// Version identifies the rule table revision.
func (t *Taxonomy) Version() string { return t.version }

// CatchAll is the type assigned when no rule matches.
func (t *Taxonomy) CatchAll() model.NotificationType { return t.catchAll }

// Rules returns the keyword-bearing entries in evaluation order.
func (t *Taxonomy) Rules() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if e.Type != t.catchAll {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the entry for typ.
func (t *Taxonomy) Lookup(typ model.NotificationType) (Entry, bool) {
	e, ok := t.byType[typ]
	return e, ok
}

func member(name string) (model.NotificationType, bool) {
	for _, typ := range model.NotificationTypes() {
		if string(typ) == name {
			return typ, true
		}
	}
	return "", false
}

// dedupeActions keeps the first occurrence of each tag.
func dedupeActions(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
