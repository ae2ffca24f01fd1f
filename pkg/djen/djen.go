package djen

import (
	"context"
	"fmt"

	"github.com/crimson-sun/djenbridge/internal/adapter"
	"github.com/crimson-sun/djenbridge/internal/app"
	"github.com/crimson-sun/djenbridge/internal/config"
	"github.com/crimson-sun/djenbridge/internal/engine"
	"github.com/crimson-sun/djenbridge/internal/engine/taxonomy"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// Client fetches and normalizes DJEN notifications.
// Safe for concurrent use.
type Client struct {
	adapter  *adapter.Adapter
	engine   *engine.Engine
	taxonomy *taxonomy.Taxonomy
}

// New creates a Client. Options are applied on top of the defaults; the
// DJEN_* environment variables are not consulted.
func New(opts ...Option) (*Client, error) {
	cfg := config.Defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("djen: %w", err)
	}
	a, err := app.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("djen: %w", err)
	}
	return &Client{adapter: a.Adapter, engine: a.Engine, taxonomy: a.Taxonomy}, nil
}

// Fetch returns the notifications matching q. Errors are
// *InvalidQueryError, *RateLimitedError, *UpstreamUnavailableError, or the
// context's error.
func (c *Client) Fetch(ctx context.Context, q Query) (Result, error) {
	res, err := c.adapter.Fetch(ctx, q.internal())
	if err != nil {
		return Result{}, err
	}
	out := Result{
		Notifications: make([]Notification, len(res.Records)),
		Stale:         res.Stale,
		Source:        string(res.Source),
		FetchID:       res.FetchID,
	}
	for i, r := range res.Records {
		out.Notifications[i] = fromRecord(r)
	}
	return out, nil
}

// Normalize maps one raw DJEN record, in any known shape, into a
// Notification. Errors are *MissingFieldError or *MalformedFieldError.
func (c *Client) Normalize(raw map[string]any) (Notification, error) {
	rec, err := c.engine.Process(model.RawNotification(raw))
	if err != nil {
		return Notification{}, err
	}
	return fromRecord(rec), nil
}

// Courts lists the supported courts.
func (c *Client) Courts() []Court {
	courts := model.Courts()
	out := make([]Court, len(courts))
	for i, ct := range courts {
		out[i] = Court{Code: ct.Code, Name: ct.Name}
	}
	return out
}

// Rule is one entry of the classification table.
type Rule struct {
	Type     string
	Keywords []string
	Deadline string
	Actions  []string
}

// Rules returns the active classification table in evaluation order,
// catch-all last. RulesVersion identifies its revision.
func (c *Client) Rules() []Rule {
	entries := c.taxonomy.Rules()
	out := make([]Rule, 0, len(entries)+1)
	for _, e := range entries {
		out = append(out, Rule{
			Type:     string(e.Type),
			Keywords: append([]string(nil), e.Keywords...),
			Deadline: e.Deadline,
			Actions:  append([]string(nil), e.Actions...),
		})
	}
	if e, ok := c.taxonomy.Lookup(c.taxonomy.CatchAll()); ok {
		out = append(out, Rule{Type: string(e.Type), Deadline: e.Deadline, Actions: append([]string(nil), e.Actions...)})
	}
	return out
}

// RulesVersion is the revision string of the active rule table.
func (c *Client) RulesVersion() string { return c.taxonomy.Version() }
