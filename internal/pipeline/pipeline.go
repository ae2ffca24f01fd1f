// Package pipeline drives one-shot queries through the adapter and into
// the configured outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/djenbridge/internal/adapter"
	"github.com/crimson-sun/djenbridge/internal/engine/compactor"
	"github.com/crimson-sun/djenbridge/internal/engine/dedup"
	"github.com/crimson-sun/djenbridge/internal/model"
	"github.com/crimson-sun/djenbridge/internal/output"
)

// Fetcher answers a notification query. *adapter.Adapter satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, q model.Query) (adapter.Result, error)
}

// Report summarizes one query's run.
type Report struct {
	Query      model.Query
	Source     adapter.Source
	Stale      bool
	Records    int // written to the output
	Duplicates int // suppressed because an earlier query already wrote them
	Tokens     int // estimated LLM tokens of the written records
	Err        error
}

// Pipeline connects a fetcher and an output.
type Pipeline struct {
	fetcher Fetcher
	output  output.Output
	key     dedup.KeyFunc
}

// New creates a Pipeline. Records are keyed by case number when Run
// suppresses duplicates across queries.
func New(f Fetcher, out output.Output) *Pipeline {
	return &Pipeline{fetcher: f, output: out, key: dedup.ByCaseNumber}
}

// Query runs a single query and writes its records.
func (p *Pipeline) Query(ctx context.Context, q model.Query) (Report, error) {
	reports, err := p.Run(ctx, []model.Query{q})
	return reports[0], err
}

// Run executes queries in order. A failed query is reported and skipped;
// an output failure or a cancelled context stops the run. Records already
// written by an earlier query in the same run are not written again.
func (p *Pipeline) Run(ctx context.Context, queries []model.Query) ([]Report, error) {
	reports := make([]Report, len(queries))
	seen := make(map[string]struct{})
	var errs []error

	for i, q := range queries {
		rep := &reports[i]
		rep.Query = q

		if err := ctx.Err(); err != nil {
			rep.Err = err
			return reports, err
		}

		res, err := p.fetcher.Fetch(ctx, q)
		if err != nil {
			rep.Err = err
			if ctx.Err() != nil {
				return reports, err
			}
			slog.Warn("query failed", "lawyer", q.LawyerName, "error", err)
			errs = append(errs, fmt.Errorf("query %d (%s): %w", i, q.LawyerName, err))
			continue
		}
		rep.Source = res.Source
		rep.Stale = res.Stale

		fresh := make([]model.NotificationRecord, 0, len(res.Records))
		for _, rec := range res.Records {
			k := p.key(rec)
			if _, dup := seen[k]; dup {
				rep.Duplicates++
				continue
			}
			seen[k] = struct{}{}
			fresh = append(fresh, rec)
		}

		if err := output.WriteAll(ctx, p.output, fresh); err != nil {
			rep.Err = err
			return reports, fmt.Errorf("pipeline output: %w", err)
		}
		rep.Records = len(fresh)
		rep.Tokens = compactor.EstimateRecordTokens(fresh)

		slog.Info("query complete",
			"lawyer", q.LawyerName,
			"source", res.Source,
			"stale", res.Stale,
			"records", rep.Records,
			"duplicates", rep.Duplicates,
			"est_tokens", rep.Tokens,
		)
	}
	return reports, errors.Join(errs...)
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}
