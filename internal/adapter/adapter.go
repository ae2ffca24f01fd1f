// Package adapter is the single entry point for notification queries. It
// validates the query, applies admission control, serves fresh cache hits,
// and otherwise runs one breaker-gated upstream fetch per fingerprint,
// falling back to retained or canned data when upstream is unavailable.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/crimson-sun/djenbridge/internal/admission"
	"github.com/crimson-sun/djenbridge/internal/breaker"
	"github.com/crimson-sun/djenbridge/internal/cache"
	"github.com/crimson-sun/djenbridge/internal/connector"
	"github.com/crimson-sun/djenbridge/internal/engine"
	"github.com/crimson-sun/djenbridge/internal/engine/textnorm"
	"github.com/crimson-sun/djenbridge/internal/metrics"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// Source says where a Result's records came from.
type Source string

const (
	SourceUpstream      Source = "upstream"
	SourceCache         Source = "cache"
	SourceFallbackCache Source = "fallback-cache"
	SourceFallbackMock  Source = "fallback-mock"
)

// Result is a facade answer. Stale is set for every fallback source.
type Result struct {
	Records []model.NotificationRecord
	Stale   bool
	Source  Source
	Age     time.Duration // fallback-cache only: age of the served entry
	FetchID string        // correlation id of the upstream fetch, if one ran
}

// DefaultFetchTimeout bounds a shared upstream fetch, retries and pagination
// included.
const DefaultFetchTimeout = 2 * time.Minute

// Config wires the adapter's collaborators.
type Config struct {
	Connector       connector.Connector
	ConnectorConfig connector.ConnectorConfig
	Engine          *engine.Engine
	Cache           *cache.Cache
	Admission       *admission.Controller
	Breaker         *breaker.Breaker[[]model.RawNotification]
	FetchTimeout    time.Duration
	MockFallback    bool
}

// Adapter is safe for concurrent use.
type Adapter struct {
	conn         connector.Connector
	connCfg      connector.ConnectorConfig
	engine       *engine.Engine
	cache        *cache.Cache
	admission    *admission.Controller
	breaker      *breaker.Breaker[[]model.RawNotification]
	fetchTimeout time.Duration
	mockFallback bool

	group singleflight.Group
}

// New creates an Adapter.
func New(cfg Config) *Adapter {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &Adapter{
		conn:         cfg.Connector,
		connCfg:      cfg.ConnectorConfig,
		engine:       cfg.Engine,
		cache:        cfg.Cache,
		admission:    cfg.Admission,
		breaker:      cfg.Breaker,
		fetchTimeout: cfg.FetchTimeout,
		mockFallback: cfg.MockFallback,
	}
}

type fetchResult struct {
	records []model.NotificationRecord
	fetchID string
}

// Fetch answers q. Errors are *model.InvalidQueryError,
// *model.RateLimitedError, *model.UpstreamUnavailableError, or the context's
// error when ctx ends first. A caller that gives up does not cancel a fetch
// other callers share; it still completes and populates the cache.
// Admission runs before the cache lookup, so cache hits count against the
// client's ceilings too.
func (a *Adapter) Fetch(ctx context.Context, q model.Query) (Result, error) {
	if err := q.Validate(); err != nil {
		metrics.FetchTotal.WithLabelValues("invalid").Inc()
		return Result{}, err
	}
	if err := a.admission.Admit(q.ClientKey); err != nil {
		metrics.FetchTotal.WithLabelValues("rate_limited").Inc()
		return Result{}, err
	}

	key := cache.Fingerprint(q)
	if records, ok := a.cache.Get(key); ok {
		metrics.FetchTotal.WithLabelValues(string(SourceCache)).Inc()
		return Result{Records: records, Source: SourceCache}, nil
	}

	var led bool
	ch := a.group.DoChan(key, func() (any, error) {
		led = true
		return a.fetch(context.WithoutCancel(ctx), q)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res = <-ch:
	}
	if !led {
		metrics.CoalescedTotal.Inc()
	}

	if res.Err == nil {
		fr := res.Val.(fetchResult)
		metrics.FetchTotal.WithLabelValues(string(SourceUpstream)).Inc()
		return Result{
			Records: model.CloneRecords(fr.records),
			Source:  SourceUpstream,
			FetchID: fr.fetchID,
		}, nil
	}

	var iq *model.InvalidQueryError
	if errors.As(res.Err, &iq) {
		metrics.FetchTotal.WithLabelValues("invalid").Inc()
		return Result{}, res.Err
	}
	return a.fallback(q, res.Err)
}

// fetch runs on a context detached from any single caller.
func (a *Adapter) fetch(ctx context.Context, q model.Query) (fetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	fetchID := uuid.NewString()
	log := slog.With("fetch_id", fetchID, "lawyer", q.LawyerName, "date_start", q.DateStart, "date_end", q.DateEnd)
	start := time.Now()

	raws, err := a.breaker.Execute(func() ([]model.RawNotification, error) {
		return a.conn.Query(ctx, a.connCfg, connector.ParamsFromQuery(q))
	})
	if err != nil {
		log.Warn("upstream fetch failed", "error", err, "elapsed", time.Since(start))
		return fetchResult{}, err
	}

	records, stats := a.engine.ProcessBatchFor(raws, q.LawyerName)
	fillLawyer(records, q)
	if records == nil {
		records = []model.NotificationRecord{}
	}
	a.cache.Store(q, records)

	log.Info("upstream fetch complete",
		"raw", stats.Input, "records", len(records),
		"dropped", stats.Dropped, "duplicates", stats.Duplicates,
		"elapsed", time.Since(start))
	return fetchResult{records: records, fetchID: fetchID}, nil
}

func (a *Adapter) fallback(q model.Query, cause error) (Result, error) {
	if e, ok := a.cache.Fallback(q); ok {
		age := e.Age(a.cache.Now())
		slog.Warn("serving stale cache entry", "reason", cause, "age", age, "exact", e.Key == cache.Fingerprint(q))
		metrics.FetchTotal.WithLabelValues(string(SourceFallbackCache)).Inc()
		return Result{Records: e.Records, Stale: true, Source: SourceFallbackCache, Age: age}, nil
	}
	if a.mockFallback {
		rec, err := a.mockRecord(q)
		if err == nil {
			slog.Warn("serving canned fallback record", "reason", cause)
			metrics.FetchTotal.WithLabelValues(string(SourceFallbackMock)).Inc()
			return Result{Records: []model.NotificationRecord{rec}, Stale: true, Source: SourceFallbackMock}, nil
		}
		slog.Error("building canned fallback record", "error", err)
	}
	metrics.FetchTotal.WithLabelValues("error").Inc()
	return Result{}, &model.UpstreamUnavailableError{Err: cause}
}

// MockCaseNumber is the case number of the canned fallback record.
const MockCaseNumber = "1234567-89.2024.8.13.0001"

// mockRecord builds the canned record through the regular engine so it has
// the same shape, type and inferred actions as live data.
func (a *Adapter) mockRecord(q model.Query) (model.NotificationRecord, error) {
	court := q.Court
	if court == "" {
		court = "TJMG"
	}
	rec, err := a.engine.Process(model.RawNotification{
		"numeroProcesso":       MockCaseNumber,
		"tribunal":             court,
		"dataDisponibilizacao": q.DateEnd,
		"nomeAdvogado":         q.LawyerName,
		"numeroOab":            q.OAB,
		"tipoComunicacao":      "Intimação",
		"texto":                fmt.Sprintf("Intimação para ciência de despacho proferido em %s", q.DateStart),
	})
	if err != nil {
		return model.NotificationRecord{}, err
	}
	return rec, nil
}

// fillLawyer sets the queried name on records whose source omitted it.
func fillLawyer(records []model.NotificationRecord, q model.Query) {
	name := textnorm.UpperName(q.LawyerName)
	for i := range records {
		if records[i].LawyerName == "" {
			records[i].LawyerName = name
		}
	}
}

// BreakerState reports the upstream circuit state.
func (a *Adapter) BreakerState() breaker.State { return a.breaker.State() }

// CacheEntries reports retained cache entries.
func (a *Adapter) CacheEntries() int { return a.cache.Len() }
