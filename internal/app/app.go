// Package app assembles the adapter stack from configuration.
package app

import (
	"fmt"

	"github.com/crimson-sun/djenbridge/internal/adapter"
	"github.com/crimson-sun/djenbridge/internal/admission"
	"github.com/crimson-sun/djenbridge/internal/breaker"
	"github.com/crimson-sun/djenbridge/internal/cache"
	"github.com/crimson-sun/djenbridge/internal/config"
	"github.com/crimson-sun/djenbridge/internal/connector"
	"github.com/crimson-sun/djenbridge/internal/engine"
	"github.com/crimson-sun/djenbridge/internal/engine/classifier"
	"github.com/crimson-sun/djenbridge/internal/engine/compactor"
	"github.com/crimson-sun/djenbridge/internal/engine/dedup"
	"github.com/crimson-sun/djenbridge/internal/engine/inference"
	"github.com/crimson-sun/djenbridge/internal/engine/normalizer"
	"github.com/crimson-sun/djenbridge/internal/engine/taxonomy"
	"github.com/crimson-sun/djenbridge/internal/model"

	// Register connector implementations.
	_ "github.com/crimson-sun/djenbridge/internal/connector/djen"
	_ "github.com/crimson-sun/djenbridge/internal/connector/static"
)

// App holds the assembled components.
type App struct {
	Config   config.Config
	Taxonomy *taxonomy.Taxonomy
	Engine   *engine.Engine
	Adapter  *adapter.Adapter
}

// Build wires the rule table, engine, connector, cache, admission
// controller and breaker into an Adapter. cfg should already be validated.
func Build(cfg config.Config) (*App, error) {
	tax := taxonomy.Default()
	if cfg.Engine.RulesPath != "" {
		t, err := taxonomy.Load(cfg.Engine.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		tax = t
	}

	eng := NewEngine(tax, cfg.Engine.ParsedVerbosity())

	ctor, err := connector.Get(cfg.Connector.Provider)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	threshold := cfg.Breaker.FailureThreshold
	if threshold < 1 {
		threshold = 1
	}

	a := adapter.New(adapter.Config{
		Connector: ctor(),
		ConnectorConfig: connector.ConnectorConfig{
			Provider:    cfg.Connector.Provider,
			APIKey:      cfg.Connector.APIKey,
			Endpoint:    cfg.Connector.Endpoint,
			Timeout:     cfg.Connector.Timeout,
			MaxRetries:  cfg.Connector.MaxRetries,
			BackoffBase: cfg.Connector.BackoffBase,
			Extra:       cfg.Connector.Extra,
		},
		Engine: eng,
		Cache: cache.New(cache.Config{
			FreshTTL:     cfg.Cache.FreshTTL,
			HistoricTTL:  cfg.Cache.HistoricTTL,
			StaleHorizon: cfg.Cache.StaleHorizon,
			Location:     cfg.Cache.Location(),
		}),
		Admission: admission.New(admission.Config{
			PerMinute: cfg.Admission.PerMinute,
			PerHour:   cfg.Admission.PerHour,
			IdleTTL:   cfg.Admission.IdleTTL,
		}),
		Breaker: breaker.New[[]model.RawNotification](breaker.Config{
			Name:             "djen-upstream",
			FailureThreshold: uint32(threshold),
			CoolDown:         cfg.Breaker.CoolDown,
		}),
		FetchTimeout: cfg.Adapter.FetchTimeout,
		MockFallback: cfg.Adapter.MockFallback,
	})

	return &App{Config: cfg, Taxonomy: tax, Engine: eng, Adapter: a}, nil
}

// NewEngine builds the normalize → classify → infer → dedup engine.
func NewEngine(tax *taxonomy.Taxonomy, v compactor.Verbosity) *engine.Engine {
	cls := classifier.New(tax)
	nrm := normalizer.New(cls, compactor.New(v))
	return engine.New(nrm, inference.New(tax), dedup.New(dedup.Config{}))
}
