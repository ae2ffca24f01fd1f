package engine

import (
	"errors"
	"log/slog"

	"github.com/crimson-sun/djenbridge/internal/engine/dedup"
	"github.com/crimson-sun/djenbridge/internal/engine/inference"
	"github.com/crimson-sun/djenbridge/internal/engine/normalizer"
	"github.com/crimson-sun/djenbridge/internal/metrics"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// Engine orchestrates the normalize → classify → infer → dedup pipeline.
type Engine struct {
	normalizer *normalizer.Normalizer
	inferrer   *inference.Inferrer
	dedup      *dedup.Deduplicator
}

// Stats describes what happened to a batch.
type Stats struct {
	Input      int
	Dropped    int // failed normalization
	Duplicates int
}

// New creates an Engine with the provided components.
func New(nrm *normalizer.Normalizer, inf *inference.Inferrer, dd *dedup.Deduplicator) *Engine {
	return &Engine{
		normalizer: nrm,
		inferrer:   inf,
		dedup:      dd,
	}
}

// Process normalizes one raw notification and fills in deadline and actions.
func (e *Engine) Process(raw model.RawNotification) (model.NotificationRecord, error) {
	return e.process(raw, "")
}

func (e *Engine) process(raw model.RawNotification, party string) (model.NotificationRecord, error) {
	rec, err := e.normalizer.NormalizeFor(raw, party)
	if err != nil {
		return model.NotificationRecord{}, err
	}
	e.inferrer.Apply(&rec)
	return rec, nil
}

// ProcessBatch processes every raw notification. A record that fails
// normalization is logged and dropped without affecting the others.
// Survivors are deduplicated by case number, first occurrence winning.
func (e *Engine) ProcessBatch(raws []model.RawNotification) ([]model.NotificationRecord, Stats) {
	return e.ProcessBatchFor(raws, "")
}

// ProcessBatchFor is ProcessBatch for records fetched on behalf of party,
// which selects the lawyer reported on multi-lawyer records.
func (e *Engine) ProcessBatchFor(raws []model.RawNotification, party string) ([]model.NotificationRecord, Stats) {
	stats := Stats{Input: len(raws)}
	if len(raws) == 0 {
		return nil, stats
	}

	records := make([]model.NotificationRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := e.process(raw, party)
		if err != nil {
			stats.Dropped++
			reason := dropReason(err)
			metrics.RecordsDroppedTotal.WithLabelValues(reason).Inc()
			slog.Warn("dropping notification", "index", i, "reason", reason, "error", err)
			continue
		}
		records = append(records, rec)
	}

	records, stats.Duplicates = e.dedup.DeduplicateBatch(records)
	if stats.Duplicates > 0 {
		metrics.RecordsDroppedTotal.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
		slog.Debug("collapsed duplicate case numbers", "count", stats.Duplicates)
	}
	return records, stats
}

func dropReason(err error) string {
	var missing *model.MissingFieldError
	var malformed *model.MalformedFieldError
	switch {
	case errors.As(err, &missing):
		return "missing_field"
	case errors.As(err, &malformed):
		return "malformed_field"
	default:
		return "other"
	}
}
