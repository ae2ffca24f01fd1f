package dedup

import "github.com/crimson-sun/djenbridge/internal/model"

// KeyFunc extracts the identity a record is deduplicated on.
type KeyFunc func(model.NotificationRecord) string

// ByCaseNumber is the default identity.
func ByCaseNumber(r model.NotificationRecord) string { return r.CaseNumber }

// Config controls deduplication behavior.
type Config struct {
	Key KeyFunc // defaults to ByCaseNumber
}

// Deduplicator drops repeated records within a batch.
type Deduplicator struct {
	key KeyFunc
}

// New creates a Deduplicator with the given config.
func New(cfg Config) *Deduplicator {
	if cfg.Key == nil {
		cfg.Key = ByCaseNumber
	}
	return &Deduplicator{key: cfg.Key}
}

// DeduplicateBatch keeps the first occurrence of each key and preserves the
// order of the survivors. It also reports how many records were dropped.
func (d *Deduplicator) DeduplicateBatch(records []model.NotificationRecord) ([]model.NotificationRecord, int) {
	if len(records) == 0 {
		return nil, 0
	}

	seen := make(map[string]struct{}, len(records))
	result := make([]model.NotificationRecord, 0, len(records))
	for _, r := range records {
		k := d.key(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, r)
	}
	return result, len(records) - len(result)
}
