package output

import (
	"github.com/crimson-sun/djenbridge/internal/engine/compactor"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// FormatRecord returns a copy of the record with fields stripped according to verbosity.
// At Minimal: URL and OAB are cleared (omitted from JSON via omitempty).
// At Standard/Full: all fields preserved.
func FormatRecord(r model.NotificationRecord, verbosity compactor.Verbosity) model.NotificationRecord {
	r = r.Clone()
	if verbosity == compactor.Minimal {
		r.URL = ""
		r.OAB = ""
	}
	return r
}
