package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/djenbridge/internal/model"
	"github.com/crimson-sun/djenbridge/internal/output"
)

// Multi fans out records to several destinations. A failing destination
// does not stop delivery to the others.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over the given outputs. Nil outputs are skipped so
// callers can pass optional destinations directly.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len reports how many destinations are attached.
func (m *Multi) Len() int { return len(m.outputs) }

// Write delivers the record to every output and joins their errors.
func (m *Multi) Write(ctx context.Context, rec model.NotificationRecord) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
