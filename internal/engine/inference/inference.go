// Package inference derives the nominal deadline and suggested actions of a
// notification from its type. It is a pure table lookup with no clock
// arithmetic.
package inference

import (
	"github.com/crimson-sun/djenbridge/internal/engine/taxonomy"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// Undetermined is reported for types whose table entry has no deadline.
const Undetermined = "not determined"

// Inferrer reads deadlines and actions from a taxonomy.
type Inferrer struct {
	tax *taxonomy.Taxonomy
}

// New creates an Inferrer over tax.
func New(tax *taxonomy.Taxonomy) *Inferrer {
	return &Inferrer{tax: tax}
}

// Infer returns the deadline text and a fresh copy of the action list for typ.
// Types outside the table resolve through the catch-all entry.
func (i *Inferrer) Infer(typ model.NotificationType) (deadline string, actions []string) {
	e, ok := i.tax.Lookup(typ)
	if !ok {
		e, _ = i.tax.Lookup(i.tax.CatchAll())
	}
	deadline = e.Deadline
	if deadline == "" {
		deadline = Undetermined
	}
	return deadline, append([]string{}, e.Actions...)
}

// Apply fills rec's Deadline and Actions from its Type.
func (i *Inferrer) Apply(rec *model.NotificationRecord) {
	rec.Deadline, rec.Actions = i.Infer(rec.Type)
}
