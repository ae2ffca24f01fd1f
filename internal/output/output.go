package output

import (
	"context"
	"fmt"

	"github.com/crimson-sun/djenbridge/internal/model"
)

// Output defines the interface for notification record destinations.
type Output interface {
	Write(ctx context.Context, rec model.NotificationRecord) error
	Close() error
}

// WriteAll writes records in order and stops at the first failure.
func WriteAll(ctx context.Context, o Output, records []model.NotificationRecord) error {
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.Write(ctx, rec); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, rec.CaseNumber, err)
		}
	}
	return nil
}
