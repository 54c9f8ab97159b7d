package output

import (
	"context"
	"time"

	"eventplanner/internal/domain/entities"
)

// MutateFunc receives the current event and returns its next version. It must
// not modify its argument; returning an error aborts the write.
type MutateFunc func(current entities.Event) (entities.Event, error)

// EventStore persists events together with their slots and registrations.
// Implementations report unknown keys with domain.ErrEventNotFound.
type EventStore interface {
	FindByKey(ctx context.Context, key entities.EventKey) (entities.Event, error)
	FindAllByYear(ctx context.Context, year int, loc *time.Location) ([]entities.Event, error)
	// FindPlannedEndingAfter returns PLANNED events ending after now whose
	// confirmation round counter equals sent.
	FindPlannedEndingAfter(ctx context.Context, now time.Time, sent int) ([]entities.Event, error)
	Create(ctx context.Context, event entities.Event) error
	Update(ctx context.Context, event entities.Event) error
	DeleteByKey(ctx context.Context, key entities.EventKey) error
	// Mutate runs a read-modify-write of one event as a single transaction
	// and returns the stored result.
	Mutate(ctx context.Context, key entities.EventKey, fn MutateFunc) (entities.Event, error)
}
