package input

import (
	"context"
	"time"

	"eventplanner/internal/domain/entities"
)

// CreateEventSpec describes a new event. Slots without a key get one.
type CreateEventSpec struct {
	Name        string
	Note        string
	Description string
	Start       time.Time
	End         time.Time
	Locations   []entities.Location
	Slots       []entities.Slot
}

// UpdateEventSpec is a partial update: nil fields are left unchanged, a
// non-nil pointer to an empty value clears the field.
type UpdateEventSpec struct {
	Name        *string
	State       *entities.EventState
	Note        *string
	Description *string
	Start       *time.Time
	End         *time.Time
	Locations   *[]entities.Location
	Slots       *[]entities.Slot
}

type EventUseCase interface {
	GetByKey(ctx context.Context, caller entities.SignedInUser, key entities.EventKey) (entities.Event, error)
	ListByYear(ctx context.Context, caller entities.SignedInUser, year int) ([]entities.Event, error)
	Create(ctx context.Context, caller entities.SignedInUser, spec CreateEventSpec) (entities.Event, error)
	UpdateDetails(ctx context.Context, caller entities.SignedInUser, key entities.EventKey, spec UpdateEventSpec) (entities.Event, error)
	SetSlots(ctx context.Context, caller entities.SignedInUser, key entities.EventKey, slots []entities.Slot) (entities.Event, error)
	Delete(ctx context.Context, caller entities.SignedInUser, key entities.EventKey) error
}
