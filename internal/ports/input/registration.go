package input

import (
	"context"

	"eventplanner/internal/domain/entities"
)

// RegistrationSpec describes a sign-up. Exactly one of User and Name is set.
type RegistrationSpec struct {
	Position entities.PositionKey
	User     entities.UserKey
	Name     string
	Note     string
}

// UpdateRegistrationSpec is a partial update of a registration.
type UpdateRegistrationSpec struct {
	Position  *entities.PositionKey
	Name      *string
	Note      *string
	Confirmed *bool
}

type RegistrationUseCase interface {
	AddRegistration(ctx context.Context, caller entities.SignedInUser, eventKey entities.EventKey, spec RegistrationSpec) (entities.Event, error)
	UpdateRegistration(ctx context.Context, caller entities.SignedInUser, eventKey entities.EventKey, registrationKey entities.RegistrationKey, spec UpdateRegistrationSpec) (entities.Event, error)
	RemoveRegistration(ctx context.Context, caller entities.SignedInUser, eventKey entities.EventKey, registrationKey entities.RegistrationKey) (entities.Event, error)
}
