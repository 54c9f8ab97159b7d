package input

import (
	"context"

	"eventplanner/internal/domain/entities"
)

// ConfirmationUseCase is the access-key driven participation workflow.
type ConfirmationUseCase interface {
	ConfirmRegistration(ctx context.Context, eventKey entities.EventKey, registrationKey entities.RegistrationKey, accessKey string) error
	DeclineRegistration(ctx context.Context, eventKey entities.EventKey, registrationKey entities.RegistrationKey, accessKey, reason string) error
	SendConfirmationRequests(ctx context.Context) error
	SendConfirmationReminders(ctx context.Context) error
}
