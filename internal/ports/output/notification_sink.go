package output

import (
	"context"

	"eventplanner/internal/domain/entities"
)

// NotificationSink delivers rendered notifications. Callers treat delivery as
// fire-and-forget and only log a returned error.
type NotificationSink interface {
	Dispatch(ctx context.Context, notification entities.Notification) error
}
