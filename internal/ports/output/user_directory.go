package output

import (
	"context"

	"eventplanner/internal/domain/entities"
)

// UserDirectory resolves users for display names and notification targets.
type UserDirectory interface {
	// FindByKey reports false when no such user exists.
	FindByKey(ctx context.Context, key entities.UserKey) (entities.UserDetails, bool, error)
}
