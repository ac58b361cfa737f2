package project

import (
	"context"

	"github.com/rpggio/projtrack/internal/domain/activity"
)

// RegistryProvider resolves the registry owned by a session.
type RegistryProvider interface {
	Registry(ctx context.Context, sessionID string) (*Registry, error)
}

// ActivityLogger records user-visible notifications.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
