package session

import (
	"context"
	"time"

	"github.com/rpggio/projtrack/internal/domain/activity"
)

// Repository records session lifecycle metadata. Registries themselves are
// never persisted.
type Repository interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Close(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context) ([]Session, error)
}

// ActivityLogger records user-visible notifications.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
