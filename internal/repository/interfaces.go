package repository

import (
	"context"
	"time"

	"github.com/rpggio/projtrack/internal/domain/activity"
	"github.com/rpggio/projtrack/internal/domain/session"
)

// SessionRepository manages session lifecycle metadata
type SessionRepository interface {
	Create(ctx context.Context, sess *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Close(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context) ([]session.Session, error)
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

var (
	_ session.Repository  = (SessionRepository)(nil)
	_ activity.Repository = (ActivityRepository)(nil)
)
