package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/projtrack/internal/domain/session"
	"github.com/rpggio/projtrack/internal/repository"
)

// SessionRepository implements repository.SessionRepository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records a new session. Reopening a closed session id reactivates its row.
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	query := `
		INSERT INTO sessions (
			id, variant, id_policy, status, created_at, last_activity, closed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			variant = excluded.variant,
			id_policy = excluded.id_policy,
			status = excluded.status,
			created_at = excluded.created_at,
			last_activity = excluded.last_activity,
			closed_at = excluded.closed_at
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		sess.Variant,
		sess.IDPolicy,
		sess.Status,
		sess.CreatedAt,
		sess.LastActivity,
		sess.ClosedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("session %s: %w", sess.ID, repository.ErrInvalidInput)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	query := `
		SELECT id, variant, id_policy, status, created_at, last_activity, closed_at
		FROM sessions
		WHERE id = ?
	`

	sess, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// Touch bumps the last activity time of an active session
func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_activity = ? WHERE id = ? AND status = ?`,
		at, id, session.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return requireRow(result)
}

// Close marks a session as closed
func (r *SessionRepository) Close(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE sessions
		SET status = ?, closed_at = ?, last_activity = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, session.StatusClosed, at, at, id)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return requireRow(result)
}

// ListActive returns active sessions, most recently used first
func (r *SessionRepository) ListActive(ctx context.Context) ([]session.Session, error) {
	query := `
		SELECT id, variant, id_policy, status, created_at, last_activity, closed_at
		FROM sessions
		WHERE status = 'active'
		ORDER BY last_activity DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*session.Session, error) {
	var sess session.Session
	var closedAt sql.NullTime
	if err := row.Scan(
		&sess.ID,
		&sess.Variant,
		&sess.IDPolicy,
		&sess.Status,
		&sess.CreatedAt,
		&sess.LastActivity,
		&closedAt,
	); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		sess.ClosedAt = &closedAt.Time
	}
	return &sess, nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
