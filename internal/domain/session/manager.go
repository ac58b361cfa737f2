package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/projtrack/internal/domain/activity"
	"github.com/rpggio/projtrack/internal/domain/project"
)

// Defaults configure sessions opened implicitly or without explicit options.
type Defaults struct {
	Variant  project.Variant
	IDPolicy project.IDPolicy
}

type liveSession struct {
	sess Session
	reg  *project.Registry
}

// Manager owns the registry of every live session.
type Manager struct {
	repo       Repository
	activities ActivityLogger
	defaults   Defaults
	logger     *slog.Logger
	now        func() time.Time

	mu   sync.Mutex
	live map[string]*liveSession
}

// NewManager creates a session manager. repo, activities and logger may be nil.
func NewManager(repo Repository, activities ActivityLogger, defaults Defaults, logger *slog.Logger) *Manager {
	if defaults.Variant == "" {
		defaults.Variant = project.VariantFull
	}
	if defaults.IDPolicy == "" {
		defaults.IDPolicy = project.IDSequence
	}
	return &Manager{
		repo:       repo,
		activities: activities,
		defaults:   defaults,
		logger:     logger,
		now:        time.Now,
		live:       make(map[string]*liveSession),
	}
}

// Defaults returns the variant and policy used for implicit sessions.
func (m *Manager) Defaults() Defaults {
	return m.defaults
}

// Open starts a session with an empty registry. A blank ID gets a new uuid.
func (m *Manager) Open(ctx context.Context, req OpenRequest) (*Session, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	variant := req.Variant
	if variant == "" {
		variant = m.defaults.Variant
	}
	policy := req.IDPolicy
	if policy == "" {
		policy = m.defaults.IDPolicy
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.live[id]; exists {
		return nil, fmt.Errorf("session %s already open: %w", id, ErrInvalidInput)
	}
	ls, err := m.openLocked(ctx, id, variant, policy)
	if err != nil {
		return nil, err
	}
	out := ls.sess
	return &out, nil
}

func (m *Manager) openLocked(ctx context.Context, id string, variant project.Variant, policy project.IDPolicy) (*liveSession, error) {
	now := m.now()
	ls := &liveSession{
		sess: Session{
			ID:           id,
			Variant:      variant,
			IDPolicy:     policy,
			Status:       StatusActive,
			CreatedAt:    now,
			LastActivity: now,
		},
		reg: project.NewRegistry(variant, project.WithIDPolicy(policy)),
	}
	if m.repo != nil {
		if err := m.repo.Create(ctx, &ls.sess); err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
	}
	m.live[id] = ls

	if m.logger != nil {
		m.logger.Info("session opened", "session_id", id, "variant", variant, "id_policy", policy)
	}
	m.notify(ctx, id, activity.TypeSessionOpened, fmt.Sprintf("Session started (%s tracker)", variant))
	return ls, nil
}

// Registry returns the session's registry, starting the session with the
// default variant on first use.
func (m *Manager) Registry(ctx context.Context, sessionID string) (*project.Registry, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		id = DefaultID
	}

	m.mu.Lock()
	ls, ok := m.live[id]
	if !ok {
		var err error
		ls, err = m.openLocked(ctx, id, m.defaults.Variant, m.defaults.IDPolicy)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
	}
	now := m.now()
	ls.sess.LastActivity = now
	m.mu.Unlock()

	if ok && m.repo != nil {
		if err := m.repo.Touch(ctx, id, now); err != nil && m.logger != nil {
			m.logger.Warn("failed to touch session", "session_id", id, "error", err)
		}
	}
	return ls.reg, nil
}

// Get returns a live session.
func (m *Manager) Get(_ context.Context, sessionID string) (*SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ls, ok := m.live[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &SessionInfo{Session: ls.sess, Projects: ls.reg.Len()}, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// List returns every live session, oldest first.
func (m *Manager) List(_ context.Context) []SessionInfo {
	m.mu.Lock()
	out := make([]SessionInfo, 0, len(m.live))
	for _, ls := range m.live {
		out = append(out, SessionInfo{Session: ls.sess, Projects: ls.reg.Len()})
	}
	m.mu.Unlock()

	slices.SortFunc(out, func(a, b SessionInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Close ends a session and drops its registry.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	_, ok := m.live[sessionID]
	delete(m.live, sessionID)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if m.repo != nil {
		if err := m.repo.Close(ctx, sessionID, m.now()); err != nil {
			return fmt.Errorf("closing session: %w", err)
		}
	}
	if m.logger != nil {
		m.logger.Info("session closed", "session_id", sessionID)
	}
	m.notify(ctx, sessionID, activity.TypeSessionClosed, "Session closed")
	return nil
}

// CloseStale marks sessions left active by an earlier process as closed.
// Their registries did not survive the restart.
func (m *Manager) CloseStale(ctx context.Context) (int, error) {
	if m.repo == nil {
		return 0, nil
	}
	active, err := m.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing active sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	closed := 0
	for _, sess := range active {
		if _, live := m.live[sess.ID]; live {
			continue
		}
		if err := m.repo.Close(ctx, sess.ID, m.now()); err != nil {
			return closed, fmt.Errorf("closing session %s: %w", sess.ID, err)
		}
		closed++
	}
	if closed > 0 && m.logger != nil {
		m.logger.Info("closed stale sessions", "count", closed)
	}
	return closed, nil
}

func (m *Manager) notify(ctx context.Context, sessionID string, typ activity.ActivityType, summary string) {
	if m.activities == nil {
		return
	}
	err := m.activities.LogActivity(ctx, &activity.ActivityEntry{
		SessionID:    sessionID,
		ActivityType: typ,
		Level:        activity.LevelInfo,
		Summary:      summary,
	})
	if err != nil && m.logger != nil {
		m.logger.Warn("failed to log activity", "session_id", sessionID, "type", typ, "error", err)
	}
}
