package session

import (
	"time"

	"github.com/rpggio/projtrack/internal/domain/project"
)

// DefaultID is used when a caller does not name a session.
const DefaultID = "default"

// SessionStatus represents the lifecycle status of a session
type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusClosed SessionStatus = "closed"
)

// Session is one continuous interactive use of the tracker. Its registry
// lives exactly as long as the session.
type Session struct {
	ID           string           `json:"id"`
	Variant      project.Variant  `json:"variant"`
	IDPolicy     project.IDPolicy `json:"id_policy"`
	Status       SessionStatus    `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	LastActivity time.Time        `json:"last_activity"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty"`
}

// SessionInfo is a session plus the current size of its registry.
type SessionInfo struct {
	Session
	Projects int `json:"projects"`
}

// OpenRequest describes a new session. Zero values take the manager defaults.
type OpenRequest struct {
	ID       string
	Variant  project.Variant
	IDPolicy project.IDPolicy
}
