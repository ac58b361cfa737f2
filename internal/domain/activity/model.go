package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated   ActivityType = "project_created"
	TypeProjectUpdated   ActivityType = "project_updated"
	TypeStatusChanged    ActivityType = "status_changed"
	TypeProjectDeleted   ActivityType = "project_deleted"
	TypeProjectsCleared  ActivityType = "projects_cleared"
	TypeProjectsExported ActivityType = "projects_exported"
	TypeProjectsImported ActivityType = "projects_imported"
	TypeImportFailed     ActivityType = "import_failed"
	TypeAttachmentSet    ActivityType = "attachment_set"
	TypeSessionOpened    ActivityType = "session_opened"
	TypeSessionClosed    ActivityType = "session_closed"
)

// Level is the severity shown next to a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// ActivityEntry represents a user-visible notification in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	SessionID    string       `json:"session_id"`
	ProjectID    *int64       `json:"project_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Level        Level        `json:"level"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
