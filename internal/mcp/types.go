package mcp

import (
	"time"

	"github.com/rpggio/projtrack/internal/domain/activity"
	"github.com/rpggio/projtrack/internal/domain/session"
	"github.com/rpggio/projtrack/internal/view"
)

// ===== SESSION TOOLS =====

type OpenSessionParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id to open (generated when omitted)"`
	Variant   string `json:"variant,omitempty" jsonschema:"Tracker variant: basic, priority or full (default from server config)"`
	IDPolicy  string `json:"id_policy,omitempty" jsonschema:"Id assignment: sequence or legacy (default from server config)"`
}

type SessionParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
}

type SessionResponse struct {
	SessionID    string `json:"session_id"`
	Variant      string `json:"variant"`
	IDPolicy     string `json:"id_policy"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	LastActivity string `json:"last_activity"`
	Projects     int    `json:"projects"`
}

type CloseSessionResponse struct {
	SessionID string `json:"session_id"`
	Closed    bool   `json:"closed"`
}

func sessionResponse(sess session.Session, projects int) SessionResponse {
	return SessionResponse{
		SessionID:    sess.ID,
		Variant:      string(sess.Variant),
		IDPolicy:     string(sess.IDPolicy),
		Status:       string(sess.Status),
		CreatedAt:    sess.CreatedAt.UTC().Format(time.RFC3339),
		LastActivity: sess.LastActivity.UTC().Format(time.RFC3339),
		Projects:     projects,
	}
}

// ===== PROJECT TOOLS =====

type ListProjectsParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	Status    string `json:"status,omitempty" jsonschema:"Status filter: all, not_started, in_progress or completed"`
	Sort      string `json:"sort,omitempty" jsonschema:"Sort key: start_date or end_date (full variant only)"`
}

type ListProjectsResponse struct {
	Projects []view.Project `json:"projects"`
	Count    int            `json:"count"`
}

type ProjectIDParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	ID        int64  `json:"id" jsonschema:"Project id"`
}

type CreateProjectParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	view.CreateInput
}

type UpdateProjectParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	ID        int64  `json:"id" jsonschema:"Project id"`
	view.PatchInput
}

type UpdateStatusParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	ID        int64  `json:"id" jsonschema:"Project id"`
	Status    string `json:"status" jsonschema:"New status: not_started, in_progress or completed"`
}

type SetAttachmentParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	ID        int64  `json:"id" jsonschema:"Project id"`
	Filename  string `json:"filename" jsonschema:"Attachment file name; the content is never stored"`
}

type DeleteProjectParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	ID        int64  `json:"id" jsonschema:"Project id; every project with this id is removed"`
	Strict    bool   `json:"strict,omitempty" jsonschema:"Fail with NOT_FOUND when nothing matched"`
}

type RemovedResponse struct {
	Removed int `json:"removed"`
}

type ProjectResponse struct {
	Project view.Project `json:"project"`
	Message string       `json:"message,omitempty"`
}

// ===== CSV TOOLS =====

type ExportCSVResponse struct {
	CSV string `json:"csv"`
}

type ImportCSVParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	CSV       string `json:"csv" jsonschema:"CSV payload with a header row matching the session variant"`
}

type ImportCSVResponse struct {
	Imported int `json:"imported"`
}

// ===== ACTIVITY TOOLS =====

type GetRecentActivityParams struct {
	SessionID    string `json:"session_id,omitempty" jsonschema:"Session id (defaults to the transport session)"`
	ProjectID    *int64 `json:"project_id,omitempty" jsonschema:"Only entries about this project"`
	ActivityType string `json:"activity_type,omitempty" jsonschema:"Only entries of this type"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Maximum entries (default 20)"`
	Offset       int    `json:"offset,omitempty" jsonschema:"Entries to skip"`
}

type ActivityView struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	ProjectID *int64 `json:"project_id,omitempty"`
	Type      string `json:"type"`
	Level     string `json:"level"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

type ActivityResponse struct {
	Entries []ActivityView `json:"entries"`
}

func activityViews(entries []activity.ActivityEntry) []ActivityView {
	out := make([]ActivityView, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityView{
			ID:        e.ID,
			SessionID: e.SessionID,
			ProjectID: e.ProjectID,
			Type:      string(e.ActivityType),
			Level:     string(e.Level),
			Summary:   e.Summary,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
