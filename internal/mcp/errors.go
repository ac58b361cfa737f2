package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/rpggio/projtrack/internal/domain/session"
)

var errToolFailed = errors.New("tool failed")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RecoveryHint != "" {
		msg += " (" + e.RecoveryHint + ")"
	}
	return msg
}

// MapError maps domain errors to MCP error codes. ErrParse is checked first
// because parse errors may also wrap ErrInvalidInput.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var pe *project.ParseError
	switch {
	case errors.As(err, &pe):
		details := map[string]any{"line": pe.Line}
		if pe.Column != "" {
			details["column"] = pe.Column
		}
		return &APIError{Code: "PARSE_ERROR", Message: err.Error(), Details: details, RecoveryHint: "Fix the CSV and import again; nothing was changed"}
	case errors.Is(err, project.ErrParse):
		return &APIError{Code: "PARSE_ERROR", Message: err.Error(), RecoveryHint: "Fix the CSV and import again; nothing was changed"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, project.ErrSortUnsupported):
		return &APIError{Code: "SORT_UNSUPPORTED", Message: err.Error(), RecoveryHint: "Open a session with the full variant to sort"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, session.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call open_session first"}
	default:
		return nil
	}
}

// toolError converts a domain error into the error returned by a tool handler.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
