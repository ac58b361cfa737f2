package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rpggio/projtrack/internal/mcp"
)

// ErrorBody is the JSON shape of every REST error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

const codeInternal = "INTERNAL"

func statusFor(code string) int {
	switch code {
	case "VALIDATION_ERROR":
		return http.StatusUnprocessableEntity
	case "PARSE_ERROR", "SORT_UNSUPPORTED":
		return http.StatusBadRequest
	case "NOT_FOUND", "SESSION_NOT_FOUND":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors to the same codes the MCP tools use.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	apiErr := mcp.MapError(err)
	if apiErr == nil {
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Code: codeInternal, Message: "internal error"})
		return
	}
	writeJSON(w, statusFor(apiErr.Code), ErrorBody{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	})
}
