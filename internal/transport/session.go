package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/rpggio/projtrack/internal/domain/session"
)

type sessionKey struct{}

// SessionIDFromContext returns the session ID from context, falling back to
// the default session.
func SessionIDFromContext(ctx context.Context) string {
	if sessionID, ok := ctx.Value(sessionKey{}).(string); ok && sessionID != "" {
		return sessionID
	}
	return session.DefaultID
}

// SessionMiddleware extracts X-Session-Id (or Mcp-Session-Id) and stores it in context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.Header.Get("X-Session-Id"))
		if sessionID == "" {
			sessionID = strings.TrimSpace(r.Header.Get("Mcp-Session-Id"))
		}
		if sessionID != "" {
			ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}
