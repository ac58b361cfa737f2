package mcp

import (
	"context"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projtrack/internal/metrics"
)

type contextKey int

const (
	sessionIDKey contextKey = iota
)

// getSessionID extracts session ID from context.
func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// resolveSessionID prefers an explicit tool argument over the transport session.
func resolveSessionID(ctx context.Context, arg string) string {
	if arg = strings.TrimSpace(arg); arg != "" {
		return arg
	}
	return getSessionID(ctx)
}

// sessionMiddleware extracts session ID from Mcp-Session-Id header (HTTP) or metadata (stdio).
func sessionMiddleware(fallback string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var sessionID string

			// Try HTTP header first (HTTP transport)
			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				sessionID = extra.Header.Get("Mcp-Session-Id")
			}

			// Some notifications (like "initialized") have nil params.
			if sessionID == "" {
				if params := req.GetParams(); params != nil {
					// GetMeta panics on a nil underlying value
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if sid, ok := meta["session_id"].(string); ok {
								sessionID = sid
							}
						}
					}()
				}
			}

			if sessionID == "" {
				sessionID = fallback
			}
			ctx = context.WithValue(ctx, sessionIDKey, sessionID)

			return next(ctx, method, req)
		}
	}
}

// metricsMiddleware counts tool calls by tool name and outcome.
func metricsMiddleware(m *metrics.Metrics) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if m == nil || method != "tools/call" {
				return next(ctx, method, req)
			}

			name := method
			if params, ok := req.GetParams().(*sdkmcp.CallToolParamsRaw); ok && params != nil {
				name = params.Name
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			failed := err
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil && res.IsError && failed == nil {
				failed = errToolFailed
			}
			m.Observe("mcp", name, failed, time.Since(start))
			return result, err
		}
	}
}
