package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// trafficLoggingMiddleware logs each MCP message at debug level. Tool calls
// also carry the tool name and, when present, the project id they target.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			params := safeParams(req)
			attrs := []any{
				"direction", direction,
				"method", method,
				"transport_session", safeSessionID(req),
			}
			if call, ok := params.(*sdkmcp.CallToolParamsRaw); ok && call != nil {
				target := toolTargetOf(call.Arguments)
				attrs = append(attrs, "tool", call.Name)
				attrs = append(attrs, "session_id", resolveSessionID(ctx, target.SessionID))
				if target.ID != nil {
					attrs = append(attrs, "project_id", *target.ID)
				}
			} else {
				attrs = append(attrs, "session_id", getSessionID(ctx))
			}

			logger.Debug("mcp request", append(attrs, "params", formatPayload(params))...)

			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			} else if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil && res.IsError {
				attrs = append(attrs, "tool_error", true)
			}
			logger.Debug("mcp response", append(attrs, "result", formatPayload(result))...)
			return result, err
		}
	}
}

// toolTarget holds the arguments shared by the project tools.
type toolTarget struct {
	SessionID string `json:"session_id"`
	ID        *int64 `json:"id"`
}

func toolTargetOf(args json.RawMessage) toolTarget {
	var target toolTarget
	if len(args) > 0 {
		_ = json.Unmarshal(args, &target)
	}
	return target
}

func safeSessionID(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	defer func() { recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) any {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
