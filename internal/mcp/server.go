package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projtrack/internal/domain/activity"
	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/rpggio/projtrack/internal/domain/session"
	"github.com/rpggio/projtrack/internal/metrics"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Query(ctx context.Context, sessionID string, opts project.ListOptions) ([]project.Project, error)
	Get(ctx context.Context, sessionID string, id int64) (*project.Project, error)
	Create(ctx context.Context, sessionID string, req project.CreateRequest) (*project.Project, error)
	Update(ctx context.Context, sessionID string, id int64, patch project.Patch) (*project.Project, error)
	UpdateStatus(ctx context.Context, sessionID string, id int64, status project.Status) (*project.Project, error)
	SetAttachment(ctx context.Context, sessionID string, id int64, filename string) (*project.Project, error)
	Delete(ctx context.Context, sessionID string, id int64) (int, error)
	DeleteStrict(ctx context.Context, sessionID string, id int64) (int, error)
	ClearAll(ctx context.Context, sessionID string) (int, error)
	Export(ctx context.Context, sessionID string) ([]byte, error)
	Import(ctx context.Context, sessionID string, data []byte) (int, error)
}

// SessionService defines session operations needed by MCP.
type SessionService interface {
	Open(ctx context.Context, req session.OpenRequest) (*session.Session, error)
	Get(ctx context.Context, sessionID string) (*session.SessionInfo, error)
	Close(ctx context.Context, sessionID string) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Sessions SessionService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	Version       string
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "projtrack",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Session resolution runs first so the later middleware see the session id.
	server.AddReceivingMiddleware(
		sessionMiddleware(session.DefaultID),
		trafficLoggingMiddleware(cfg.Logger, "inbound"),
		metricsMiddleware(cfg.Metrics),
	)
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
