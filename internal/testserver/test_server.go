// Package testserver starts the full HTTP stack (REST plus MCP) against an
// in-memory database for end-to-end tests.
package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projtrack/internal/domain/activity"
	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/rpggio/projtrack/internal/domain/session"
	"github.com/rpggio/projtrack/internal/mcp"
	"github.com/rpggio/projtrack/internal/metrics"
	"github.com/rpggio/projtrack/internal/sqlite"
	"github.com/rpggio/projtrack/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Sessions *session.Manager
	Metrics  *metrics.Metrics
}

// New starts a server whose sessions default to the given registry settings.
func New(t *testing.T, defaults session.Defaults) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	manager := session.NewManager(sqlite.NewSessionRepository(db), activitySvc, defaults, nil)
	projectSvc := project.NewService(manager, activitySvc, nil)
	m := metrics.New(manager.Count)

	services := mcp.Services{
		Projects: projectSvc,
		Sessions: manager,
		Activity: activitySvc,
	}
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		TransportMode: "http",
		Metrics:       m,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)

	server := httptest.NewServer(transport.NewServer(transport.Config{
		Services: services,
		MCP:      mcpHandler,
		Metrics:  m,
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		Sessions: manager,
		Metrics:  m,
	}
}

// URL joins path onto the server address.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}
