package mcp

import (
	"context"
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projtrack/internal/domain/activity"
	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/rpggio/projtrack/internal/domain/session"
	"github.com/rpggio/projtrack/internal/metrics"
	"github.com/rpggio/projtrack/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	client  *sdkmcp.ClientSession
	manager *session.Manager
}

func newTestEnv(t *testing.T, defaults session.Defaults) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, defaults, nil)
}

func newTestEnvWithLogger(t *testing.T, defaults session.Defaults, logger *slog.Logger) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	manager := session.NewManager(sqlite.NewSessionRepository(db), activitySvc, defaults, nil)
	projects := project.NewService(manager, activitySvc, nil)

	server := NewServer(Config{
		Services: Services{
			Projects: projects,
			Sessions: manager,
			Activity: activitySvc,
		},
		TransportMode: "stdio",
		Metrics:       metrics.New(manager.Count),
		Logger:        logger,
	})

	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return &testEnv{client: cs, manager: manager}
}

func (e *testEnv) call(t *testing.T, name string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := e.client.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return res
}

func (e *testEnv) mustCall(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	res := e.call(t, name, args, out)
	require.False(t, res.IsError, "%s failed: %s", name, resultText(res))
}

func resultText(res *sdkmcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestTools_CreateListAndDefaultSession(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})

	var created ProjectResponse
	env.mustCall(t, "create_project", map[string]any{
		"name":       "Alpha",
		"start_date": "2024-03-01",
		"status":     "In Progress",
		"priority":   "high",
	}, &created)
	require.Equal(t, int64(1), created.Project.ID)
	require.Equal(t, "in_progress", created.Project.Status)
	require.Equal(t, "In Progress", created.Project.StatusLabel)
	require.Equal(t, "2024-03-01", created.Project.StartDate)
	require.Equal(t, "Project 'Alpha' added successfully!", created.Message)

	var list ListProjectsResponse
	env.mustCall(t, "list_projects", nil, &list)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Alpha", list.Projects[0].Name)

	// Calls without a session id land in the default session.
	info, err := env.manager.Get(context.Background(), session.DefaultID)
	require.NoError(t, err)
	require.Equal(t, 1, info.Projects)
}

func TestTools_SessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})

	var opened SessionResponse
	env.mustCall(t, "open_session", map[string]any{"variant": "basic"}, &opened)
	require.NotEmpty(t, opened.SessionID)
	require.Equal(t, "basic", opened.Variant)

	env.mustCall(t, "create_project", map[string]any{"session_id": opened.SessionID, "name": "Mine"}, nil)
	env.mustCall(t, "create_project", map[string]any{"name": "Default"}, nil)

	var list ListProjectsResponse
	env.mustCall(t, "list_projects", map[string]any{"session_id": opened.SessionID}, &list)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Mine", list.Projects[0].Name)
	require.Empty(t, list.Projects[0].Priority)

	var closed CloseSessionResponse
	env.mustCall(t, "close_session", map[string]any{"session_id": opened.SessionID}, &closed)
	require.True(t, closed.Closed)

	res := env.call(t, "get_session", map[string]any{"session_id": opened.SessionID}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "SESSION_NOT_FOUND")
}

func TestTools_UpdateStatusAndErrors(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})
	env.mustCall(t, "create_project", map[string]any{"name": "Alpha"}, nil)

	var updated ProjectResponse
	env.mustCall(t, "update_status", map[string]any{"id": 1, "status": "completed"}, &updated)
	require.Equal(t, "completed", updated.Project.Status)

	res := env.call(t, "update_status", map[string]any{"id": 42, "status": "completed"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "NOT_FOUND")

	res = env.call(t, "create_project", map[string]any{"name": "   "}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "VALIDATION_ERROR")

	res = env.call(t, "update_project", map[string]any{"id": 1}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "VALIDATION_ERROR")

	env.mustCall(t, "update_project", map[string]any{"id": 1, "description": "done", "estimated_hours": 3}, &updated)
	require.Equal(t, "done", updated.Project.Description)
	require.Equal(t, 3.0, updated.Project.EstimatedHours)
}

func TestTools_FilterSortAndVariants(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})
	env.mustCall(t, "create_project", map[string]any{"name": "Late", "start_date": "2024-05-01", "status": "in_progress"}, nil)
	env.mustCall(t, "create_project", map[string]any{"name": "Early", "start_date": "2024-01-01", "status": "in_progress"}, nil)
	env.mustCall(t, "create_project", map[string]any{"name": "Done", "start_date": "2023-01-01", "status": "completed"}, nil)

	var list ListProjectsResponse
	env.mustCall(t, "list_projects", map[string]any{"status": "in_progress", "sort": "start_date"}, &list)
	require.Equal(t, 2, list.Count)
	require.Equal(t, "Early", list.Projects[0].Name)
	require.Equal(t, "Late", list.Projects[1].Name)

	var prio SessionResponse
	env.mustCall(t, "open_session", map[string]any{"variant": "priority"}, &prio)
	res := env.call(t, "list_projects", map[string]any{"session_id": prio.SessionID, "sort": "end_date"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "SORT_UNSUPPORTED")

	res = env.call(t, "list_projects", map[string]any{"status": "paused"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "VALIDATION_ERROR")
}

func TestTools_DeleteAndClear(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})
	env.mustCall(t, "create_project", map[string]any{"name": "A"}, nil)
	env.mustCall(t, "create_project", map[string]any{"name": "B"}, nil)

	var removed RemovedResponse
	env.mustCall(t, "delete_project", map[string]any{"id": 1}, &removed)
	require.Equal(t, 1, removed.Removed)

	env.mustCall(t, "delete_project", map[string]any{"id": 1}, &removed)
	require.Equal(t, 0, removed.Removed)

	res := env.call(t, "delete_project", map[string]any{"id": 1, "strict": true}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "NOT_FOUND")

	env.mustCall(t, "clear_projects", nil, &removed)
	require.Equal(t, 1, removed.Removed)

	var list ListProjectsResponse
	env.mustCall(t, "list_projects", nil, &list)
	require.Zero(t, list.Count)
	require.NotNil(t, list.Projects)
}

func TestTools_LegacyIDPolicy(t *testing.T) {
	env := newTestEnv(t, session.Defaults{IDPolicy: project.IDLegacy})

	var p ProjectResponse
	env.mustCall(t, "create_project", map[string]any{"name": "Alpha"}, nil)
	env.mustCall(t, "create_project", map[string]any{"name": "Beta"}, nil)
	env.mustCall(t, "delete_project", map[string]any{"id": 1}, nil)
	env.mustCall(t, "create_project", map[string]any{"name": "Gamma"}, &p)
	require.Equal(t, int64(2), p.Project.ID)
}

func TestTools_ExportImportRoundTrip(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})
	env.mustCall(t, "create_project", map[string]any{"name": "Alpha, Inc", "assigned_to": "kim", "estimated_hours": 2.5}, nil)
	env.mustCall(t, "set_attachment", map[string]any{"id": 1, "filename": "brief.pdf"}, nil)

	var exported ExportCSVResponse
	env.mustCall(t, "export_csv", nil, &exported)
	require.True(t, strings.HasPrefix(exported.CSV, "id,name,description,start_date,end_date,status,priority,assignedTo,estimatedHours,attachmentName\n"))
	require.Contains(t, exported.CSV, `1,"Alpha, Inc",,,,Not Started,Low,kim,2.5,brief.pdf`)

	var other SessionResponse
	env.mustCall(t, "open_session", map[string]any{"session_id": "copy"}, &other)

	var imported ImportCSVResponse
	env.mustCall(t, "import_csv", map[string]any{"session_id": "copy", "csv": exported.CSV}, &imported)
	require.Equal(t, 1, imported.Imported)

	var got ProjectResponse
	env.mustCall(t, "get_project", map[string]any{"session_id": "copy", "id": 1}, &got)
	require.Equal(t, "Alpha, Inc", got.Project.Name)
	require.Equal(t, "brief.pdf", got.Project.AttachmentName)

	res := env.call(t, "import_csv", map[string]any{"session_id": "copy", "csv": "id,name\n1,x\n"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "PARSE_ERROR")

	env.mustCall(t, "get_project", map[string]any{"session_id": "copy", "id": 1}, &got)
	require.Equal(t, "Alpha, Inc", got.Project.Name)
}

func TestTools_RecentActivity(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})
	env.mustCall(t, "create_project", map[string]any{"name": "Alpha"}, nil)
	env.mustCall(t, "update_status", map[string]any{"id": 1, "status": "completed"}, nil)
	env.call(t, "import_csv", map[string]any{"csv": "bogus"}, nil)

	var act ActivityResponse
	env.mustCall(t, "get_recent_activity", nil, &act)
	require.GreaterOrEqual(t, len(act.Entries), 4)
	require.Equal(t, string(activity.TypeImportFailed), act.Entries[0].Type)
	require.Equal(t, string(activity.LevelError), act.Entries[0].Level)

	env.mustCall(t, "get_recent_activity", map[string]any{"activity_type": "project_created"}, &act)
	require.Len(t, act.Entries, 1)
	require.Equal(t, "Project 'Alpha' added successfully!", act.Entries[0].Summary)
}

func TestTools_OpenSessionRejectsUnknownVariant(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})

	res := env.call(t, "open_session", map[string]any{"variant": "deluxe"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "VALIDATION_ERROR")
}

func TestDocResources(t *testing.T) {
	env := newTestEnv(t, session.Defaults{})

	res, err := env.client.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "projtrack://docs/csv"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "estimatedHours")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		var entry map[string]any
		if json.Unmarshal([]byte(line), &entry) == nil {
			out = append(out, entry)
		}
	}
	return out
}

func TestTrafficLogging_CarriesToolAndProject(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	env := newTestEnvWithLogger(t, session.Defaults{}, logger)

	env.mustCall(t, "create_project", map[string]any{"session_id": "s1", "name": "Alpha"}, nil)
	res := env.call(t, "update_status", map[string]any{"session_id": "s1", "id": 7, "status": "completed"}, nil)
	require.True(t, res.IsError)

	var request, response map[string]any
	for _, entry := range logs.lines() {
		if entry["tool"] != "update_status" {
			continue
		}
		switch entry["msg"] {
		case "mcp request":
			request = entry
		case "mcp response":
			response = entry
		}
	}
	require.NotNil(t, request)
	require.Equal(t, "inbound", request["direction"])
	require.Equal(t, "s1", request["session_id"])
	require.Equal(t, 7.0, request["project_id"])

	require.NotNil(t, response)
	require.Equal(t, true, response["tool_error"])
}
