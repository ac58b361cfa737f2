package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projtrack/internal/domain/activity"
	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/rpggio/projtrack/internal/domain/session"
	"github.com/rpggio/projtrack/internal/view"
)

const defaultActivityLimit = 20

func textResult(format string, args ...any) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

func registerTools(server *sdkmcp.Server, svc Services) {
	registerSessionTools(server, svc)
	registerProjectTools(server, svc)
	registerCSVTools(server, svc)
	registerActivityTools(server, svc)
}

// ===== SESSION TOOLS =====

func registerSessionTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "open_session",
		Description: "Start a session with an empty project registry. Pick the tracker variant here; it cannot change later.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args OpenSessionParams) (*sdkmcp.CallToolResult, SessionResponse, error) {
		req := session.OpenRequest{ID: args.SessionID}
		if args.Variant != "" {
			variant, err := project.ParseVariant(args.Variant)
			if err != nil {
				return nil, SessionResponse{}, toolError(err)
			}
			req.Variant = variant
		}
		if args.IDPolicy != "" {
			policy, err := project.ParseIDPolicy(args.IDPolicy)
			if err != nil {
				return nil, SessionResponse{}, toolError(err)
			}
			req.IDPolicy = policy
		}

		sess, err := svc.Sessions.Open(ctx, req)
		if err != nil {
			return nil, SessionResponse{}, toolError(err)
		}
		out := sessionResponse(*sess, 0)
		return textResult("Session %s started (%s tracker)", sess.ID, sess.Variant), out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_session",
		Description: "Describe a live session: variant, id policy and registry size.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SessionParams) (*sdkmcp.CallToolResult, SessionResponse, error) {
		info, err := svc.Sessions.Get(ctx, resolveSessionID(ctx, args.SessionID))
		if err != nil {
			return nil, SessionResponse{}, toolError(err)
		}
		return nil, sessionResponse(info.Session, info.Projects), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "close_session",
		Description: "End a session. Its projects are discarded; export first to keep them.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SessionParams) (*sdkmcp.CallToolResult, CloseSessionResponse, error) {
		sessionID := resolveSessionID(ctx, args.SessionID)
		if err := svc.Sessions.Close(ctx, sessionID); err != nil {
			return nil, CloseSessionResponse{}, toolError(err)
		}
		return textResult("Session %s closed", sessionID), CloseSessionResponse{SessionID: sessionID, Closed: true}, nil
	})
}

// ===== PROJECT TOOLS =====

func registerProjectTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List projects in insertion order, optionally filtered by status and sorted by start_date or end_date (full variant only).",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args ListProjectsParams) (*sdkmcp.CallToolResult, ListProjectsResponse, error) {
		opts, err := view.ListOptions(args.Status, args.Sort)
		if err != nil {
			return nil, ListProjectsResponse{}, toolError(err)
		}
		projects, err := svc.Projects.Query(ctx, resolveSessionID(ctx, args.SessionID), opts)
		if err != nil {
			return nil, ListProjectsResponse{}, toolError(err)
		}
		return nil, ListProjectsResponse{Projects: view.Projects(projects), Count: len(projects)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get one project by id.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args ProjectIDParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
		proj, err := svc.Projects.Get(ctx, resolveSessionID(ctx, args.SessionID), args.ID)
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		return nil, ProjectResponse{Project: view.ProjectOf(*proj)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Add a project. Only the name is required; dates are YYYY-MM-DD and are not checked for order.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args CreateProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
		req, err := args.CreateInput.Request()
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		proj, err := svc.Projects.Create(ctx, resolveSessionID(ctx, args.SessionID), req)
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		msg := fmt.Sprintf("Project '%s' added successfully!", proj.Name)
		return textResult("%s", msg), ProjectResponse{Project: view.ProjectOf(*proj), Message: msg}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project",
		Description: "Edit fields of the project with the given id. Either every field applies or none does.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args UpdateProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
		patch, err := args.PatchInput.Patch()
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		proj, err := svc.Projects.Update(ctx, resolveSessionID(ctx, args.SessionID), args.ID, patch)
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		return nil, ProjectResponse{Project: view.ProjectOf(*proj)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_status",
		Description: "Set the status of a project.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args UpdateStatusParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
		status, err := project.ParseStatus(args.Status)
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		proj, err := svc.Projects.UpdateStatus(ctx, resolveSessionID(ctx, args.SessionID), args.ID, status)
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		return nil, ProjectResponse{Project: view.ProjectOf(*proj)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_attachment",
		Description: "Record the attachment file name of a project (full variant). The file content is not stored.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SetAttachmentParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
		proj, err := svc.Projects.SetAttachment(ctx, resolveSessionID(ctx, args.SessionID), args.ID, strings.TrimSpace(args.Filename))
		if err != nil {
			return nil, ProjectResponse{}, toolError(err)
		}
		return nil, ProjectResponse{Project: view.ProjectOf(*proj)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Remove every project with the id. Deleting a missing id succeeds with removed=0 unless strict is set.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args DeleteProjectParams) (*sdkmcp.CallToolResult, RemovedResponse, error) {
		sessionID := resolveSessionID(ctx, args.SessionID)
		var removed int
		var err error
		if args.Strict {
			removed, err = svc.Projects.DeleteStrict(ctx, sessionID, args.ID)
		} else {
			removed, err = svc.Projects.Delete(ctx, sessionID, args.ID)
		}
		if err != nil {
			return nil, RemovedResponse{}, toolError(err)
		}
		return nil, RemovedResponse{Removed: removed}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_projects",
		Description: "Remove every project of the session.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SessionParams) (*sdkmcp.CallToolResult, RemovedResponse, error) {
		removed, err := svc.Projects.ClearAll(ctx, resolveSessionID(ctx, args.SessionID))
		if err != nil {
			return nil, RemovedResponse{}, toolError(err)
		}
		return nil, RemovedResponse{Removed: removed}, nil
	})
}

// ===== CSV TOOLS =====

func registerCSVTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_csv",
		Description: "Export the session's projects as CSV. See projtrack://docs/csv for the columns.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args SessionParams) (*sdkmcp.CallToolResult, ExportCSVResponse, error) {
		data, err := svc.Projects.Export(ctx, resolveSessionID(ctx, args.SessionID))
		if err != nil {
			return nil, ExportCSVResponse{}, toolError(err)
		}
		return textResult("%s", data), ExportCSVResponse{CSV: string(data)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_csv",
		Description: "Replace the session's projects with a CSV payload. On any parse error nothing changes.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args ImportCSVParams) (*sdkmcp.CallToolResult, ImportCSVResponse, error) {
		n, err := svc.Projects.Import(ctx, resolveSessionID(ctx, args.SessionID), []byte(args.CSV))
		if err != nil {
			return nil, ImportCSVResponse{}, toolError(err)
		}
		return textResult("Imported %d projects", n), ImportCSVResponse{Imported: n}, nil
	})
}

// ===== ACTIVITY TOOLS =====

func registerActivityTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List the session's notifications, newest first.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args GetRecentActivityParams) (*sdkmcp.CallToolResult, ActivityResponse, error) {
		opts := activity.ListActivityOptions{
			SessionID: resolveSessionID(ctx, args.SessionID),
			ProjectID: args.ProjectID,
			Limit:     args.Limit,
			Offset:    args.Offset,
		}
		if opts.Limit <= 0 {
			opts.Limit = defaultActivityLimit
		}
		if args.ActivityType != "" {
			typ := activity.ActivityType(args.ActivityType)
			opts.ActivityType = &typ
		}
		entries, err := svc.Activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, ActivityResponse{}, toolError(err)
		}
		return nil, ActivityResponse{Entries: activityViews(entries)}, nil
	})
}
