package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `projtrack keeps a list of projects for the length of one session.

Core concepts:
- Session: owns one in-memory project registry. Nothing survives close_session; export_csv first to keep data.
- Variant: fixed per session. basic (name, description, dates, status), priority (+ priority), full (+ assignee, estimated hours, attachment name, sorting).
- Project ids: integers assigned on create. Every edit and delete is keyed by id, never by list position.

Workflow:
1) open_session (optional; the first call on an unknown session opens it with the server defaults).
2) create_project / update_project / update_status / set_attachment.
3) list_projects with status and sort to browse; get_project for one project.
4) export_csv to save, import_csv to restore (import replaces everything or nothing).
5) get_recent_activity shows the notifications a user would have seen.

Transport notes:
- HTTP: the Mcp-Session-Id header selects the session.
- Stdio: pass _meta.session_id, or a session_id argument on any tool.

Docs:
- projtrack://docs/csv (file format for export_csv and import_csv)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "projtrack://docs/csv",
		Name:        "docs_csv",
		Title:       "projtrack CSV format",
		Description: "Columns, value formats and failure behaviour of CSV export and import.",
		Content: `# projtrack: CSV format

One header row, then one row per project, comma separated with standard quoting.

## Columns by variant

| Variant  | Columns |
|----------|---------|
| basic    | id, name, description, start_date, end_date, status |
| priority | basic columns + priority |
| full     | priority columns + assignedTo, estimatedHours, attachmentName |

Columns may appear in any order, but the header must list exactly the variant's columns.

## Values

- ` + "`id`" + `: integer. Imported ids are trusted as-is; new projects continue above the largest id seen.
- ` + "`start_date`" + `, ` + "`end_date`" + `: YYYY-MM-DD or empty.
- ` + "`status`" + `: Not Started, In Progress or Completed (codes like in_progress also accepted).
- ` + "`priority`" + `: Low, Medium or High.
- ` + "`estimatedHours`" + `: non-negative number, empty means 0.

## Import failures

Any malformed row aborts the whole import with PARSE_ERROR naming the line and column.
The session's projects are left exactly as they were.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
