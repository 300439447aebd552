package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/dkoh12/agenticai/internal/company"
)

// CompanyTools builds the tool set for the company data MCP server.
func CompanyTools(store *company.Store, docs *company.DocStore) []server.ServerTool {
	return []server.ServerTool{
		newServerTool(queryDatabaseTool(store)),
		newServerTool(accessDocumentTool(docs)),
	}
}

func queryDatabaseTool(store *company.Store) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool(
			"query_database",
			mcp.WithDescription("Run a read-only SQL SELECT query against the company database (tables: employees, projects)"),
			mcp.WithString("query", mcp.Required(), mcp.Description("SQL SELECT statement to execute")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type toolArguments struct {
				Query string `json:"query" validate:"required"`
			}
			var args toolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			rows, err := store.Query(args.Query)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if rows == nil {
				rows = []map[string]any{}
			}
			return resultJSON(rows)
		}
}

func accessDocumentTool(docs *company.DocStore) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool(
			"access_document",
			mcp.WithDescription("List or read company documents"),
			mcp.WithString("action", mcp.Required(), mcp.Description("Either 'list' or 'read'")),
			mcp.WithString("filename", mcp.Description("Document filename (required for 'read')")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type toolArguments struct {
				Action   string `json:"action" validate:"required,oneof=list read"`
				Filename string `json:"filename"`
			}
			var args toolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			switch args.Action {
			case "list":
				names, err := docs.List()
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return resultJSON(map[string]any{"documents": names})
			default:
				if args.Filename == "" {
					return mcp.NewToolResultError("filename is required for action 'read'"), nil
				}
				content, err := docs.Read(args.Filename)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return mcp.NewToolResultText(content), nil
			}
		}
}
