package company

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkoh12/agenticai/internal/tools"
)

// RegisterTools exposes the company database and document store through
// the tool registry.
func RegisterTools(r *tools.Registry, store *Store, docs *DocStore) {
	r.Register(&tools.Tool{
		Name:        "query_database",
		Description: "Execute a read-only SQL query on the company database (employees, projects tables).",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "SQL SELECT query to execute",
				},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			results, err := store.Query(query)
			if err != nil {
				return "", err
			}
			if results == nil {
				results = []map[string]any{}
			}
			b, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return "", fmt.Errorf("encode results: %w", err)
			}
			return string(b), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "access_document",
		Description: "Access company documents and policies. Use action 'list' to see filenames, 'read' with a filename to get content.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type":        "string",
					"enum":        []string{"list", "read"},
					"description": "Action to perform",
				},
				"filename": map[string]any{
					"type":        "string",
					"description": "Filename to read (required for 'read' action)",
				},
			},
			"required": []string{"action"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			action, _ := args["action"].(string)
			filename, _ := args["filename"].(string)

			switch action {
			case "list":
				files, err := docs.List()
				if err != nil {
					return "", err
				}
				b, _ := json.Marshal(map[string]any{"files": files})
				return string(b), nil
			case "read":
				content, err := docs.Read(filename)
				if err != nil {
					return "", err
				}
				b, _ := json.Marshal(map[string]any{"filename": filename, "content": content})
				return string(b), nil
			default:
				return "", fmt.Errorf("invalid action %q: use 'list' or 'read' with filename", action)
			}
		},
	})
}
