package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/tabstash/internal/api"
	"github.com/hpungsan/tabstash/internal/errors"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	d *api.Dispatcher
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d *api.Dispatcher) *Handlers {
	return &Handlers{d: d}
}

// handle builds the tool handler for one dispatcher action.
func (h *Handlers) handle(action string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h.d.Dispatch(ctx, action, req.GetArguments())
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(result)
	}
}

// errorResult converts an error to a structured MCP error result.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := err.(*errors.StashError); ok {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		// Internal details can carry file paths or SQL text; callers only
		// get them for non-internal errors.
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult converts data to a JSON MCP result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
