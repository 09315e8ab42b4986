package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	svc contract.ListService
}

// withRequestID tags each tool call with a fresh request id for log correlation.
func withRequestID(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
		logging.Ctx(ctx).Debug().Str("tool", request.Params.Name).Msg("MCP tool call")
		return next(ctx, request)
	}
}

func (h *toolHandler) handleAddToList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, err := h.svc.AddToList(ctx,
		request.GetString("user_id", ""),
		request.GetString("content_id", ""),
		schema.ContentType(request.GetString("content_type", "")),
	)
	if err != nil {
		return toolError("add failed", err), nil
	}
	return jsonResult(entry)
}

func (h *toolHandler) handleRemoveFromList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.svc.RemoveFromList(ctx,
		request.GetString("user_id", ""),
		request.GetString("content_id", ""),
	)
	if err != nil {
		return toolError("remove failed", err), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetMyList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := request.GetInt("page", contract.DefaultPage)
	size := request.GetInt("size", contract.DefaultPageSize)
	if err := contract.ValidatePagination(page, size); err != nil {
		return toolError("invalid pagination parameters", err), nil
	}

	result, err := h.svc.GetMyList(ctx, request.GetString("user_id", ""), page, size)
	if err != nil {
		return toolError("list failed", err), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleHealth(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := h.svc.Health(ctx)
	res, err := jsonResult(report)
	if err == nil && report.Status == schema.Unhealthy {
		res.IsError = true
	}
	return res, err
}

// toolError renders typed failures as "<prefix>: <CODE>: <message>".
func toolError(prefix string, err error) *mcp.CallToolResult {
	var typed *schema.Error
	if errors.As(err, &typed) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s: %s", prefix, typed.Kind, typed.Message))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
