// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the watchlist MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(svc contract.ListService, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Watchlist Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{svc: svc}

	// --- 1. Tool: add_to_list ---
	s.AddTool(mcp.NewTool("add_to_list",
		mcp.WithDescription("Add a movie or TV show from the catalog to a user's list."),
		mcp.WithString("user_id", mcp.Description("Opaque identifier of the list owner."), mcp.Required()),
		mcp.WithString("content_id", mcp.Description("Catalog id of the movie or TV show."), mcp.Required()),
		mcp.WithString("content_type", mcp.Description("Kind of content."), mcp.Enum("movie", "tvshow"), mcp.Required()),
	), withRequestID(h.handleAddToList))

	// --- 2. Tool: remove_from_list ---
	s.AddTool(mcp.NewTool("remove_from_list",
		mcp.WithDescription("Remove content from a user's list."),
		mcp.WithString("user_id", mcp.Description("Opaque identifier of the list owner."), mcp.Required()),
		mcp.WithString("content_id", mcp.Description("Catalog id of the entry to remove."), mcp.Required()),
	), withRequestID(h.handleRemoveFromList))

	// --- 3. Tool: get_my_list ---
	s.AddTool(mcp.NewTool("get_my_list",
		mcp.WithDescription("Fetch one page of a user's list, newest first, with resolved content."),
		mcp.WithString("user_id", mcp.Description("Opaque identifier of the list owner."), mcp.Required()),
		mcp.WithNumber("page", mcp.Description("1-based page number. Defaults to 1.")),
		mcp.WithNumber("size", mcp.Description("Page size, at most 100. Defaults to 20.")),
	), withRequestID(h.handleGetMyList))

	// --- 4. Tool: health ---
	s.AddTool(mcp.NewTool("health",
		mcp.WithDescription("Report database and cache health with the total list entry count."),
	), withRequestID(h.handleHealth))

	return s
}

// StartMCPServer serves the watchlist tools over stdio.
func StartMCPServer(_ context.Context, svc contract.ListService, version string) error {
	s := NewMCPServer(svc, version)
	return server.ServeStdio(s)
}
