// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Timesplit MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Timesplit Tracking Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	sortKeys := make([]string, len(schema.AllSortKeys))
	for i, k := range schema.AllSortKeys {
		sortKeys[i] = string(k)
	}

	// --- 1. Tool: get_branch_metrics ---
	s.AddTool(mcp.NewTool("get_branch_metrics",
		mcp.WithDescription("Report active and inactive time spent on each branch of a repository."),
		mcp.WithString("repo_path", mcp.Description("Root of the tracked Git repository (defaults to the configured repository).")),
		mcp.WithString("since", mcp.Description("Only count time after this point (e.g., '7 days', '2 weeks ago', '2025-06-01').")),
		mcp.WithString("sort", mcp.Description("Sort key. Defaults to 'last-seen'."), mcp.Enum(sortKeys...)),
		mcp.WithString("order", mcp.Description("Sort order (asc, desc). Defaults to 'desc'."), mcp.Enum("asc", "desc")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of branches returned.")),
	), h.handleGetBranchMetrics)

	// --- 2. Tool: list_intervals ---
	s.AddTool(mcp.NewTool("list_intervals",
		mcp.WithDescription("List the recorded active and inactive intervals of a repository."),
		mcp.WithString("repo_path", mcp.Description("Root of the tracked Git repository.")),
		mcp.WithString("branch", mcp.Description("Only return intervals of this branch.")),
		mcp.WithString("since", mcp.Description("Only return intervals ending after this point.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of intervals returned.")),
	), h.handleListIntervals)

	// --- 3. Tool: get_store_status ---
	s.AddTool(mcp.NewTool("get_store_status",
		mcp.WithDescription("Show the backend and contents of the interval store."),
	), h.handleGetStoreStatus)

	return s
}

// StartMCPServer starts the Timesplit MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
