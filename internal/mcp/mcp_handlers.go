package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/timesplit/core"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/outwriter"
	"github.com/huangsam/timesplit/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// applyCommon copies the repo, since and limit arguments onto a fresh config.
func (h *toolHandler) applyCommon(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		cfg.RepoPath = abs
	}
	if s := request.GetString("since", ""); s != "" {
		since, err := contract.ParseSince(s, time.Now())
		if err != nil {
			return nil, err
		}
		cfg.Since = since
	}
	if l := request.GetInt("limit", 0); l > 0 {
		if l > contract.MaxResultLimit {
			return nil, fmt.Errorf("limit cannot exceed %d (received %d)", contract.MaxResultLimit, l)
		}
		cfg.Limit = l
	}
	return cfg, nil
}

func (h *toolHandler) handleGetBranchMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.applyCommon(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if s := request.GetString("sort", ""); s != "" {
		key := schema.SortKey(strings.ToLower(s))
		if _, ok := schema.ValidSortKeys[key]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: unknown sort key '%s'", s)), nil
		}
		cfg.SortKey = key
	}
	switch strings.ToLower(request.GetString("order", "")) {
	case "":
	case "asc":
		cfg.SortDesc = false
	case "desc":
		cfg.SortDesc = true
	default:
		return mcp.NewToolResultError("invalid parameters: order must be asc or desc"), nil
	}

	metrics, summary, err := core.GetBranchMetricsResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	jsonData, err := outwriter.MetricsJSON(outwriter.Report{
		Repo:    cfg.RepoPath,
		Since:   cfg.Since,
		Metrics: metrics,
		Summary: summary,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListIntervals(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.applyCommon(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if h.mgr == nil || h.mgr.GetIntervalStore() == nil {
		return mcp.NewToolResultError("interval store is not initialized"), nil
	}

	records, err := h.mgr.GetIntervalStore().List(schema.ListQuery{
		Repo:    cfg.RepoPath,
		Subject: request.GetString("branch", ""),
		Since:   cfg.Since,
		Limit:   cfg.Limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	jsonData, err := outwriter.IntervalsJSON(records)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetStoreStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetIntervalStore() == nil {
		return mcp.NewToolResultError("interval store is not initialized"), nil
	}
	status, err := h.mgr.GetIntervalStore().GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
