package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) profile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	stats, err := h.ds.GetUserStats(ctx, uid)
	if err != nil {
		return nil, err
	}

	power, err := h.powerView(ctx, uid)
	if err != nil {
		h.log.Warn("profile: power view failed", "error", err)
	}

	unlocks, err := h.ds.Unlocks(ctx, uid)
	if err != nil {
		h.log.Warn("profile: unlocks query failed", "error", err)
	}

	profile := map[string]any{
		"stats":        stats,
		"power":        power,
		"unlocks":      unlocks,
		"achievements": len(h.data.Achievements),
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.ds.QueryWorkouts(ctx, uid, start, end)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(workouts)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) gameCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	catalog := map[string]any{
		"exercises":    h.data.Catalog.Entries(),
		"items":        h.data.Items,
		"ranks":        h.data.Ranks,
		"achievements": h.data.Achievements,
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
