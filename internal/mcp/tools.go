package mcp

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/ironquest/internal/engine"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// resolveUserID prefers an explicit user_id argument over the transport
// context.
func resolveUserID(ctx context.Context, req mcp.CallToolRequest) (int, bool) {
	raw := req.GetString("user_id", "")
	if raw == "" {
		return UserIDFromContext(ctx), true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// --- Tool definitions ---

var toolGetUserStats = mcp.NewTool("get_user_stats",
	mcp.WithDescription("Get the user's progression stats: level, XP, gold, lifetime totals (workouts, sets, reps, volume, duration), and XP per muscle group."),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolGetPowerLevel = mcp.NewTool("get_power_level",
	mcp.WithDescription("Compute the user's power level: per-muscle-group ranks from the rank table, the average rank, equipped item rarity contributions, and the total power value."),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolGetRecentWorkouts = mcp.NewTool("get_recent_workouts",
	mcp.WithDescription("Query finished workouts in a time range. Returns per-workout totals (sets, reps, volume) and the XP and gold each one earned."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolGetWorkoutSets = mcp.NewTool("get_workout_sets",
	mcp.WithDescription("List the completed sets of one finished workout: exercise name, set kind, reps, weight, duration, distance."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID from get_recent_workouts")),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolListAchievements = mcp.NewTool("list_achievements",
	mcp.WithDescription("List every achievement with its requirement, reward item, and whether the user has unlocked it."),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolGetMuscleGroupBreakdown = mcp.NewTool("get_muscle_group_breakdown",
	mcp.WithDescription("Per-muscle-group XP breakdown: each group's XP, current rank, XP to the next rank, and share of total group XP."),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolGetEquipment = mcp.NewTool("get_equipment",
	mcp.WithDescription("List the user's equipped items and inventory, with item details (rarity, slot, XP/gold bonuses) from the item catalog."),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolGetLevelCurve = mcp.NewTool("get_level_curve",
	mcp.WithDescription("XP required to complete each level, for planning progress toward a target level."),
	mcp.WithString("max_level", mcp.Description("Highest level to include. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) getUserStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := resolveUserID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id must be a positive integer"), nil
	}

	stats, err := h.ds.GetUserStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_user_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPowerLevel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := resolveUserID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id must be a positive integer"), nil
	}

	summary, err := h.powerView(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_power_level", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := resolveUserID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id must be a positive integer"), nil
	}

	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.QueryWorkouts(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_recent_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	workoutID, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("workout_id must be a UUID"), nil
	}

	uid, ok := resolveUserID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id must be a positive integer"), nil
	}

	sets, err := h.ds.QueryWorkoutSets(ctx, workoutID, uid)
	if err != nil {
		h.log.Error("mcp get_workout_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listAchievements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := resolveUserID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id must be a positive integer"), nil
	}

	unlocks, err := h.ds.Unlocks(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_achievements", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	unlocked := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.AchievementID] = true
	}

	type achievementView struct {
		engine.Achievement
		Unlocked bool `json:"unlocked"`
	}
	out := make([]achievementView, 0, len(h.data.Achievements))
	for _, a := range h.data.Achievements {
		out = append(out, achievementView{Achievement: a, Unlocked: unlocked[a.ID]})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMuscleGroupBreakdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := resolveUserID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id must be a positive integer"), nil
	}

	stats, err := h.ds.GetUserStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_muscle_group_breakdown", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	total := 0
	for _, xp := range stats.GroupXP {
		total += xp
	}

	type groupView struct {
		MuscleGroup string  `json:"muscleGroup"`
		XP          int     `json:"xp"`
		Rank        string  `json:"rank"`
		NextRankXP  int     `json:"nextRankXp,omitempty"`
		Share       float64 `json:"share"`
	}
	out := make([]groupView, 0, len(engine.MuscleGroups))
	for _, g := range engine.MuscleGroups {
		xp := stats.GroupXP[string(g)]
		view := groupView{
			MuscleGroup: string(g),
			XP:          xp,
			Rank:        h.data.Ranks.RankOf(xp).Name,
		}
		if next, ok := h.data.Ranks.NextRank(xp); ok {
			view.NextRankXP = next.MinXP - xp
		}
		if total > 0 {
			view.Share = float64(xp) / float64(total)
		}
		out = append(out, view)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getEquipment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := resolveUserID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id must be a positive integer"), nil
	}

	equipped, err := h.ds.EquippedItems(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_equipment", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	inventory, err := h.ds.Inventory(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_equipment", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	type ownedItem struct {
		engine.Item
		Quantity int  `json:"quantity,omitempty"`
		Equipped bool `json:"equipped"`
	}
	equippedIDs := make(map[string]bool, len(equipped))
	for _, row := range equipped {
		equippedIDs[row.ItemID] = true
	}
	var out []ownedItem
	for _, row := range inventory {
		item, ok := h.data.ItemByID(row.ItemID)
		if !ok {
			continue
		}
		out = append(out, ownedItem{Item: item, Quantity: row.Quantity, Equipped: equippedIDs[row.ItemID]})
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"items": out, "equipped": equipped})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLevelCurve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	maxLevel := 20
	if raw := req.GetString("max_level", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			return mcp.NewToolResultError("max_level must be between 1 and 1000"), nil
		}
		maxLevel = n
	}

	type levelStep struct {
		Level      int `json:"level"`
		RequiredXP int `json:"requiredXp"`
	}
	out := make([]levelStep, 0, maxLevel)
	for lvl := 1; lvl <= maxLevel; lvl++ {
		out = append(out, levelStep{Level: lvl, RequiredXP: engine.RequiredXP(lvl)})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// powerView builds the rank and power summary from stored stats plus
// equipped items.
func (h *handlers) powerView(ctx context.Context, uid int) (map[string]any, error) {
	stats, err := h.ds.GetUserStats(ctx, uid)
	if err != nil {
		return nil, err
	}
	equippedRows, err := h.ds.EquippedItems(ctx, uid)
	if err != nil {
		return nil, err
	}

	var equipped []engine.Item
	for _, row := range equippedRows {
		if item, ok := h.data.ItemByID(row.ItemID); ok {
			equipped = append(equipped, item)
		}
	}

	groupXP := make(map[engine.MuscleGroup]int, len(stats.GroupXP))
	for g, xp := range stats.GroupXP {
		groupXP[engine.MuscleGroup(g)] = xp
	}

	type groupRank struct {
		MuscleGroup string          `json:"muscleGroup"`
		XP          int             `json:"xp"`
		Rank        engine.RankTier `json:"rank"`
	}
	groups := make([]groupRank, 0, len(engine.MuscleGroups))
	for _, g := range engine.MuscleGroups {
		groups = append(groups, groupRank{
			MuscleGroup: string(g),
			XP:          groupXP[g],
			Rank:        h.data.Ranks.RankOf(groupXP[g]),
		})
	}

	return map[string]any{
		"groups":      groups,
		"averageRank": h.data.Ranks.AverageRank(groupXP),
		"powerLevel":  h.data.Ranks.PowerLevel(groupXP, equipped),
		"equipped":    equippedView(equipped),
	}, nil
}

func equippedView(items []engine.Item) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"id":     item.ID,
			"name":   item.Name,
			"rarity": item.Rarity,
			"power":  item.Rarity.PowerValue(),
		})
	}
	return out
}
