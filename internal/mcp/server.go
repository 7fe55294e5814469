package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/ironquest/internal/game"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
// Rank and power views are computed locally from the loaded game data,
// so both the local and remote data sources serve them identically.
func New(ds DataSource, data *game.Data, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronQuest", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronQuest progression server. Query workout history, XP and gold, muscle group ranks, power level, equipment, and achievements. All data is scoped to the authenticated user unless a user_id argument is given."),
	)

	h := &handlers{ds: ds, data: data, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetUserStats, Handler: h.getUserStats},
		server.ServerTool{Tool: toolGetPowerLevel, Handler: h.getPowerLevel},
		server.ServerTool{Tool: toolGetRecentWorkouts, Handler: h.getRecentWorkouts},
		server.ServerTool{Tool: toolGetWorkoutSets, Handler: h.getWorkoutSets},
		server.ServerTool{Tool: toolListAchievements, Handler: h.listAchievements},
		server.ServerTool{Tool: toolGetMuscleGroupBreakdown, Handler: h.getMuscleGroupBreakdown},
		server.ServerTool{Tool: toolGetEquipment, Handler: h.getEquipment},
		server.ServerTool{Tool: toolGetLevelCurve, Handler: h.getLevelCurve},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resProfile, Handler: h.profile},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resGameCatalog, Handler: h.gameCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds   DataSource
	data *game.Data
	log  *slog.Logger
}

// --- Resource definitions ---

var resProfile = mcp.NewResource(
	"ironquest://profile",
	"Profile",
	mcp.WithResourceDescription("The user's level, XP, gold, lifetime totals, per-group ranks, and power level"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"ironquest://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resGameCatalog = mcp.NewResource(
	"ironquest://game_catalog",
	"Game Catalog",
	mcp.WithResourceDescription("The full exercise catalog, item catalog, rank table, and achievement list"),
	mcp.WithMIMEType("application/json"),
)
