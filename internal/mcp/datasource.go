package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironquest/internal/models"
	"github.com/meltforce/ironquest/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	GetUserStats(ctx context.Context, userID int) (*models.UserStatsRow, error)
	QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutRow, error)
	QueryWorkoutSets(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.WorkoutSetRow, error)
	EquippedItems(ctx context.Context, userID int) ([]models.EquippedItemRow, error)
	Inventory(ctx context.Context, userID int) ([]models.InventoryRow, error)
	Unlocks(ctx context.Context, userID int) ([]models.UnlockRow, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
