package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meltforce/ironquest/internal/engine"
	"github.com/meltforce/ironquest/internal/models"
)

// PersistFinishedWorkout writes a finished session atomically: the workout
// row, its completed sets, and the additive stats update run in one
// transaction, so a failure leaves no partial state.
//
// Returns (false, nil) when the workout id was already persisted, which is
// a retry of a finish that succeeded but went unreported; nothing is
// written and the stats are NOT applied a second time. Returns
// ErrStatsConflict when the compare-and-swap on the stats version loses a
// race; the whole transaction rolls back and the caller may retry.
func (db *DB) PersistFinishedWorkout(ctx context.Context, workout models.WorkoutRow, sets []models.WorkoutSetRow, version int, delta models.StatsDelta) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning finish tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO workouts (id, user_id, started_at, finished_at, duration_sec, notes,
		 total_sets, total_reps, total_volume, xp_gained, gold_gained)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT DO NOTHING`,
		workout.ID, workout.UserID, workout.StartedAt, workout.FinishedAt, workout.DurationSec,
		workout.Notes, workout.TotalSets, workout.TotalReps, workout.TotalVolume,
		workout.XPGained, workout.GoldGained)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already persisted by a previous attempt; rewards were applied then.
		return false, nil
	}

	if len(sets) > 0 {
		query := `INSERT INTO workout_sets (id, workout_id, user_id, exercise_name, set_kind, set_number, reps, weight, duration, distance) VALUES `
		args := make([]any, 0, len(sets)*10)
		valueStrings := make([]string, 0, len(sets))
		for i, r := range sets {
			base := i * 10
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
			))
			args = append(args, r.ID, r.WorkoutID, r.UserID, r.ExerciseName, r.SetKind,
				r.SetNumber, r.Reps, r.Weight, r.Duration, r.Distance)
		}
		if _, err := tx.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
			return false, fmt.Errorf("inserting workout sets: %w", err)
		}
	}

	tag, err = tx.Exec(ctx, `
		UPDATE user_stats SET
			xp = xp + $3,
			gold = gold + $4,
			level = $5,
			chest_xp = chest_xp + $6,
			back_xp = back_xp + $7,
			legs_xp = legs_xp + $8,
			shoulders_xp = shoulders_xp + $9,
			arms_xp = arms_xp + $10,
			core_xp = core_xp + $11,
			cardio_xp = cardio_xp + $12,
			total_workouts = total_workouts + 1,
			total_sets = total_sets + $13,
			total_reps = total_reps + $14,
			total_volume = total_volume + $15,
			total_duration = total_duration + $16,
			version = version + 1,
			updated_at = NOW()
		WHERE user_id = $1 AND version = $2
	`, workout.UserID, version,
		delta.XP, delta.Gold, delta.NewLevel,
		delta.GroupXP[string(engine.Chest)], delta.GroupXP[string(engine.Back)],
		delta.GroupXP[string(engine.Legs)], delta.GroupXP[string(engine.Shoulders)],
		delta.GroupXP[string(engine.Arms)], delta.GroupXP[string(engine.Core)],
		delta.GroupXP[string(engine.Cardio)],
		delta.TotalSets, delta.TotalReps, delta.TotalVolume, delta.TotalDuration)
	if err != nil {
		return false, fmt.Errorf("updating user stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, ErrStatsConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing finish tx: %w", err)
	}
	return true, nil
}
