package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironquest/internal/models"
)

// InsertWorkout inserts a finished workout row. Returns true if inserted,
// false if the id was already persisted (a retried finish).
func (db *DB) InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, started_at, finished_at, duration_sec, notes,
		 total_sets, total_reps, total_volume, xp_gained, gold_gained)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.UserID, row.StartedAt, row.FinishedAt, row.DurationSec, row.Notes,
		row.TotalSets, row.TotalReps, row.TotalVolume, row.XPGained, row.GoldGained)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertWorkoutSets batch-inserts completed set rows. Returns count inserted.
func (db *DB) InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_sets (id, workout_id, user_id, exercise_name, set_kind, set_number, reps, weight, duration, distance) VALUES `
	args := make([]any, 0, len(rows)*10)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 10
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
		))
		args = append(args, r.ID, r.WorkoutID, r.UserID, r.ExerciseName, r.SetKind,
			r.SetNumber, r.Reps, r.Weight, r.Duration, r.Distance)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryWorkouts retrieves a user's workout history in a time range,
// newest first.
func (db *DB) QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, started_at, finished_at, duration_sec, notes,
		 total_sets, total_reps, total_volume, xp_gained, gold_gained
		 FROM workouts
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY started_at DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.StartedAt, &w.FinishedAt, &w.DurationSec,
			&w.Notes, &w.TotalSets, &w.TotalReps, &w.TotalVolume, &w.XPGained, &w.GoldGained); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// QueryWorkoutSets retrieves the persisted sets of one workout in order.
func (db *DB) QueryWorkoutSets(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, user_id, exercise_name, set_kind, set_number, reps, weight, duration, distance
		 FROM workout_sets
		 WHERE workout_id = $1 AND user_id = $2
		 ORDER BY set_number ASC`,
		workoutID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSetRow
	for rows.Next() {
		var s models.WorkoutSetRow
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.UserID, &s.ExerciseName, &s.SetKind,
			&s.SetNumber, &s.Reps, &s.Weight, &s.Duration, &s.Distance); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
