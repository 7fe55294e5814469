package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/ironquest/internal/engine"
	"github.com/meltforce/ironquest/internal/models"
)

// ErrStatsConflict means a compare-and-swap stats update lost a race with a
// concurrent writer. The finish-workout operation is retryable: re-read the
// stats and recompute.
var ErrStatsConflict = errors.New("user stats were modified concurrently")

// GetOrCreateUser finds or creates a user by login name. Returns the user ID.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// GetUserStats reads a user's stats document, creating the initial row
// (level 1, everything else zero) on first touch.
func (db *DB) GetUserStats(ctx context.Context, userID int) (*models.UserStatsRow, error) {
	row, err := db.scanStats(ctx, userID)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("querying user stats: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("creating user stats: %w", err)
	}
	return db.scanStats(ctx, userID)
}

func (db *DB) scanStats(ctx context.Context, userID int) (*models.UserStatsRow, error) {
	s := &models.UserStatsRow{UserID: userID, GroupXP: make(map[string]int, len(engine.MuscleGroups))}
	var chest, back, legs, shoulders, arms, core, cardio int

	err := db.Pool.QueryRow(ctx, `
		SELECT xp, gold, level,
		       chest_xp, back_xp, legs_xp, shoulders_xp, arms_xp, core_xp, cardio_xp,
		       total_workouts, total_sets, total_reps, total_volume, total_duration, version
		FROM user_stats WHERE user_id = $1
	`, userID).Scan(
		&s.XP, &s.Gold, &s.Level,
		&chest, &back, &legs, &shoulders, &arms, &core, &cardio,
		&s.TotalWorkouts, &s.TotalSets, &s.TotalReps, &s.TotalVolume, &s.TotalDuration, &s.Version,
	)
	if err != nil {
		return nil, err
	}

	s.GroupXP[string(engine.Chest)] = chest
	s.GroupXP[string(engine.Back)] = back
	s.GroupXP[string(engine.Legs)] = legs
	s.GroupXP[string(engine.Shoulders)] = shoulders
	s.GroupXP[string(engine.Arms)] = arms
	s.GroupXP[string(engine.Core)] = core
	s.GroupXP[string(engine.Cardio)] = cardio
	return s, nil
}
