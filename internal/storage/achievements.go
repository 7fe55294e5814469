package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/ironquest/internal/models"
)

// InsertUnlock records an achievement unlock. Returns true if a new row was
// written, false if the (user, achievement) pair was already recorded. A
// duplicate is the expected "already unlocked" signal, never an error, so
// re-evaluating achievements after every stat change stays idempotent.
func (db *DB) InsertUnlock(ctx context.Context, userID int, achievementID string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO achievement_unlocks (user_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("inserting unlock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UnlockedAchievementIDs returns the set of achievement ids the user has
// already unlocked.
func (db *DB) UnlockedAchievementIDs(ctx context.Context, userID int) (map[string]bool, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT achievement_id FROM achievement_unlocks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying unlocks: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning unlock: %w", err)
		}
		unlocked[id] = true
	}
	return unlocked, rows.Err()
}

// Unlocks returns the user's unlock records with timestamps, newest first.
func (db *DB) Unlocks(ctx context.Context, userID int) ([]models.UnlockRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, achievement_id, unlocked_at
		 FROM achievement_unlocks
		 WHERE user_id = $1
		 ORDER BY unlocked_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying unlocks: %w", err)
	}
	defer rows.Close()

	var result []models.UnlockRow
	for rows.Next() {
		var u models.UnlockRow
		if err := rows.Scan(&u.UserID, &u.AchievementID, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scanning unlock: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
