package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/ironquest/internal/models"
)

// EquippedItems returns the user's currently equipped items.
func (db *DB) EquippedItems(ctx context.Context, userID int) ([]models.EquippedItemRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, item_id, slot_type, equipped_at
		 FROM equipped_items
		 WHERE user_id = $1
		 ORDER BY slot_type ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying equipped items: %w", err)
	}
	defer rows.Close()

	var result []models.EquippedItemRow
	for rows.Next() {
		var e models.EquippedItemRow
		if err := rows.Scan(&e.UserID, &e.ItemID, &e.SlotType, &e.EquippedAt); err != nil {
			return nil, fmt.Errorf("scanning equipped item: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// EquipItem equips an item into its slot, replacing whatever occupied the
// slot before. The unequip-then-equip runs in one transaction so the
// one-item-per-slot invariant holds even if the caller crashes between steps.
func (db *DB) EquipItem(ctx context.Context, userID int, itemID, slotType string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning equip tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM equipped_items WHERE user_id = $1 AND slot_type = $2`,
		userID, slotType); err != nil {
		return fmt.Errorf("unequipping slot %s: %w", slotType, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO equipped_items (user_id, item_id, slot_type) VALUES ($1, $2, $3)`,
		userID, itemID, slotType); err != nil {
		return fmt.Errorf("equipping item %s: %w", itemID, err)
	}

	return tx.Commit(ctx)
}

// UnequipItem removes an item from the user's equipment. Unequipping an
// item that is not equipped is a no-op.
func (db *DB) UnequipItem(ctx context.Context, userID int, itemID string) error {
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM equipped_items WHERE user_id = $1 AND item_id = $2`,
		userID, itemID); err != nil {
		return fmt.Errorf("unequipping item %s: %w", itemID, err)
	}
	return nil
}
