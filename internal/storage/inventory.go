package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/ironquest/internal/models"
)

// GrantItem adds one unit of an item to the user's inventory: increments
// the quantity if the item is already owned, inserts quantity 1 otherwise.
func (db *DB) GrantItem(ctx context.Context, userID int, itemID string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO inventory (user_id, item_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, item_id) DO UPDATE
			SET quantity = inventory.quantity + 1
	`, userID, itemID)
	if err != nil {
		return fmt.Errorf("granting item %s: %w", itemID, err)
	}
	return nil
}

// Inventory returns the user's owned items with quantities.
func (db *DB) Inventory(ctx context.Context, userID int) ([]models.InventoryRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, item_id, quantity
		 FROM inventory
		 WHERE user_id = $1
		 ORDER BY item_id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	defer rows.Close()

	var result []models.InventoryRow
	for rows.Next() {
		var r models.InventoryRow
		if err := rows.Scan(&r.UserID, &r.ItemID, &r.Quantity); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
