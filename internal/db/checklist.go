package db

import (
	"context"
	"fmt"
	"time"

	"github.com/HighviewOne/sonderbe/internal/models"
)

const checklistColumns = "id, user_id, category_index, item_index, is_checked, checked_at, created_at"

// ListChecklist returns all checklist rows for one user.
func (db *Database) ListChecklist(ctx context.Context, userID string) ([]models.ChecklistProgress, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+checklistColumns+" FROM checklist_progress WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklist: %w", err)
	}
	defer rows.Close()

	var items []models.ChecklistProgress
	for rows.Next() {
		var item models.ChecklistProgress
		err := rows.Scan(&item.ID, &item.UserID, &item.CategoryIndex, &item.ItemIndex,
			&item.IsChecked, &item.CheckedAt, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist: %w", err)
	}
	return items, nil
}

// UpsertChecklistItem writes one checkbox by its composite key. Replaying the
// same call produces the same stored row; concurrent writers are
// last-write-wins.
func (db *Database) UpsertChecklistItem(ctx context.Context, userID string, categoryIndex, itemIndex int, isChecked bool) (*models.ChecklistProgress, error) {
	var checkedAt *time.Time
	if isChecked {
		now := time.Now().UTC()
		checkedAt = &now
	}

	var item models.ChecklistProgress
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO checklist_progress (user_id, category_index, item_index, is_checked, checked_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id, category_index, item_index)
        DO UPDATE SET is_checked = EXCLUDED.is_checked, checked_at = EXCLUDED.checked_at
        RETURNING `+checklistColumns,
		userID, categoryIndex, itemIndex, isChecked, checkedAt,
	).Scan(&item.ID, &item.UserID, &item.CategoryIndex, &item.ItemIndex,
		&item.IsChecked, &item.CheckedAt, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert checklist item: %w", err)
	}
	return &item, nil
}
