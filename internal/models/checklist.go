package models

import "time"

// ChecklistProgress is one checkbox of the foreclosure-prevention checklist,
// unique per (user_id, category_index, item_index) and written with upsert
// semantics. CheckedAt is set when the box is checked and cleared when it is
// unchecked.
type ChecklistProgress struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	CategoryIndex int        `json:"category_index" db:"category_index"`
	ItemIndex     int        `json:"item_index" db:"item_index"`
	IsChecked     bool       `json:"is_checked" db:"is_checked"`
	CheckedAt     *time.Time `json:"checked_at" db:"checked_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
