package models

import (
	"encoding/json"
	"time"
)

// CsvUpload is the audit record of one bulk import: how many rows landed,
// how many failed, and the per-row errors for later dispute resolution.
type CsvUpload struct {
	ID         string          `json:"id" db:"id"`
	UploadedBy *string         `json:"uploaded_by" db:"uploaded_by"`
	FileName   string          `json:"file_name" db:"file_name"`
	LeadType   LeadType        `json:"lead_type" db:"lead_type"`
	County     County          `json:"county" db:"county"`
	RowCount   int             `json:"row_count" db:"row_count"`
	ErrorCount int             `json:"error_count" db:"error_count"`
	Errors     json.RawMessage `json:"errors" db:"errors"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
