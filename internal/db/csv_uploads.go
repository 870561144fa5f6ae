package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HighviewOne/sonderbe/internal/models"
)

const csvUploadColumns = "id, uploaded_by, file_name, lead_type, county, row_count, error_count, errors, created_at"

// InsertCsvUpload records the audit trail of one bulk import. errs is nil
// when every row imported cleanly.
func (db *Database) InsertCsvUpload(ctx context.Context, uploadedBy *string, fileName string, leadType models.LeadType, county models.County, rowCount, errorCount int, errs json.RawMessage) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO csv_uploads (uploaded_by, file_name, lead_type, county, row_count, error_count, errors)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uploadedBy, fileName, leadType, county, rowCount, errorCount, errs)
	if err != nil {
		return fmt.Errorf("failed to insert csv upload record: %w", err)
	}
	return nil
}

// ListCsvUploads returns the most recent import audit records.
func (db *Database) ListCsvUploads(ctx context.Context, limit int) ([]models.CsvUpload, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+csvUploadColumns+" FROM csv_uploads ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query csv uploads: %w", err)
	}
	defer rows.Close()

	var uploads []models.CsvUpload
	for rows.Next() {
		var u models.CsvUpload
		err := rows.Scan(&u.ID, &u.UploadedBy, &u.FileName, &u.LeadType, &u.County,
			&u.RowCount, &u.ErrorCount, &u.Errors, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan csv upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating csv uploads: %w", err)
	}
	return uploads, nil
}
