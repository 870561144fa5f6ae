package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/jackc/pgx/v5"
)

const documentColumns = "id, user_id, file_name, file_path, file_size, mime_type, category, status, admin_notes, created_at, updated_at"

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.UserID, &d.FileName, &d.FilePath, &d.FileSize, &d.MimeType,
		&d.Category, &d.Status, &d.AdminNotes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (db *Database) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]models.Document, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

// ListDocumentsByUser returns one user's documents, newest first.
func (db *Database) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return db.queryDocuments(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

// ListAllDocuments returns every document, newest first, for the admin
// review queue.
func (db *Database) ListAllDocuments(ctx context.Context) ([]models.Document, error) {
	return db.queryDocuments(ctx,
		"SELECT " + documentColumns + " FROM documents ORDER BY created_at DESC")
}

// InsertDocument records metadata for an object already written to storage.
func (db *Database) InsertDocument(ctx context.Context, userID, fileName, filePath string, fileSize int64, mimeType string, category *string) (*models.Document, error) {
	row := db.Pool.QueryRow(ctx, `
        INSERT INTO documents (user_id, file_name, file_path, file_size, mime_type, category, status)
        VALUES ($1, $2, $3, $4, $5, $6, 'uploaded')
        RETURNING `+documentColumns,
		userID, fileName, filePath, fileSize, mimeType, category)
	d, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return d, nil
}

// GetDocument fetches one document within the given scope: owners see their
// own rows, admins see all. Returns (nil, nil) when absent or scoped out.
func (db *Database) GetDocument(ctx context.Context, id string, scope Scope) (*models.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents WHERE id = $1"
	args := []interface{}{id}
	if !scope.Admin {
		query += " AND user_id = $2"
		args = append(args, scope.UserID)
	}
	d, err := scanDocument(db.Pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return d, nil
}

// DeleteDocument removes the metadata record for an owner's document.
func (db *Database) DeleteDocument(ctx context.Context, id, userID string) error {
	result, err := db.Pool.Exec(ctx,
		"DELETE FROM documents WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDocumentReview sets status and/or admin notes. Nil fields are left
// unchanged. Returns (nil, nil) when no such document exists.
func (db *Database) UpdateDocumentReview(ctx context.Context, id string, status *models.DocumentStatus, adminNotes *string) (*models.Document, error) {
	row := db.Pool.QueryRow(ctx, `
        UPDATE documents
        SET status = COALESCE($2, status),
            admin_notes = COALESCE($3, admin_notes),
            updated_at = NOW()
        WHERE id = $1
        RETURNING `+documentColumns,
		id, status, adminNotes)
	d, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return d, nil
}

// CountDocumentsByStatus counts documents in one review state.
func (db *Database) CountDocumentsByStatus(ctx context.Context, status models.DocumentStatus) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		"SELECT COUNT(1) FROM documents WHERE status = $1", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}
