package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/jackc/pgx/v5"
)

const submissionColumns = "id, user_id, name, email, phone, situation, message, status, admin_notes, created_at, updated_at"

func scanSubmission(row pgx.Row) (*models.ContactSubmission, error) {
	var s models.ContactSubmission
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Email, &s.Phone, &s.Situation,
		&s.Message, &s.Status, &s.AdminNotes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSubmission inserts a contact-form post. userID is nil for anonymous
// submissions.
func (db *Database) CreateSubmission(ctx context.Context, userID *string, name, email, phone, situation string, message *string) (*models.ContactSubmission, error) {
	row := db.Pool.QueryRow(ctx, `
        INSERT INTO contact_submissions (user_id, name, email, phone, situation, message, status)
        VALUES ($1, $2, $3, $4, $5, $6, 'new')
        RETURNING `+submissionColumns,
		userID, name, email, phone, situation, message)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}
	return s, nil
}

// ListSubmissions returns all submissions for admins, or only the caller's
// own rows otherwise. Newest first.
func (db *Database) ListSubmissions(ctx context.Context, scope Scope) ([]models.ContactSubmission, error) {
	query := "SELECT " + submissionColumns + " FROM contact_submissions"
	args := []interface{}{}
	if !scope.Admin {
		query += " WHERE user_id = $1"
		args = append(args, scope.UserID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.ContactSubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return submissions, nil
}

// ListSubmissionsByUser returns one client's submissions, newest first.
func (db *Database) ListSubmissionsByUser(ctx context.Context, userID string) ([]models.ContactSubmission, error) {
	return db.ListSubmissions(ctx, Scope{UserID: userID})
}

// UpdateSubmissionReview sets status and/or admin notes. Nil fields are left
// unchanged. Returns (nil, nil) when no such submission exists.
func (db *Database) UpdateSubmissionReview(ctx context.Context, id string, status *models.SubmissionStatus, adminNotes *string) (*models.ContactSubmission, error) {
	row := db.Pool.QueryRow(ctx, `
        UPDATE contact_submissions
        SET status = COALESCE($2, status),
            admin_notes = COALESCE($3, admin_notes),
            updated_at = NOW()
        WHERE id = $1
        RETURNING `+submissionColumns,
		id, status, adminNotes)
	s, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}
	return s, nil
}
