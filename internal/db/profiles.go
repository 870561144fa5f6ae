package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/jackc/pgx/v5"
)

const profileColumns = "id, email, full_name, phone, role, created_at, updated_at"

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Phone, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile fetches one profile by id. Returns (nil, nil) when no row exists.
func (db *Database) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	row := db.Pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", id)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}

// GetProfileRole resolves the role for an authenticated subject. The second
// return value distinguishes a missing profile row (sign-up race) from an
// actual role.
func (db *Database) GetProfileRole(ctx context.Context, id string) (models.Role, bool, error) {
	var role models.Role
	err := db.Pool.QueryRow(ctx, "SELECT role FROM profiles WHERE id = $1", id).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query profile role: %w", err)
	}
	return role, true, nil
}

// ListProfilesByRole returns all profiles with the given role, newest first.
func (db *Database) ListProfilesByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE role = $1 ORDER BY created_at DESC", role)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

// ProfilesByIDs fetches the given profiles keyed by id, for joining client
// names onto other listings.
func (db *Database) ProfilesByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	result := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := db.Pool.Query(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		result[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return result, nil
}

// SetProfileRole promotes or demotes a user. Driven only by the billing
// reconciler, never by client-initiated calls.
func (db *Database) SetProfileRole(ctx context.Context, id string, role models.Role) error {
	_, err := db.Pool.Exec(ctx,
		"UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1", id, role)
	if err != nil {
		return fmt.Errorf("failed to update profile role: %w", err)
	}
	return nil
}
