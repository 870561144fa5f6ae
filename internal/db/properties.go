package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/jackc/pgx/v5"
)

const propertyColumns = `id, lead_type, county, property_address, city, zip, apn,
    owner_name, owner_mailing_address, estimated_value, outstanding_debt,
    estimated_equity, opening_bid, recording_date, document_number, case_number,
    sale_date, notes, source, status, uploaded_by, created_at, updated_at`

// propertySortColumns is the allowlist for ORDER BY. Anything outside it is
// rejected before reaching the query builder.
var propertySortColumns = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"property_address": true,
	"city":             true,
	"zip":              true,
	"county":           true,
	"lead_type":        true,
	"status":           true,
	"owner_name":       true,
	"estimated_value":  true,
	"outstanding_debt": true,
	"estimated_equity": true,
	"opening_bid":      true,
	"recording_date":   true,
	"sale_date":        true,
}

// ValidPropertySortColumn reports whether col may be used as a sort key.
func ValidPropertySortColumn(col string) bool {
	return propertySortColumns[col]
}

// PropertyFilter is the full set of list parameters. ActiveOnly is forced on
// for investor queries regardless of other filters.
type PropertyFilter struct {
	County     string
	LeadType   string
	Status     string
	City       string
	Zip        string
	Search     string
	MinEquity  *float64
	MaxEquity  *float64
	DateFrom   string
	DateTo     string
	ActiveOnly bool
	SortBy     string
	SortAsc    bool
	Page       int
	Limit      int
}

func scanProperty(row pgx.Row) (*models.DistressedProperty, error) {
	var p models.DistressedProperty
	err := row.Scan(&p.ID, &p.LeadType, &p.County, &p.PropertyAddress, &p.City, &p.Zip, &p.APN,
		&p.OwnerName, &p.OwnerMailingAddress, &p.EstimatedValue, &p.OutstandingDebt,
		&p.EstimatedEquity, &p.OpeningBid, &p.RecordingDate, &p.DocumentNumber, &p.CaseNumber,
		&p.SaleDate, &p.Notes, &p.Source, &p.Status, &p.UploadedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProperties runs one filtered, paginated query plus a matching count.
func (db *Database) ListProperties(ctx context.Context, f PropertyFilter) ([]models.DistressedProperty, int, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.ActiveOnly {
		conds = append(conds, "status = 'active'")
	} else if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.County != "" {
		add("county = $%d", f.County)
	}
	if f.LeadType != "" {
		add("lead_type = $%d", f.LeadType)
	}
	if f.City != "" {
		add("city ILIKE $%d", "%"+f.City+"%")
	}
	if f.Zip != "" {
		add("zip = $%d", f.Zip)
	}
	if f.MinEquity != nil {
		add("estimated_equity >= $%d", *f.MinEquity)
	}
	if f.MaxEquity != nil {
		add("estimated_equity <= $%d", *f.MaxEquity)
	}
	if f.DateFrom != "" {
		add("recording_date >= $%d", f.DateFrom)
	}
	if f.DateTo != "" {
		add("recording_date <= $%d", f.DateTo)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(property_address ILIKE $%d OR owner_name ILIKE $%d OR apn ILIKE $%d OR city ILIKE $%d)",
			n, n, n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := db.Pool.QueryRow(ctx, "SELECT COUNT(1) FROM distressed_properties"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	sortBy := f.SortBy
	if !propertySortColumns[sortBy] {
		sortBy = "created_at"
	}
	direction := "DESC"
	if f.SortAsc {
		direction = "ASC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 25
	}
	offset := (page - 1) * limit

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT %s FROM distressed_properties%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		propertyColumns, where, sortBy, direction, len(args)-1, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []models.DistressedProperty
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating properties: %w", err)
	}
	return properties, total, nil
}

const insertPropertySQL = `
    INSERT INTO distressed_properties
        (lead_type, county, property_address, city, zip, apn, owner_name,
         owner_mailing_address, estimated_value, outstanding_debt, estimated_equity,
         opening_bid, recording_date, document_number, case_number, sale_date,
         notes, source, status, uploaded_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

func propertyInsertArgs(p models.DistressedProperty) []interface{} {
	return []interface{}{
		p.LeadType, p.County, p.PropertyAddress, p.City, p.Zip, p.APN, p.OwnerName,
		p.OwnerMailingAddress, p.EstimatedValue, p.OutstandingDebt, p.EstimatedEquity,
		p.OpeningBid, p.RecordingDate, p.DocumentNumber, p.CaseNumber, p.SaleDate,
		p.Notes, p.Source, p.Status, p.UploadedBy,
	}
}

// InsertProperty creates one lead and returns the stored row.
func (db *Database) InsertProperty(ctx context.Context, p models.DistressedProperty) (*models.DistressedProperty, error) {
	row := db.Pool.QueryRow(ctx, insertPropertySQL+" RETURNING "+propertyColumns, propertyInsertArgs(p)...)
	stored, err := scanProperty(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert property: %w", err)
	}
	return stored, nil
}

// BulkInsertProperties inserts all accepted CSV rows in one transaction.
func (db *Database) BulkInsertProperties(ctx context.Context, properties []models.DistressedProperty) (int, error) {
	if len(properties) == 0 {
		return 0, nil
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, p := range properties {
		if _, err := tx.Exec(ctx, insertPropertySQL, propertyInsertArgs(p)...); err != nil {
			return 0, fmt.Errorf("failed to insert property row: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// UpdateProperty rewrites a lead's mutable fields. Returns (nil, nil) when no
// such property exists.
func (db *Database) UpdateProperty(ctx context.Context, id string, p models.DistressedProperty) (*models.DistressedProperty, error) {
	row := db.Pool.QueryRow(ctx, `
        UPDATE distressed_properties
        SET lead_type = $2, county = $3, property_address = $4, city = $5, zip = $6,
            apn = $7, owner_name = $8, owner_mailing_address = $9, estimated_value = $10,
            outstanding_debt = $11, estimated_equity = $12, opening_bid = $13,
            recording_date = $14, document_number = $15, case_number = $16, sale_date = $17,
            notes = $18, source = $19, status = $20, updated_at = NOW()
        WHERE id = $1
        RETURNING `+propertyColumns,
		append([]interface{}{id}, propertyInsertArgs(p)[:19]...)...)
	stored, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return stored, nil
}

// DeleteProperty permanently removes a lead.
func (db *Database) DeleteProperty(ctx context.Context, id string) error {
	result, err := db.Pool.Exec(ctx, "DELETE FROM distressed_properties WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetActiveProperty fetches one active lead. Returns (nil, nil) when absent
// or not active.
func (db *Database) GetActiveProperty(ctx context.Context, id string) (*models.DistressedProperty, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+propertyColumns+" FROM distressed_properties WHERE id = $1 AND status = 'active'", id)
	p, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	return p, nil
}

// CountActiveByLeadType returns per-lead-type counts of active properties.
func (db *Database) CountActiveByLeadType(ctx context.Context) (map[models.LeadType]int, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT lead_type, COUNT(1) FROM distressed_properties WHERE status = 'active' GROUP BY lead_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.LeadType]int)
	for rows.Next() {
		var lt models.LeadType
		var n int
		if err := rows.Scan(&lt, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[lt] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return counts, nil
}

// RecentActiveProperties returns the n most recently added active leads.
func (db *Database) RecentActiveProperties(ctx context.Context, n int) ([]models.DistressedProperty, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+propertyColumns+" FROM distressed_properties WHERE status = 'active' ORDER BY created_at DESC LIMIT $1", n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent properties: %w", err)
	}
	defer rows.Close()

	var properties []models.DistressedProperty
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}
	return properties, nil
}
