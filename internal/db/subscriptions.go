package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/jackc/pgx/v5"
)

const subscriptionColumns = `id, user_id, stripe_customer_id, stripe_subscription_id,
    status, current_period_start, current_period_end, plan_id, created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.InvestorSubscription, error) {
	var s models.InvestorSubscription
	err := row.Scan(&s.ID, &s.UserID, &s.StripeCustomerID, &s.StripeSubscriptionID,
		&s.Status, &s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.PlanID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SubscriptionByUser fetches one user's subscription record. Returns
// (nil, nil) when the user has never started checkout.
func (db *Database) SubscriptionByUser(ctx context.Context, userID string) (*models.InvestorSubscription, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+subscriptionColumns+" FROM investor_subscriptions WHERE user_id = $1", userID)
	s, err := scanSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}
	return s, nil
}

// SubscriptionUserByCustomer resolves the local user owning a processor
// customer id.
func (db *Database) SubscriptionUserByCustomer(ctx context.Context, customerID string) (string, bool, error) {
	var userID string
	err := db.Pool.QueryRow(ctx,
		"SELECT user_id FROM investor_subscriptions WHERE stripe_customer_id = $1", customerID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query subscription user: %w", err)
	}
	return userID, true, nil
}

// UpsertSubscriptionCustomer records the processor customer id for a user at
// first checkout, leaving status inactive until a webhook says otherwise.
func (db *Database) UpsertSubscriptionCustomer(ctx context.Context, userID, customerID string) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO investor_subscriptions (user_id, stripe_customer_id, status)
        VALUES ($1, $2, 'inactive')
        ON CONFLICT (user_id)
        DO UPDATE SET stripe_customer_id = EXCLUDED.stripe_customer_id, updated_at = NOW()`,
		userID, customerID)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription customer: %w", err)
	}
	return nil
}

// ActivateSubscription writes the post-checkout state. Replaying the same
// event overwrites with identical values.
func (db *Database) ActivateSubscription(ctx context.Context, userID, subscriptionID string, periodStart, periodEnd time.Time, planID string) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE investor_subscriptions
        SET stripe_subscription_id = $2, status = 'active',
            current_period_start = $3, current_period_end = $4,
            plan_id = $5, updated_at = NOW()
        WHERE user_id = $1`,
		userID, subscriptionID, periodStart, periodEnd, planID)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	return nil
}

// UpdateSubscriptionStatus reconciles the local status and period fields with
// what the processor reported.
func (db *Database) UpdateSubscriptionStatus(ctx context.Context, customerID string, status models.SubscriptionStatus, periodStart, periodEnd time.Time) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE investor_subscriptions
        SET status = $2, current_period_start = $3, current_period_end = $4, updated_at = NOW()
        WHERE stripe_customer_id = $1`,
		customerID, status, periodStart, periodEnd)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	return nil
}

// CancelSubscription forces the local record to canceled.
func (db *Database) CancelSubscription(ctx context.Context, customerID string) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE investor_subscriptions
        SET status = 'canceled', updated_at = NOW()
        WHERE stripe_customer_id = $1`,
		customerID)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return nil
}

// SubscriptionsByUserIDs fetches subscriptions keyed by user id, for the
// admin investor listing.
func (db *Database) SubscriptionsByUserIDs(ctx context.Context, userIDs []string) (map[string]models.InvestorSubscription, error) {
	result := make(map[string]models.InvestorSubscription, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	rows, err := db.Pool.Query(ctx,
		"SELECT "+subscriptionColumns+" FROM investor_subscriptions WHERE user_id = ANY($1)", userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		result[s.UserID] = *s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}
	return result, nil
}
