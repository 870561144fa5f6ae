package models

import "time"

// SubscriptionStatus mirrors the payment processor's subscription state onto
// the local vocabulary. Anything the processor reports outside this set maps
// to inactive.
type SubscriptionStatus string

const (
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscribed reports whether the status grants access to investor routes.
func (s SubscriptionStatus) Subscribed() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

// InvestorSubscription mirrors the processor-side subscription for one user.
// Role promotion and demotion are driven exclusively by webhook events
// updating this record, never by client calls.
type InvestorSubscription struct {
	ID                   string             `json:"id" db:"id"`
	UserID               string             `json:"user_id" db:"user_id"`
	StripeCustomerID     string             `json:"stripe_customer_id" db:"stripe_customer_id"`
	StripeSubscriptionID *string            `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	Status               SubscriptionStatus `json:"status" db:"status"`
	CurrentPeriodStart   *time.Time         `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end" db:"current_period_end"`
	PlanID               *string            `json:"plan_id" db:"plan_id"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}
