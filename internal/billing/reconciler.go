package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HighviewOne/sonderbe/internal/logging"
	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/stripe/stripe-go/v82"
)

// HandleEvent synchronizes local subscription and role state to the
// processor's view. Delivery is at-least-once, so every arm is an idempotent
// overwrite: replaying an event leaves state unchanged. Unknown event types
// are acknowledged and ignored.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case stripe.EventTypeCustomerSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, event)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		logging.LogKV("info", "ignoring webhook event", map[string]interface{}{"type": string(event.Type)})
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to decode checkout session: %w", err)
	}

	userID := sess.Metadata["user_id"]
	if userID == "" || sess.Subscription == nil || sess.Subscription.ID == "" {
		logging.LogKV("warn", "checkout completed without user or subscription", map[string]interface{}{
			"event_id": event.ID,
		})
		return nil
	}

	sub, err := s.retrieveSubscription(sess.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve subscription: %w", err)
	}

	planID := s.cfg.PriceID
	start, end := subscriptionPeriod(sub)
	if err := s.store.ActivateSubscription(ctx, userID, sub.ID, start, end, planID); err != nil {
		return err
	}
	if err := s.store.SetProfileRole(ctx, userID, models.RoleInvestor); err != nil {
		return err
	}

	logging.LogKV("info", "subscription activated", map[string]interface{}{
		"user_id": userID, "subscription_id": sub.ID,
	})
	return nil
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to decode subscription: %w", err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return nil
	}
	customerID := sub.Customer.ID

	userID, found, err := s.store.SubscriptionUserByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if !found {
		logging.LogKV("warn", "subscription update for unknown customer", map[string]interface{}{
			"customer_id": customerID,
		})
		return nil
	}

	status := MapSubscriptionStatus(sub.Status)
	start, end := subscriptionPeriod(&sub)
	if err := s.store.UpdateSubscriptionStatus(ctx, customerID, status, start, end); err != nil {
		return err
	}
	if status == models.SubscriptionStatusCanceled {
		if err := s.store.SetProfileRole(ctx, userID, models.RoleClient); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to decode subscription: %w", err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return nil
	}
	customerID := sub.Customer.ID

	userID, found, err := s.store.SubscriptionUserByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if err := s.store.CancelSubscription(ctx, customerID); err != nil {
		return err
	}
	return s.store.SetProfileRole(ctx, userID, models.RoleClient)
}

// MapSubscriptionStatus folds the processor's status vocabulary onto the
// local enum; anything unrecognized is inactive.
func MapSubscriptionStatus(status stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return models.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue:
		return models.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusTrialing:
		return models.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusCanceled:
		return models.SubscriptionStatusCanceled
	default:
		return models.SubscriptionStatusInactive
	}
}

// subscriptionPeriod reads the current billing period. Recent Stripe API
// versions report it on the subscription item.
func subscriptionPeriod(sub *stripe.Subscription) (time.Time, time.Time) {
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		return time.Unix(item.CurrentPeriodStart, 0).UTC(), time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	return time.Time{}, time.Time{}
}
