package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

var (
	// ErrNoProfile means the authenticated user has no profile row to bill.
	ErrNoProfile = errors.New("profile not found")
	// ErrNoSubscription means the user never started checkout.
	ErrNoSubscription = errors.New("no subscription found")
	// ErrNotConfigured means the Stripe price or key is missing from the environment.
	ErrNotConfigured = errors.New("billing not configured")
)

// Config carries the Stripe environment for this deployment.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	FrontendURL   string
}

// Store is the slice of persistence the billing flow needs. *db.Database
// satisfies it.
type Store interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	SubscriptionByUser(ctx context.Context, userID string) (*models.InvestorSubscription, error)
	SubscriptionUserByCustomer(ctx context.Context, customerID string) (string, bool, error)
	UpsertSubscriptionCustomer(ctx context.Context, userID, customerID string) error
	ActivateSubscription(ctx context.Context, userID, subscriptionID string, periodStart, periodEnd time.Time, planID string) error
	UpdateSubscriptionStatus(ctx context.Context, customerID string, status models.SubscriptionStatus, periodStart, periodEnd time.Time) error
	CancelSubscription(ctx context.Context, customerID string) error
	SetProfileRole(ctx context.Context, id string, role models.Role) error
}

// Service owns the checkout, portal, and webhook-reconciliation flows.
type Service struct {
	cfg   Config
	store Store

	// retrieveSubscription fetches full subscription detail from the
	// processor; swapped out in tests.
	retrieveSubscription func(id string) (*stripe.Subscription, error)
}

// New builds the billing service and installs the Stripe API key.
func New(cfg Config, store Store) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{
		cfg:   cfg,
		store: store,
		retrieveSubscription: func(id string) (*stripe.Subscription, error) {
			return subscription.Get(id, nil)
		},
	}
}

// CreateCheckout starts a subscription checkout for userID and returns the
// hosted payment page URL. At most one processor customer is created per
// user: an existing stripe_customer_id is always reused.
func (s *Service) CreateCheckout(ctx context.Context, userID string) (string, error) {
	if s.cfg.SecretKey == "" || s.cfg.PriceID == "" {
		return "", ErrNotConfigured
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", ErrNoProfile
	}

	existing, err := s.store.SubscriptionByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	var customerID string
	if existing != nil && existing.StripeCustomerID != "" {
		customerID = existing.StripeCustomerID
	} else {
		params := &stripe.CustomerParams{Email: stripe.String(profile.Email)}
		if profile.FullName != nil {
			params.Name = stripe.String(*profile.FullName)
		}
		params.AddMetadata("user_id", userID)

		cust, err := customer.New(params)
		if err != nil {
			return "", fmt.Errorf("failed to create customer: %w", err)
		}
		customerID = cust.ID

		if err := s.store.UpsertSubscriptionCustomer(ctx, userID, customerID); err != nil {
			return "", err
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.cfg.FrontendURL + "/#/investor?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cfg.FrontendURL + "/#/investor/subscribe"),
	}
	params.AddMetadata("user_id", userID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// PortalURL creates a billing-portal session for the user's stored customer.
func (s *Service) PortalURL(ctx context.Context, userID string) (string, error) {
	sub, err := s.store.SubscriptionByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub == nil || sub.StripeCustomerID == "" {
		return "", ErrNoSubscription
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(sub.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.FrontendURL + "/#/investor/subscription"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return sess.URL, nil
}

// VerifyEvent checks the webhook signature against the shared secret. An
// unverified payload is never processed.
func (s *Service) VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, s.cfg.WebhookSecret)
}
