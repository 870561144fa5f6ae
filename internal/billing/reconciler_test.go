package billing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/stripe/stripe-go/v82"
)

// fakeStore records subscription and role state in memory.
type fakeStore struct {
	profiles      map[string]*models.Profile
	roles         map[string]models.Role
	subscriptions map[string]*models.InvestorSubscription // by user id
	customers     map[string]string                       // customer id -> user id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:      make(map[string]*models.Profile),
		roles:         make(map[string]models.Role),
		subscriptions: make(map[string]*models.InvestorSubscription),
		customers:     make(map[string]string),
	}
}

func (f *fakeStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return f.profiles[id], nil
}

func (f *fakeStore) SubscriptionByUser(ctx context.Context, userID string) (*models.InvestorSubscription, error) {
	return f.subscriptions[userID], nil
}

func (f *fakeStore) SubscriptionUserByCustomer(ctx context.Context, customerID string) (string, bool, error) {
	userID, ok := f.customers[customerID]
	return userID, ok, nil
}

func (f *fakeStore) UpsertSubscriptionCustomer(ctx context.Context, userID, customerID string) error {
	f.customers[customerID] = userID
	f.subscriptions[userID] = &models.InvestorSubscription{
		UserID:           userID,
		StripeCustomerID: customerID,
		Status:           models.SubscriptionStatusInactive,
	}
	return nil
}

func (f *fakeStore) ActivateSubscription(ctx context.Context, userID, subscriptionID string, periodStart, periodEnd time.Time, planID string) error {
	sub := f.subscriptions[userID]
	if sub == nil {
		sub = &models.InvestorSubscription{UserID: userID}
		f.subscriptions[userID] = sub
	}
	sub.StripeSubscriptionID = &subscriptionID
	sub.Status = models.SubscriptionStatusActive
	sub.CurrentPeriodStart = &periodStart
	sub.CurrentPeriodEnd = &periodEnd
	sub.PlanID = &planID
	return nil
}

func (f *fakeStore) UpdateSubscriptionStatus(ctx context.Context, customerID string, status models.SubscriptionStatus, periodStart, periodEnd time.Time) error {
	if userID, ok := f.customers[customerID]; ok {
		if sub := f.subscriptions[userID]; sub != nil {
			sub.Status = status
			sub.CurrentPeriodStart = &periodStart
			sub.CurrentPeriodEnd = &periodEnd
		}
	}
	return nil
}

func (f *fakeStore) CancelSubscription(ctx context.Context, customerID string) error {
	if userID, ok := f.customers[customerID]; ok {
		if sub := f.subscriptions[userID]; sub != nil {
			sub.Status = models.SubscriptionStatusCanceled
		}
	}
	return nil
}

func (f *fakeStore) SetProfileRole(ctx context.Context, id string, role models.Role) error {
	f.roles[id] = role
	return nil
}

func testService(store Store) *Service {
	return &Service{
		cfg:   Config{PriceID: "price_test"},
		store: store,
		retrieveSubscription: func(id string) (*stripe.Subscription, error) {
			return &stripe.Subscription{
				ID:     id,
				Status: stripe.SubscriptionStatusActive,
				Items: &stripe.SubscriptionItemList{
					Data: []*stripe.SubscriptionItem{
						{CurrentPeriodStart: 1700000000, CurrentPeriodEnd: 1702592000},
					},
				},
			}, nil
		},
	}
}

func checkoutCompletedEvent(t *testing.T, userID, subscriptionID string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"metadata":     map[string]string{"user_id": userID},
		"subscription": subscriptionID,
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return stripe.Event{
		ID:   "evt_1",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func subscriptionEvent(t *testing.T, eventType stripe.EventType, customerID, status string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"customer": customerID,
		"status":   status,
		"items": map[string]interface{}{
			"data": []map[string]interface{}{
				{"current_period_start": 1700000000, "current_period_end": 1702592000},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return stripe.Event{
		ID:   "evt_2",
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestCheckoutCompletedActivatesAndPromotes(t *testing.T) {
	store := newFakeStore()
	store.customers["cus_1"] = "user-1"
	store.subscriptions["user-1"] = &models.InvestorSubscription{
		UserID: "user-1", StripeCustomerID: "cus_1", Status: models.SubscriptionStatusInactive,
	}
	svc := testService(store)

	event := checkoutCompletedEvent(t, "user-1", "sub_123")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	sub := store.subscriptions["user-1"]
	if sub.Status != models.SubscriptionStatusActive {
		t.Errorf("expected active subscription, got %s", sub.Status)
	}
	if sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID != "sub_123" {
		t.Errorf("subscription id not stored: %+v", sub.StripeSubscriptionID)
	}
	if sub.CurrentPeriodStart == nil || sub.CurrentPeriodStart.Unix() != 1700000000 {
		t.Errorf("period start not stored: %+v", sub.CurrentPeriodStart)
	}
	if store.roles["user-1"] != models.RoleInvestor {
		t.Errorf("expected investor role, got %s", store.roles["user-1"])
	}

	// Webhook delivery is at-least-once; a replay must not change the outcome.
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("replayed HandleEvent: %v", err)
	}
	if store.subscriptions["user-1"].Status != models.SubscriptionStatusActive {
		t.Errorf("replay changed subscription status")
	}
	if store.roles["user-1"] != models.RoleInvestor {
		t.Errorf("replay changed role")
	}
}

func TestCheckoutCompletedWithoutUserIsIgnored(t *testing.T) {
	store := newFakeStore()
	svc := testService(store)

	raw, _ := json.Marshal(map[string]interface{}{"subscription": "sub_999"})
	event := stripe.Event{Type: stripe.EventTypeCheckoutSessionCompleted, Data: &stripe.EventData{Raw: raw}}

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(store.roles) != 0 || len(store.subscriptions) != 0 {
		t.Error("event without user metadata must not mutate state")
	}
}

func TestSubscriptionCanceledDemotesRole(t *testing.T) {
	store := newFakeStore()
	store.customers["cus_2"] = "user-2"
	store.subscriptions["user-2"] = &models.InvestorSubscription{
		UserID: "user-2", StripeCustomerID: "cus_2", Status: models.SubscriptionStatusActive,
	}
	store.roles["user-2"] = models.RoleInvestor
	svc := testService(store)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, "cus_2", "canceled")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if store.subscriptions["user-2"].Status != models.SubscriptionStatusCanceled {
		t.Errorf("expected canceled, got %s", store.subscriptions["user-2"].Status)
	}
	if store.roles["user-2"] != models.RoleClient {
		t.Errorf("expected demotion to client, got %s", store.roles["user-2"])
	}
}

func TestSubscriptionPastDueKeepsRole(t *testing.T) {
	store := newFakeStore()
	store.customers["cus_3"] = "user-3"
	store.subscriptions["user-3"] = &models.InvestorSubscription{
		UserID: "user-3", StripeCustomerID: "cus_3", Status: models.SubscriptionStatusActive,
	}
	store.roles["user-3"] = models.RoleInvestor
	svc := testService(store)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, "cus_3", "past_due")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if store.subscriptions["user-3"].Status != models.SubscriptionStatusPastDue {
		t.Errorf("expected past_due, got %s", store.subscriptions["user-3"].Status)
	}
	if store.roles["user-3"] != models.RoleInvestor {
		t.Errorf("past_due must not demote, got %s", store.roles["user-3"])
	}
}

func TestSubscriptionDeletedCancelsAndDemotes(t *testing.T) {
	store := newFakeStore()
	store.customers["cus_4"] = "user-4"
	store.subscriptions["user-4"] = &models.InvestorSubscription{
		UserID: "user-4", StripeCustomerID: "cus_4", Status: models.SubscriptionStatusActive,
	}
	store.roles["user-4"] = models.RoleInvestor
	svc := testService(store)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionDeleted, "cus_4", "canceled")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if store.subscriptions["user-4"].Status != models.SubscriptionStatusCanceled {
		t.Errorf("expected canceled, got %s", store.subscriptions["user-4"].Status)
	}
	if store.roles["user-4"] != models.RoleClient {
		t.Errorf("expected demotion to client, got %s", store.roles["user-4"])
	}
}

func TestUnknownCustomerIsIgnored(t *testing.T) {
	store := newFakeStore()
	svc := testService(store)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, "cus_unknown", "active")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown customer should be acknowledged, got %v", err)
	}
	if len(store.subscriptions) != 0 {
		t.Error("unknown customer must not create records")
	}
}

func TestUnknownEventTypeIsAcknowledged(t *testing.T) {
	svc := testService(newFakeStore())
	event := stripe.Event{Type: "invoice.finalized", Data: &stripe.EventData{Raw: []byte("{}")}}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unhandled event types must be acknowledged, got %v", err)
	}
}

func TestMapSubscriptionStatus(t *testing.T) {
	cases := []struct {
		in   stripe.SubscriptionStatus
		want models.SubscriptionStatus
	}{
		{stripe.SubscriptionStatusActive, models.SubscriptionStatusActive},
		{stripe.SubscriptionStatusTrialing, models.SubscriptionStatusTrialing},
		{stripe.SubscriptionStatusPastDue, models.SubscriptionStatusPastDue},
		{stripe.SubscriptionStatusCanceled, models.SubscriptionStatusCanceled},
		{stripe.SubscriptionStatusIncomplete, models.SubscriptionStatusInactive},
		{stripe.SubscriptionStatusUnpaid, models.SubscriptionStatusInactive},
	}
	for _, tc := range cases {
		if got := MapSubscriptionStatus(tc.in); got != tc.want {
			t.Errorf("MapSubscriptionStatus(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
