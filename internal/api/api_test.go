package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HighviewOne/sonderbe/internal/billing"
	"github.com/HighviewOne/sonderbe/internal/db"
	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret, issuer, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestParseToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "test-secret")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	issuer := "https://example.supabase.co/auth/v1"

	subject, err := parseToken(signToken(t, "test-secret", issuer, "user-1", time.Hour))
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if subject != "user-1" {
		t.Errorf("expected subject user-1, got %s", subject)
	}

	if _, err := parseToken(signToken(t, "wrong-secret", issuer, "user-1", time.Hour)); err == nil {
		t.Error("token signed with the wrong secret accepted")
	}
	if _, err := parseToken(signToken(t, "test-secret", issuer, "user-1", -time.Hour)); err == nil {
		t.Error("expired token accepted")
	}
	if _, err := parseToken(signToken(t, "test-secret", "https://other.example.com/auth/v1", "user-1", time.Hour)); err == nil {
		t.Error("token from the wrong issuer accepted")
	}
	if _, err := parseToken(signToken(t, "test-secret", issuer, "", time.Hour)); err == nil {
		t.Error("token without a subject accepted")
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	router := gin.New()
	router.GET("/protected", RequireAuth(nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc123"},
		{"empty bearer", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tc.name, w.Code)
		}
	}
}

// setIdentity plants an authenticated identity the way RequireAuth would.
func setIdentity(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

func TestAdminOnly(t *testing.T) {
	router := gin.New()
	router.GET("/as-client", setIdentity("u1", models.RoleClient), AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/as-investor", setIdentity("u2", models.RoleInvestor), AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/as-admin", setIdentity("u3", models.RoleAdmin), AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for path, want := range map[string]int{
		"/as-client":   http.StatusForbidden,
		"/as-investor": http.StatusForbidden,
		"/as-admin":    http.StatusOK,
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, w.Code)
		}
	}
}

func TestCurrentScope(t *testing.T) {
	router := gin.New()
	router.GET("/scope", setIdentity("u1", models.RoleAdmin), func(c *gin.Context) {
		scope := CurrentScope(c)
		if scope.UserID != "u1" || !scope.Admin {
			t.Errorf("unexpected scope: %+v", scope)
		}
		c.Status(http.StatusOK)
	})
	router.GET("/anon", func(c *gin.Context) {
		scope := CurrentScope(c)
		if scope.UserID != "" || scope.Admin {
			t.Errorf("anonymous scope should be empty: %+v", scope)
		}
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/scope", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anon", nil))
}

func TestPropertyListValidation(t *testing.T) {
	handler := &Handler{}
	router := gin.New()
	router.GET("/properties", setIdentity("admin", models.RoleAdmin), handler.ListPropertiesAdmin)

	// Validation rejects these before any query runs.
	cases := []string{
		"/properties?sort_by=estimated_equity%3BDROP",
		"/properties?sort_by=unknown_column",
		"/properties?county=Atlantis",
		"/properties?lead_type=timeshare",
		"/properties?status=pending",
		"/properties?min_equity=lots",
		"/properties?max_equity=1e",
	}
	for _, path := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestChecklistUpdateValidation(t *testing.T) {
	handler := &Handler{}
	router := gin.New()
	router.PUT("/checklist", setIdentity("u1", models.RoleClient), handler.UpdateChecklistItem)

	cases := []string{
		`{}`,
		`{"category_index": 1}`,
		`{"category_index": -1, "item_index": 0, "is_checked": true}`,
		`{"category_index": 21, "item_index": 0, "is_checked": true}`,
		`{"category_index": 0, "item_index": 51, "is_checked": false}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPut, "/checklist", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestMalformedIDAnswers404(t *testing.T) {
	handler := &Handler{}
	router := gin.New()
	router.GET("/properties/:id", setIdentity("inv", models.RoleInvestor), handler.GetPropertyInvestor)

	// Rejected before any query runs, indistinguishable from a missing row.
	for _, id := range []string{"abc", "123", "not-a-uuid", "%20"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties/"+id, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("id %q: expected 404, got %d", id, w.Code)
		}
	}
}

func TestDocumentRoutesCoexist(t *testing.T) {
	handler := &Handler{}
	router := gin.New()
	router.GET("/documents/:id/download", setIdentity("u1", models.RoleClient), handler.DownloadDocument)
	router.DELETE("/documents/:id", setIdentity("u1", models.RoleClient), handler.DeleteDocument)
	router.GET("/documents/user/:userId", setIdentity("a1", models.RoleAdmin), handler.ListDocumentsForUser)

	// Each request must reach its own handler, which rejects the malformed
	// id with a JSON 404 before any query runs. An unmatched route would
	// come back as gin's plain-text 404 instead.
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/documents/not-a-uuid/download"},
		{http.MethodDelete, "/documents/not-a-uuid"},
		{http.MethodGet, "/documents/user/not-a-uuid"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"error"`) {
			t.Errorf("%s %s: request did not reach a handler, body %q", tc.method, tc.path, w.Body.String())
		}
	}
}

// recordingStore counts writes so tests can assert nothing was mutated.
type recordingStore struct {
	writes int
}

func (r *recordingStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return nil, nil
}

func (r *recordingStore) SubscriptionByUser(ctx context.Context, userID string) (*models.InvestorSubscription, error) {
	return nil, nil
}

func (r *recordingStore) SubscriptionUserByCustomer(ctx context.Context, customerID string) (string, bool, error) {
	return "", false, nil
}

func (r *recordingStore) UpsertSubscriptionCustomer(ctx context.Context, userID, customerID string) error {
	r.writes++
	return nil
}

func (r *recordingStore) ActivateSubscription(ctx context.Context, userID, subscriptionID string, periodStart, periodEnd time.Time, planID string) error {
	r.writes++
	return nil
}

func (r *recordingStore) UpdateSubscriptionStatus(ctx context.Context, customerID string, status models.SubscriptionStatus, periodStart, periodEnd time.Time) error {
	r.writes++
	return nil
}

func (r *recordingStore) CancelSubscription(ctx context.Context, customerID string) error {
	r.writes++
	return nil
}

func (r *recordingStore) SetProfileRole(ctx context.Context, id string, role models.Role) error {
	r.writes++
	return nil
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store := &recordingStore{}
	svc := billing.New(billing.Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test_123",
		PriceID:       "price_test",
	}, store)
	handler := NewHandler(nil, nil, svc)

	router := gin.New()
	router.POST("/stripe/webhook", handler.StripeWebhook)

	payload := `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`
	cases := []struct {
		name      string
		signature string
	}{
		{"missing header", ""},
		{"garbage header", "not-a-signature"},
		{"wrong secret", "t=1700000000,v1=deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", strings.NewReader(payload))
		if tc.signature != "" {
			req.Header.Set("Stripe-Signature", tc.signature)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, w.Code)
		}
	}
	if store.writes != 0 {
		t.Errorf("unverified payloads mutated state %d times", store.writes)
	}
}

func TestPropertyPageEnvelope(t *testing.T) {
	page := propertyPage(nil, 60, db.PropertyFilter{Page: 2, Limit: 25})
	if page["total"] != 60 || page["page"] != 2 || page["limit"] != 25 {
		t.Errorf("unexpected envelope: %+v", page)
	}
	if page["totalPages"] != 3 {
		t.Errorf("expected totalPages 3, got %v", page["totalPages"])
	}
}

func TestMimeAllowed(t *testing.T) {
	cases := []struct {
		declared string
		sniffed  string
		want     bool
	}{
		{"application/pdf", "application/pdf", true},
		{"image/png", "image/png", true},
		{"text/plain", "text/plain; charset=utf-8", true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip", true},
		{"application/x-msdownload", "application/x-msdownload", false},
		{"text/html", "text/html; charset=utf-8", false},
		// Declared type outside the allowlist loses even with an innocent body.
		{"application/javascript", "text/plain; charset=utf-8", false},
		// Declared PDF with an executable body is rejected.
		{"application/pdf", "application/x-msdownload", false},
	}
	for _, tc := range cases {
		if got := mimeAllowed(tc.declared, tc.sniffed); got != tc.want {
			t.Errorf("mimeAllowed(%q, %q) = %v, want %v", tc.declared, tc.sniffed, got, tc.want)
		}
	}
}
