package api

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/HighviewOne/sonderbe/internal/db"
	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the shape of the identity provider's HS256 access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// parseToken validates a bearer token against the provider's signing secret
// and issuer. Returns the subject id on success.
func parseToken(tokenString string) (string, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		secret := os.Getenv("SUPABASE_JWT_SECRET")
		if secret == "" {
			return nil, jwt.ErrInvalidKey
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", jwt.ErrTokenUnverifiable
	}
	if issuer := os.Getenv("SUPABASE_URL"); issuer != "" && claims.Issuer != issuer+"/auth/v1" {
		return "", jwt.ErrTokenInvalidIssuer
	}
	if claims.Subject == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return claims.Subject, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// RequireAuth enforces a valid bearer token and resolves the caller's role
// from the profile row. A subject with no profile row yet (the sign-up race)
// defaults to the least-privileged role; a store failure is surfaced as 500
// rather than silently downgrading.
func RequireAuth(database *db.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			c.Abort()
			return
		}

		userID, err := parseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		role, found, err := database.GetProfileRole(c.Request.Context(), userID)
		if err != nil {
			log.Printf("[RequireAuth] role lookup failed for %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve profile"})
			c.Abort()
			return
		}
		if !found {
			role = models.RoleClient
		}

		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

// OptionalAuth resolves identity when a valid token is present and proceeds
// anonymously otherwise. It never rejects the request.
func OptionalAuth(database *db.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := parseToken(token)
		if err != nil {
			c.Next()
			return
		}

		role, found, err := database.GetProfileRole(c.Request.Context(), userID)
		if err != nil || !found {
			role = models.RoleClient
		}

		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

// AdminOnly requires the admin role on already-authenticated requests.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentRole(c) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// InvestorOnly requires the investor role plus a subscription in an access-
// granting state.
func InvestorOnly(database *db.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentRole(c) != models.RoleInvestor {
			c.JSON(http.StatusForbidden, gin.H{"error": "Investor access required"})
			c.Abort()
			return
		}

		sub, err := database.SubscriptionByUser(c.Request.Context(), CurrentUserID(c))
		if err != nil {
			log.Printf("[InvestorOnly] subscription lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve subscription"})
			c.Abort()
			return
		}
		if sub == nil || !sub.Status.Subscribed() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Active subscription required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated subject id, empty when anonymous.
func CurrentUserID(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// CurrentRole returns the resolved role, empty when anonymous.
func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get("user_role"); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return ""
}

// CurrentScope evaluates the ownership-or-admin predicate once so handlers
// can pass it straight into storage calls.
func CurrentScope(c *gin.Context) db.Scope {
	return db.Scope{
		UserID: CurrentUserID(c),
		Admin:  CurrentRole(c) == models.RoleAdmin,
	}
}
