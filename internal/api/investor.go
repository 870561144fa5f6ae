package api

import (
	"log"
	"net/http"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/gin-gonic/gin"
)

// ListPropertiesInvestor returns a filtered page of active leads. The status
// filter is forced regardless of what the query string asks for.
func (h *Handler) ListPropertiesInvestor(c *gin.Context) {
	f, ok := propertyFilterFromQuery(c)
	if !ok {
		return
	}
	f.ActiveOnly = true
	f.Status = ""

	properties, total, err := h.db.ListProperties(c.Request.Context(), f)
	if err != nil {
		log.Printf("[ListPropertiesInvestor] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}
	c.JSON(http.StatusOK, propertyPage(properties, total, f))
}

// GetPropertyInvestor returns one active lead. Leads in any other lifecycle
// state answer 404, indistinguishable from a missing id.
func (h *Handler) GetPropertyInvestor(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	property, err := h.db.GetActiveProperty(c.Request.Context(), id)
	if err != nil {
		log.Printf("[GetPropertyInvestor] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	c.JSON(http.StatusOK, property)
}

// GetInvestorStats returns active-lead counts by type and the latest
// additions for the investor dashboard.
func (h *Handler) GetInvestorStats(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.db.CountActiveByLeadType(ctx)
	if err != nil {
		log.Printf("[GetInvestorStats] counts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	recent, err := h.db.RecentActiveProperties(ctx, 10)
	if err != nil {
		log.Printf("[GetInvestorStats] recent: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"total_active":  total,
		"leads_by_type": counts,
		"recent":        recent,
	})
}

// GetSubscription returns the caller's subscription record. Users that never
// started checkout get an inactive placeholder rather than a 404 so the
// client can always render the same shape.
func (h *Handler) GetSubscription(c *gin.Context) {
	sub, err := h.db.SubscriptionByUser(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		log.Printf("[GetSubscription] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscription"})
		return
	}
	if sub == nil {
		c.JSON(http.StatusOK, gin.H{"status": models.SubscriptionStatusInactive})
		return
	}
	c.JSON(http.StatusOK, sub)
}
