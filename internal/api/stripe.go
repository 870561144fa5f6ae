package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/HighviewOne/sonderbe/internal/billing"
	"github.com/gin-gonic/gin"
)

// CreateCheckout starts a subscription checkout session and returns its URL.
func (h *Handler) CreateCheckout(c *gin.Context) {
	url, err := h.billing.CreateCheckout(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Billing is not configured"})
		case errors.Is(err, billing.ErrNoProfile):
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		default:
			log.Printf("[CreateCheckout] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// BillingPortal returns a customer portal URL for managing the subscription.
func (h *Handler) BillingPortal(c *gin.Context) {
	url, err := h.billing.PortalURL(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Billing is not configured"})
		case errors.Is(err, billing.ErrNoSubscription):
			c.JSON(http.StatusNotFound, gin.H{"error": "No subscription found"})
		default:
			log.Printf("[BillingPortal] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create portal session"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// StripeWebhook verifies the event signature against the raw body and hands
// the event to the reconciler. A bad signature is rejected before any state
// is touched.
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	event, err := h.billing.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	if err := h.billing.HandleEvent(c.Request.Context(), event); err != nil {
		log.Printf("[StripeWebhook] %s: %v", event.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
