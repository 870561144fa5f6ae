package api

import (
	"log"
	"net/http"

	"github.com/HighviewOne/sonderbe/internal/db"
	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/gin-gonic/gin"
)

// GetAdminStats returns the dashboard payload: counts plus the five newest
// clients and submissions.
func (h *Handler) GetAdminStats(c *gin.Context) {
	ctx := c.Request.Context()

	clients, err := h.db.ListProfilesByRole(ctx, models.RoleClient)
	if err != nil {
		log.Printf("[GetAdminStats] clients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	submissions, err := h.db.ListSubmissions(ctx, db.Scope{Admin: true})
	if err != nil {
		log.Printf("[GetAdminStats] submissions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	pendingDocs, err := h.db.CountDocumentsByStatus(ctx, models.DocumentStatusUploaded)
	if err != nil {
		log.Printf("[GetAdminStats] documents: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	newSubmissions := 0
	for _, s := range submissions {
		if s.Status == models.SubmissionStatusNew {
			newSubmissions++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalClients":      len(clients),
		"newSubmissions":    newSubmissions,
		"pendingDocuments":  pendingDocs,
		"recentClients":     firstN(clients, 5),
		"recentSubmissions": firstN(submissions, 5),
	})
}

func firstN[T any](items []T, n int) []T {
	if items == nil {
		return []T{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// ListClients returns every client profile.
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.db.ListProfilesByRole(c.Request.Context(), models.RoleClient)
	if err != nil {
		log.Printf("[ListClients] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clients"})
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClientDetail returns one client's profile plus their documents,
// checklist progress, and contact submissions in a single response.
func (h *Handler) GetClientDetail(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.db.GetProfile(ctx, id)
	if err != nil {
		log.Printf("[GetClientDetail] profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch client"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	docs, err := h.db.ListDocumentsByUser(ctx, id)
	if err != nil {
		log.Printf("[GetClientDetail] documents: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch client"})
		return
	}
	checklist, err := h.db.ListChecklist(ctx, id)
	if err != nil {
		log.Printf("[GetClientDetail] checklist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch client"})
		return
	}
	submissions, err := h.db.ListSubmissionsByUser(ctx, id)
	if err != nil {
		log.Printf("[GetClientDetail] submissions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":     profile,
		"documents":   docs,
		"checklist":   checklist,
		"submissions": submissions,
	})
}

// ListAllDocuments returns every document joined with its owner's profile
// for the admin review queue.
func (h *Handler) ListAllDocuments(c *gin.Context) {
	ctx := c.Request.Context()

	docs, err := h.db.ListAllDocuments(ctx)
	if err != nil {
		log.Printf("[ListAllDocuments] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	ids := make([]string, 0, len(docs))
	seen := make(map[string]bool)
	for _, d := range docs {
		if !seen[d.UserID] {
			seen[d.UserID] = true
			ids = append(ids, d.UserID)
		}
	}
	profiles, err := h.db.ProfilesByIDs(ctx, ids)
	if err != nil {
		log.Printf("[ListAllDocuments] profiles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	out := make([]models.DocumentWithClient, 0, len(docs))
	for _, d := range docs {
		entry := models.DocumentWithClient{Document: d}
		if p, ok := profiles[d.UserID]; ok {
			profile := p
			entry.Client = &profile
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

// ListInvestors returns every investor profile with their subscription
// record, nil when checkout was never started.
func (h *Handler) ListInvestors(c *gin.Context) {
	ctx := c.Request.Context()

	investors, err := h.db.ListProfilesByRole(ctx, models.RoleInvestor)
	if err != nil {
		log.Printf("[ListInvestors] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch investors"})
		return
	}

	ids := make([]string, 0, len(investors))
	for _, p := range investors {
		ids = append(ids, p.ID)
	}
	subs, err := h.db.SubscriptionsByUserIDs(ctx, ids)
	if err != nil {
		log.Printf("[ListInvestors] subscriptions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch investors"})
		return
	}

	type investorEntry struct {
		models.Profile
		Subscription *models.InvestorSubscription `json:"subscription"`
	}
	out := make([]investorEntry, 0, len(investors))
	for _, p := range investors {
		entry := investorEntry{Profile: p}
		if s, ok := subs[p.ID]; ok {
			sub := s
			entry.Subscription = &sub
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

// ListCsvUploads returns the most recent bulk import audit records.
func (h *Handler) ListCsvUploads(c *gin.Context) {
	uploads, err := h.db.ListCsvUploads(c.Request.Context(), 50)
	if err != nil {
		log.Printf("[ListCsvUploads] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch upload history"})
		return
	}
	c.JSON(http.StatusOK, uploads)
}
