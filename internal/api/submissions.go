package api

import (
	"log"
	"net/http"

	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/gin-gonic/gin"
)

type submissionRequest struct {
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required"`
	Phone     string  `json:"phone" binding:"required"`
	Situation string  `json:"situation" binding:"required"`
	Message   *string `json:"message"`
}

// CreateSubmission accepts a homeowner intake form. The route allows
// anonymous posts; when a valid token came along the submission is tied to
// that account.
func (h *Handler) CreateSubmission(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, phone and situation are required"})
		return
	}

	var userID *string
	if id := CurrentUserID(c); id != "" {
		userID = &id
	}

	submission, err := h.db.CreateSubmission(c.Request.Context(), userID, req.Name, req.Email, req.Phone, req.Situation, req.Message)
	if err != nil {
		log.Printf("[CreateSubmission] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// ListSubmissions returns every submission for admins and the caller's own
// submissions for everyone else.
func (h *Handler) ListSubmissions(c *gin.Context) {
	submissions, err := h.db.ListSubmissions(c.Request.Context(), CurrentScope(c))
	if err != nil {
		log.Printf("[ListSubmissions] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}
	c.JSON(http.StatusOK, submissions)
}

type submissionReviewRequest struct {
	Status     *models.SubmissionStatus `json:"status"`
	AdminNotes *string                  `json:"admin_notes"`
}

// ReviewSubmission updates status and/or admin notes on a submission.
// Admin only.
func (h *Handler) ReviewSubmission(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req submissionReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Status == nil && req.AdminNotes == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if req.Status != nil && !models.ValidSubmissionStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	submission, err := h.db.UpdateSubmissionReview(c.Request.Context(), id, req.Status, req.AdminNotes)
	if err != nil {
		log.Printf("[ReviewSubmission] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}
	if submission == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	c.JSON(http.StatusOK, submission)
}
