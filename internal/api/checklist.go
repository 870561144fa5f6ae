package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetChecklist returns the caller's checklist progress rows.
func (h *Handler) GetChecklist(c *gin.Context) {
	items, err := h.db.ListChecklist(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		log.Printf("[GetChecklist] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch checklist"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetChecklistForUser returns another user's checklist progress. Admin only.
func (h *Handler) GetChecklistForUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	items, err := h.db.ListChecklist(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[GetChecklistForUser] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch checklist"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type checklistUpdateRequest struct {
	CategoryIndex *int  `json:"category_index" binding:"required"`
	ItemIndex     *int  `json:"item_index" binding:"required"`
	IsChecked     *bool `json:"is_checked" binding:"required"`
}

// UpdateChecklistItem upserts one checkbox for the caller. Index ranges are
// bounded so a buggy client cannot grow the table without limit.
func (h *Handler) UpdateChecklistItem(c *gin.Context) {
	var req checklistUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_index, item_index and is_checked are required"})
		return
	}
	if *req.CategoryIndex < 0 || *req.CategoryIndex > 20 || *req.ItemIndex < 0 || *req.ItemIndex > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_index or item_index out of range"})
		return
	}

	item, err := h.db.UpsertChecklistItem(c.Request.Context(), CurrentUserID(c), *req.CategoryIndex, *req.ItemIndex, *req.IsChecked)
	if err != nil {
		log.Printf("[UpdateChecklistItem] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update checklist"})
		return
	}
	c.JSON(http.StatusOK, item)
}
