package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProfile returns the caller's own profile row.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.db.GetProfile(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		log.Printf("[GetProfile] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfileByID returns any user's profile. Admin only.
func (h *Handler) GetProfileByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.db.GetProfile(c.Request.Context(), id)
	if err != nil {
		log.Printf("[GetProfileByID] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}
