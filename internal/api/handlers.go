package api

import (
	"net/http"

	"github.com/HighviewOne/sonderbe/internal/billing"
	"github.com/HighviewOne/sonderbe/internal/db"
	"github.com/HighviewOne/sonderbe/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler carries the service dependencies shared by all route handlers.
type Handler struct {
	db      *db.Database
	storage *storage.Client
	billing *billing.Service
}

func NewHandler(database *db.Database, store *storage.Client, bill *billing.Service) *Handler {
	return &Handler{db: database, storage: store, billing: bill}
}

// uuidParam validates a path id before it reaches a query. A malformed id
// answers 404, the same as a well-formed id that matches nothing.
func uuidParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if uuid.Validate(id) != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return "", false
	}
	return id, true
}
