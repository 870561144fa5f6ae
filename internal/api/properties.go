package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/HighviewOne/sonderbe/internal/csvimport"
	"github.com/HighviewOne/sonderbe/internal/db"
	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/gin-gonic/gin"
)

// propertyFilterFromQuery reads the shared list-query parameters. sort_by is
// checked against the column allowlist so it can never reach the SQL builder
// unvalidated.
func propertyFilterFromQuery(c *gin.Context) (db.PropertyFilter, bool) {
	f := db.PropertyFilter{
		County:   c.Query("county"),
		LeadType: c.Query("lead_type"),
		Status:   c.Query("status"),
		City:     c.Query("city"),
		Zip:      c.Query("zip"),
		Search:   c.Query("search"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		SortBy:   c.DefaultQuery("sort_by", "created_at"),
		SortAsc:  c.Query("sort_order") == "asc",
	}

	if !db.ValidPropertySortColumn(f.SortBy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort_by column"})
		return f, false
	}
	if f.County != "" && !models.ValidCounty(models.County(f.County)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid county"})
		return f, false
	}
	if f.LeadType != "" && !models.ValidLeadType(models.LeadType(f.LeadType)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead_type"})
		return f, false
	}
	if f.Status != "" && !models.ValidPropertyStatus(models.PropertyStatus(f.Status)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return f, false
	}

	if v := c.Query("min_equity"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_equity must be a number"})
			return f, false
		}
		f.MinEquity = &n
	}
	if v := c.Query("max_equity"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_equity must be a number"})
			return f, false
		}
		f.MaxEquity = &n
	}

	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if f.Page < 1 {
		f.Page = 1
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 25
	}
	return f, true
}

func propertyPage(properties []models.DistressedProperty, total int, f db.PropertyFilter) gin.H {
	totalPages := 0
	if f.Limit > 0 {
		totalPages = (total + f.Limit - 1) / f.Limit
	}
	return gin.H{
		"properties": properties,
		"total":      total,
		"page":       f.Page,
		"limit":      f.Limit,
		"totalPages": totalPages,
	}
}

// ListPropertiesAdmin returns a filtered, paginated page of leads across all
// lifecycle states.
func (h *Handler) ListPropertiesAdmin(c *gin.Context) {
	f, ok := propertyFilterFromQuery(c)
	if !ok {
		return
	}

	properties, total, err := h.db.ListProperties(c.Request.Context(), f)
	if err != nil {
		log.Printf("[ListPropertiesAdmin] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}
	c.JSON(http.StatusOK, propertyPage(properties, total, f))
}

type propertyRequest struct {
	LeadType            models.LeadType        `json:"lead_type" binding:"required"`
	County              models.County          `json:"county" binding:"required"`
	PropertyAddress     *string                `json:"property_address"`
	City                *string                `json:"city"`
	Zip                 *string                `json:"zip"`
	APN                 *string                `json:"apn"`
	OwnerName           *string                `json:"owner_name"`
	OwnerMailingAddress *string                `json:"owner_mailing_address"`
	EstimatedValue      *float64               `json:"estimated_value"`
	OutstandingDebt     *float64               `json:"outstanding_debt"`
	EstimatedEquity     *float64               `json:"estimated_equity"`
	OpeningBid          *float64               `json:"opening_bid"`
	RecordingDate       *string                `json:"recording_date"`
	DocumentNumber      *string                `json:"document_number"`
	CaseNumber          *string                `json:"case_number"`
	SaleDate            *string                `json:"sale_date"`
	Notes               *string                `json:"notes"`
	Source              *string                `json:"source"`
	Status              *models.PropertyStatus `json:"status"`
}

func (r propertyRequest) toModel(uploadedBy string) (models.DistressedProperty, string) {
	if !models.ValidLeadType(r.LeadType) {
		return models.DistressedProperty{}, "Invalid lead_type"
	}
	if !models.ValidCounty(r.County) {
		return models.DistressedProperty{}, "Invalid county"
	}
	status := models.PropertyStatusActive
	if r.Status != nil {
		if !models.ValidPropertyStatus(*r.Status) {
			return models.DistressedProperty{}, "Invalid status"
		}
		status = *r.Status
	}
	if (r.PropertyAddress == nil || *r.PropertyAddress == "") && (r.APN == nil || *r.APN == "") {
		return models.DistressedProperty{}, "Either property_address or apn is required"
	}

	return models.DistressedProperty{
		LeadType:            r.LeadType,
		County:              r.County,
		PropertyAddress:     r.PropertyAddress,
		City:                r.City,
		Zip:                 r.Zip,
		APN:                 r.APN,
		OwnerName:           r.OwnerName,
		OwnerMailingAddress: r.OwnerMailingAddress,
		EstimatedValue:      r.EstimatedValue,
		OutstandingDebt:     r.OutstandingDebt,
		EstimatedEquity:     r.EstimatedEquity,
		OpeningBid:          r.OpeningBid,
		RecordingDate:       r.RecordingDate,
		DocumentNumber:      r.DocumentNumber,
		CaseNumber:          r.CaseNumber,
		SaleDate:            r.SaleDate,
		Notes:               r.Notes,
		Source:              r.Source,
		Status:              status,
		UploadedBy:          &uploadedBy,
	}, ""
}

// CreateProperty inserts a single lead. Admin only.
func (h *Handler) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lead_type and county are required"})
		return
	}
	p, problem := req.toModel(CurrentUserID(c))
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	created, err := h.db.InsertProperty(c.Request.Context(), p)
	if err != nil {
		log.Printf("[CreateProperty] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateProperty replaces a lead's fields. Admin only.
func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lead_type and county are required"})
		return
	}
	p, problem := req.toModel(CurrentUserID(c))
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	updated, err := h.db.UpdateProperty(c.Request.Context(), id, p)
	if err != nil {
		log.Printf("[UpdateProperty] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProperty removes a lead. Admin only.
func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteProperty(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("[DeleteProperty] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// UploadPropertiesCSV bulk-imports a county export. lead_type and county
// come from the form, apply to every row, and are validated before the file
// is opened at all. Row failures are collected, never fatal to the batch.
func (h *Handler) UploadPropertiesCSV(c *gin.Context) {
	leadType := models.LeadType(c.PostForm("lead_type"))
	county := models.County(c.PostForm("county"))
	if !models.ValidLeadType(leadType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead_type"})
		return
	}
	if !models.ValidCounty(county) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid county"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[UploadPropertiesCSV] open: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	userID := CurrentUserID(c)
	result, err := csvimport.Parse(file, leadType, county, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inserted := 0
	if len(result.Properties) > 0 {
		inserted, err = h.db.BulkInsertProperties(c.Request.Context(), result.Properties)
		if err != nil {
			log.Printf("[UploadPropertiesCSV] insert: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import properties"})
			return
		}
	}

	errsJSON, err := json.Marshal(result.Errors)
	if err != nil {
		errsJSON = []byte("[]")
	}
	if err := h.db.InsertCsvUpload(c.Request.Context(), &userID, fileHeader.Filename, leadType, county, inserted, len(result.Errors), errsJSON); err != nil {
		log.Printf("[UploadPropertiesCSV] audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"inserted":     inserted,
		"errors":       len(result.Errors),
		"errorDetails": result.Errors,
		"total":        result.Total,
	})
}
