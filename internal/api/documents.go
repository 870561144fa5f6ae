package api

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/HighviewOne/sonderbe/internal/db"
	"github.com/HighviewOne/sonderbe/internal/models"
	"github.com/HighviewOne/sonderbe/internal/storage"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

// allowedMimeTypes is the upload allowlist: the document kinds homeowners
// actually send (statements, notices, scans).
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// mimeAllowed checks the declared type against the allowlist. DOCX and older
// Office files sniff as zip/ole containers, so the declared type is trusted
// once the sniffed type is a known container.
func mimeAllowed(declared, sniffed string) bool {
	if !allowedMimeTypes[declared] {
		return false
	}
	sniffed = strings.Split(sniffed, ";")[0]
	if allowedMimeTypes[sniffed] {
		return true
	}
	switch sniffed {
	case "application/zip", "application/x-ole-storage", "application/octet-stream":
		return true
	}
	return strings.HasPrefix(declared, "text/") && strings.HasPrefix(sniffed, "text/")
}

// ListDocuments returns the caller's own documents.
func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.db.ListDocumentsByUser(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		log.Printf("[ListDocuments] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

// ListDocumentsForUser returns one client's documents. Admin only.
func (h *Handler) ListDocumentsForUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	docs, err := h.db.ListDocumentsByUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[ListDocumentsForUser] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}
	c.JSON(http.StatusOK, docs)
}

// UploadDocument stores the file in object storage first and only then
// writes the metadata row, so a failed upload never leaves a dangling record.
func (h *Handler) UploadDocument(c *gin.Context) {
	if !h.storage.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the 10MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[UploadDocument] open: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		log.Printf("[UploadDocument] read: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the 10MB limit"})
		return
	}

	declared := fileHeader.Header.Get("Content-Type")
	if !mimeAllowed(declared, http.DetectContentType(data)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	}

	userID := CurrentUserID(c)
	fileName := storage.SanitizeFileName(fileHeader.Filename)
	key := fmt.Sprintf("%s/%d-%s", userID, time.Now().UnixMilli(), fileName)

	if err := h.storage.Upload(c.Request.Context(), key, declared, bytes.NewReader(data)); err != nil {
		log.Printf("[UploadDocument] storage: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	var category *string
	if v := c.PostForm("category"); v != "" {
		category = &v
	}

	doc, err := h.db.InsertDocument(c.Request.Context(), userID, fileName, key, fileHeader.Size, declared, category)
	if err != nil {
		log.Printf("[UploadDocument] insert: %v", err)
		// keep storage consistent with the missing row
		if derr := h.storage.Delete(c.Request.Context(), key); derr != nil {
			log.Printf("[UploadDocument] orphan cleanup: %v", derr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// DeleteDocument removes the caller's own document. The record is the source
// of truth, so it is deleted first and the stored object best-effort after.
func (h *Handler) DeleteDocument(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.db.GetDocument(c.Request.Context(), id, db.Scope{UserID: CurrentUserID(c)})
	if err != nil {
		log.Printf("[DeleteDocument] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	if err := h.db.DeleteDocument(c.Request.Context(), id, CurrentUserID(c)); err != nil {
		log.Printf("[DeleteDocument] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}
	if h.storage.Enabled() {
		if err := h.storage.Delete(c.Request.Context(), doc.FilePath); err != nil {
			log.Printf("[DeleteDocument] storage cleanup for %s: %v", doc.FilePath, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// DownloadDocument returns a short-lived signed URL for the stored object.
// Non-owners that are not admins get the same 404 as a missing id.
func (h *Handler) DownloadDocument(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.db.GetDocument(c.Request.Context(), id, CurrentScope(c))
	if err != nil {
		log.Printf("[DownloadDocument] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if !h.storage.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	url, err := h.storage.SignedURL(c.Request.Context(), doc.FilePath, time.Hour)
	if err != nil {
		log.Printf("[DownloadDocument] sign: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "file_name": doc.FileName})
}

type documentReviewRequest struct {
	Status     *models.DocumentStatus `json:"status"`
	AdminNotes *string                `json:"admin_notes"`
}

// ReviewDocument updates status and/or admin notes on a document. Admin only.
func (h *Handler) ReviewDocument(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req documentReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Status == nil && req.AdminNotes == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if req.Status != nil && !models.ValidDocumentStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	doc, err := h.db.UpdateDocumentReview(c.Request.Context(), id, req.Status, req.AdminNotes)
	if err != nil {
		log.Printf("[ReviewDocument] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}
