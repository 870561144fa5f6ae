package models

import "time"

// DocumentStatus is the admin review state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusUploaded DocumentStatus = "uploaded"
	DocumentStatusReviewed DocumentStatus = "reviewed"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// ValidDocumentStatus reports whether s is one of the accepted statuses.
func ValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusUploaded, DocumentStatusReviewed, DocumentStatusApproved, DocumentStatusRejected:
		return true
	}
	return false
}

// Document is the metadata record for one uploaded file. FilePath is the
// object-storage key; the object and the record are deleted together.
type Document struct {
	ID         string         `json:"id" db:"id"`
	UserID     string         `json:"user_id" db:"user_id"`
	FileName   string         `json:"file_name" db:"file_name"`
	FilePath   string         `json:"file_path" db:"file_path"`
	FileSize   *int64         `json:"file_size" db:"file_size"`
	MimeType   *string        `json:"mime_type" db:"mime_type"`
	Category   *string        `json:"category" db:"category"`
	Status     DocumentStatus `json:"status" db:"status"`
	AdminNotes *string        `json:"admin_notes" db:"admin_notes"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// DocumentWithClient is the admin review listing shape: the document plus the
// owning client's profile, nil when the profile row is missing.
type DocumentWithClient struct {
	Document
	Client *Profile `json:"client"`
}
