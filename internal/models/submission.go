package models

import "time"

// SubmissionStatus tracks how far an admin has taken a contact request.
type SubmissionStatus string

const (
	SubmissionStatusNew        SubmissionStatus = "new"
	SubmissionStatusInProgress SubmissionStatus = "in_progress"
	SubmissionStatusResolved   SubmissionStatus = "resolved"
	SubmissionStatusArchived   SubmissionStatus = "archived"
)

// ValidSubmissionStatus reports whether s is one of the accepted statuses.
func ValidSubmissionStatus(s SubmissionStatus) bool {
	switch s {
	case SubmissionStatusNew, SubmissionStatusInProgress, SubmissionStatusResolved, SubmissionStatusArchived:
		return true
	}
	return false
}

// ContactSubmission is a homeowner intake form post. UserID is nil when the
// form was submitted without being signed in.
type ContactSubmission struct {
	ID         string           `json:"id" db:"id"`
	UserID     *string          `json:"user_id" db:"user_id"`
	Name       string           `json:"name" db:"name"`
	Email      string           `json:"email" db:"email"`
	Phone      string           `json:"phone" db:"phone"`
	Situation  string           `json:"situation" db:"situation"`
	Message    *string          `json:"message" db:"message"`
	Status     SubmissionStatus `json:"status" db:"status"`
	AdminNotes *string          `json:"admin_notes" db:"admin_notes"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}
