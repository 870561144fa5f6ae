package models

import "time"

// Role is the coarse-grained authorization signal carried on a profile.
type Role string

const (
	RoleClient   Role = "client"
	RoleAdmin    Role = "admin"
	RoleInvestor Role = "investor"
)

// Profile mirrors one identity-provider account. Created by the provider's
// sign-up trigger, so a freshly created account may briefly have no row.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  *string   `json:"full_name" db:"full_name"`
	Phone     *string   `json:"phone" db:"phone"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
