// Package model defines domain entities for the application.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of capability levels a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts a raw string into a Role.
// Unknown values are a construction-time error, never a silent pass-through.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsValid reports whether the role is a member of the closed enumeration.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Satisfies reports whether this role meets the given requirement.
// Admin satisfies every requirement; unrecognized roles satisfy nothing.
func (r Role) Satisfies(required Role) bool {
	switch r {
	case RoleAdmin:
		return required.IsValid()
	case RoleUser:
		return required == RoleUser
	default:
		return false
	}
}

// User represents a registered account.
// PasswordHash must never reach a client-facing representation.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Bio          *string   `json:"bio,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
