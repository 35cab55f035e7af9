// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/quillfeed/quillfeed/internal/model"
)

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Username        string  `json:"username"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Bio             *string `json:"bio,omitempty"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateNameRequest represents the request body for renaming the account.
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// UserResponse represents a user in API responses. The password hash never
// leaves the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Bio       *string   `json:"bio,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenResponse represents a successful login.
type TokenResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserListResponse represents a paginated list of users.
type UserListResponse struct {
	Data []UserResponse `json:"data"`
	Page int            `json:"page"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.Name,
		Bio:       user.Bio,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserListResponse converts a slice of User models to UserListResponse.
func ToUserListResponse(users []*model.User, page int) *UserListResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = *ToUserResponse(user)
	}
	return &UserListResponse{Data: responses, Page: page}
}
