package identity

import (
	"time"

	"github.com/techsolutions/pos/internal/domain/identity"
)

// LoginInput represents a login attempt
type LoginInput struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
}

// LoginResult carries the issued token and the operator it belongs to
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserResponse represents an operator in API responses. The password hash
// is never exposed.
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	AccessLevel int       `json:"access_level"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AccessLevel: int(u.AccessLevel),
		Role:        u.AccessLevel.String(),
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
	}
}
