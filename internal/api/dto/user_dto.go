package dto

import (
	"time"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest payload.
type CreateUserRequest struct {
	Name                 string      `json:"name"`
	Email                string      `json:"email"`
	Password             string      `json:"password"`
	Role                 domain.Role `json:"role"`
	IsBackboneSpecialist bool        `json:"is_backbone_specialist"`
}

// UserResponse mirrors a user without credentials.
type UserResponse struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Email                string      `json:"email"`
	Role                 domain.Role `json:"role"`
	IsBackboneSpecialist bool        `json:"is_backbone_specialist"`
	IsActive             bool        `json:"is_active"`
	CreatedAt            time.Time   `json:"created_at"`
}
