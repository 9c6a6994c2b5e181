package dto

import (
	"time"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// CreateUserRequest defines the data needed to create a user.
type CreateUserRequest struct {
	Name     string          `json:"name" binding:"required,notblank"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     domain.UserRole `json:"role" binding:"required,oneof=basic approver admin"`
	UnitID   string          `json:"unitID" binding:"required"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	UnitID string `form:"unitID"`
}

// UserResponse defines the user data returned by the API.
type UserResponse struct {
	UserID        string          `json:"userID"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          domain.UserRole `json:"role"`
	UnitID        string          `json:"unitID"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToUserResponse converts a domain.User to a UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:        user.UserID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		UnitID:        user.UnitID,
		CreatedAt:     user.CreatedAt,
		LastUpdatedAt: user.LastUpdatedAt,
	}
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse DTO
func ToListUserResponse(users []domain.User) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{Users: userResponses}
}

// MeResponse describes the authenticated user with the unit they work in.
type MeResponse struct {
	User     UserResponse   `json:"user"`
	UnitPath []UnitResponse `json:"unitPath"`
}
