package dto

import (
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
)

// GoogleLoginRequest carries the ID token obtained from the device's Google
// sign-in flow.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// AuthResponse is returned after a successful sign-in.
type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}

// UserResponse defines the data returned for a user profile.
type UserResponse struct {
	UserID      string     `json:"userID"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	IsSignedIn  bool       `json:"isSignedIn"`
	LastSyncAt  *time.Time `json:"lastSyncAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToUserResponse converts a domain.User to its response DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsSignedIn:  u.IsSignedIn,
		LastSyncAt:  u.LastSyncAt,
		CreatedAt:   u.CreatedAt,
	}
}
