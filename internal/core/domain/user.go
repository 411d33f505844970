package domain

import "time"

// User represents a locally known identity issued by the external
// authentication provider. At most one row may be marked signed-in at any
// time; the repository enforces this by clearing every flag before setting
// a new one.
type User struct {
	UserID      string     `json:"userID"` // opaque provider-issued uid
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	IsSignedIn  bool       `json:"isSignedIn"`
	LastSyncAt  *time.Time `json:"lastSyncAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// GoogleUserInfo holds the subset of the Google userinfo response we consume.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
