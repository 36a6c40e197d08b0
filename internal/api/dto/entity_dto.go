package dto

import "time"

// EntityRegisterRequest payload for new marketplace accounts.
type EntityRegisterRequest struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EntityLoginRequest payload for login.
type EntityLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfileUpdateRequest carries owner-editable profile fields. Nil fields
// are left unchanged.
type ProfileUpdateRequest struct {
	Name        *string `json:"name"`
	IsPublished *bool   `json:"is_published"`
}

// SubscriptionResponse reports the billing standing of an account.
type SubscriptionResponse struct {
	Status            string     `json:"status"`
	Source            string     `json:"source"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

// EntityResponse is the public projection of an account.
type EntityResponse struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	VerificationStatus string `json:"verification_status"`
	VisibilityTier     string `json:"visibility_tier"`
}
