package dto

import (
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
)

// UpdateProfileInput represents the input for updating user profile
type UpdateProfileInput struct {
	Username    *string `json:"username" form:"username"`
	Password    *string `json:"password" form:"password"`
	DisplayName *string `json:"display_name" form:"display_name"`
	Bio         *string `json:"bio" form:"bio"`
}

// PassStatus summarizes the user's position on the current season ladder.
type PassStatus struct {
	Season    int     `json:"season"`
	Points    int     `json:"points"`
	TierIndex int     `json:"tier_index"`
	TierCount int     `json:"tier_count"`
	Progress  float64 `json:"progress"`
}

// ClaimStats is the profile badge with the user's claim record.
type ClaimStats struct {
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
}

// ProfileResponse is returned when updating the profile or reading the
// current user's own profile.
type ProfileResponse struct {
	User       *entity.User    `json:"user"`
	Profile    *entity.Profile `json:"profile"`
	PassStatus PassStatus      `json:"pass_status"`
	ClaimStats ClaimStats      `json:"claim_stats"`
}

// PublicProfileResponse is returned when viewing another user's profile.
type PublicProfileResponse struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PassStatus  PassStatus `json:"pass_status"`
	ClaimStats  ClaimStats `json:"claim_stats"`
}
