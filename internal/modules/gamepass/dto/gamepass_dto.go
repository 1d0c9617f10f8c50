package dto

import "time"

// TierView is a ladder rung as shown to the client, with the reward label
// already formatted and the viewer's unlock state resolved.
type TierView struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	RequiredPoints int     `json:"required_points"`
	RewardKind     string  `json:"reward_kind"`
	RewardLabel    string  `json:"reward_label"`
	RewardImageURL string  `json:"reward_image_url,omitempty"`
	Unlocked       bool    `json:"unlocked"`
}

type ProgressResponse struct {
	Season    int     `json:"season"`
	Points    int     `json:"points"`
	TierIndex int     `json:"tier_index"`
	TierCount int     `json:"tier_count"`
	// Fraction of the way from the last reached threshold to the next one,
	// in [0,1]. 1 when every tier is reached.
	Progress float64 `json:"progress"`

	NextTierID     string `json:"next_tier_id,omitempty"`
	NextTierPoints int    `json:"next_tier_points,omitempty"`

	Tiers []TierView `json:"tiers"`
}

type DailyBonusResponse struct {
	Season          int       `json:"season"`
	PointsGranted   int       `json:"points_granted"`
	TotalPoints     int       `json:"total_points"`
	NextAvailableAt time.Time `json:"next_available_at"`
}

type ReportEntry struct {
	Position    int     `json:"position"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Points      int     `json:"points"`
	TierIndex   int     `json:"tier_index"`
}

type SeasonRequest struct {
	Season int `json:"season" binding:"required,min=1"`
}
