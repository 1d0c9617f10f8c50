package dto

import (
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
)

// Per-user catalog states.
const (
	StateEarned    = "earned"
	StatePending   = "pending"
	StateLocked    = "locked"
	StateClaimable = "claimable"
)

type CreateAchievementRequest struct {
	ID           string   `json:"id" binding:"required,min=1,max=100"`
	Title        string   `json:"title" binding:"required,max=200"`
	Description  string   `json:"description"`
	Points       int      `json:"points" binding:"min=0"`
	Requires     []string `json:"requires"`
	RewardItemID *string  `json:"reward_item_id"`
	RewardQty    int      `json:"reward_qty" binding:"min=0"`
}

type UpdateAchievementRequest struct {
	Title        string   `json:"title" binding:"required,max=200"`
	Description  string   `json:"description"`
	Points       int      `json:"points" binding:"min=0"`
	Requires     []string `json:"requires"`
	RewardItemID *string  `json:"reward_item_id"`
	RewardQty    int      `json:"reward_qty" binding:"min=0"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type AchievementResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Active      bool      `json:"active"`
	Requires    []string  `json:"requires,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// State is the viewer's relation to the achievement; empty in admin
	// listings where no viewer applies.
	State string `json:"state,omitempty"`
}

func ToAchievementResponse(ach *entity.Achievement) AchievementResponse {
	return AchievementResponse{
		ID:          ach.ID,
		Title:       ach.Title,
		Description: ach.Description,
		Points:      ach.Points,
		Active:      ach.Active,
		Requires:    ach.PrereqIDs(),
		CreatedAt:   ach.CreatedAt,
	}
}
