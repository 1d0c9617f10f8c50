package entity

import (
	"time"

	"github.com/google/uuid"
)

// Progress is the per-user seasonal XP record. A row whose Season differs
// from the current SeasonConfig season is inert: readers treat its points
// as 0 and the next grant overwrites instead of incrementing. The stale row
// is never deleted, so prior-season history survives rollover.
type Progress struct {
	UserID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Season      int        `gorm:"not null;index" json:"season"`
	Points      int        `gorm:"not null;default:0" json:"points"`
	LastDailyAt *time.Time `json:"last_daily_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Progress) TableName() string { return "gp_progress" }

// RewardKind tags the variant carried by a tier reward.
type RewardKind string

const (
	RewardCard  RewardKind = "card"
	RewardSkin  RewardKind = "skin"
	RewardColor RewardKind = "color"
	RewardItem  RewardKind = "item"
)

// Reward is the tagged reward descriptor embedded in a Tier. Only the
// fields matching Kind are meaningful; Label, when set, overrides the
// generated display label.
type Reward struct {
	Kind     RewardKind `gorm:"size:20" json:"kind"`
	Label    string     `gorm:"size:200" json:"label,omitempty"`
	ImageURL string     `gorm:"size:500" json:"image_url,omitempty"`

	CardID      string `gorm:"size:100" json:"card_id,omitempty"`
	CardOverall int    `json:"card_overall,omitempty"`
	SkinID      string `gorm:"size:100" json:"skin_id,omitempty"`
	SkinName    string `gorm:"size:100" json:"skin_name,omitempty"`
	ColorID     string `gorm:"size:100" json:"color_id,omitempty"`
	ColorName   string `gorm:"size:100" json:"color_name,omitempty"`
	ItemID      string `gorm:"size:100" json:"item_id,omitempty"`
	ItemName    string `gorm:"size:100" json:"item_name,omitempty"`
}

// Tier is one rung of the seasonal reward ladder.
type Tier struct {
	ID             string    `gorm:"size:100;primaryKey" json:"id"`
	Title          string    `gorm:"size:200" json:"title"`
	RequiredPoints int       `gorm:"not null" json:"required_points"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	Reward         Reward    `gorm:"embedded;embeddedPrefix:reward_" json:"reward"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Tier) TableName() string { return "gp_tiers" }

// TierUnlock acknowledges that a user's XP crossed a tier threshold.
// It is a display ledger, written at most once per (user, tier), and is
// distinct from Earned: crossing a threshold is not an achievement grant.
type TierUnlock struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TierID         string    `gorm:"size:100;primaryKey" json:"tier_id"`
	UnlockedAt     time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
	PointsAtUnlock int       `gorm:"not null" json:"points_at_unlock"`
	RequiredPoints int       `gorm:"not null" json:"required_points"`
	RewardLabel    string    `gorm:"size:200" json:"reward_label"`
}

func (TierUnlock) TableName() string { return "gp_unlocks" }

// InventoryItem holds per-user quantities for direct item rewards.
type InventoryItem struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ItemID    string    `gorm:"size:100;primaryKey" json:"item_id"`
	Qty       int       `gorm:"not null;default:0" json:"qty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SeasonConfig is the single process-wide season pointer, admin-written.
type SeasonConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Season    int       `gorm:"not null;default:1" json:"season"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SeasonConfig) TableName() string { return "gp_config" }
