package entity

import (
	"time"
)

// Achievement is a catalog entry. IDs are human slugs ("first_goal") chosen
// by the admin who creates the entry; the engine treats everything except
// the Active flag as immutable.
type Achievement struct {
	ID          string    `gorm:"size:100;primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	// Optional direct item reward granted on approval, besides XP.
	RewardItemID *string `gorm:"size:100" json:"reward_item_id,omitempty"`
	RewardQty    int     `gorm:"not null;default:0" json:"reward_qty"`

	Prerequisites []AchievementPrereq `gorm:"foreignKey:AchievementID" json:"prerequisites,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AchievementPrereq links an achievement to another achievement that must
// already be earned before this one may be approved.
type AchievementPrereq struct {
	AchievementID string `gorm:"size:100;primaryKey" json:"achievement_id"`
	RequiresID    string `gorm:"size:100;primaryKey" json:"requires_id"`
}

func (AchievementPrereq) TableName() string { return "achievement_prereqs" }

// PrereqIDs returns the prerequisite slugs in catalog order.
func (a *Achievement) PrereqIDs() []string {
	ids := make([]string, 0, len(a.Prerequisites))
	for _, p := range a.Prerequisites {
		ids = append(ids, p.RequiresID)
	}
	return ids
}
