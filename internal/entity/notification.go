package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	EntityID   string    `gorm:"size:100;not null" json:"entity_id"`
	EntityType string    `gorm:"size:50;not null" json:"entity_type"` // 'claim' or 'gamepass'
	Type       string    `gorm:"size:50;not null" json:"type"`        // 'claim_approved', 'claim_rejected', 'tier_unlocked'
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User  *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
