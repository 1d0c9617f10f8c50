package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

const (
	// EvidenceMaxLen caps each evidence field; longer input is truncated.
	EvidenceMaxLen = 2000
	// ReviewNoteMaxLen caps the moderator note.
	ReviewNoteMaxLen = 1000
)

// Claim is a user's assertion of having met an achievement's condition.
// Lifecycle: created as pending, reviewed exactly once into approved or
// rejected, never mutated afterwards.
type Claim struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index:idx_claim_user;not null" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AchievementID string    `gorm:"size:100;index;not null" json:"achievement_id"`
	// Title snapshot so claim history survives catalog edits.
	AchievementTitle string `gorm:"size:200" json:"achievement_title"`

	Status       string `gorm:"size:20;index;not null;default:pending" json:"status"`
	EvidenceText string `gorm:"size:2000" json:"evidence_text"`
	EvidenceURL  string `gorm:"size:2000" json:"evidence_url"`

	CreatedAt  time.Time  `gorm:"autoCreateTime;index:idx_claim_user" json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	Note       *string    `gorm:"size:1000" json:"note,omitempty"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// EvidenceFile is an uploaded screenshot backing a claim. Files are
// uploaded first and attached at submission; unattached files are swept by
// the orphan cleanup job.
type EvidenceFile struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid" json:"user_id"`
	ClaimID   *uuid.UUID `gorm:"type:uuid" json:"claim_id,omitempty"`
	FileURL   string     `gorm:"type:text;not null" json:"file_url"`
	FileType  string     `gorm:"size:50" json:"file_type"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Earned records a verified achievement. Existence alone is the signal;
// writes are merge-idempotent.
type Earned struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	AchievementID string    `gorm:"size:100;primaryKey" json:"achievement_id"`
	ApprovedAt    time.Time `gorm:"autoCreateTime" json:"approved_at"`
	ApprovedBy    uuid.UUID `gorm:"type:uuid" json:"approved_by"`
}

func (Earned) TableName() string { return "earned_achievements" }
