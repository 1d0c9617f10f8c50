package dto

import (
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	"github.com/google/uuid"
)

type SubmitClaimRequest struct {
	AchievementID string `json:"achievement_id" binding:"required,min=1,max=100"`
	EvidenceText  string `json:"evidence_text"`
	EvidenceURL   string `json:"evidence_url" binding:"omitempty,url"`
	// IDs returned by the evidence upload endpoint.
	AttachmentIDs []uint `json:"attachment_ids" binding:"omitempty,max=5"`
}

type ClaimResponse struct {
	ID               uuid.UUID  `json:"id"`
	AchievementID    string     `json:"achievement_id"`
	AchievementTitle string     `json:"achievement_title"`
	Status           string     `json:"status"`
	EvidenceText     string     `json:"evidence_text,omitempty"`
	EvidenceURL      string     `json:"evidence_url,omitempty"`
	Note             *string    `json:"note,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
}

// PendingClaimResponse adds the claimant and uploaded files, for the
// moderation queue.
type PendingClaimResponse struct {
	ClaimResponse
	Claimant *ClaimantInfo  `json:"claimant,omitempty"`
	Files    []EvidenceFile `json:"files,omitempty"`
}

type EvidenceFile struct {
	ID       uint   `json:"id"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type"`
}

type ClaimantInfo struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

func ToClaimResponse(claim *entity.Claim) ClaimResponse {
	return ClaimResponse{
		ID:               claim.ID,
		AchievementID:    claim.AchievementID,
		AchievementTitle: claim.AchievementTitle,
		Status:           claim.Status,
		EvidenceText:     claim.EvidenceText,
		EvidenceURL:      claim.EvidenceURL,
		Note:             claim.Note,
		CreatedAt:        claim.CreatedAt,
		ReviewedAt:       claim.ReviewedAt,
	}
}

func ToPendingClaimResponse(claim *entity.Claim) PendingClaimResponse {
	resp := PendingClaimResponse{ClaimResponse: ToClaimResponse(claim)}
	if claim.User != nil {
		resp.Claimant = &ClaimantInfo{
			ID:        claim.User.ID,
			Username:  claim.User.Username,
			AvatarURL: claim.User.AvatarURL,
		}
	}
	return resp
}
