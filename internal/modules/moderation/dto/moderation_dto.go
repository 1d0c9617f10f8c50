package dto

import (
	"time"

	claimDto "github.com/fantaballa/gamepass-api/internal/modules/claim/dto"
	"github.com/google/uuid"
)

type ReviewClaimRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Note   string `json:"note"`
}

type ReviewClaimResponse struct {
	Claim         claimDto.ClaimResponse `json:"claim"`
	PointsGranted int                    `json:"points_granted"`
}

type GrantModeratorRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type ModeratorResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	GrantedBy *uuid.UUID `json:"granted_by,omitempty"`
	Since     time.Time `json:"since"`
}
