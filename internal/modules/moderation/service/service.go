package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	claimDto "github.com/fantaballa/gamepass-api/internal/modules/claim/dto"
	moderationDto "github.com/fantaballa/gamepass-api/internal/modules/moderation/dto"
	moderationRepo "github.com/fantaballa/gamepass-api/internal/modules/moderation/repository"
	notifService "github.com/fantaballa/gamepass-api/internal/modules/notification/service"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type ModerationService interface {
	ReviewClaim(ctx context.Context, claimID, moderatorID uuid.UUID, req moderationDto.ReviewClaimRequest) (*moderationDto.ReviewClaimResponse, error)

	IsModerator(ctx context.Context, userID uuid.UUID) (bool, error)
	GrantModerator(ctx context.Context, userID, grantedBy uuid.UUID) error
	RevokeModerator(ctx context.Context, userID uuid.UUID) error
	ListModerators(ctx context.Context) ([]moderationDto.ModeratorResponse, error)
}

type moderationService struct {
	repo         moderationRepo.ModerationRepository
	notification notifService.NotificationService
	sanitizer    *bluemonday.Policy
}

func NewModerationService(repo moderationRepo.ModerationRepository, notification notifService.NotificationService) ModerationService {
	return &moderationService{
		repo:         repo,
		notification: notification,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

// ReviewClaim settles a pending claim. Approval grants XP and any item
// reward inside one transaction; rejection only flips the status. The
// claimant notification is best effort and never fails the review.
func (s *moderationService) ReviewClaim(ctx context.Context, claimID, moderatorID uuid.UUID, req moderationDto.ReviewClaimRequest) (*moderationDto.ReviewClaimResponse, error) {
	note := s.cleanNote(req.Note)
	now := time.Now().UTC()

	var (
		claim  *entity.Claim
		points int
		err    error
	)
	switch req.Action {
	case ActionApprove:
		var ach *entity.Achievement
		claim, ach, err = s.repo.ApproveClaim(ctx, claimID, moderatorID, note, now)
		if err == nil {
			points = ach.Points
		}
	case ActionReject:
		claim, err = s.repo.RejectClaim(ctx, claimID, moderatorID, note, now)
	default:
		return nil, apperror.InvalidArgument("action must be approve or reject")
	}
	if err != nil {
		return nil, err
	}

	if s.notification != nil {
		if notifyErr := s.notification.NotifyClaimReviewed(ctx, claim, moderatorID); notifyErr != nil {
			log.Printf("moderation: claim review notification for %s: %v", claim.UserID, notifyErr)
		}
	}

	return &moderationDto.ReviewClaimResponse{
		Claim:         claimDto.ToClaimResponse(claim),
		PointsGranted: points,
	}, nil
}

// cleanNote sanitizes and truncates the moderator note, returning nil for
// an effectively empty note.
func (s *moderationService) cleanNote(raw string) *string {
	note := strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if note == "" {
		return nil
	}
	runes := []rune(note)
	if len(runes) > entity.ReviewNoteMaxLen {
		note = string(runes[:entity.ReviewNoteMaxLen])
	}
	return &note
}

func (s *moderationService) IsModerator(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.IsModerator(ctx, userID)
}

func (s *moderationService) GrantModerator(ctx context.Context, userID, grantedBy uuid.UUID) error {
	return s.repo.GrantModerator(ctx, userID, grantedBy)
}

func (s *moderationService) RevokeModerator(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RevokeModerator(ctx, userID)
}

func (s *moderationService) ListModerators(ctx context.Context) ([]moderationDto.ModeratorResponse, error) {
	mods, err := s.repo.ListModerators(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]moderationDto.ModeratorResponse, 0, len(mods))
	for _, mod := range mods {
		resp := moderationDto.ModeratorResponse{
			UserID:    mod.UserID,
			GrantedBy: mod.GrantedBy,
			Since:     mod.CreatedAt,
		}
		if mod.User != nil {
			resp.Username = mod.User.Username
			resp.AvatarURL = mod.User.AvatarURL
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
