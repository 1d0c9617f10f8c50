package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	achievementRepo "github.com/fantaballa/gamepass-api/internal/modules/achievement/repository"
	claimDto "github.com/fantaballa/gamepass-api/internal/modules/claim/dto"
	claimRepo "github.com/fantaballa/gamepass-api/internal/modules/claim/repository"
	evidenceRepo "github.com/fantaballa/gamepass-api/internal/modules/evidence/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/fantaballa/gamepass-api/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultClaimListLimit = 50

const (
	submitAction = "submit_claim"
	// submitCooldown spaces out claim submissions per user.
	submitCooldown = 30 * time.Second
)

type ClaimService interface {
	SubmitClaim(ctx context.Context, userID uuid.UUID, req claimDto.SubmitClaimRequest) (*claimDto.ClaimResponse, error)
	ListMyClaims(ctx context.Context, userID uuid.UUID, limit int) ([]claimDto.ClaimResponse, error)
	ListPendingClaims(ctx context.Context, limit int) ([]claimDto.PendingClaimResponse, error)
}

type claimService struct {
	claims       claimRepo.ClaimRepository
	achievements achievementRepo.AchievementRepository
	evidence     evidenceRepo.EvidenceRepository
	redisClient  *redis.Client
	sanitizer    *bluemonday.Policy
}

func NewClaimService(claims claimRepo.ClaimRepository, achievements achievementRepo.AchievementRepository, evidence evidenceRepo.EvidenceRepository, redisClient *redis.Client) ClaimService {
	return &claimService{
		claims:       claims,
		achievements: achievements,
		evidence:     evidence,
		redisClient:  redisClient,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

// SubmitClaim creates a pending claim after checking the achievement is
// claimable by this user. Evidence is sanitized and silently truncated, not
// rejected, so over-long pastes still go through.
func (s *claimService) SubmitClaim(ctx context.Context, userID uuid.UUID, req claimDto.SubmitClaimRequest) (*claimDto.ClaimResponse, error) {
	allowed, rlErr := ratelimit.CheckAndSet(ctx, s.redisClient, userID, submitAction, submitCooldown)
	if rlErr != nil {
		// Redis trouble should not block submissions.
		log.Printf("rate limit check failed: %v", rlErr)
	} else if !allowed {
		if wait, err := ratelimit.TTL(ctx, s.redisClient, userID, submitAction); err == nil && wait > 0 {
			return nil, apperror.FailedPrecondition("next claim allowed in %s", wait.Round(time.Second))
		}
		return nil, apperror.FailedPrecondition("please wait before submitting another claim")
	}

	// Release the slot if the submission is refused, so a fixed request can
	// retry immediately.
	submitted := false
	if rlErr == nil && allowed {
		defer func() {
			if submitted {
				return
			}
			if err := ratelimit.Clear(ctx, s.redisClient, userID, submitAction); err != nil {
				log.Printf("rate limit release failed: %v", err)
			}
		}()
	}

	ach, err := s.achievements.FindByID(ctx, req.AchievementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("achievement %q", req.AchievementID)
		}
		return nil, err
	}
	if !ach.Active {
		return nil, apperror.FailedPrecondition("achievement %q is retired", ach.ID)
	}

	earned, err := s.claims.HasEarned(ctx, userID, ach.ID)
	if err != nil {
		return nil, err
	}
	if earned {
		return nil, apperror.FailedPrecondition("achievement %q already earned", ach.ID)
	}

	pending, err := s.claims.HasPending(ctx, userID, ach.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperror.FailedPrecondition("a claim for %q is already pending", ach.ID)
	}

	claim := &entity.Claim{
		UserID:           userID,
		AchievementID:    ach.ID,
		AchievementTitle: ach.Title,
		Status:           entity.ClaimStatusPending,
		EvidenceText:     truncate(s.sanitizer.Sanitize(strings.TrimSpace(req.EvidenceText)), entity.EvidenceMaxLen),
		EvidenceURL:      truncate(strings.TrimSpace(req.EvidenceURL), entity.EvidenceMaxLen),
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, err
	}
	submitted = true

	if len(req.AttachmentIDs) > 0 {
		if err := s.evidence.AttachToClaim(ctx, req.AttachmentIDs, claim.ID, userID); err != nil {
			log.Printf("failed to attach evidence files to claim %s: %v", claim.ID, err)
		}
	}

	resp := claimDto.ToClaimResponse(claim)
	return &resp, nil
}

func (s *claimService) ListMyClaims(ctx context.Context, userID uuid.UUID, limit int) ([]claimDto.ClaimResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultClaimListLimit
	}
	claims, err := s.claims.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]claimDto.ClaimResponse, 0, len(claims))
	for _, claim := range claims {
		responses = append(responses, claimDto.ToClaimResponse(claim))
	}
	return responses, nil
}

func (s *claimService) ListPendingClaims(ctx context.Context, limit int) ([]claimDto.PendingClaimResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultClaimListLimit
	}
	claims, err := s.claims.FindPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]claimDto.PendingClaimResponse, 0, len(claims))
	for _, claim := range claims {
		resp := claimDto.ToPendingClaimResponse(claim)
		files, err := s.evidence.FindByClaim(ctx, claim.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			resp.Files = append(resp.Files, claimDto.EvidenceFile{
				ID:       f.ID,
				FileURL:  f.FileURL,
				FileType: f.FileType,
			})
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// truncate caps by rune count, matching the varchar column semantics.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
