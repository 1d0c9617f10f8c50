package service

import (
	"context"
	"errors"
	"log"
	"regexp"

	"github.com/fantaballa/gamepass-api/internal/entity"
	achievementDto "github.com/fantaballa/gamepass-api/internal/modules/achievement/dto"
	achievementRepo "github.com/fantaballa/gamepass-api/internal/modules/achievement/repository"
	claimRepo "github.com/fantaballa/gamepass-api/internal/modules/claim/repository"
	searchService "github.com/fantaballa/gamepass-api/internal/modules/search/service"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type AchievementService interface {
	ListCatalog(ctx context.Context, userID uuid.UUID) ([]achievementDto.AchievementResponse, error)
	GetAchievement(ctx context.Context, id string) (*achievementDto.AchievementResponse, error)

	ListAll(ctx context.Context) ([]achievementDto.AchievementResponse, error)
	CreateAchievement(ctx context.Context, req achievementDto.CreateAchievementRequest) (*achievementDto.AchievementResponse, error)
	UpdateAchievement(ctx context.Context, id string, req achievementDto.UpdateAchievementRequest) (*achievementDto.AchievementResponse, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type achievementService struct {
	achievements achievementRepo.AchievementRepository
	claims       claimRepo.ClaimRepository
	search       searchService.SearchService
}

func NewAchievementService(
	achievements achievementRepo.AchievementRepository,
	claims claimRepo.ClaimRepository,
	search searchService.SearchService,
) AchievementService {
	return &achievementService{
		achievements: achievements,
		claims:       claims,
		search:       search,
	}
}

// ListCatalog returns the active catalog with the viewer's state resolved
// per entry: earned, pending review, locked behind a prerequisite, or
// claimable.
func (s *achievementService) ListCatalog(ctx context.Context, userID uuid.UUID) ([]achievementDto.AchievementResponse, error) {
	achievements, err := s.achievements.FindAll(ctx, true)
	if err != nil {
		return nil, err
	}

	earned, err := s.claims.EarnedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.claims.PendingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]achievementDto.AchievementResponse, 0, len(achievements))
	for _, ach := range achievements {
		resp := achievementDto.ToAchievementResponse(ach)
		resp.State = resolveState(ach, earned, pending)
		responses = append(responses, resp)
	}
	return responses, nil
}

func resolveState(ach *entity.Achievement, earned, pending map[string]bool) string {
	switch {
	case earned[ach.ID]:
		return achievementDto.StateEarned
	case pending[ach.ID]:
		return achievementDto.StatePending
	}
	for _, req := range ach.PrereqIDs() {
		if !earned[req] {
			return achievementDto.StateLocked
		}
	}
	return achievementDto.StateClaimable
}

func (s *achievementService) GetAchievement(ctx context.Context, id string) (*achievementDto.AchievementResponse, error) {
	ach, err := s.achievements.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("achievement %q", id)
		}
		return nil, err
	}

	resp := achievementDto.ToAchievementResponse(ach)
	return &resp, nil
}

func (s *achievementService) ListAll(ctx context.Context) ([]achievementDto.AchievementResponse, error) {
	achievements, err := s.achievements.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}

	responses := make([]achievementDto.AchievementResponse, 0, len(achievements))
	for _, ach := range achievements {
		responses = append(responses, achievementDto.ToAchievementResponse(ach))
	}
	return responses, nil
}

func (s *achievementService) CreateAchievement(ctx context.Context, req achievementDto.CreateAchievementRequest) (*achievementDto.AchievementResponse, error) {
	if !slugPattern.MatchString(req.ID) {
		return nil, apperror.InvalidArgument("id must be a lowercase slug")
	}
	if existing, err := s.achievements.FindByID(ctx, req.ID); err == nil && existing != nil {
		return nil, apperror.FailedPrecondition("achievement %q already exists", req.ID)
	}
	if err := s.validatePrereqs(ctx, req.ID, req.Requires); err != nil {
		return nil, err
	}

	ach := &entity.Achievement{
		ID:            req.ID,
		Title:         req.Title,
		Description:   req.Description,
		Points:        req.Points,
		Active:        true,
		RewardItemID:  req.RewardItemID,
		RewardQty:     req.RewardQty,
		Prerequisites: prereqRows(req.ID, req.Requires),
	}
	if err := s.achievements.Create(ctx, ach); err != nil {
		return nil, err
	}

	s.reindex(ach)

	resp := achievementDto.ToAchievementResponse(ach)
	return &resp, nil
}

func (s *achievementService) UpdateAchievement(ctx context.Context, id string, req achievementDto.UpdateAchievementRequest) (*achievementDto.AchievementResponse, error) {
	ach, err := s.achievements.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("achievement %q", id)
		}
		return nil, err
	}
	if err := s.validatePrereqs(ctx, id, req.Requires); err != nil {
		return nil, err
	}

	ach.Title = req.Title
	ach.Description = req.Description
	ach.Points = req.Points
	ach.RewardItemID = req.RewardItemID
	ach.RewardQty = req.RewardQty
	ach.Prerequisites = prereqRows(id, req.Requires)

	if err := s.achievements.Save(ctx, ach); err != nil {
		return nil, err
	}

	s.reindex(ach)

	resp := achievementDto.ToAchievementResponse(ach)
	return &resp, nil
}

func (s *achievementService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.achievements.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("achievement %q", id)
		}
		return err
	}

	if ach, err := s.achievements.FindByID(ctx, id); err == nil {
		s.reindex(ach)
	}
	return nil
}

// validatePrereqs rejects self-references and unknown prerequisite slugs.
func (s *achievementService) validatePrereqs(ctx context.Context, id string, requires []string) error {
	for _, req := range requires {
		if req == id {
			return apperror.InvalidArgument("achievement cannot require itself")
		}
		if _, err := s.achievements.FindByID(ctx, req); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.InvalidArgument("unknown prerequisite %q", req)
			}
			return err
		}
	}
	return nil
}

// reindex pushes the entry to meilisearch best effort; catalog writes never
// fail on a search outage.
func (s *achievementService) reindex(ach *entity.Achievement) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexAchievement(ach); err != nil {
		log.Printf("achievement: indexing %s: %v", ach.ID, err)
	}
}

func prereqRows(id string, requires []string) []entity.AchievementPrereq {
	rows := make([]entity.AchievementPrereq, 0, len(requires))
	for _, req := range requires {
		rows = append(rows, entity.AchievementPrereq{AchievementID: id, RequiresID: req})
	}
	return rows
}
