package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	gamepassDto "github.com/fantaballa/gamepass-api/internal/modules/gamepass/dto"
	gamepassRepo "github.com/fantaballa/gamepass-api/internal/modules/gamepass/repository"
	notifService "github.com/fantaballa/gamepass-api/internal/modules/notification/service"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const reportCacheTTL = 60 * time.Second

type GamepassService interface {
	GetProgress(ctx context.Context, userID uuid.UUID) (*gamepassDto.ProgressResponse, error)
	ClaimDaily(ctx context.Context, userID uuid.UUID) (*gamepassDto.DailyBonusResponse, error)
	ListTiers(ctx context.Context, userID uuid.UUID) ([]gamepassDto.TierView, error)
	SeasonReport(ctx context.Context, limit int) ([]gamepassDto.ReportEntry, error)
	Inventory(ctx context.Context, userID uuid.UUID) ([]entity.InventoryItem, error)
	CurrentSeason(ctx context.Context) (int, error)
	SetSeason(ctx context.Context, season int) error
}

type gamepassService struct {
	repo         gamepassRepo.GamepassRepository
	notification notifService.NotificationService
	redisClient  *redis.Client

	dailyBonus    int
	dailyCooldown time.Duration
}

func NewGamepassService(
	repo gamepassRepo.GamepassRepository,
	notification notifService.NotificationService,
	redisClient *redis.Client,
	dailyBonus int,
	dailyCooldown time.Duration,
) GamepassService {
	return &gamepassService{
		repo:          repo,
		notification:  notification,
		redisClient:   redisClient,
		dailyBonus:    dailyBonus,
		dailyCooldown: dailyCooldown,
	}
}

// GetProgress returns the viewer's position on the current season's ladder.
// A progress row left over from a previous season counts as zero points; it
// stays in place until the next grant overwrites it.
func (s *gamepassService) GetProgress(ctx context.Context, userID uuid.UUID) (*gamepassDto.ProgressResponse, error) {
	season, err := s.repo.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}

	points, err := s.effectivePoints(ctx, userID, season)
	if err != nil {
		return nil, err
	}

	tiers, err := s.repo.ListTiers(ctx, true)
	if err != nil {
		return nil, err
	}

	pos := LocateOnLadder(tiers, points)
	s.autoUnlock(ctx, userID, tiers, points)

	resp := &gamepassDto.ProgressResponse{
		Season:    season,
		Points:    points,
		TierIndex: pos.TierIndex,
		TierCount: len(tiers),
		Progress:  pos.Progress,
		Tiers:     tierViews(tiers, points),
	}
	if pos.Next != nil {
		resp.NextTierID = pos.Next.ID
		resp.NextTierPoints = pos.Next.RequiredPoints
	}
	return resp, nil
}

// ClaimDaily grants the fixed daily bonus, once per cooldown window.
func (s *gamepassService) ClaimDaily(ctx context.Context, userID uuid.UUID) (*gamepassDto.DailyBonusResponse, error) {
	season, err := s.repo.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	granted, err := s.repo.ClaimDaily(ctx, userID, season, s.dailyBonus, now, s.dailyCooldown)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, apperror.FailedPrecondition("daily bonus already claimed")
	}

	prog, err := s.repo.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := s.dailyBonus
	if prog != nil && prog.Season == season {
		total = prog.Points
	}

	return &gamepassDto.DailyBonusResponse{
		Season:          season,
		PointsGranted:   s.dailyBonus,
		TotalPoints:     total,
		NextAvailableAt: now.Add(s.dailyCooldown),
	}, nil
}

func (s *gamepassService) ListTiers(ctx context.Context, userID uuid.UUID) ([]gamepassDto.TierView, error) {
	season, err := s.repo.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}
	points, err := s.effectivePoints(ctx, userID, season)
	if err != nil {
		return nil, err
	}
	tiers, err := s.repo.ListTiers(ctx, true)
	if err != nil {
		return nil, err
	}
	return tierViews(tiers, points), nil
}

// SeasonReport is the moderator-facing season ranking, cached briefly in
// redis because it joins three tables and is polled by dashboards.
func (s *gamepassService) SeasonReport(ctx context.Context, limit int) ([]gamepassDto.ReportEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	season, err := s.repo.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("gp:report:s%d:l%d", season, limit)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var entries []gamepassDto.ReportEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	rows, err := s.repo.SeasonRanking(ctx, season, limit)
	if err != nil {
		return nil, err
	}
	tiers, err := s.repo.ListTiers(ctx, true)
	if err != nil {
		return nil, err
	}

	entries := make([]gamepassDto.ReportEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, gamepassDto.ReportEntry{
			Position:    i + 1,
			Username:    row.Username,
			DisplayName: row.DisplayName,
			AvatarURL:   row.AvatarURL,
			Points:      row.Points,
			TierIndex:   LocateOnLadder(tiers, row.Points).TierIndex,
		})
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(entries); err == nil {
			s.redisClient.Set(ctx, cacheKey, payload, reportCacheTTL)
		}
	}

	return entries, nil
}

// Inventory lists the item rewards the user has collected from approvals.
func (s *gamepassService) Inventory(ctx context.Context, userID uuid.UUID) ([]entity.InventoryItem, error) {
	return s.repo.Inventory(ctx, userID)
}

func (s *gamepassService) CurrentSeason(ctx context.Context) (int, error) {
	return s.repo.CurrentSeason(ctx)
}

func (s *gamepassService) SetSeason(ctx context.Context, season int) error {
	if season < 1 {
		return apperror.InvalidArgument("season must be >= 1")
	}
	return s.repo.SetSeason(ctx, season)
}

func (s *gamepassService) effectivePoints(ctx context.Context, userID uuid.UUID, season int) (int, error) {
	prog, err := s.repo.GetProgress(ctx, userID)
	if err != nil {
		return 0, err
	}
	if prog == nil || prog.Season != season {
		return 0, nil
	}
	return prog.Points, nil
}

// autoUnlock records unlock ledger entries for every reached tier the user
// has not acknowledged yet. It is best effort: failures are logged and never
// surface to the caller, since the ledger is display state derivable from
// points.
func (s *gamepassService) autoUnlock(ctx context.Context, userID uuid.UUID, tiers []*entity.Tier, points int) {
	existing, err := s.repo.ListUnlocks(ctx, userID)
	if err != nil {
		log.Printf("gamepass: listing unlocks for %s: %v", userID, err)
		return
	}
	seen := make(map[string]bool, len(existing))
	for _, u := range existing {
		seen[u.TierID] = true
	}

	for _, t := range tiers {
		if !t.Active || t.RequiredPoints > points || seen[t.ID] {
			continue
		}
		unlock := &entity.TierUnlock{
			UserID:         userID,
			TierID:         t.ID,
			PointsAtUnlock: points,
			RequiredPoints: t.RequiredPoints,
			RewardLabel:    RewardLabel(t.Reward),
		}
		if err := s.repo.RecordUnlock(ctx, unlock); err != nil {
			log.Printf("gamepass: recording unlock %s for %s: %v", t.ID, userID, err)
			continue
		}
		if s.notification != nil {
			if err := s.notification.NotifyTierUnlocked(ctx, userID, unlock); err != nil {
				log.Printf("gamepass: tier unlock notification for %s: %v", userID, err)
			}
		}
	}
}

func tierViews(tiers []*entity.Tier, points int) []gamepassDto.TierView {
	views := make([]gamepassDto.TierView, 0, len(tiers))
	for _, t := range tiers {
		views = append(views, gamepassDto.TierView{
			ID:             t.ID,
			Title:          t.Title,
			RequiredPoints: t.RequiredPoints,
			RewardKind:     string(t.Reward.Kind),
			RewardLabel:    RewardLabel(t.Reward),
			RewardImageURL: t.Reward.ImageURL,
			Unlocked:       t.RequiredPoints <= points,
		})
	}
	return views
}
