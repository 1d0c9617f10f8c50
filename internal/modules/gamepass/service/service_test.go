package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	gamepassRepo "github.com/fantaballa/gamepass-api/internal/modules/gamepass/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (GamepassService, gamepassRepo.GamepassRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.Progress{},
		&entity.Tier{},
		&entity.TierUnlock{},
		&entity.SeasonConfig{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	repo := gamepassRepo.NewGamepassRepository(db)
	svc := NewGamepassService(repo, nil, nil, 10, 20*time.Hour)
	return svc, repo, db
}

func seedLadder(t *testing.T, db *gorm.DB) {
	t.Helper()
	tiers := []entity.Tier{
		{ID: "t1", Title: "Bronze", RequiredPoints: 100, Active: true},
		{ID: "t2", Title: "Silver", RequiredPoints: 200, Active: true},
		{ID: "t3", Title: "Gold", RequiredPoints: 300, Active: true},
	}
	for i := range tiers {
		if err := db.Create(&tiers[i]).Error; err != nil {
			t.Fatalf("create tier: %v", err)
		}
	}
}

func TestGetProgressNewUser(t *testing.T) {
	svc, _, db := newTestService(t)
	seedLadder(t, db)

	resp, err := svc.GetProgress(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if resp.Season != 1 || resp.Points != 0 || resp.TierIndex != 0 {
		t.Fatalf("progress = %+v, want season 1 with 0 points", resp)
	}
	if resp.NextTierID != "t1" || resp.NextTierPoints != 100 {
		t.Fatalf("next tier = %s@%d, want t1@100", resp.NextTierID, resp.NextTierPoints)
	}
	if resp.TierCount != 3 || len(resp.Tiers) != 3 {
		t.Fatalf("tier count = %d/%d, want 3", resp.TierCount, len(resp.Tiers))
	}
}

func TestGetProgressTreatsStaleSeasonAsZero(t *testing.T) {
	svc, repo, db := newTestService(t)
	seedLadder(t, db)
	ctx := context.Background()
	userID := uuid.New()

	if err := repo.GrantPoints(ctx, userID, 1, 250); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}
	if err := repo.SetSeason(ctx, 2); err != nil {
		t.Fatalf("SetSeason: %v", err)
	}

	resp, err := svc.GetProgress(ctx, userID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if resp.Season != 2 || resp.Points != 0 || resp.TierIndex != 0 {
		t.Fatalf("progress = %+v, want 0 points in season 2", resp)
	}
}

func TestGetProgressRecordsUnlocks(t *testing.T) {
	svc, repo, db := newTestService(t)
	seedLadder(t, db)
	ctx := context.Background()
	userID := uuid.New()

	if err := repo.GrantPoints(ctx, userID, 1, 250); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}

	if _, err := svc.GetProgress(ctx, userID); err != nil {
		t.Fatalf("GetProgress: %v", err)
	}

	unlocks, err := repo.ListUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("ListUnlocks: %v", err)
	}
	if len(unlocks) != 2 {
		t.Fatalf("unlocks = %d, want 2 (t1 and t2)", len(unlocks))
	}

	// A second read must not duplicate the ledger.
	if _, err := svc.GetProgress(ctx, userID); err != nil {
		t.Fatalf("GetProgress again: %v", err)
	}
	unlocks, _ = repo.ListUnlocks(ctx, userID)
	if len(unlocks) != 2 {
		t.Fatalf("unlocks after second read = %d, want 2", len(unlocks))
	}
}

func TestClaimDailyService(t *testing.T) {
	svc, _, db := newTestService(t)
	seedLadder(t, db)
	ctx := context.Background()
	userID := uuid.New()

	resp, err := svc.ClaimDaily(ctx, userID)
	if err != nil {
		t.Fatalf("ClaimDaily: %v", err)
	}
	if resp.PointsGranted != 10 || resp.TotalPoints != 10 {
		t.Fatalf("bonus = %+v, want 10 granted and 10 total", resp)
	}
	if !resp.NextAvailableAt.After(time.Now()) {
		t.Fatalf("NextAvailableAt = %v, want in the future", resp.NextAvailableAt)
	}

	_, err = svc.ClaimDaily(ctx, userID)
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("second claim err = %v, want precondition failure", err)
	}
}

func TestSeasonReport(t *testing.T) {
	svc, repo, db := newTestService(t)
	seedLadder(t, db)
	ctx := context.Background()

	alice := entity.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	bob := entity.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"}
	for _, u := range []*entity.User{&alice, &bob} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	if err := repo.GrantPoints(ctx, alice.ID, 1, 250); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}
	if err := repo.GrantPoints(ctx, bob.ID, 1, 120); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}

	entries, err := svc.SeasonReport(ctx, 10)
	if err != nil {
		t.Fatalf("SeasonReport: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Position != 1 || entries[0].Username != "alice" || entries[0].TierIndex != 2 {
		t.Fatalf("first entry = %+v, want alice at position 1 with tier index 2", entries[0])
	}
	if entries[1].Username != "bob" || entries[1].TierIndex != 1 {
		t.Fatalf("second entry = %+v, want bob with tier index 1", entries[1])
	}
}

func TestSetSeasonValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetSeason(ctx, 0); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}

	if err := svc.SetSeason(ctx, 2); err != nil {
		t.Fatalf("SetSeason: %v", err)
	}
	season, err := svc.CurrentSeason(ctx)
	if err != nil {
		t.Fatalf("CurrentSeason: %v", err)
	}
	if season != 2 {
		t.Fatalf("season = %d, want 2", season)
	}
}
