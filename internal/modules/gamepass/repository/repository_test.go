package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
		&entity.InventoryItem{},
		&entity.SeasonConfig{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

func TestCurrentSeasonDefaultsToOne(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))
	ctx := context.Background()

	season, err := repo.CurrentSeason(ctx)
	if err != nil {
		t.Fatalf("CurrentSeason: %v", err)
	}
	if season != 1 {
		t.Fatalf("season = %d, want 1", season)
	}
}

func TestSetSeasonRoundTrip(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.SetSeason(ctx, 3); err != nil {
		t.Fatalf("SetSeason: %v", err)
	}
	season, err := repo.CurrentSeason(ctx)
	if err != nil {
		t.Fatalf("CurrentSeason: %v", err)
	}
	if season != 3 {
		t.Fatalf("season = %d, want 3", season)
	}

	// Overwrites, does not duplicate.
	if err := repo.SetSeason(ctx, 5); err != nil {
		t.Fatalf("SetSeason again: %v", err)
	}
	season, _ = repo.CurrentSeason(ctx)
	if season != 5 {
		t.Fatalf("season = %d, want 5", season)
	}
}

func TestGrantPointsIncrementsWithinSeason(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	if err := repo.GrantPoints(ctx, userID, 1, 50); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}
	if err := repo.GrantPoints(ctx, userID, 1, 30); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}

	prog, err := repo.GetProgress(ctx, userID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if prog == nil || prog.Points != 80 || prog.Season != 1 {
		t.Fatalf("progress = %+v, want 80 points in season 1", prog)
	}
}

func TestGrantPointsResetsOnSeasonChange(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	if err := repo.GrantPoints(ctx, userID, 1, 500); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}

	// A grant in a newer season overwrites the stale total instead of
	// adding to it.
	if err := repo.GrantPoints(ctx, userID, 2, 25); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}

	prog, err := repo.GetProgress(ctx, userID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if prog.Season != 2 || prog.Points != 25 {
		t.Fatalf("progress = season %d points %d, want season 2 points 25", prog.Season, prog.Points)
	}
}

func TestGetProgressMissingUser(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))

	prog, err := repo.GetProgress(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if prog != nil {
		t.Fatalf("progress = %+v, want nil", prog)
	}
}

func TestClaimDailyCooldown(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	cooldown := 20 * time.Hour
	now := time.Now()

	granted, err := repo.ClaimDaily(ctx, userID, 1, 10, now, cooldown)
	if err != nil {
		t.Fatalf("ClaimDaily: %v", err)
	}
	if !granted {
		t.Fatal("first claim should be granted")
	}

	granted, err = repo.ClaimDaily(ctx, userID, 1, 10, now.Add(time.Hour), cooldown)
	if err != nil {
		t.Fatalf("ClaimDaily: %v", err)
	}
	if granted {
		t.Fatal("claim within cooldown should be blocked")
	}

	granted, err = repo.ClaimDaily(ctx, userID, 1, 10, now.Add(cooldown+time.Minute), cooldown)
	if err != nil {
		t.Fatalf("ClaimDaily: %v", err)
	}
	if !granted {
		t.Fatal("claim after cooldown should be granted")
	}

	prog, _ := repo.GetProgress(ctx, userID)
	if prog.Points != 20 {
		t.Fatalf("points = %d, want 20", prog.Points)
	}
}

func TestClaimDailyIgnoresCooldownAcrossSeasons(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	cooldown := 20 * time.Hour
	now := time.Now()

	if _, err := repo.ClaimDaily(ctx, userID, 1, 10, now, cooldown); err != nil {
		t.Fatalf("ClaimDaily: %v", err)
	}

	// Season rollover resets the total and the cooldown together.
	granted, err := repo.ClaimDaily(ctx, userID, 2, 10, now.Add(time.Minute), cooldown)
	if err != nil {
		t.Fatalf("ClaimDaily: %v", err)
	}
	if !granted {
		t.Fatal("claim in a new season should be granted regardless of cooldown")
	}

	prog, _ := repo.GetProgress(ctx, userID)
	if prog.Season != 2 || prog.Points != 10 {
		t.Fatalf("progress = season %d points %d, want season 2 points 10", prog.Season, prog.Points)
	}
}

func TestRecordUnlockIdempotent(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	unlock := &entity.TierUnlock{
		UserID:         userID,
		TierID:         "t1",
		PointsAtUnlock: 120,
		RequiredPoints: 100,
		RewardLabel:    "Card totti-01",
	}
	if err := repo.RecordUnlock(ctx, unlock); err != nil {
		t.Fatalf("RecordUnlock: %v", err)
	}

	replay := &entity.TierUnlock{
		UserID:         userID,
		TierID:         "t1",
		PointsAtUnlock: 999,
		RequiredPoints: 100,
	}
	if err := repo.RecordUnlock(ctx, replay); err != nil {
		t.Fatalf("RecordUnlock replay: %v", err)
	}

	unlocks, err := repo.ListUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("ListUnlocks: %v", err)
	}
	if len(unlocks) != 1 {
		t.Fatalf("unlocks = %d, want 1", len(unlocks))
	}
	if unlocks[0].PointsAtUnlock != 120 {
		t.Fatalf("replay overwrote the original unlock: %+v", unlocks[0])
	}
}

func TestSeasonRanking(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamepassRepository(db)
	ctx := context.Background()

	alice := entity.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	bob := entity.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"}
	stale := entity.User{Username: "stale", Email: "stale@example.com", PasswordHash: "x"}
	for _, u := range []*entity.User{&alice, &bob, &stale} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	if err := db.Create(&entity.Profile{UserID: alice.ID, DisplayName: "Alice"}).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}

	if err := repo.GrantPoints(ctx, alice.ID, 1, 300); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}
	if err := repo.GrantPoints(ctx, bob.ID, 1, 500); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}
	// A prior-season row must not show up.
	if err := repo.GrantPoints(ctx, stale.ID, 0, 999); err != nil {
		t.Fatalf("GrantPoints: %v", err)
	}

	rows, err := repo.SeasonRanking(ctx, 1, 10)
	if err != nil {
		t.Fatalf("SeasonRanking: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Username != "bob" || rows[0].Points != 500 {
		t.Fatalf("first row = %+v, want bob with 500", rows[0])
	}
	if rows[1].Username != "alice" || rows[1].DisplayName != "Alice" {
		t.Fatalf("second row = %+v, want alice", rows[1])
	}
}

func TestListTiersActiveOnly(t *testing.T) {
	repo := NewGamepassRepository(newTestDB(t))
	ctx := context.Background()

	for _, tier := range []*entity.Tier{
		{ID: "t2", RequiredPoints: 200, Active: true},
		{ID: "t1", RequiredPoints: 100, Active: true},
		{ID: "old", RequiredPoints: 50, Active: false},
	} {
		if err := repo.SaveTier(ctx, tier); err != nil {
			t.Fatalf("SaveTier: %v", err)
		}
	}

	tiers, err := repo.ListTiers(ctx, true)
	if err != nil {
		t.Fatalf("ListTiers: %v", err)
	}
	if len(tiers) != 2 {
		t.Fatalf("tiers = %d, want 2", len(tiers))
	}
	if tiers[0].ID != "t1" || tiers[1].ID != "t2" {
		t.Fatalf("tiers not ordered by required points: %s, %s", tiers[0].ID, tiers[1].ID)
	}

	all, err := repo.ListTiers(ctx, false)
	if err != nil {
		t.Fatalf("ListTiers all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all tiers = %d, want 3", len(all))
	}
}
