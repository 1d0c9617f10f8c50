package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fantaballa/gamepass-api/internal/entity"
	achievementDto "github.com/fantaballa/gamepass-api/internal/modules/achievement/dto"
	achievementRepo "github.com/fantaballa/gamepass-api/internal/modules/achievement/repository"
	claimRepo "github.com/fantaballa/gamepass-api/internal/modules/claim/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (AchievementService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Achievement{},
		&entity.AchievementPrereq{},
		&entity.Claim{},
		&entity.Earned{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	svc := NewAchievementService(
		achievementRepo.NewAchievementRepository(db),
		claimRepo.NewClaimRepository(db),
		nil,
	)
	return svc, db
}

func TestCreateAchievement(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "first_goal", Title: "First Goal", Points: 50,
	})
	if err != nil {
		t.Fatalf("CreateAchievement: %v", err)
	}
	if !resp.Active {
		t.Fatal("new achievement should be active")
	}

	// Slugs are unique.
	_, err = svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "first_goal", Title: "Duplicate",
	})
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("duplicate err = %v, want precondition failure", err)
	}
}

func TestCreateAchievementRejectsBadSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"First_Goal", "first goal", "-leading", ""} {
		_, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
			ID: id, Title: "Bad",
		})
		if !errors.Is(err, apperror.ErrInvalidArgument) {
			t.Fatalf("id %q: err = %v, want invalid argument", id, err)
		}
	}
}

func TestCreateAchievementPrereqValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "loop", Title: "Loop", Requires: []string{"loop"},
	})
	if !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("self-reference err = %v, want invalid argument", err)
	}

	_, err = svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "chained", Title: "Chained", Requires: []string{"missing"},
	})
	if !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("unknown prereq err = %v, want invalid argument", err)
	}
}

func TestListCatalogResolvesViewerState(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "earned_one", Title: "Earned",
	}); err != nil {
		t.Fatalf("CreateAchievement: %v", err)
	}
	if _, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "pending_one", Title: "Pending",
	}); err != nil {
		t.Fatalf("CreateAchievement: %v", err)
	}
	if _, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "locked_one", Title: "Locked", Requires: []string{"pending_one"},
	}); err != nil {
		t.Fatalf("CreateAchievement: %v", err)
	}
	if _, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "open_one", Title: "Open", Requires: []string{"earned_one"},
	}); err != nil {
		t.Fatalf("CreateAchievement: %v", err)
	}

	if err := db.Create(&entity.Earned{UserID: userID, AchievementID: "earned_one"}).Error; err != nil {
		t.Fatalf("seed earned: %v", err)
	}
	if err := db.Create(&entity.Claim{
		UserID: userID, AchievementID: "pending_one", Status: entity.ClaimStatusPending,
	}).Error; err != nil {
		t.Fatalf("seed claim: %v", err)
	}

	catalog, err := svc.ListCatalog(ctx, userID)
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}

	states := make(map[string]string, len(catalog))
	for _, entry := range catalog {
		states[entry.ID] = entry.State
	}
	want := map[string]string{
		"earned_one":  achievementDto.StateEarned,
		"pending_one": achievementDto.StatePending,
		"locked_one":  achievementDto.StateLocked,
		"open_one":    achievementDto.StateClaimable,
	}
	for id, state := range want {
		if states[id] != state {
			t.Fatalf("state[%s] = %q, want %q", id, states[id], state)
		}
	}
}

func TestListCatalogHidesRetired(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "visible", Title: "Visible",
	}); err != nil {
		t.Fatalf("CreateAchievement: %v", err)
	}
	if _, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
		ID: "hidden", Title: "Hidden",
	}); err != nil {
		t.Fatalf("CreateAchievement: %v", err)
	}
	if err := svc.SetActive(ctx, "hidden", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	catalog, err := svc.ListCatalog(ctx, uuid.New())
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(catalog) != 1 || catalog[0].ID != "visible" {
		t.Fatalf("catalog = %+v, want only the active entry", catalog)
	}

	// Admin listing still shows both.
	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d, want 2", len(all))
	}
}

func TestUpdateAchievementReplacesPrereqs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := svc.CreateAchievement(ctx, achievementDto.CreateAchievementRequest{
			ID: id, Title: id,
		}); err != nil {
			t.Fatalf("CreateAchievement %s: %v", id, err)
		}
	}

	if _, err := svc.UpdateAchievement(ctx, "c", achievementDto.UpdateAchievementRequest{
		Title: "c", Requires: []string{"a"},
	}); err != nil {
		t.Fatalf("UpdateAchievement: %v", err)
	}
	if _, err := svc.UpdateAchievement(ctx, "c", achievementDto.UpdateAchievementRequest{
		Title: "c", Requires: []string{"b"},
	}); err != nil {
		t.Fatalf("UpdateAchievement: %v", err)
	}

	resp, err := svc.GetAchievement(ctx, "c")
	if err != nil {
		t.Fatalf("GetAchievement: %v", err)
	}
	if len(resp.Requires) != 1 || resp.Requires[0] != "b" {
		t.Fatalf("requires = %v, want [b]", resp.Requires)
	}
}

func TestSetActiveUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.SetActive(context.Background(), "missing", false)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
