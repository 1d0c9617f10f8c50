package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	gamepassrepo "github.com/fantaballa/gamepass-api/internal/modules/gamepass/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
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
		&entity.Moderator{},
		&entity.Achievement{},
		&entity.AchievementPrereq{},
		&entity.Claim{},
		&entity.Earned{},
		&entity.Progress{},
		&entity.InventoryItem{},
		&entity.SeasonConfig{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

type fixture struct {
	db        *gorm.DB
	repo      ModerationRepository
	user      uuid.UUID
	moderator uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	user := entity.User{Username: "claimant", Email: "claimant@example.com", PasswordHash: "x"}
	mod := entity.User{Username: "mod", Email: "mod@example.com", PasswordHash: "x"}
	for _, u := range []*entity.User{&user, &mod} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	return &fixture{
		db:        db,
		repo:      NewModerationRepository(db),
		user:      user.ID,
		moderator: mod.ID,
	}
}

func (f *fixture) addAchievement(t *testing.T, ach entity.Achievement) {
	t.Helper()
	if err := f.db.Create(&ach).Error; err != nil {
		t.Fatalf("create achievement: %v", err)
	}
}

func (f *fixture) addPendingClaim(t *testing.T, achID string) uuid.UUID {
	t.Helper()
	claim := entity.Claim{
		UserID:        f.user,
		AchievementID: achID,
		Status:        entity.ClaimStatusPending,
	}
	if err := f.db.Create(&claim).Error; err != nil {
		t.Fatalf("create claim: %v", err)
	}
	return claim.ID
}

func (f *fixture) points(t *testing.T) int {
	t.Helper()
	var prog entity.Progress
	err := f.db.First(&prog, "user_id = ?", f.user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	if err != nil {
		t.Fatalf("read progress: %v", err)
	}
	return prog.Points
}

func TestApproveClaimGrantsEverything(t *testing.T) {
	f := newFixture(t)
	itemID := "scarf"
	f.addAchievement(t, entity.Achievement{
		ID: "derby_win", Title: "Derby Win", Points: 150, Active: true,
		RewardItemID: &itemID, RewardQty: 2,
	})
	claimID := f.addPendingClaim(t, "derby_win")

	note := "verified"
	claim, ach, err := f.repo.ApproveClaim(context.Background(), claimID, f.moderator, &note, time.Now())
	if err != nil {
		t.Fatalf("ApproveClaim: %v", err)
	}
	if claim.Status != entity.ClaimStatusApproved {
		t.Fatalf("status = %q, want approved", claim.Status)
	}
	if ach.Points != 150 {
		t.Fatalf("achievement points = %d, want 150", ach.Points)
	}

	var earnedCount int64
	f.db.Model(&entity.Earned{}).Where("user_id = ?", f.user).Count(&earnedCount)
	if earnedCount != 1 {
		t.Fatalf("earned rows = %d, want 1", earnedCount)
	}

	if got := f.points(t); got != 150 {
		t.Fatalf("points = %d, want 150", got)
	}

	var item entity.InventoryItem
	if err := f.db.First(&item, "user_id = ? AND item_id = ?", f.user, "scarf").Error; err != nil {
		t.Fatalf("inventory row missing: %v", err)
	}
	if item.Qty != 2 {
		t.Fatalf("qty = %d, want 2", item.Qty)
	}
}

func TestApproveClaimIsNotRepeatable(t *testing.T) {
	f := newFixture(t)
	f.addAchievement(t, entity.Achievement{ID: "a1", Title: "A1", Points: 100, Active: true})
	claimID := f.addPendingClaim(t, "a1")

	if _, _, err := f.repo.ApproveClaim(context.Background(), claimID, f.moderator, nil, time.Now()); err != nil {
		t.Fatalf("first approval: %v", err)
	}

	_, _, err := f.repo.ApproveClaim(context.Background(), claimID, f.moderator, nil, time.Now())
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("second approval err = %v, want precondition failure", err)
	}

	if got := f.points(t); got != 100 {
		t.Fatalf("points = %d, want 100 (granted once)", got)
	}
}

func TestApproveSecondClaimForEarnedAchievement(t *testing.T) {
	f := newFixture(t)
	f.addAchievement(t, entity.Achievement{ID: "a1", Title: "A1", Points: 100, Active: true})
	first := f.addPendingClaim(t, "a1")
	second := f.addPendingClaim(t, "a1")

	if _, _, err := f.repo.ApproveClaim(context.Background(), first, f.moderator, nil, time.Now()); err != nil {
		t.Fatalf("first approval: %v", err)
	}

	// Two pending claims for the same achievement: approving the second one
	// must fail and leave it pending, with no double grant.
	_, _, err := f.repo.ApproveClaim(context.Background(), second, f.moderator, nil, time.Now())
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("err = %v, want precondition failure", err)
	}

	var claim entity.Claim
	f.db.First(&claim, "id = ?", second)
	if claim.Status != entity.ClaimStatusPending {
		t.Fatalf("second claim status = %q, want pending after rollback", claim.Status)
	}
	if got := f.points(t); got != 100 {
		t.Fatalf("points = %d, want 100", got)
	}
}

func TestApproveClaimMissingPrerequisite(t *testing.T) {
	f := newFixture(t)
	f.addAchievement(t, entity.Achievement{ID: "base", Title: "Base", Active: true})
	f.addAchievement(t, entity.Achievement{
		ID: "chained", Title: "Chained", Points: 50, Active: true,
		Prerequisites: []entity.AchievementPrereq{{AchievementID: "chained", RequiresID: "base"}},
	})
	claimID := f.addPendingClaim(t, "chained")

	_, _, err := f.repo.ApproveClaim(context.Background(), claimID, f.moderator, nil, time.Now())
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("err = %v, want precondition failure", err)
	}

	// The failed check rolls everything back: claim stays pending, no XP.
	var claim entity.Claim
	f.db.First(&claim, "id = ?", claimID)
	if claim.Status != entity.ClaimStatusPending {
		t.Fatalf("claim status = %q, want pending", claim.Status)
	}
	if got := f.points(t); got != 0 {
		t.Fatalf("points = %d, want 0", got)
	}

	// Once the prerequisite is earned the same claim approves cleanly.
	if err := f.db.Create(&entity.Earned{UserID: f.user, AchievementID: "base", ApprovedBy: f.moderator}).Error; err != nil {
		t.Fatalf("seed earned: %v", err)
	}
	if _, _, err := f.repo.ApproveClaim(context.Background(), claimID, f.moderator, nil, time.Now()); err != nil {
		t.Fatalf("approval after prerequisite: %v", err)
	}
	if got := f.points(t); got != 50 {
		t.Fatalf("points = %d, want 50", got)
	}
}

func TestApproveClaimRetiredAchievement(t *testing.T) {
	f := newFixture(t)
	f.addAchievement(t, entity.Achievement{ID: "old", Title: "Old", Points: 10, Active: true})
	claimID := f.addPendingClaim(t, "old")

	// Retired between submission and review.
	f.db.Model(&entity.Achievement{}).Where("id = ?", "old").Update("active", false)

	_, _, err := f.repo.ApproveClaim(context.Background(), claimID, f.moderator, nil, time.Now())
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("err = %v, want precondition failure", err)
	}

	var claim entity.Claim
	f.db.First(&claim, "id = ?", claimID)
	if claim.Status != entity.ClaimStatusPending {
		t.Fatalf("claim status = %q, want pending", claim.Status)
	}
}

func TestApproveClaimUsesCurrentSeason(t *testing.T) {
	f := newFixture(t)
	f.addAchievement(t, entity.Achievement{ID: "a1", Title: "A1", Points: 40, Active: true})
	claimID := f.addPendingClaim(t, "a1")

	if err := gamepassrepo.NewGamepassRepository(f.db).SetSeason(context.Background(), 4); err != nil {
		t.Fatalf("SetSeason: %v", err)
	}

	if _, _, err := f.repo.ApproveClaim(context.Background(), claimID, f.moderator, nil, time.Now()); err != nil {
		t.Fatalf("ApproveClaim: %v", err)
	}

	var prog entity.Progress
	if err := f.db.First(&prog, "user_id = ?", f.user).Error; err != nil {
		t.Fatalf("read progress: %v", err)
	}
	if prog.Season != 4 || prog.Points != 40 {
		t.Fatalf("progress = season %d points %d, want season 4 points 40", prog.Season, prog.Points)
	}
}

func TestRejectClaim(t *testing.T) {
	f := newFixture(t)
	f.addAchievement(t, entity.Achievement{ID: "a1", Title: "A1", Points: 100, Active: true})
	claimID := f.addPendingClaim(t, "a1")

	note := "screenshot does not show the match"
	claim, err := f.repo.RejectClaim(context.Background(), claimID, f.moderator, &note, time.Now())
	if err != nil {
		t.Fatalf("RejectClaim: %v", err)
	}
	if claim.Status != entity.ClaimStatusRejected {
		t.Fatalf("status = %q, want rejected", claim.Status)
	}
	if claim.Note == nil || *claim.Note != note {
		t.Fatalf("note = %v, want %q", claim.Note, note)
	}

	// Rejection never touches XP or earned state.
	if got := f.points(t); got != 0 {
		t.Fatalf("points = %d, want 0", got)
	}

	// A rejected claim cannot be re-reviewed.
	if _, _, err := f.repo.ApproveClaim(context.Background(), claimID, f.moderator, nil, time.Now()); !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("approval after rejection err = %v, want precondition failure", err)
	}
}

func TestReviewUnknownClaim(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.RejectClaim(context.Background(), uuid.New(), f.moderator, nil, time.Now())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestModeratorMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.repo.IsModerator(ctx, f.user)
	if err != nil {
		t.Fatalf("IsModerator: %v", err)
	}
	if ok {
		t.Fatal("user should not be a moderator yet")
	}

	if err := f.repo.GrantModerator(ctx, f.user, f.moderator); err != nil {
		t.Fatalf("GrantModerator: %v", err)
	}
	// Granting twice is a no-op, not an error.
	if err := f.repo.GrantModerator(ctx, f.user, f.moderator); err != nil {
		t.Fatalf("GrantModerator replay: %v", err)
	}

	ok, _ = f.repo.IsModerator(ctx, f.user)
	if !ok {
		t.Fatal("user should be a moderator")
	}

	mods, err := f.repo.ListModerators(ctx)
	if err != nil {
		t.Fatalf("ListModerators: %v", err)
	}
	if len(mods) != 1 || mods[0].User == nil || mods[0].User.Username != "claimant" {
		t.Fatalf("moderators = %+v, want the granted user", mods)
	}

	if err := f.repo.RevokeModerator(ctx, f.user); err != nil {
		t.Fatalf("RevokeModerator: %v", err)
	}
	ok, _ = f.repo.IsModerator(ctx, f.user)
	if ok {
		t.Fatal("revoked user should not be a moderator")
	}
}
