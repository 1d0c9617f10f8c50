package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fantaballa/gamepass-api/internal/entity"
	moderationDto "github.com/fantaballa/gamepass-api/internal/modules/moderation/dto"
	moderationRepo "github.com/fantaballa/gamepass-api/internal/modules/moderation/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (ModerationService, *gorm.DB) {
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
	return NewModerationService(moderationRepo.NewModerationRepository(db), nil), db
}

func seedPendingClaim(t *testing.T, db *gorm.DB, points int) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ach := entity.Achievement{ID: "first_goal", Title: "First Goal", Points: points, Active: true}
	if err := db.Create(&ach).Error; err != nil {
		t.Fatalf("create achievement: %v", err)
	}
	claim := entity.Claim{UserID: uuid.New(), AchievementID: ach.ID, Status: entity.ClaimStatusPending}
	if err := db.Create(&claim).Error; err != nil {
		t.Fatalf("create claim: %v", err)
	}
	return claim.ID, claim.UserID
}

func TestReviewClaimApprove(t *testing.T) {
	svc, db := newTestService(t)
	claimID, _ := seedPendingClaim(t, db, 75)

	resp, err := svc.ReviewClaim(context.Background(), claimID, uuid.New(), moderationDto.ReviewClaimRequest{
		Action: ActionApprove,
		Note:   "  <b>looks good</b>  ",
	})
	if err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}
	if resp.Claim.Status != entity.ClaimStatusApproved {
		t.Fatalf("status = %q, want approved", resp.Claim.Status)
	}
	if resp.PointsGranted != 75 {
		t.Fatalf("points granted = %d, want 75", resp.PointsGranted)
	}
	if resp.Claim.Note == nil || *resp.Claim.Note != "looks good" {
		t.Fatalf("note = %v, want sanitized and trimmed", resp.Claim.Note)
	}
}

func TestReviewClaimReject(t *testing.T) {
	svc, db := newTestService(t)
	claimID, userID := seedPendingClaim(t, db, 75)

	resp, err := svc.ReviewClaim(context.Background(), claimID, uuid.New(), moderationDto.ReviewClaimRequest{
		Action: ActionReject,
	})
	if err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}
	if resp.Claim.Status != entity.ClaimStatusRejected {
		t.Fatalf("status = %q, want rejected", resp.Claim.Status)
	}
	if resp.PointsGranted != 0 {
		t.Fatalf("points granted = %d, want 0", resp.PointsGranted)
	}
	if resp.Claim.Note != nil {
		t.Fatalf("note = %v, want nil for empty input", resp.Claim.Note)
	}

	var prog entity.Progress
	err = db.First(&prog, "user_id = ?", userID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("rejection created a progress row: %v", err)
	}
}

func TestReviewClaimInvalidAction(t *testing.T) {
	svc, db := newTestService(t)
	claimID, _ := seedPendingClaim(t, db, 10)

	_, err := svc.ReviewClaim(context.Background(), claimID, uuid.New(), moderationDto.ReviewClaimRequest{
		Action: "escalate",
	})
	if !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestReviewClaimNoteTruncation(t *testing.T) {
	svc, db := newTestService(t)
	claimID, _ := seedPendingClaim(t, db, 10)

	long := strings.Repeat("à", entity.ReviewNoteMaxLen+200)
	resp, err := svc.ReviewClaim(context.Background(), claimID, uuid.New(), moderationDto.ReviewClaimRequest{
		Action: ActionReject,
		Note:   long,
	})
	if err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}
	if resp.Claim.Note == nil {
		t.Fatal("note = nil, want truncated text")
	}
	if n := len([]rune(*resp.Claim.Note)); n != entity.ReviewNoteMaxLen {
		t.Fatalf("note rune length = %d, want %d", n, entity.ReviewNoteMaxLen)
	}
}
