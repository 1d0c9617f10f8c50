package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fantaballa/gamepass-api/internal/entity"
	achievementRepo "github.com/fantaballa/gamepass-api/internal/modules/achievement/repository"
	claimDto "github.com/fantaballa/gamepass-api/internal/modules/claim/dto"
	claimRepo "github.com/fantaballa/gamepass-api/internal/modules/claim/repository"
	evidenceRepo "github.com/fantaballa/gamepass-api/internal/modules/evidence/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (ClaimService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Achievement{},
		&entity.AchievementPrereq{},
		&entity.Claim{},
		&entity.EvidenceFile{},
		&entity.Earned{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	svc := NewClaimService(
		claimRepo.NewClaimRepository(db),
		achievementRepo.NewAchievementRepository(db),
		evidenceRepo.NewEvidenceRepository(db),
		nil,
	)
	return svc, db
}

func seedAchievement(t *testing.T, db *gorm.DB, id string, active bool) {
	t.Helper()
	ach := entity.Achievement{ID: id, Title: strings.ToUpper(id), Points: 10, Active: active}
	if err := db.Create(&ach).Error; err != nil {
		t.Fatalf("create achievement: %v", err)
	}
}

func TestSubmitClaim(t *testing.T) {
	svc, db := newTestService(t)
	seedAchievement(t, db, "first_goal", true)
	userID := uuid.New()

	resp, err := svc.SubmitClaim(context.Background(), userID, claimDto.SubmitClaimRequest{
		AchievementID: "first_goal",
		EvidenceText:  "scored in the 89th minute",
		EvidenceURL:   "https://example.com/clip",
	})
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	if resp.Status != entity.ClaimStatusPending {
		t.Fatalf("status = %q, want pending", resp.Status)
	}
	if resp.AchievementTitle != "FIRST_GOAL" {
		t.Fatalf("title snapshot = %q, want FIRST_GOAL", resp.AchievementTitle)
	}
	if resp.EvidenceText != "scored in the 89th minute" {
		t.Fatalf("evidence = %q", resp.EvidenceText)
	}
}

func TestSubmitClaimUnknownAchievement(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SubmitClaim(context.Background(), uuid.New(), claimDto.SubmitClaimRequest{
		AchievementID: "missing",
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSubmitClaimRetiredAchievement(t *testing.T) {
	svc, db := newTestService(t)
	seedAchievement(t, db, "retired", false)

	_, err := svc.SubmitClaim(context.Background(), uuid.New(), claimDto.SubmitClaimRequest{
		AchievementID: "retired",
	})
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("err = %v, want precondition failure", err)
	}
}

func TestSubmitClaimDuplicatePending(t *testing.T) {
	svc, db := newTestService(t)
	seedAchievement(t, db, "first_goal", true)
	userID := uuid.New()

	if _, err := svc.SubmitClaim(context.Background(), userID, claimDto.SubmitClaimRequest{
		AchievementID: "first_goal",
	}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := svc.SubmitClaim(context.Background(), userID, claimDto.SubmitClaimRequest{
		AchievementID: "first_goal",
	})
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("err = %v, want precondition failure", err)
	}
}

func TestSubmitClaimAlreadyEarned(t *testing.T) {
	svc, db := newTestService(t)
	seedAchievement(t, db, "first_goal", true)
	userID := uuid.New()

	if err := db.Create(&entity.Earned{UserID: userID, AchievementID: "first_goal"}).Error; err != nil {
		t.Fatalf("seed earned: %v", err)
	}

	_, err := svc.SubmitClaim(context.Background(), userID, claimDto.SubmitClaimRequest{
		AchievementID: "first_goal",
	})
	if !errors.Is(err, apperror.ErrFailedPrecondition) {
		t.Fatalf("err = %v, want precondition failure", err)
	}
}

func TestSubmitClaimSanitizesAndTruncatesEvidence(t *testing.T) {
	svc, db := newTestService(t)
	seedAchievement(t, db, "first_goal", true)
	userID := uuid.New()

	long := strings.Repeat("è", entity.EvidenceMaxLen+500)
	resp, err := svc.SubmitClaim(context.Background(), userID, claimDto.SubmitClaimRequest{
		AchievementID: "first_goal",
		EvidenceText:  "<script>alert(1)</script>" + long,
	})
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}

	if strings.Contains(resp.EvidenceText, "<script>") {
		t.Fatal("markup survived sanitization")
	}
	if n := len([]rune(resp.EvidenceText)); n != entity.EvidenceMaxLen {
		t.Fatalf("evidence rune length = %d, want %d", n, entity.EvidenceMaxLen)
	}
}

func TestSubmitClaimAttachesEvidenceFiles(t *testing.T) {
	svc, db := newTestService(t)
	seedAchievement(t, db, "first_goal", true)
	userID := uuid.New()
	otherUser := uuid.New()

	mine := entity.EvidenceFile{UserID: userID, FileURL: "https://cdn.example.com/a.webp", FileType: "image/webp"}
	theirs := entity.EvidenceFile{UserID: otherUser, FileURL: "https://cdn.example.com/b.webp", FileType: "image/webp"}
	for _, f := range []*entity.EvidenceFile{&mine, &theirs} {
		if err := db.Create(f).Error; err != nil {
			t.Fatalf("seed evidence: %v", err)
		}
	}

	resp, err := svc.SubmitClaim(context.Background(), userID, claimDto.SubmitClaimRequest{
		AchievementID: "first_goal",
		AttachmentIDs: []uint{mine.ID, theirs.ID},
	})
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}

	var attached []entity.EvidenceFile
	if err := db.Where("claim_id = ?", resp.ID).Find(&attached).Error; err != nil {
		t.Fatalf("read evidence: %v", err)
	}
	if len(attached) != 1 || attached[0].ID != mine.ID {
		t.Fatalf("attached = %+v, want only the submitter's own file", attached)
	}
}

func TestListPendingClaimsIncludesFiles(t *testing.T) {
	svc, db := newTestService(t)
	seedAchievement(t, db, "first_goal", true)

	user := entity.User{Username: "claimant", Email: "claimant@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	file := entity.EvidenceFile{UserID: user.ID, FileURL: "https://cdn.example.com/a.webp", FileType: "image/webp"}
	if err := db.Create(&file).Error; err != nil {
		t.Fatalf("seed evidence: %v", err)
	}

	if _, err := svc.SubmitClaim(context.Background(), user.ID, claimDto.SubmitClaimRequest{
		AchievementID: "first_goal",
		AttachmentIDs: []uint{file.ID},
	}); err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}

	pending, err := svc.ListPendingClaims(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingClaims: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if pending[0].Claimant == nil || pending[0].Claimant.Username != "claimant" {
		t.Fatalf("claimant = %+v", pending[0].Claimant)
	}
	if len(pending[0].Files) != 1 || pending[0].Files[0].FileURL != file.FileURL {
		t.Fatalf("files = %+v, want the attached upload", pending[0].Files)
	}
}
