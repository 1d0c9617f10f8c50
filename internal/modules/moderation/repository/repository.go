package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	gamepassrepo "github.com/fantaballa/gamepass-api/internal/modules/gamepass/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModerationRepository interface {
	ApproveClaim(ctx context.Context, claimID, moderatorID uuid.UUID, note *string, now time.Time) (*entity.Claim, *entity.Achievement, error)
	RejectClaim(ctx context.Context, claimID, moderatorID uuid.UUID, note *string, now time.Time) (*entity.Claim, error)

	IsModerator(ctx context.Context, userID uuid.UUID) (bool, error)
	GrantModerator(ctx context.Context, userID, grantedBy uuid.UUID) error
	RevokeModerator(ctx context.Context, userID uuid.UUID) error
	ListModerators(ctx context.Context) ([]*entity.Moderator, error)
}

type moderationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

// ApproveClaim runs the whole approval as one transaction: flip the claim
// out of pending, re-validate the achievement and its prerequisites against
// current state, merge the earned record, grant seasonal XP and any item
// reward. Any failed check rolls the claim back to pending untouched.
func (r *moderationRepository) ApproveClaim(ctx context.Context, claimID, moderatorID uuid.UUID, note *string, now time.Time) (*entity.Claim, *entity.Achievement, error) {
	var claim entity.Claim
	var ach entity.Achievement

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reviewClaim(tx, &claim, claimID, moderatorID, entity.ClaimStatusApproved, note, now); err != nil {
			return err
		}

		if err := tx.Preload("Prerequisites").
			First(&ach, "id = ?", claim.AchievementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.FailedPrecondition("achievement %q no longer exists", claim.AchievementID)
			}
			return err
		}
		if !ach.Active {
			return apperror.FailedPrecondition("achievement %q is retired", ach.ID)
		}

		// Prerequisites are re-validated now, not at submission time, so a
		// catalog edit between submit and review is honored.
		for _, req := range ach.PrereqIDs() {
			var count int64
			if err := tx.Model(&entity.Earned{}).
				Where("user_id = ? AND achievement_id = ?", claim.UserID, req).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperror.FailedPrecondition("missing prerequisite %q", req)
			}
		}

		earned := entity.Earned{
			UserID:        claim.UserID,
			AchievementID: ach.ID,
			ApprovedAt:    now,
			ApprovedBy:    moderatorID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&earned)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.FailedPrecondition("achievement %q already earned", ach.ID)
		}

		season, err := currentSeason(tx)
		if err != nil {
			return err
		}
		if ach.Points > 0 {
			if err := gamepassrepo.ApplySeasonPoints(tx, claim.UserID, season, ach.Points); err != nil {
				return err
			}
		}

		if ach.RewardItemID != nil && ach.RewardQty > 0 {
			if err := addInventory(tx, claim.UserID, *ach.RewardItemID, ach.RewardQty); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &claim, &ach, nil
}

// RejectClaim flips a pending claim to rejected. No XP or earned state is
// touched; the transaction exists only for the status CAS.
func (r *moderationRepository) RejectClaim(ctx context.Context, claimID, moderatorID uuid.UUID, note *string, now time.Time) (*entity.Claim, error) {
	var claim entity.Claim
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return reviewClaim(tx, &claim, claimID, moderatorID, entity.ClaimStatusRejected, note, now)
	})
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// reviewClaim is the shared status transition. The conditional UPDATE only
// matches a pending row, so a claim reviewed by a racing moderator yields
// zero affected rows and the loser gets a precondition failure.
func reviewClaim(tx *gorm.DB, claim *entity.Claim, claimID, moderatorID uuid.UUID, status string, note *string, now time.Time) error {
	if err := tx.First(claim, "id = ?", claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("claim %s", claimID)
		}
		return err
	}
	if claim.Status != entity.ClaimStatusPending {
		return apperror.FailedPrecondition("claim already %s", claim.Status)
	}

	res := tx.Model(&entity.Claim{}).
		Where("id = ? AND status = ?", claimID, entity.ClaimStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": now,
			"reviewed_by": moderatorID,
			"note":        note,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.FailedPrecondition("claim already reviewed")
	}

	claim.Status = status
	claim.ReviewedAt = &now
	claim.ReviewedBy = &moderatorID
	claim.Note = note
	return nil
}

func currentSeason(tx *gorm.DB) (int, error) {
	var cfg entity.SeasonConfig
	if err := tx.First(&cfg, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, err
	}
	if cfg.Season < 1 {
		return 1, nil
	}
	return cfg.Season, nil
}

func addInventory(tx *gorm.DB, userID uuid.UUID, itemID string, qty int) error {
	item := entity.InventoryItem{UserID: userID, ItemID: itemID, Qty: qty}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"qty": gorm.Expr("inventory_items.qty + ?", qty),
		}),
	}).Create(&item).Error
}

func (r *moderationRepository) IsModerator(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Moderator{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *moderationRepository) GrantModerator(ctx context.Context, userID, grantedBy uuid.UUID) error {
	mod := entity.Moderator{UserID: userID, GrantedBy: &grantedBy}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&mod).Error
}

func (r *moderationRepository) RevokeModerator(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Moderator{}, "user_id = ?", userID).Error
}

func (r *moderationRepository) ListModerators(ctx context.Context) ([]*entity.Moderator, error) {
	var mods []*entity.Moderator
	if err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email", "avatar_url")
		}).
		Order("created_at ASC").
		Find(&mods).Error; err != nil {
		return nil, err
	}
	return mods, nil
}
