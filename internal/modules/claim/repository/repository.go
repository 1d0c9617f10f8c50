package repository

import (
	"context"

	"github.com/fantaballa/gamepass-api/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Claim, error)
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Claim, error)
	FindPending(ctx context.Context, limit int) ([]*entity.Claim, error)
	HasPending(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error)
	PendingIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
	CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status string) (int64, error)

	HasEarned(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error)
	EarnedIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
}

type claimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *claimRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Claim, error) {
	var claim entity.Claim
	if err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Claim, error) {
	var claims []*entity.Claim
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) FindPending(ctx context.Context, limit int) ([]*entity.Claim, error) {
	var claims []*entity.Claim
	if err := r.db.WithContext(ctx).
		Where("status = ?", entity.ClaimStatusPending).
		Order("created_at DESC").
		Limit(limit).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email", "avatar_url")
		}).
		Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

// HasPending is the best-effort duplicate check performed at submission
// time. It is not transactional with the subsequent insert; a racing
// duplicate is tolerated because approval of the second claim fails on the
// existing Earned record.
func (r *claimRepository) HasPending(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Claim{}).
		Where("user_id = ? AND achievement_id = ? AND status = ?",
			userID, achievementID, entity.ClaimStatusPending).
		Count(&count).Error
	return count > 0, err
}

// PendingIDs returns the achievement ids the user has open claims for.
func (r *claimRepository) PendingIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Claim{}).
		Where("user_id = ? AND status = ?", userID, entity.ClaimStatusPending).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}

	pending := make(map[string]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}
	return pending, nil
}

func (r *claimRepository) CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Claim{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (r *claimRepository) HasEarned(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Earned{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error
	return count > 0, err
}

func (r *claimRepository) EarnedIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	var earned []entity.Earned
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&earned).Error; err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(earned))
	for _, e := range earned {
		ids[e.AchievementID] = true
	}
	return ids, nil
}
