package repository

import (
	"context"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvidenceRepository interface {
	Create(ctx context.Context, file *entity.EvidenceFile) error
	AttachToClaim(ctx context.Context, fileIDs []uint, claimID uuid.UUID, userID uuid.UUID) error
	FindByClaim(ctx context.Context, claimID uuid.UUID) ([]entity.EvidenceFile, error)
	FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.EvidenceFile, error)
	Delete(ctx context.Context, id uint) error
}

type evidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) EvidenceRepository {
	return &evidenceRepository{db: db}
}

func (r *evidenceRepository) Create(ctx context.Context, file *entity.EvidenceFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// AttachToClaim binds uploaded files to a claim. A file only binds when it
// is owned by the submitting user and not already attached elsewhere, so a
// user cannot hijack someone else's upload by guessing its ID.
func (r *evidenceRepository) AttachToClaim(ctx context.Context, fileIDs []uint, claimID uuid.UUID, userID uuid.UUID) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.EvidenceFile{}).
		Where("id IN ? AND user_id = ?", fileIDs, userID).
		Where("claim_id IS NULL OR claim_id = ?", claimID).
		Update("claim_id", claimID).Error
}

func (r *evidenceRepository) FindByClaim(ctx context.Context, claimID uuid.UUID) ([]entity.EvidenceFile, error) {
	var files []entity.EvidenceFile
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("id asc").
		Find(&files).Error
	return files, err
}

func (r *evidenceRepository) FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.EvidenceFile, error) {
	var files []entity.EvidenceFile
	err := r.db.WithContext(ctx).
		Where("claim_id IS NULL AND created_at < ?", cutoff).
		Find(&files).Error
	return files, err
}

func (r *evidenceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.EvidenceFile{}, id).Error
}
