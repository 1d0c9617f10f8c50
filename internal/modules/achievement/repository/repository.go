package repository

import (
	"context"

	"github.com/fantaballa/gamepass-api/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	Create(ctx context.Context, ach *entity.Achievement) error
	Save(ctx context.Context, ach *entity.Achievement) error
	SetActive(ctx context.Context, id string, active bool) error
	ReplacePrereqs(ctx context.Context, id string, requires []string) error
	FindByID(ctx context.Context, id string) (*entity.Achievement, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*entity.Achievement, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, ach *entity.Achievement) error {
	return r.db.WithContext(ctx).Create(ach).Error
}

func (r *achievementRepository) Save(ctx context.Context, ach *entity.Achievement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Prerequisites").Save(ach).Error; err != nil {
			return err
		}
		if ach.Prerequisites != nil {
			if err := replacePrereqs(tx, ach.ID, ach.PrereqIDs()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *achievementRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Achievement{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *achievementRepository) ReplacePrereqs(ctx context.Context, id string, requires []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replacePrereqs(tx, id, requires)
	})
}

func replacePrereqs(tx *gorm.DB, id string, requires []string) error {
	if err := tx.Where("achievement_id = ?", id).
		Delete(&entity.AchievementPrereq{}).Error; err != nil {
		return err
	}
	for _, req := range requires {
		row := entity.AchievementPrereq{AchievementID: id, RequiresID: req}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *achievementRepository) FindByID(ctx context.Context, id string) (*entity.Achievement, error) {
	var ach entity.Achievement
	if err := r.db.WithContext(ctx).
		Preload("Prerequisites").
		First(&ach, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ach, nil
}

func (r *achievementRepository) FindAll(ctx context.Context, activeOnly bool) ([]*entity.Achievement, error) {
	var achievements []*entity.Achievement
	query := r.db.WithContext(ctx).Preload("Prerequisites").Order("created_at ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}
