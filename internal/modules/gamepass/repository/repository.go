package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GamepassRepository interface {
	CurrentSeason(ctx context.Context) (int, error)
	SetSeason(ctx context.Context, season int) error

	GetProgress(ctx context.Context, userID uuid.UUID) (*entity.Progress, error)
	GrantPoints(ctx context.Context, userID uuid.UUID, season, points int) error
	ClaimDaily(ctx context.Context, userID uuid.UUID, season, bonus int, now time.Time, cooldown time.Duration) (bool, error)

	ListTiers(ctx context.Context, activeOnly bool) ([]*entity.Tier, error)
	SaveTier(ctx context.Context, tier *entity.Tier) error
	ListUnlocks(ctx context.Context, userID uuid.UUID) ([]entity.TierUnlock, error)
	RecordUnlock(ctx context.Context, unlock *entity.TierUnlock) error

	SeasonRanking(ctx context.Context, season, limit int) ([]RankingRow, error)
	Inventory(ctx context.Context, userID uuid.UUID) ([]entity.InventoryItem, error)
}

type gamepassRepository struct {
	db *gorm.DB
}

func NewGamepassRepository(db *gorm.DB) GamepassRepository {
	return &gamepassRepository{db: db}
}

// CurrentSeason reads the admin-managed season pointer, defaulting to 1
// when the config row has not been created yet.
func (r *gamepassRepository) CurrentSeason(ctx context.Context) (int, error) {
	var cfg entity.SeasonConfig
	if err := r.db.WithContext(ctx).First(&cfg, "id = ?", 1).Error; err != nil {
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

func (r *gamepassRepository) SetSeason(ctx context.Context, season int) error {
	cfg := entity.SeasonConfig{ID: 1, Season: season}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"season", "updated_at"}),
	}).Create(&cfg).Error
}

func (r *gamepassRepository) GetProgress(ctx context.Context, userID uuid.UUID) (*entity.Progress, error) {
	var prog entity.Progress
	if err := r.db.WithContext(ctx).First(&prog, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prog, nil
}

// GrantPoints applies a seasonal XP delta as one atomic upsert. A row from
// the current season is incremented; an absent or stale-season row is
// overwritten with the delta (the soft season reset).
func (r *gamepassRepository) GrantPoints(ctx context.Context, userID uuid.UUID, season, points int) error {
	return ApplySeasonPoints(r.db.WithContext(ctx), userID, season, points)
}

// ApplySeasonPoints is the shared season-aware XP upsert, also used inside
// the moderation approval transaction. The CASE keeps increment-vs-reset
// inside a single statement so no read-then-write race exists.
func ApplySeasonPoints(tx *gorm.DB, userID uuid.UUID, season, points int) error {
	prog := entity.Progress{
		UserID: userID,
		Season: season,
		Points: points,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points": gorm.Expr(
				"CASE WHEN gp_progress.season = excluded.season THEN gp_progress.points + ? ELSE ? END",
				points, points,
			),
			"season":     gorm.Expr("excluded.season"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&prog).Error
}

// ClaimDaily grants the daily bonus iff the cooldown has elapsed (or the
// stored row belongs to a previous season, which resets it). The whole
// check-and-grant is a single conditional upsert; two concurrent calls
// cannot both succeed. Returns false when the cooldown blocked the grant.
func (r *gamepassRepository) ClaimDaily(ctx context.Context, userID uuid.UUID, season, bonus int, now time.Time, cooldown time.Duration) (bool, error) {
	cutoff := now.Add(-cooldown)
	prog := entity.Progress{
		UserID:      userID,
		Season:      season,
		Points:      bonus,
		LastDailyAt: &now,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points": gorm.Expr(
				"CASE WHEN gp_progress.season = excluded.season THEN gp_progress.points + ? ELSE ? END",
				bonus, bonus,
			),
			"season":        gorm.Expr("excluded.season"),
			"last_daily_at": gorm.Expr("excluded.last_daily_at"),
			"updated_at":    gorm.Expr("excluded.updated_at"),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr(
				"gp_progress.season <> excluded.season OR gp_progress.last_daily_at IS NULL OR gp_progress.last_daily_at <= ?",
				cutoff,
			),
		}},
	}).Create(&prog)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gamepassRepository) ListTiers(ctx context.Context, activeOnly bool) ([]*entity.Tier, error) {
	var tiers []*entity.Tier
	query := r.db.WithContext(ctx).Order("required_points ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *gamepassRepository) SaveTier(ctx context.Context, tier *entity.Tier) error {
	return r.db.WithContext(ctx).Save(tier).Error
}

func (r *gamepassRepository) ListUnlocks(ctx context.Context, userID uuid.UUID) ([]entity.TierUnlock, error) {
	var unlocks []entity.TierUnlock
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&unlocks).Error; err != nil {
		return nil, err
	}
	return unlocks, nil
}

// RecordUnlock writes the tier-unlock acknowledgment at most once per
// (user, tier); replays are no-ops.
func (r *gamepassRepository) RecordUnlock(ctx context.Context, unlock *entity.TierUnlock) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "tier_id"}},
		DoNothing: true,
	}).Create(unlock).Error
}

// RankingRow is one line of the season report, joined against the user and
// profile tables for display.
type RankingRow struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Points      int       `json:"points"`
}

func (r *gamepassRepository) SeasonRanking(ctx context.Context, season, limit int) ([]RankingRow, error) {
	var rows []RankingRow
	if err := r.db.WithContext(ctx).
		Table("gp_progress").
		Select("gp_progress.user_id, users.username, profiles.display_name, users.avatar_url, gp_progress.points").
		Joins("JOIN users ON users.id = gp_progress.user_id").
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
		Where("gp_progress.season = ?", season).
		Order("gp_progress.points DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gamepassRepository) Inventory(ctx context.Context, userID uuid.UUID) ([]entity.InventoryItem, error) {
	var items []entity.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("item_id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
