package bootstrap

import (
	"log"

	"github.com/fantaballa/gamepass-api/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Profile{},
		&entity.Moderator{},
		&entity.Achievement{},
		&entity.AchievementPrereq{},
		&entity.Claim{},
		&entity.EvidenceFile{},
		&entity.Earned{},
		&entity.Progress{},
		&entity.Tier{},
		&entity.TierUnlock{},
		&entity.InventoryItem{},
		&entity.SeasonConfig{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Super administrator"},
		{Name: entity.RoleMember, Description: "Community member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedSeasonConfig creates the season pointer at season 1 if absent.
func SeedSeasonConfig(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.SeasonConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&entity.SeasonConfig{ID: 1, Season: 1}).Error
}

// SeedAdminUser creates a development admin who is also a moderator.
func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@fantaballa.it").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        "admin@fantaballa.it",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	adminProfile := entity.Profile{
		UserID:      adminUser.ID,
		DisplayName: "Administrator",
		Bio:         stringPtr("System Administrator"),
	}

	if err := db.Create(&adminProfile).Error; err != nil {
		return err
	}

	if err := db.Create(&entity.Moderator{UserID: adminUser.ID}).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded successfully")
	log.Println("   Email: admin@fantaballa.it")
	log.Println("   Password: admin123")

	return nil
}

// SeedCatalog loads a starter achievement catalog and tier ladder so a
// fresh development database is playable. Rows already present are left
// untouched, so admin edits survive restarts.
func SeedCatalog(db *gorm.DB) error {
	achievements := []entity.Achievement{
		{
			ID:          "first_goal",
			Title:       "Primo Gol",
			Description: "Score your first goal in a community match.",
			Points:      50,
		},
		{
			ID:          "hat_trick",
			Title:       "Tripletta",
			Description: "Three goals in a single match.",
			Points:      150,
			Prerequisites: []entity.AchievementPrereq{
				{AchievementID: "hat_trick", RequiresID: "first_goal"},
			},
		},
		{
			ID:           "derby_winner",
			Title:        "Re del Derby",
			Description:  "Win a derby match.",
			Points:       100,
			RewardItemID: stringPtr("scarf"),
			RewardQty:    1,
		},
		{
			ID:          "season_regular",
			Title:       "Sempre Presente",
			Description: "Attend every match day of the month.",
			Points:      75,
		},
	}

	for _, ach := range achievements {
		var count int64
		if err := db.Model(&entity.Achievement{}).
			Where("id = ?", ach.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&ach).Error; err != nil {
			return err
		}
	}

	tiers := []entity.Tier{
		{
			ID:             "bronze",
			Title:          "Bronzo",
			RequiredPoints: 100,
			Reward:         entity.Reward{Kind: entity.RewardColor, ColorID: "bronze", ColorName: "Bronze"},
		},
		{
			ID:             "silver",
			Title:          "Argento",
			RequiredPoints: 250,
			Reward:         entity.Reward{Kind: entity.RewardSkin, SkinID: "away_kit", SkinName: "Away Kit"},
		},
		{
			ID:             "gold",
			Title:          "Oro",
			RequiredPoints: 500,
			Reward:         entity.Reward{Kind: entity.RewardItem, ItemID: "golden_scarf", ItemName: "Golden Scarf"},
		},
		{
			ID:             "legend",
			Title:          "Leggenda",
			RequiredPoints: 1000,
			Reward:         entity.Reward{Kind: entity.RewardCard, CardID: "captain", CardOverall: 94},
		},
	}

	for _, tier := range tiers {
		var count int64
		if err := db.Model(&entity.Tier{}).
			Where("id = ?", tier.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&tier).Error; err != nil {
			return err
		}
	}

	return nil
}

func stringPtr(s string) *string {
	return &s
}
