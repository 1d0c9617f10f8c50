package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/fantaballa/gamepass-api/internal/config"
	"github.com/fantaballa/gamepass-api/internal/middleware"
	"github.com/fantaballa/gamepass-api/pkg/storage"

	achievementHttp "github.com/fantaballa/gamepass-api/internal/modules/achievement/delivery/http"
	achievementRepo "github.com/fantaballa/gamepass-api/internal/modules/achievement/repository"
	achievementService "github.com/fantaballa/gamepass-api/internal/modules/achievement/service"

	adminHttp "github.com/fantaballa/gamepass-api/internal/modules/admin/delivery/http"
	adminService "github.com/fantaballa/gamepass-api/internal/modules/admin/service"

	claimHttp "github.com/fantaballa/gamepass-api/internal/modules/claim/delivery/http"
	claimRepo "github.com/fantaballa/gamepass-api/internal/modules/claim/repository"
	claimService "github.com/fantaballa/gamepass-api/internal/modules/claim/service"

	evidenceHttp "github.com/fantaballa/gamepass-api/internal/modules/evidence/delivery/http"
	evidenceRepo "github.com/fantaballa/gamepass-api/internal/modules/evidence/repository"
	evidenceService "github.com/fantaballa/gamepass-api/internal/modules/evidence/service"

	gamepassHttp "github.com/fantaballa/gamepass-api/internal/modules/gamepass/delivery/http"
	gamepassRepo "github.com/fantaballa/gamepass-api/internal/modules/gamepass/repository"
	gamepassService "github.com/fantaballa/gamepass-api/internal/modules/gamepass/service"

	moderationHttp "github.com/fantaballa/gamepass-api/internal/modules/moderation/delivery/http"
	moderationRepo "github.com/fantaballa/gamepass-api/internal/modules/moderation/repository"
	moderationService "github.com/fantaballa/gamepass-api/internal/modules/moderation/service"

	notiHttp "github.com/fantaballa/gamepass-api/internal/modules/notification/delivery/http"
	notifRepo "github.com/fantaballa/gamepass-api/internal/modules/notification/repository"
	notifService "github.com/fantaballa/gamepass-api/internal/modules/notification/service"

	profileHttp "github.com/fantaballa/gamepass-api/internal/modules/profile/delivery/http"
	profileService "github.com/fantaballa/gamepass-api/internal/modules/profile/service"

	searchService "github.com/fantaballa/gamepass-api/internal/modules/search/service"

	userHttp "github.com/fantaballa/gamepass-api/internal/modules/user/delivery/http"
	userRepo "github.com/fantaballa/gamepass-api/internal/modules/user/repository"
	userService "github.com/fantaballa/gamepass-api/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)
	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	meiliSvc := searchService.NewSearchService(meiliClient)

	achievements := achievementRepo.NewAchievementRepository(db)
	claims := claimRepo.NewClaimRepository(db)
	gamepass := gamepassRepo.NewGamepassRepository(db)
	moderation := moderationRepo.NewModerationRepository(db)

	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	authSvc := userService.NewAuthService(cfg, users, moderation, meiliSvc)
	authHandler := userHttp.NewAuthHandler(authSvc)

	gamepassSvc := gamepassService.NewGamepassService(gamepass, notificationSvc, redisClient, cfg.DailyBonusPoints, cfg.DailyBonusCooldown)
	gamepassHandler := gamepassHttp.NewGamepassHandler(gamepassSvc, users)

	achievementSvc := achievementService.NewAchievementService(achievements, claims, meiliSvc)
	achievementHandler := achievementHttp.NewAchievementHandler(achievementSvc)

	evidence := evidenceRepo.NewEvidenceRepository(db)
	evidenceSvc := evidenceService.NewEvidenceService(evidence, imageStorage)
	evidenceHandler := evidenceHttp.NewEvidenceHandler(evidenceSvc)
	startEvidenceCleanup(evidenceSvc)

	claimSvc := claimService.NewClaimService(claims, achievements, evidence, redisClient)
	claimHandler := claimHttp.NewClaimHandler(claimSvc)

	moderationSvc := moderationService.NewModerationService(moderation, notificationSvc)
	moderationHandler := moderationHttp.NewModerationHandler(moderationSvc)

	profileSvc := profileService.NewProfileService(users, imageStorage, gamepass, claims)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	adminSvc := adminService.NewAdminService(users, gamepass, imageStorage)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	router := gin.New()

	setupCORS(router, cfg)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users, moderation, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)

		// Achievement catalog
		protected.GET("/achievements", achievementHandler.ListCatalog)
		protected.GET("/achievements/:id", achievementHandler.GetAchievement)

		// Claims
		protected.POST("/claims", claimHandler.SubmitClaim)
		protected.GET("/claims/me", claimHandler.ListMyClaims)
		protected.POST("/upload", evidenceHandler.UploadEvidence)

		// Game pass
		protected.GET("/gamepass/progress", gamepassHandler.GetProgress)
		protected.GET("/gamepass/progress/:username", gamepassHandler.GetProgressByUsername)
		protected.GET("/gamepass/tiers", gamepassHandler.ListTiers)
		protected.GET("/gamepass/season", gamepassHandler.GetSeason)
		protected.GET("/gamepass/inventory", gamepassHandler.GetInventory)
		protected.POST("/gamepass/daily", gamepassHandler.ClaimDaily)

		// Profiles
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.GET("/profile/:username", profileHandler.GetProfileByUsername)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		// Notifications
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Moderator routes
		modGroup := protected.Group("")
		modGroup.Use(authMiddleware.RequireModerator())
		{
			modGroup.GET("/claims/pending", claimHandler.ListPendingClaims)
			modGroup.POST("/claims/:id/review", moderationHandler.ReviewClaim)
			modGroup.GET("/gamepass/report", gamepassHandler.SeasonReport)
		}

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)

			adminGroup.GET("/moderators", moderationHandler.ListModerators)
			adminGroup.POST("/moderators", moderationHandler.GrantModerator)
			adminGroup.DELETE("/moderators/:id", moderationHandler.RevokeModerator)

			adminGroup.GET("/achievements", achievementHandler.ListAll)
			adminGroup.POST("/achievements", achievementHandler.CreateAchievement)
			adminGroup.PUT("/achievements/:id", achievementHandler.UpdateAchievement)
			adminGroup.PATCH("/achievements/:id/active", achievementHandler.SetActive)

			adminGroup.GET("/tiers", adminHandler.ListTiers)
			adminGroup.PUT("/tiers", adminHandler.SaveTier)

			adminGroup.PUT("/season", gamepassHandler.SetSeason)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// startEvidenceCleanup sweeps unattached uploads twice a day.
func startEvidenceCleanup(svc evidenceService.EvidenceService) {
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := svc.CleanupOrphanEvidence(context.Background()); err != nil {
				log.Printf("evidence cleanup failed: %v", err)
			}
		}
	}()
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	var origins []string
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
