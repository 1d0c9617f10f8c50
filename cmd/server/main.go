package main

import (
	"context"
	"log"

	"github.com/fantaballa/gamepass-api/internal/bootstrap"
	"github.com/fantaballa/gamepass-api/internal/config"
	"github.com/fantaballa/gamepass-api/internal/server"
	"github.com/fantaballa/gamepass-api/pkg/database"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if err := bootstrap.SeedSeasonConfig(db); err != nil {
		log.Fatalf("failed to seed season config: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		if err := bootstrap.SeedCatalog(db); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// connectRedis returns nil when redis is unconfigured or unreachable; the
// server degrades to DB-only notifications and uncached reports.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, running without redis: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unreachable, running without redis: %v", err)
		return nil
	}

	log.Println("Connected to redis")
	return client
}
