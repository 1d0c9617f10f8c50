package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fantaballa/gamepass-api/internal/entity"
	notifRepo "github.com/fantaballa/gamepass-api/internal/modules/notification/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type NotificationService interface {
	NotifyClaimReviewed(ctx context.Context, claim *entity.Claim, moderatorID uuid.UUID) error
	NotifyTierUnlocked(ctx context.Context, userID uuid.UUID, unlock *entity.TierUnlock) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// NotifyClaimReviewed records the review outcome for the claimant and
// pushes it over redis for connected websocket sessions.
func (s *notificationService) NotifyClaimReviewed(ctx context.Context, claim *entity.Claim, moderatorID uuid.UUID) error {
	notifType := "claim_approved"
	message := fmt.Sprintf("Your claim for %q was approved", claim.AchievementTitle)
	if claim.Status == entity.ClaimStatusRejected {
		notifType = "claim_rejected"
		message = fmt.Sprintf("Your claim for %q was rejected", claim.AchievementTitle)
	}

	return s.dispatch(ctx, &entity.Notification{
		UserID:     claim.UserID,
		ActorID:    moderatorID,
		EntityID:   claim.ID.String(),
		EntityType: "claim",
		Type:       notifType,
		Message:    message,
	})
}

func (s *notificationService) NotifyTierUnlocked(ctx context.Context, userID uuid.UUID, unlock *entity.TierUnlock) error {
	return s.dispatch(ctx, &entity.Notification{
		UserID:     userID,
		ActorID:    userID,
		EntityID:   unlock.TierID,
		EntityType: "gamepass",
		Type:       "tier_unlocked",
		Message:    fmt.Sprintf("Tier unlocked: %s", unlock.RewardLabel),
	})
}

func (s *notificationService) dispatch(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		channel := fmt.Sprintf("user_notifications:%s", notification.UserID.String())
		if payload, err := json.Marshal(notification); err == nil {
			s.redisClient.Publish(ctx, channel, payload)
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
