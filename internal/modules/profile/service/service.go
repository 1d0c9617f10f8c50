package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fantaballa/gamepass-api/internal/entity"
	claimRepo "github.com/fantaballa/gamepass-api/internal/modules/claim/repository"
	gamepassRepo "github.com/fantaballa/gamepass-api/internal/modules/gamepass/repository"
	gamepass "github.com/fantaballa/gamepass-api/internal/modules/gamepass/service"
	profileDto "github.com/fantaballa/gamepass-api/internal/modules/profile/dto"
	userRepo "github.com/fantaballa/gamepass-api/internal/modules/user/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	commonDto "github.com/fantaballa/gamepass-api/pkg/dto"
	"github.com/fantaballa/gamepass-api/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService interface {
	UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.ProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error)
	GetCurrentProfile(ctx context.Context, userID string) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	imageStorage storage.ImageStorage
	gamepassRepo gamepassRepo.GamepassRepository
	claims       claimRepo.ClaimRepository
}

func NewProfileService(repo userRepo.UserRepository, imageStorage storage.ImageStorage, gpRepo gamepassRepo.GamepassRepository, claims claimRepo.ClaimRepository) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
		gamepassRepo: gpRepo,
		claims:       claims,
	}
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.NotFound("user %s", userID)
	}

	if input.Username != nil && *input.Username != "" && *input.Username != user.Username {
		sanitizedUsername := strings.ReplaceAll(*input.Username, " ", "_")
		if len(sanitizedUsername) < 3 {
			return nil, apperror.InvalidArgument("username must be at least 3 characters")
		}
		if len(sanitizedUsername) > 50 {
			return nil, apperror.InvalidArgument("username must be at most 50 characters")
		}
		if _, err := s.repo.FindByUsername(ctx, sanitizedUsername); err == nil {
			return nil, apperror.FailedPrecondition("username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = sanitizedUsername
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return nil, apperror.InvalidArgument("password must be at least 8 characters")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if avatar != nil && avatar.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}

	var profile *entity.Profile
	if user.Profile != nil {
		profile = user.Profile
		if input.DisplayName != nil {
			name := strings.TrimSpace(*input.DisplayName)
			if n := len([]rune(name)); n < 2 || n > 24 {
				return nil, apperror.InvalidArgument("display name must be 2-24 characters")
			}
			profile.DisplayName = name
		}
		if input.Bio != nil {
			profile.Bio = normalizeOptional(input.Bio)
		}
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	updatedUser, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	updatedUser.PasswordHash = ""

	return &profileDto.ProfileResponse{
		User:       updatedUser,
		Profile:    updatedUser.Profile,
		PassStatus: s.passStatus(ctx, updatedUser.ID),
		ClaimStats: s.claimStats(ctx, updatedUser.ID),
	}, nil
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperror.NotFound("user %q", username)
	}

	response := &profileDto.PublicProfileResponse{
		Username:   user.Username,
		AvatarURL:  user.AvatarURL,
		CreatedAt:  user.CreatedAt,
		PassStatus: s.passStatus(ctx, user.ID),
		ClaimStats: s.claimStats(ctx, user.ID),
	}
	if user.Profile != nil {
		response.DisplayName = user.Profile.DisplayName
		response.Bio = user.Profile.Bio
	}

	return response, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID string) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.NotFound("user %s", userID)
	}
	user.PasswordHash = ""

	return &profileDto.ProfileResponse{
		User:       user,
		Profile:    user.Profile,
		PassStatus: s.passStatus(ctx, user.ID),
		ClaimStats: s.claimStats(ctx, user.ID),
	}, nil
}

// passStatus is best effort display data; a gamepass read failure leaves
// the zero status rather than failing the profile request.
func (s *profileService) passStatus(ctx context.Context, userID uuid.UUID) profileDto.PassStatus {
	var status profileDto.PassStatus
	if s.gamepassRepo == nil {
		return status
	}

	season, err := s.gamepassRepo.CurrentSeason(ctx)
	if err != nil {
		return status
	}
	status.Season = season

	prog, err := s.gamepassRepo.GetProgress(ctx, userID)
	if err != nil {
		return status
	}
	if prog != nil && prog.Season == season {
		status.Points = prog.Points
	}

	tiers, err := s.gamepassRepo.ListTiers(ctx, true)
	if err != nil {
		return status
	}
	pos := gamepass.LocateOnLadder(tiers, status.Points)
	status.TierIndex = pos.TierIndex
	status.TierCount = len(tiers)
	status.Progress = pos.Progress

	return status
}

func (s *profileService) claimStats(ctx context.Context, userID uuid.UUID) profileDto.ClaimStats {
	var stats profileDto.ClaimStats
	if s.claims == nil {
		return stats
	}
	if n, err := s.claims.CountByUserAndStatus(ctx, userID, entity.ClaimStatusApproved); err == nil {
		stats.Approved = n
	}
	if n, err := s.claims.CountByUserAndStatus(ctx, userID, entity.ClaimStatusPending); err == nil {
		stats.Pending = n
	}
	return stats
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	result := trimmed
	return &result
}
