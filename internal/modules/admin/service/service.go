package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fantaballa/gamepass-api/internal/entity"
	adminDto "github.com/fantaballa/gamepass-api/internal/modules/admin/dto"
	gamepassRepo "github.com/fantaballa/gamepass-api/internal/modules/gamepass/repository"
	userRepo "github.com/fantaballa/gamepass-api/internal/modules/user/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	commonDto "github.com/fantaballa/gamepass-api/pkg/dto"
	"github.com/fantaballa/gamepass-api/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService interface {
	CreateUser(ctx context.Context, input adminDto.CreateUserInput, avatar *commonDto.AvatarFile) (*adminDto.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]*adminDto.UserResponse, error)
	UpdateUser(ctx context.Context, id string, input adminDto.UpdateUserInput, avatar *commonDto.AvatarFile) (*adminDto.UserResponse, error)
	DeleteUser(ctx context.Context, id string) error

	ListTiers(ctx context.Context) ([]*entity.Tier, error)
	SaveTier(ctx context.Context, input adminDto.TierInput) (*entity.Tier, error)
}

type adminService struct {
	repo         userRepo.UserRepository
	gamepassRepo gamepassRepo.GamepassRepository
	imageStorage storage.ImageStorage
}

func NewAdminService(repo userRepo.UserRepository, gpRepo gamepassRepo.GamepassRepository, imageStorage storage.ImageStorage) AdminService {
	return &adminService{
		repo:         repo,
		gamepassRepo: gpRepo,
		imageStorage: imageStorage,
	}
}

func (s *adminService) CreateUser(ctx context.Context, input adminDto.CreateUserInput, avatar *commonDto.AvatarFile) (*adminDto.UserResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.FailedPrecondition("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperror.FailedPrecondition("username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, input.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.InvalidArgument("role %s not found", input.Role)
		}
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var avatarURL *string
	if avatar != nil && avatar.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		avatarURL = &url
	}

	roleID := role.ID
	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		RoleID:       &roleID,
		AvatarURL:    avatarURL,
	}

	profile := &entity.Profile{
		DisplayName: input.DisplayName,
		Bio:         input.Bio,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}

	createdUser, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	createdUser.PasswordHash = ""

	return &adminDto.UserResponse{
		User:    createdUser,
		Role:    &createdUser.Role,
		Profile: createdUser.Profile,
	}, nil
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]*adminDto.UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var response []*adminDto.UserResponse
	for _, u := range users {
		u.PasswordHash = ""
		response = append(response, &adminDto.UserResponse{
			User:    u,
			Role:    &u.Role,
			Profile: u.Profile,
		})
	}

	return response, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id string, input adminDto.UpdateUserInput, avatar *commonDto.AvatarFile) (*adminDto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %s", id)
		}
		return nil, err
	}

	if input.Username != "" && input.Username != user.Username {
		if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
			return nil, apperror.FailedPrecondition("username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
			return nil, apperror.FailedPrecondition("email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = input.Email
	}

	if input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if input.Role != "" && user.Role.Name != input.Role {
		role, err := s.repo.FindRoleByName(ctx, input.Role)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.InvalidArgument("role %s not found", input.Role)
			}
			return nil, err
		}
		user.RoleID = &role.ID
		user.Role = *role
	}

	if avatar != nil && avatar.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}

	if user.Profile == nil {
		user.Profile = &entity.Profile{UserID: user.ID}
	}
	if input.DisplayName != "" {
		user.Profile.DisplayName = input.DisplayName
	}
	if input.Bio != nil {
		user.Profile.Bio = input.Bio
	}

	if err := s.repo.Update(ctx, user, user.Profile); err != nil {
		return nil, err
	}

	updatedUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updatedUser.PasswordHash = ""

	return &adminDto.UserResponse{
		User:    updatedUser,
		Role:    &updatedUser.Role,
		Profile: updatedUser.Profile,
	}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *adminService) ListTiers(ctx context.Context) ([]*entity.Tier, error) {
	return s.gamepassRepo.ListTiers(ctx, false)
}

// SaveTier creates or replaces one ladder rung. The kind-specific reward
// fields must match the declared kind.
func (s *adminService) SaveTier(ctx context.Context, input adminDto.TierInput) (*entity.Tier, error) {
	kind := entity.RewardKind(input.RewardKind)
	switch kind {
	case entity.RewardCard:
		if input.CardID == "" {
			return nil, apperror.InvalidArgument("card_id required for card rewards")
		}
	case entity.RewardSkin:
		if input.SkinID == "" || input.SkinName == "" {
			return nil, apperror.InvalidArgument("skin_id and skin_name required for skin rewards")
		}
	case entity.RewardColor:
		if input.ColorID == "" || input.ColorName == "" {
			return nil, apperror.InvalidArgument("color_id and color_name required for color rewards")
		}
	case entity.RewardItem:
		if input.ItemID == "" || input.ItemName == "" {
			return nil, apperror.InvalidArgument("item_id and item_name required for item rewards")
		}
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	tier := &entity.Tier{
		ID:             input.ID,
		Title:          input.Title,
		RequiredPoints: input.RequiredPoints,
		Active:         active,
		Reward: entity.Reward{
			Kind:        kind,
			Label:       input.RewardLabel,
			ImageURL:    input.RewardImageURL,
			CardID:      input.CardID,
			CardOverall: input.CardOverall,
			SkinID:      input.SkinID,
			SkinName:    input.SkinName,
			ColorID:     input.ColorID,
			ColorName:   input.ColorName,
			ItemID:      input.ItemID,
			ItemName:    input.ItemName,
		},
	}

	if err := s.gamepassRepo.SaveTier(ctx, tier); err != nil {
		return nil, err
	}
	return tier, nil
}
