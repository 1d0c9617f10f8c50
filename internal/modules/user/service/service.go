package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fantaballa/gamepass-api/internal/config"
	"github.com/fantaballa/gamepass-api/internal/entity"
	moderationRepo "github.com/fantaballa/gamepass-api/internal/modules/moderation/repository"
	search "github.com/fantaballa/gamepass-api/internal/modules/search/service"
	"github.com/fantaballa/gamepass-api/internal/modules/user/dto"
	"github.com/fantaballa/gamepass-api/internal/modules/user/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	GoogleLogin() string
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}

type authService struct {
	repo         repository.UserRepository
	moderators   moderationRepo.ModerationRepository
	meili        search.SearchService
	secret       string
	tokenTTL     time.Duration
	googleConfig *oauth2.Config
}

func NewAuthService(
	cfg *config.Config,
	repo repository.UserRepository,
	moderators moderationRepo.ModerationRepository,
	meili search.SearchService,
) AuthService {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "change-me"
	}

	ttl := time.Hour
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &authService{
		repo:         repo,
		moderators:   moderators,
		meili:        meili,
		secret:       secret,
		tokenTTL:     ttl,
		googleConfig: googleConfig,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.FailedPrecondition("email already registered")
	}
	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperror.FailedPrecondition("username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleMember)
	if err != nil {
		return nil, errors.New("member role not seeded")
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		Role:         *role,
	}
	profile := &entity.Profile{
		DisplayName: input.DisplayName,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	return s.buildAuthResponse(ctx, user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthenticated
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	return s.buildAuthResponse(ctx, user)
}

func (s *authService) GoogleLogin() string {
	return s.googleConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, errors.New("failed to exchange token: " + err.Error())
	}

	client := s.googleConfig.Client(ctx, token)
	userInfoResp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, errors.New("failed to get user info: " + err.Error())
	}
	defer userInfoResp.Body.Close()

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}

	if err := json.NewDecoder(userInfoResp.Body).Decode(&googleUser); err != nil {
		return nil, errors.New("failed to decode user info: " + err.Error())
	}

	user, err := s.repo.FindByEmail(ctx, googleUser.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user, err = s.registerGoogleUser(ctx, googleUser.ID, googleUser.Email, googleUser.Name, googleUser.Picture)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	} else if user.GoogleID == nil || *user.GoogleID != googleUser.ID {
		user.GoogleID = &googleUser.ID
		if err := s.repo.Update(ctx, user, nil); err != nil {
			log.Printf("Failed to update GoogleID for user %s: %v", user.Email, err)
		}
	}

	return s.buildAuthResponse(ctx, user)
}

func (s *authService) registerGoogleUser(ctx context.Context, googleID, email, name, picture string) (*entity.User, error) {
	randomPassword := uuid.New().String()
	hashed, _ := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)

	role, err := s.repo.FindRoleByName(ctx, entity.RoleMember)
	if err != nil {
		return nil, errors.New("member role not seeded")
	}

	username := strings.ReplaceAll(strings.Split(email, "@")[0], " ", "_")
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		username = username + "_" + uuid.New().String()[:4]
	}

	displayName := strings.TrimSpace(name)
	if runes := []rune(displayName); len(runes) > 24 {
		displayName = string(runes[:24])
	}
	if len([]rune(displayName)) < 2 {
		displayName = username
		if runes := []rune(displayName); len(runes) > 24 {
			displayName = string(runes[:24])
		}
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		Role:         *role,
		AvatarURL:    &picture,
		GoogleID:     &googleID,
	}
	profile := &entity.Profile{
		DisplayName: displayName,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, errors.New("failed to create user: " + err.Error())
	}
	user.Profile = profile
	return user, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %s", userID)
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) buildAuthResponse(ctx context.Context, user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	isModerator := false
	if s.moderators != nil {
		if mod, err := s.moderators.IsModerator(ctx, user.ID); err == nil {
			isModerator = mod
		}
	}

	var searchToken string
	if s.meili != nil {
		st, err := s.meili.GenerateSearchToken(isModerator)
		if err != nil {
			log.Printf("Failed to generate search token for user %s: %v", user.Username, err)
		} else {
			searchToken = st
		}
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Role:        &user.Role,
		Profile:     user.Profile,
		IsModerator: isModerator,
		SearchToken: searchToken,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
