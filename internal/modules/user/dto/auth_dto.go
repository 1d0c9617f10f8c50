package dto

import (
	"github.com/fantaballa/gamepass-api/internal/entity"
)

type RegisterInput struct {
	Username    string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"required,min=2,max=24"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        *entity.User    `json:"user"`
	Role        *entity.Role    `json:"role"`
	Profile     *entity.Profile `json:"profile"`
	IsModerator bool            `json:"is_moderator"`
	SearchToken string          `json:"search_token,omitempty"`
}
