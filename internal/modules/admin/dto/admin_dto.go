package dto

import (
	"github.com/fantaballa/gamepass-api/internal/entity"
)

type CreateUserInput struct {
	Username    string  `json:"username" form:"username" binding:"required,min=3,max=50"`
	Email       string  `json:"email" form:"email" binding:"required,email"`
	Password    string  `json:"password" form:"password" binding:"required,min=8"`
	Role        string  `json:"role" form:"role" binding:"required,oneof=admin member"`
	DisplayName string  `json:"display_name" form:"display_name" binding:"required,min=2,max=24"`
	Bio         *string `json:"bio" form:"bio"`
}

type UpdateUserInput struct {
	Username    string  `json:"username" form:"username"`
	Email       string  `json:"email" form:"email" binding:"omitempty,email"`
	Password    string  `json:"password" form:"password" binding:"omitempty,min=8"`
	Role        string  `json:"role" form:"role" binding:"omitempty,oneof=admin member"`
	DisplayName string  `json:"display_name" form:"display_name" binding:"omitempty,min=2,max=24"`
	Bio         *string `json:"bio" form:"bio"`
}

type UserResponse struct {
	User    *entity.User    `json:"user"`
	Role    *entity.Role    `json:"role"`
	Profile *entity.Profile `json:"profile"`
}

// TierInput creates or replaces one ladder rung.
type TierInput struct {
	ID             string `json:"id" binding:"required,min=1,max=100"`
	Title          string `json:"title" binding:"required,max=200"`
	RequiredPoints int    `json:"required_points" binding:"min=0"`
	Active         *bool  `json:"active"`

	RewardKind     string `json:"reward_kind" binding:"required,oneof=card skin color item"`
	RewardLabel    string `json:"reward_label"`
	RewardImageURL string `json:"reward_image_url" binding:"omitempty,url"`

	CardID      string `json:"card_id"`
	CardOverall int    `json:"card_overall"`
	SkinID      string `json:"skin_id"`
	SkinName    string `json:"skin_name"`
	ColorID     string `json:"color_id"`
	ColorName   string `json:"color_name"`
	ItemID      string `json:"item_id"`
	ItemName    string `json:"item_name"`
}
