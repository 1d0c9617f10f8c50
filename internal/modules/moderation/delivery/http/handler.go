package handler

import (
	"net/http"

	moderationDto "github.com/fantaballa/gamepass-api/internal/modules/moderation/dto"
	moderationService "github.com/fantaballa/gamepass-api/internal/modules/moderation/service"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/fantaballa/gamepass-api/pkg/response"
	"github.com/fantaballa/gamepass-api/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	service moderationService.ModerationService
}

func NewModerationHandler(service moderationService.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// ReviewClaim handles POST /claims/:id/review
func (h *ModerationHandler) ReviewClaim(c *gin.Context) {
	moderatorID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.InvalidArgument("invalid claim id"))
		return
	}

	var req moderationDto.ReviewClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.service.ReviewClaim(c.Request.Context(), claimID, moderatorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListModerators handles GET /admin/moderators
func (h *ModerationHandler) ListModerators(c *gin.Context) {
	mods, err := h.service.ListModerators(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mods})
}

// GrantModerator handles POST /admin/moderators
func (h *ModerationHandler) GrantModerator(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req moderationDto.GrantModeratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.InvalidArgument("invalid user id"))
		return
	}

	if err := h.service.GrantModerator(c.Request.Context(), userID, adminID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "moderator granted"})
}

// RevokeModerator handles DELETE /admin/moderators/:id
func (h *ModerationHandler) RevokeModerator(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.InvalidArgument("invalid user id"))
		return
	}

	if err := h.service.RevokeModerator(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "moderator revoked"})
}
