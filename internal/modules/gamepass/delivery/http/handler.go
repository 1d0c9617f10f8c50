package handler

import (
	"net/http"
	"strconv"

	gamepassDto "github.com/fantaballa/gamepass-api/internal/modules/gamepass/dto"
	gamepassService "github.com/fantaballa/gamepass-api/internal/modules/gamepass/service"
	userRepo "github.com/fantaballa/gamepass-api/internal/modules/user/repository"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/fantaballa/gamepass-api/pkg/response"
	"github.com/fantaballa/gamepass-api/pkg/validator"
	"github.com/gin-gonic/gin"
)

type GamepassHandler struct {
	service gamepassService.GamepassService
	users   userRepo.UserRepository
}

func NewGamepassHandler(service gamepassService.GamepassService, users userRepo.UserRepository) *GamepassHandler {
	return &GamepassHandler{service: service, users: users}
}

// GetProgress handles GET /gamepass/progress
func (h *GamepassHandler) GetProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	progress, err := h.service.GetProgress(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetProgressByUsername handles GET /gamepass/progress/:username
func (h *GamepassHandler) GetProgressByUsername(c *gin.Context) {
	username := c.Param("username")

	user, err := h.users.FindByUsername(c.Request.Context(), username)
	if err != nil {
		response.Error(c, apperror.NotFound("user %q", username))
		return
	}

	progress, err := h.service.GetProgress(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// ClaimDaily handles POST /gamepass/daily
func (h *GamepassHandler) ClaimDaily(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ClaimDaily(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListTiers handles GET /gamepass/tiers
func (h *GamepassHandler) ListTiers(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	tiers, err := h.service.ListTiers(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tiers})
}

// GetInventory handles GET /gamepass/inventory
func (h *GamepassHandler) GetInventory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.service.Inventory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// SeasonReport handles GET /gamepass/report (moderators only)
func (h *GamepassHandler) SeasonReport(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	report, err := h.service.SeasonReport(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// GetSeason handles GET /gamepass/season
func (h *GamepassHandler) GetSeason(c *gin.Context) {
	season, err := h.service.CurrentSeason(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"season": season})
}

// SetSeason handles PUT /admin/season
func (h *GamepassHandler) SetSeason(c *gin.Context) {
	var req gamepassDto.SeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.SetSeason(c.Request.Context(), req.Season); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"season": req.Season})
}
