package handler

import (
	"net/http"

	achievementDto "github.com/fantaballa/gamepass-api/internal/modules/achievement/dto"
	achievementService "github.com/fantaballa/gamepass-api/internal/modules/achievement/service"
	"github.com/fantaballa/gamepass-api/pkg/response"
	"github.com/fantaballa/gamepass-api/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	service achievementService.AchievementService
}

func NewAchievementHandler(service achievementService.AchievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

// ListCatalog handles GET /achievements
func (h *AchievementHandler) ListCatalog(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	catalog, err := h.service.ListCatalog(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": catalog})
}

// GetAchievement handles GET /achievements/:id
func (h *AchievementHandler) GetAchievement(c *gin.Context) {
	ach, err := h.service.GetAchievement(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ach)
}

// ListAll handles GET /admin/achievements
func (h *AchievementHandler) ListAll(c *gin.Context) {
	achievements, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": achievements})
}

// CreateAchievement handles POST /admin/achievements
func (h *AchievementHandler) CreateAchievement(c *gin.Context) {
	var req achievementDto.CreateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	ach, err := h.service.CreateAchievement(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ach)
}

// UpdateAchievement handles PUT /admin/achievements/:id
func (h *AchievementHandler) UpdateAchievement(c *gin.Context) {
	var req achievementDto.UpdateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	ach, err := h.service.UpdateAchievement(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ach)
}

// SetActive handles PATCH /admin/achievements/:id/active
func (h *AchievementHandler) SetActive(c *gin.Context) {
	var req achievementDto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "achievement updated"})
}
