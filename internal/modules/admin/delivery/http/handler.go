package handler

import (
	"net/http"

	adminDto "github.com/fantaballa/gamepass-api/internal/modules/admin/dto"
	adminService "github.com/fantaballa/gamepass-api/internal/modules/admin/service"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	commonDto "github.com/fantaballa/gamepass-api/pkg/dto"
	"github.com/fantaballa/gamepass-api/pkg/response"
	"github.com/fantaballa/gamepass-api/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// CreateUser handles POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input adminDto.CreateUserInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	avatar, ok := readAvatar(c)
	if !ok {
		return
	}

	res, err := h.adminService.CreateUser(c.Request.Context(), input, avatar)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// GetAllUsers handles GET /admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	res, err := h.adminService.GetAllUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

// UpdateUser handles PUT /admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var input adminDto.UpdateUserInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	avatar, ok := readAvatar(c)
	if !ok {
		return
	}

	res, err := h.adminService.UpdateUser(c.Request.Context(), c.Param("id"), input, avatar)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// DeleteUser handles DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

// ListTiers handles GET /admin/tiers
func (h *AdminHandler) ListTiers(c *gin.Context) {
	tiers, err := h.adminService.ListTiers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tiers})
}

// SaveTier handles PUT /admin/tiers
func (h *AdminHandler) SaveTier(c *gin.Context) {
	var input adminDto.TierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	tier, err := h.adminService.SaveTier(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, tier)
}

func readAvatar(c *gin.Context) (*commonDto.AvatarFile, bool) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil || fileHeader == nil {
		return nil, true
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperror.InvalidArgument("failed to read avatar"))
		return nil, false
	}

	return &commonDto.AvatarFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	}, true
}
