package handler

import (
	"net/http"

	profileDto "github.com/fantaballa/gamepass-api/internal/modules/profile/dto"
	profile "github.com/fantaballa/gamepass-api/internal/modules/profile/service"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	commonDto "github.com/fantaballa/gamepass-api/pkg/dto"
	"github.com/fantaballa/gamepass-api/pkg/response"
	"github.com/fantaballa/gamepass-api/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfileByUsername handles GET /profiles/:username
func (h *ProfileHandler) GetProfileByUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		response.Error(c, apperror.InvalidArgument("username required"))
		return
	}

	prof, err := h.profileService.GetProfileByUsername(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, prof)
}

// GetCurrentProfile handles GET /profile
func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	prof, err := h.profileService.GetCurrentProfile(c.Request.Context(), userID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, prof)
}

// UpdateProfile handles PUT /profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input profileDto.UpdateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var avatar *commonDto.AvatarFile
	if fileHeader, err := c.FormFile("avatar"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, apperror.InvalidArgument("failed to read avatar"))
			return
		}
		defer file.Close()

		avatar = &commonDto.AvatarFile{
			Reader:   file,
			FileName: fileHeader.Filename,
		}
	}

	res, err := h.profileService.UpdateProfile(c.Request.Context(), userID.String(), input, avatar)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
