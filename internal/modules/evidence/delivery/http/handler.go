package handler

import (
	"net/http"

	evidenceService "github.com/fantaballa/gamepass-api/internal/modules/evidence/service"
	"github.com/fantaballa/gamepass-api/pkg/apperror"
	"github.com/fantaballa/gamepass-api/pkg/response"
	"github.com/gin-gonic/gin"
)

type EvidenceHandler struct {
	service evidenceService.EvidenceService
}

func NewEvidenceHandler(service evidenceService.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{service: service}
}

func (h *EvidenceHandler) UploadEvidence(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperror.InvalidArgument("file is required"))
		return
	}

	resp, err := h.service.UploadEvidence(c.Request.Context(), userID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
