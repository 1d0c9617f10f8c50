package handler

import (
	"net/http"
	"strconv"

	claimDto "github.com/fantaballa/gamepass-api/internal/modules/claim/dto"
	claimService "github.com/fantaballa/gamepass-api/internal/modules/claim/service"
	"github.com/fantaballa/gamepass-api/pkg/response"
	"github.com/fantaballa/gamepass-api/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ClaimHandler struct {
	service claimService.ClaimService
}

func NewClaimHandler(service claimService.ClaimService) *ClaimHandler {
	return &ClaimHandler{service: service}
}

// SubmitClaim handles POST /claims
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req claimDto.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	claim, err := h.service.SubmitClaim(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// ListMyClaims handles GET /claims/me
func (h *ClaimHandler) ListMyClaims(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	claims, err := h.service.ListMyClaims(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": claims})
}

// ListPendingClaims handles GET /claims/pending (moderators only, enforced
// by middleware)
func (h *ClaimHandler) ListPendingClaims(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	claims, err := h.service.ListPendingClaims(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": claims})
}
