package api

import (
	"net/http"

	"weeklygrind/plan-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ShareHandler serves the share/fork routes.
type ShareHandler struct {
	shareService service.ShareService
}

func NewShareHandler(shareService service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

type AcceptShareRequest struct {
	Token string `json:"token" binding:"required"`
}

type AcceptShareResponse struct {
	PlanID string `json:"plan_id"`
}

// Issue godoc
// @Summary Issue a single-use share link for an owned plan
// @Tags Share
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 201 {object} ShareLinkResponse
// @Failure 404 {object} gin.H
// @Router /plans/{id}/share [post]
func (h *ShareHandler) Issue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	link, err := h.shareService.Issue(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ShareLinkResponse{URL: link.URL, Token: link.Token, ExpiresAt: link.ExpiresAt})
}

// Preview godoc
// @Summary Read-only preview of a shared plan
// @Description Unknown, used and expired tokens all answer 404.
// @Tags Share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} SharePreviewResponse
// @Failure 404 {object} gin.H
// @Failure 429 {object} gin.H
// @Router /share/{token} [get]
func (h *ShareHandler) Preview(c *gin.Context) {
	preview, err := h.shareService.Preview(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	plan := mapPlanDetail(preview.Plan)
	c.JSON(http.StatusOK, SharePreviewResponse{
		Name:          plan.Name,
		EquipmentTags: plan.EquipmentTags,
		ExpiresAt:     preview.ExpiresAt,
		Days:          plan.Days,
	})
}

// Accept godoc
// @Summary Fork a shared plan and make the copy active
// @Tags Share
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AcceptShareRequest true "Share token"
// @Success 201 {object} AcceptShareResponse
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /share/accept [post]
func (h *ShareHandler) Accept(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req AcceptShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "token required")
		return
	}
	planID, err := h.shareService.Accept(c.Request.Context(), userID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AcceptShareResponse{PlanID: planID.Hex()})
}
