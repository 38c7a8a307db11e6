package handler

import (
	"net/http"
	"strconv"

	"clanbuy/config"
	"clanbuy/internal/middleware"
	"clanbuy/internal/repository"
	"clanbuy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ViralHandler struct {
	referralRepo *repository.ReferralRepository
	clanSvc      *service.ClanService
	cfg          *config.ReferralConfig
}

func NewViralHandler(referralRepo *repository.ReferralRepository, clanSvc *service.ClanService, cfg *config.ReferralConfig) *ViralHandler {
	return &ViralHandler{referralRepo: referralRepo, clanSvc: clanSvc, cfg: cfg}
}

// ReferralLink returns the authenticated user's shareable referral link,
// assigning a code on first use.
// POST /viral/referral-link
func (h *ViralHandler) ReferralLink(c *gin.Context) {
	userID := middleware.GetUserID(c)
	code, err := h.referralRepo.GetOrCreateCode(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get referral code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"referralLink": h.cfg.LinkBase + code,
		"code":         code,
	})
}

// TrackReferral records click attribution. Always succeeds from the caller's
// point of view: unknown codes are ignored, tracking failures only logged.
// POST /viral/track-referral
func (h *ViralHandler) TrackReferral(c *gin.Context) {
	var req struct {
		ReferralCode string `json:"referralCode" binding:"required"`
		VisitorID    string `json:"visitorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referralCode required"})
		return
	}
	if req.VisitorID == "" {
		req.VisitorID = uuid.NewString()
	}
	_ = h.referralRepo.TrackClick(c.Request.Context(), req.ReferralCode, req.VisitorID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClanStats is the public aggregate over a product's active clans.
// GET /viral/clan-stats/:productId
func (h *ViralHandler) ClanStats(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id", "code": "VALIDATION_ERROR"})
		return
	}
	stats, err := h.clanSvc.StatsForProduct(c.Request.Context(), uint(productID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"activeClans":     stats.ActiveClans,
		"totalMembers":    stats.TotalMembers,
		"averageDiscount": stats.AverageDiscount,
	})
}
