package handler

import (
	"net/http"

	"clanbuy/internal/middleware"
	"clanbuy/internal/models"
	"clanbuy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ClanHandler struct {
	clanSvc *service.ClanService
}

func NewClanHandler(clanSvc *service.ClanService) *ClanHandler {
	return &ClanHandler{clanSvc: clanSvc}
}

func clanJSON(clan *models.Clan) gin.H {
	return gin.H{
		"id":            clan.ID,
		"productId":     clan.ProductID,
		"status":        clan.Status,
		"memberCount":   clan.MemberCount,
		"requiredCount": clan.RequiredCount,
		"clanPrice":     clan.ClanPrice,
		"expiresAt":     clan.ExpiresAt,
		"completedAt":   clan.CompletedAt,
	}
}

// Create opens a clan with the caller as leader and returns the invite token.
// POST /viral/clans
func (h *ClanHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		ProductID     uint            `json:"productId" binding:"required"`
		ClanPrice     decimal.Decimal `json:"clanPrice" binding:"required"`
		RequiredCount int             `json:"requiredCount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId, clanPrice and requiredCount required", "code": "VALIDATION_ERROR"})
		return
	}
	clan, err := h.clanSvc.CreateClan(c.Request.Context(), req.ProductID, userID, req.ClanPrice, req.RequiredCount)
	if err != nil {
		respondError(c, err)
		return
	}
	body := clanJSON(clan)
	body["joinToken"] = clan.JoinToken
	c.JSON(http.StatusCreated, body)
}

// Join admits the caller via an invite token.
// POST /viral/clans/:token/join
func (h *ClanHandler) Join(c *gin.Context) {
	userID := middleware.GetUserID(c)
	completed, clan, err := h.clanSvc.JoinByToken(c.Request.Context(), c.Param("token"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": completed, "clan": clanJSON(clan)})
}

// Get returns public clan state for an invite link preview.
// GET /viral/clans/:token
func (h *ClanHandler) Get(c *gin.Context) {
	clan, err := h.clanSvc.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clanJSON(clan))
}
