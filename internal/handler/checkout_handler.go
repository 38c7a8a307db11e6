package handler

import (
	"net/http"
	"strconv"

	"clanbuy/internal/middleware"
	"clanbuy/internal/repository"
	"clanbuy/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutSvc *service.CheckoutService
	orderRepo   *repository.OrderRepository
}

func NewCheckoutHandler(checkoutSvc *service.CheckoutService, orderRepo *repository.OrderRepository) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc, orderRepo: orderRepo}
}

// Checkout creates a PENDING order and returns the gateway checkout redirect.
// POST /payments/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		ProductID uint   `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
		Currency  string `json:"currency"`
		ClanID    *uint  `json:"clanId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId and quantity required", "code": "VALIDATION_ERROR"})
		return
	}
	result, err := h.checkoutSvc.Checkout(c.Request.Context(), userID, req.ProductID, req.Quantity, req.Currency, req.ClanID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checkoutUrl": result.CheckoutURL,
		"sessionId":   result.SessionID,
		"orderId":     result.Order.ID,
	})
}

// GetOrder returns one of the caller's orders, for polling settlement state.
// GET /payments/orders/:id
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id", "code": "VALIDATION_ERROR"})
		return
	}
	order, err := h.orderRepo.GetByIDForBuyer(c.Request.Context(), uint(id), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
