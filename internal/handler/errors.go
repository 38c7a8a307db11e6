package handler

import (
	"errors"
	"net/http"

	"clanbuy/internal/repository"
	"clanbuy/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to an HTTP status and a stable error code.
// Conflicts always come out of the same atomic check that would have applied
// the mutation, so there is no separate pre-check to disagree with.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found", "code": "PRODUCT_NOT_FOUND"})
	case errors.Is(err, repository.ErrClanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "clan not found", "code": "CLAN_NOT_FOUND"})
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found", "code": "ORDER_NOT_FOUND"})
	case errors.Is(err, repository.ErrClanExpired):
		c.JSON(http.StatusConflict, gin.H{"error": "clan has expired", "code": "CLAN_EXPIRED"})
	case errors.Is(err, repository.ErrClanAlreadyComplete):
		c.JSON(http.StatusConflict, gin.H{"error": "clan is already complete", "code": "CLAN_COMPLETE"})
	case errors.Is(err, repository.ErrClanFull):
		c.JSON(http.StatusConflict, gin.H{"error": "clan is full", "code": "CLAN_FULL"})
	case errors.Is(err, repository.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "already a member of this clan", "code": "ALREADY_MEMBER"})
	case errors.Is(err, repository.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock", "code": "INSUFFICIENT_STOCK"})
	case errors.Is(err, service.ErrProductNotAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": "product is not available", "code": "PRODUCT_NOT_AVAILABLE"})
	case errors.Is(err, service.ErrInvalidRequiredCount),
		errors.Is(err, service.ErrInvalidClanPrice),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrCurrencyMismatch),
		errors.Is(err, service.ErrClanNotComplete),
		errors.Is(err, service.ErrNotClanMember),
		errors.Is(err, service.ErrClanProductMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_ERROR"})
	case errors.Is(err, service.ErrGatewayFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout could not be started", "code": "CHECKOUT_ERROR"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
