package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"net/http"

	"clanbuy/config"
	"clanbuy/internal/service"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives asynchronous payment-gateway events. Signature
// verification happens before any persistence access; once verified, the
// response is always 200 so the gateway stops redelivering.
type WebhookHandler struct {
	webhookSvc *service.WebhookService
	cfg        *config.PaymentConfig
}

func NewWebhookHandler(webhookSvc *service.WebhookService, cfg *config.PaymentConfig) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc, cfg: cfg}
}

// Handle processes one gateway delivery.
// POST /payments/webhook
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.WebhookSecret != "" {
		sig := c.GetHeader("X-Webhook-Signature")
		if !h.verifySignature(body, sig) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
	}
	evt, err := service.ParseGatewayEvent(body)
	if err != nil {
		// A verified but malformed delivery will never become applicable;
		// acknowledge it so the gateway stops redelivering.
		log.Printf("[webhook] dropping malformed event: %v", err)
		c.JSON(http.StatusOK, gin.H{"received": true, "applied": false})
		return
	}
	applied, err := h.webhookSvc.Apply(c.Request.Context(), evt)
	if err != nil {
		// 5xx makes the gateway redeliver; the ledger keeps the retry safe.
		log.Printf("[webhook] apply %s (%s) failed: %v", evt.ID, evt.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "apply failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "applied": applied})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
