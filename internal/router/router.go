package router

import (
	"time"

	"clanbuy/config"
	"clanbuy/internal/handler"
	"clanbuy/internal/middleware"
	"clanbuy/internal/repository"
	"clanbuy/internal/service"
	"clanbuy/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, provider payment.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	productRepo := repository.NewProductRepository(db)
	clanRepo := repository.NewClanRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	referralRepo := repository.NewReferralRepository(db)

	// Services
	clanSvc := service.NewClanService(clanRepo, productRepo, cfg.Clan.TTL)
	checkoutSvc := service.NewCheckoutService(orderRepo, productRepo, clanRepo, provider, &cfg.Payment)
	splitter := service.NewRevenueSplitter(cfg.Payment.CommissionRateDecimal())
	webhookSvc := service.NewWebhookService(db, splitter)

	// Handlers
	viralHandler := handler.NewViralHandler(referralRepo, clanSvc, &cfg.Referral)
	clanHandler := handler.NewClanHandler(clanSvc)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc, orderRepo)
	webhookHandler := handler.NewWebhookHandler(webhookSvc, &cfg.Payment)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		viral := api.Group("/viral")
		{
			viral.POST("/referral-link", authMw, viralHandler.ReferralLink)
			viral.POST("/track-referral", viralHandler.TrackReferral)
			viral.GET("/clan-stats/:productId", viralHandler.ClanStats)
			viral.POST("/clans", authMw, clanHandler.Create)
			viral.POST("/clans/:token/join", authMw, clanHandler.Join)
			viral.GET("/clans/:token", clanHandler.Get)
		}
		payments := api.Group("/payments")
		{
			payments.POST("/checkout", authMw, checkoutHandler.Checkout)
			payments.GET("/orders/:id", authMw, checkoutHandler.GetOrder)
			payments.POST("/webhook", webhookHandler.Handle)
		}
	}
	return r
}
