package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clanbuy/config"
	"clanbuy/internal/database"
	"clanbuy/internal/repository"
	"clanbuy/internal/router"
	"clanbuy/internal/service"
	"clanbuy/pkg/payment"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var provider payment.Provider
	switch cfg.Payment.Provider {
	case "cardlink":
		provider = payment.NewCardlinkProvider(cfg.Payment.CardlinkBaseURL, cfg.Payment.CardlinkAPIKey, cfg.Payment.GatewayTimeout)
	default:
		log.Printf("[payment] using stub provider")
		provider = &payment.StubProvider{}
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweeper := service.NewExpirySweeper(repository.NewClanRepository(db), cfg.Clan.SweepInterval)
	go sweeper.Run(sweepCtx)

	engine := router.Setup(cfg, db, provider)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
