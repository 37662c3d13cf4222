package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-whatscv-backend/config"
	_ "go-whatscv-backend/docs" // Important for Swagger
	v1 "go-whatscv-backend/internal/delivery/http/v1"
	"go-whatscv-backend/internal/repository/postgres"
	"go-whatscv-backend/internal/usecase"
	"go-whatscv-backend/pkg/database"
	"go-whatscv-backend/pkg/docext"
	"go-whatscv-backend/pkg/gemini"
	"go-whatscv-backend/pkg/logger"
	"go-whatscv-backend/pkg/mediafetch"
	"go-whatscv-backend/pkg/redis"
	"go-whatscv-backend/pkg/security"
	"go-whatscv-backend/pkg/whatsapp"
)

// @title           WhatsCV Backend API
// @version         1.0
// @description     WhatsApp CV ingestion backend. Receives CVs over messaging webhooks, extracts structured candidate data and serves it over a read API.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting whatscv backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting; in-memory fallback when absent)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
		}
	}

	// 5. Setup Repositories
	candidateRepo := postgres.NewCandidateRepository(dbPool)

	// 6. Setup provider clients and extraction pipeline
	waClient := whatsapp.NewClient(cfg)
	fetcher := mediafetch.NewFetcher(waClient)
	textExtractor := docext.NewExtractor()
	geminiClient := gemini.NewClient(cfg)
	hasher := security.NewHasher(cfg.IDHashSalt)

	// 7. Setup UseCases
	ingestionUC := usecase.NewIngestionUsecase(candidateRepo, fetcher, textExtractor, geminiClient, waClient, hasher, cfg.UploadDir)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		IngestionUC: ingestionUC,
		CandidateUC: candidateUC,
		Config:      cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
