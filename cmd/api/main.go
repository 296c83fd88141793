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

	"github.com/lyratng/ai-menu/internal/api"
	"github.com/lyratng/ai-menu/internal/api/handler"
	"github.com/lyratng/ai-menu/internal/api/middleware"
	"github.com/lyratng/ai-menu/internal/config"
	"github.com/lyratng/ai-menu/internal/logger"
	"github.com/lyratng/ai-menu/internal/repository"
	"github.com/lyratng/ai-menu/internal/service"
	"github.com/lyratng/ai-menu/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// Initialize repositories
	dishRepo := repository.NewDishRepository(db)
	menuRepo := repository.NewMenuRepository(db)

	// Initialize completion client
	completer := service.NewCompletionService(&service.CompletionConfig{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})

	// Initialize optional menu archive
	var (
		archiver      service.MenuArchiver
		archiveReader handler.ArchiveReader
	)
	if cfg.Archive.Enabled {
		archive, err := storage.NewMenuArchive(&cfg.Archive)
		if err != nil {
			logger.Fatal("Failed to initialize menu archive: %v", err)
		}
		if err := archive.EnsureBucket(context.Background()); err != nil {
			logger.Fatal("Failed to ensure archive bucket: %v", err)
		}
		archiver = archive
		archiveReader = archive
		logger.Info("Menu archive enabled: bucket=%s", cfg.Archive.Bucket)
	}

	// Initialize generation pipeline
	generationService := service.NewGenerationService(
		dishRepo,
		menuRepo,
		completer,
		cfg.Generation.HistoryDirective,
		archiver,
	)

	// Setup router
	router := api.SetupRouter(generationService, menuRepo, archiveReader, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server: port=%d, mode=%s", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
