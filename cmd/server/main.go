package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calvares/digger/internal/app"
	"github.com/calvares/digger/internal/config"
	"github.com/calvares/digger/internal/constants"
	"github.com/calvares/digger/internal/discogs"
	"github.com/calvares/digger/internal/httpapp"
	"github.com/calvares/digger/internal/logger"
	"github.com/calvares/digger/internal/store"
	"github.com/calvares/digger/internal/worker"
	"github.com/calvares/digger/internal/youtube"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize API clients
	discogsClient := discogs.NewClient(cfg.DiscogsURL, discogs.Auth{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		Token:          cfg.AccessToken,
	}, cfg.UserAgent)
	youtubeClient := youtube.NewClient(constants.DefaultYouTubeURL, cfg.YouTubeAPIKey)

	// Initialize Services
	jobService := app.NewJobService(db, appLogger)
	scanner := app.NewScanner(discogsClient, appLogger)
	enricher := app.NewEnricher(discogsClient, youtubeClient, appLogger)
	ingestor := app.NewIngestor(db, scanner, enricher, appLogger)

	// Initialize Worker
	w := worker.NewWorker(db, ingestor, appLogger)
	w.Start()
	defer w.Stop()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := httpapp.NewHandler(jobService, db, appLogger, time.Duration(cfg.MaxAgeHours)*time.Hour)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exiting")
}
