package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/tripwalk/tripwalk-api/app/logger"
	"github.com/tripwalk/tripwalk-api/app/observability/metrics"
	"github.com/tripwalk/tripwalk-api/app/tracer"
	"github.com/tripwalk/tripwalk-api/config"
	"github.com/tripwalk/tripwalk-api/internal/api/feedback"
	generativeAI "github.com/tripwalk/tripwalk-api/internal/api/generative_ai"
	"github.com/tripwalk/tripwalk-api/internal/api/geocode"
	"github.com/tripwalk/tripwalk-api/internal/api/itinerary"
	api "github.com/tripwalk/tripwalk-api/internal/router"
	"github.com/tripwalk/tripwalk-api/internal/types"
)

func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger)

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Catalog Setup ---
	// Loaded once at startup; shared read-only by every request.
	catalogRepo, err := itinerary.NewRepository(cfg.Catalog.Path, logger)
	if err != nil {
		logger.Error("Failed to load place catalog", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Collaborators ---
	geocodeService := geocode.NewServiceImpl(geocode.Options{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Geocoder.Timeout,
		City:      cfg.Geocoder.City,
		DefaultCoords: types.Coordinates{
			Latitude:  cfg.Geocoder.DefaultLatitude,
			Longitude: cfg.Geocoder.DefaultLongitude,
		},
	}, logger)

	embeddingService, err := generativeAI.NewEmbeddingService(ctx, cfg.Gemini.EmbedModel, logger)
	if err != nil {
		logger.Error("Failed to create embedding service", slog.Any("error", err))
		os.Exit(1)
	}

	narrativeService, err := generativeAI.NewNarrativeService(ctx, cfg.Gemini.ChatModel, logger)
	if err != nil {
		logger.Error("Failed to create narrative service", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Dependency Injection ---
	itineraryService := itinerary.NewServiceImpl(catalogRepo, geocodeService, embeddingService, narrativeService, logger)
	itineraryHandler := itinerary.NewHandler(itineraryService, logger)

	feedbackService := feedback.NewServiceImpl(cfg.Feedback.Path, logger)
	feedbackHandler := feedback.NewHandler(feedbackService, logger)

	// --- Router Setup ---
	routerConfig := &api.Config{
		ItineraryHandler: itineraryHandler,
		FeedbackHandler:  feedbackHandler,
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// --- Start Server Goroutine ---
	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	// --- Wait for Shutdown Signal ---
	<-ctx.Done()

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
