package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/karlmoz79/busqueda-laptop/internal/api"
	"github.com/karlmoz79/busqueda-laptop/internal/config"
	"github.com/karlmoz79/busqueda-laptop/internal/history"
	"github.com/karlmoz79/busqueda-laptop/internal/models"
	"github.com/karlmoz79/busqueda-laptop/internal/notifier"
	"github.com/karlmoz79/busqueda-laptop/internal/ratelimit"
	"github.com/karlmoz79/busqueda-laptop/internal/scraper"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional redis-backed alert dedup
	var dedup *notifier.Deduper
	if cfg.DedupEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, alert dedup disabled", "error", err)
		} else {
			dedup = notifier.NewDeduper(redisClient, cfg.Redis.AlertTTL)
		}
	}

	// Optional postgres price history
	var store *history.Store
	var histReader api.HistoryReader
	if cfg.HistoryEnabled() {
		store, err = history.New(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
		histReader = store
	}

	metrics := scraper.NewMetrics()
	svc := scraper.New(cfg, logger, metrics)
	alerts := notifier.New(cfg.SMTP, dedup, logger)
	pacer := ratelimit.New(5*time.Second, 15*time.Second)

	searcher := &recordingSearcher{svc: svc, store: store, logger: logger}

	handlers := api.NewHandlers(searcher, alerts, histReader, pacer, api.Options{
		DefaultQuery:   cfg.Scraper.DefaultQuery,
		PriceThreshold: cfg.Scraper.PriceThreshold,
		MinPrice:       cfg.Scraper.MinPrice,
	}, logger)

	// Setup Chi router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", handlers.Search)
		r.Get("/history/{query}", handlers.History)
	})

	// Static frontend
	if cfg.Server.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.Server.StaticDir))
		r.Handle("/*", fileServer)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a scrape with retries can take minutes
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// recordingSearcher persists each run's records as price snapshots before
// returning them.
type recordingSearcher struct {
	svc    *scraper.Scraper
	store  *history.Store
	logger *slog.Logger
}

func (s *recordingSearcher) Scrape(ctx context.Context, query string) []models.ProductRecord {
	records := s.svc.Scrape(ctx, query)
	if s.store != nil && len(records) > 0 {
		if err := s.store.RecordSnapshots(ctx, query, records); err != nil {
			s.logger.Warn("failed to record price snapshots", "query", query, "error", err)
		}
	}
	return records
}

func logLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
