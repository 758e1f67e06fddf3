package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karlmoz79/busqueda-laptop/internal/config"
	"github.com/karlmoz79/busqueda-laptop/internal/history"
	"github.com/karlmoz79/busqueda-laptop/internal/models"
	"github.com/karlmoz79/busqueda-laptop/internal/notifier"
	"github.com/karlmoz79/busqueda-laptop/internal/scraper"
)

func main() {
	query := flag.String("query", "", "search query (default from config)")
	threshold := flag.Float64("threshold", 0, "alert price ceiling in USD (default from config)")
	minPrice := flag.Float64("min-price", 0, "alert price floor in USD (default from config)")
	headless := flag.Bool("headless", true, "run the browser headless")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.Browser.Headless = *headless
	if *query == "" {
		*query = cfg.Scraper.DefaultQuery
	}
	if *threshold == 0 {
		*threshold = cfg.Scraper.PriceThreshold
	}
	if *minPrice == 0 {
		*minPrice = cfg.Scraper.MinPrice
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

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

	svc := scraper.New(cfg, logger, nil)

	start := time.Now()
	records := svc.Scrape(ctx, *query)

	for _, rec := range records {
		price := "no price"
		if rec.PriceUSD != nil {
			price = fmt.Sprintf("$%.2f", *rec.PriceUSD)
		}
		ships := ""
		if rec.ShipsToColombia {
			ships = " [ships to Colombia]"
		}
		fmt.Printf("%-10s %s%s\n    %s\n", price, rec.Title, ships, rec.URL)
	}

	alerts := notifier.New(cfg.SMTP, dedup, logger)
	alertsSent, err := alerts.SendConsolidatedAlert(ctx, records, *threshold, *minPrice)
	if err != nil {
		logger.Error("failed to send alert", "error", err)
	}

	if cfg.HistoryEnabled() {
		store, err := history.New(ctx, cfg.Database, logger)
		if err != nil {
			logger.Warn("history store unavailable", "error", err)
		} else {
			defer store.Close()
			if err := store.EnsureSchema(ctx); err != nil {
				logger.Warn("failed to prepare schema", "error", err)
			} else if err := store.RecordSnapshots(ctx, *query, records); err != nil {
				logger.Warn("failed to record snapshots", "error", err)
			}
		}
	}

	printSummary(*query, records, *threshold, alertsSent, time.Since(start))
}

func printSummary(query string, records []models.ProductRecord, threshold float64, alertsSent int, elapsed time.Duration) {
	priced := 0
	var lowest *float64
	for _, rec := range records {
		if rec.PriceUSD == nil {
			continue
		}
		priced++
		if lowest == nil || *rec.PriceUSD < *lowest {
			lowest = rec.PriceUSD
		}
	}

	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Printf("Query:        %s\n", query)
	fmt.Printf("Products:     %d (%d with price)\n", len(records), priced)
	if lowest != nil {
		fmt.Printf("Lowest price: $%.2f\n", *lowest)
	} else {
		fmt.Println("Lowest price: n/a")
	}
	fmt.Printf("Threshold:    $%.2f\n", threshold)
	fmt.Printf("Alerts:       %d\n", alertsSent)
	fmt.Printf("Elapsed:      %s\n", elapsed.Round(time.Second))
	fmt.Println(line)
}
