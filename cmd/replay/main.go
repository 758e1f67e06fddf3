package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/karlmoz79/busqueda-laptop/internal/config"
	"github.com/karlmoz79/busqueda-laptop/internal/parser"
)

// replay re-runs the extraction heuristics against a saved results page,
// typically an HTML snapshot written to the debug directory. Useful for
// checking selector drift without touching the live site.
func main() {
	file := flag.String("file", "", "path to a saved search results HTML page")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -file <snapshot.html>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	html, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("failed to read snapshot", "file", *file, "error", err)
		os.Exit(1)
	}

	p := parser.NewSearchParser(
		cfg.Scraper.BaseURL,
		cfg.Scraper.BrandKeyword,
		cfg.Scraper.DestinationCountry,
		cfg.Scraper.MaxItems,
	)

	records, err := p.Parse(string(html))
	if err != nil {
		logger.Error("failed to parse snapshot", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		logger.Error("failed to encode records", "error", err)
		os.Exit(1)
	}

	logger.Info("replay finished", "records", len(records))
}
