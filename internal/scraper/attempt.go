package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/karlmoz79/busqueda-laptop/internal/browser"
	"github.com/karlmoz79/busqueda-laptop/internal/models"
)

const searchBoxSelector = "input#twotabsearchtextbox"

// runAttempt performs one full navigate-search-extract cycle in a fresh
// browser context. It never returns an error: a block becomes a retryable
// outcome, and every other failure degrades to an empty terminal result so
// one bad attempt cannot take down a calling service.
func (s *Scraper) runAttempt(ctx context.Context, query string, attempt int) *attemptOutcome {
	scrapeID := uuid.NewString()
	logger := s.logger.With("scrape_id", scrapeID, "attempt", attempt, "query", query)

	userAgent := s.cfg.Scraper.UserAgents[s.randIntn(len(s.cfg.Scraper.UserAgents))]

	b, err := browser.New(&browser.Options{
		Headless:       s.cfg.Browser.Headless,
		Timeout:        s.cfg.Scraper.NavigationTimeout,
		UserAgent:      userAgent,
		ViewportWidth:  s.cfg.Browser.ViewportWidth,
		ViewportHeight: s.cfg.Browser.ViewportHeight,
		AcceptLanguage: s.cfg.Browser.AcceptLanguage,
		TimezoneID:     s.cfg.Browser.TimezoneID,
		Locale:         s.cfg.Browser.Locale,
		Currency:       s.cfg.Browser.Currency,
		CookieDomain:   cookieDomain(s.cfg.Scraper.BaseURL),
	})
	if err != nil {
		logger.Error("failed to start browser", "error", err)
		return &attemptOutcome{records: []models.ProductRecord{}}
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	page, err := b.NewPage()
	if err != nil {
		logger.Error("failed to open page", "error", err)
		return &attemptOutcome{records: []models.ProductRecord{}}
	}

	logger.Info("navigating to homepage", "user_agent", userAgent)
	if _, err := page.Goto(s.cfg.Scraper.BaseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.cfg.Scraper.NavigationTimeout.Milliseconds())),
	}); err != nil {
		logger.Error("homepage navigation failed", "error", err)
		return &attemptOutcome{records: []models.ProductRecord{}}
	}

	s.human.Delay(2, 4)
	s.human.SimulateMovement(page.Mouse())

	if s.pageBlocked(page) {
		logger.Warn("blocked on homepage")
		s.saveDiagnostics(page, "blocked_home", scrapeID, logger)
		return &attemptOutcome{blocked: true}
	}

	if err := s.submitSearch(page, query); err != nil {
		logger.Error("search submission failed", "error", err)
		return &attemptOutcome{records: []models.ProductRecord{}}
	}

	s.human.Delay(2, 4)
	s.human.SmoothScroll(page, 3)

	if s.pageBlocked(page) {
		logger.Warn("blocked on search results")
		s.saveDiagnostics(page, "blocked_search", scrapeID, logger)
		return &attemptOutcome{blocked: true}
	}

	if _, err := page.WaitForSelector(resultItemSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(s.cfg.Scraper.ResultsTimeout.Milliseconds())),
	}); err != nil {
		logger.Info("no results grid appeared", "error", err)
		s.saveDiagnostics(page, "no_results", scrapeID, logger)
		return &attemptOutcome{records: []models.ProductRecord{}}
	}

	s.human.SmoothScroll(page, 4)
	s.human.Delay(1, 2)

	records := s.extractRecords(page, logger)
	logger.Info("attempt finished", "records", len(records))

	return &attemptOutcome{records: records}
}

// submitSearch uses the search box with humanized typing when it is present,
// otherwise falls back to navigating the search URL directly.
func (s *Scraper) submitSearch(page playwright.Page, query string) error {
	box := page.Locator(searchBoxSelector)
	count, err := box.Count()
	if err == nil && count > 0 {
		if err := box.Click(); err != nil {
			return fmt.Errorf("failed to focus search box: %w", err)
		}
		s.human.Delay(0.5, 1.5)
		if err := s.human.TypeQuery(page.Keyboard(), query); err != nil {
			return fmt.Errorf("failed to type query: %w", err)
		}
		s.human.Delay(0.5, 1.0)
		if err := page.Keyboard().Press("Enter"); err != nil {
			return fmt.Errorf("failed to submit search: %w", err)
		}
		return nil
	}

	searchURL := fmt.Sprintf("%s/s?k=%s", s.cfg.Scraper.BaseURL, url.QueryEscape(query))
	if _, err := page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.cfg.Scraper.NavigationTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("failed to navigate to search url: %w", err)
	}
	return nil
}

// extractRecords walks the result cards and collects surviving records. A
// failure inside one card skips that card only.
func (s *Scraper) extractRecords(page playwright.Page, logger *slog.Logger) []models.ProductRecord {
	items, err := page.Locator(resultItemSelector).All()
	if err != nil {
		logger.Warn("failed to enumerate result items", "error", err)
		return []models.ProductRecord{}
	}

	if len(items) > s.cfg.Scraper.MaxItems {
		items = items[:s.cfg.Scraper.MaxItems]
	}

	records := make([]models.ProductRecord, 0, len(items))
	for i, item := range items {
		rec, err := s.extractItem(item)
		if err != nil {
			logger.Debug("skipping result item", "index", i, "error", err)
			continue
		}
		if rec == nil {
			logger.Debug("discarding result item", "index", i)
			continue
		}
		records = append(records, *rec)
	}

	s.metrics.AddItems(len(records))
	return records
}

// pageBlocked evaluates the block heuristics against the current page. When
// title or content cannot be read, the page is treated as blocked so the
// attempt stays retryable.
func (s *Scraper) pageBlocked(page playwright.Page) bool {
	title, err := page.Title()
	if err != nil {
		return true
	}
	content, err := page.Content()
	if err != nil {
		return true
	}
	return IsBlocked(title, content)
}

// saveDiagnostics writes a full-page screenshot and the page HTML to the
// debug directory. Best effort; failures are logged and ignored.
func (s *Scraper) saveDiagnostics(page playwright.Page, reason, scrapeID string, logger *slog.Logger) {
	if s.cfg.Scraper.DebugDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.Scraper.DebugDir, 0o755); err != nil {
		logger.Warn("failed to create debug dir", "error", err)
		return
	}

	shotPath := filepath.Join(s.cfg.Scraper.DebugDir, fmt.Sprintf("%s_%s.png", reason, scrapeID))
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(shotPath),
		FullPage: playwright.Bool(true),
	}); err != nil {
		logger.Warn("failed to save screenshot", "error", err)
	}

	html, err := page.Content()
	if err != nil {
		logger.Warn("failed to read page content", "error", err)
		return
	}
	htmlPath := filepath.Join(s.cfg.Scraper.DebugDir, fmt.Sprintf("%s_%s.html", reason, scrapeID))
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		logger.Warn("failed to save page html", "error", err)
	}
}

// cookieDomain derives the cookie scope from the site base URL, e.g.
// "https://www.amazon.com" -> ".amazon.com".
func cookieDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return ".amazon.com"
	}
	return "." + strings.TrimPrefix(u.Hostname(), "www.")
}
