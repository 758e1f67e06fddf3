package scraper

import (
	"context"
	"time"

	"github.com/karlmoz79/busqueda-laptop/internal/models"
)

const (
	backoffBaseSeconds   = 5.0
	backoffJitterSeconds = 5.0
)

// Scrape runs attempts for query until one finishes unblocked or the retry
// budget is spent. A successful attempt is terminal even when it produced no
// records; only blocked attempts are retried. When every attempt is blocked
// the result is an empty slice, never nil and never an error.
func (s *Scraper) Scrape(ctx context.Context, query string) []models.ProductRecord {
	start := time.Now()
	defer func() {
		s.metrics.ObserveScrapeDuration(time.Since(start))
	}()

	for attempt := 1; attempt <= s.cfg.Scraper.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			s.logger.Warn("scrape cancelled", "query", query, "attempt", attempt)
			return []models.ProductRecord{}
		}

		s.metrics.IncAttempts()
		outcome := s.attempt(ctx, query, attempt)

		if !outcome.blocked {
			records := outcome.records
			if records == nil {
				records = []models.ProductRecord{}
			}
			return records
		}

		s.metrics.IncBlocked()
		if attempt == s.cfg.Scraper.MaxRetries {
			break
		}

		wait := s.backoff(attempt)
		s.logger.Warn("attempt blocked, backing off",
			"query", query,
			"attempt", attempt,
			"wait", wait.Round(time.Millisecond),
		)
		s.metrics.IncRetries()
		s.sleep(wait)
	}

	s.logger.Error("all attempts blocked", "query", query, "attempts", s.cfg.Scraper.MaxRetries)
	return []models.ProductRecord{}
}

// backoff returns a randomized wait that grows linearly with the attempt
// number: uniform(5,10) seconds scaled by the attempt just completed.
func (s *Scraper) backoff(attempt int) time.Duration {
	seconds := (backoffBaseSeconds + s.randFloat64()*backoffJitterSeconds) * float64(attempt)
	return time.Duration(seconds * float64(time.Second))
}
