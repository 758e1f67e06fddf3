package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/karlmoz79/busqueda-laptop/internal/config"
	"github.com/karlmoz79/busqueda-laptop/internal/models"
)

// attemptOutcome is the result of one navigate-search-extract cycle.
// blocked means the site answered with an anti-bot challenge and the attempt
// is retry eligible; otherwise records holds the terminal result (possibly
// empty, meaning "no matches").
type attemptOutcome struct {
	blocked bool
	records []models.ProductRecord
}

type attemptFunc func(ctx context.Context, query string, attempt int) *attemptOutcome

// Scraper runs the full retry loop around individual scrape attempts. One
// Scraper is safe to reuse across invocations; every attempt acquires and
// releases its own browser, so concurrent calls never share a context.
type Scraper struct {
	cfg     *config.Config
	logger  *slog.Logger
	human   *Humanizer
	metrics *Metrics

	// rng, sleep and attempt are swappable so tests can run the retry
	// policy without wall-clock delays or a live browser. randMu guards
	// rng, which is not safe for concurrent use.
	randMu  sync.Mutex
	rng     *rand.Rand
	sleep   func(time.Duration)
	attempt attemptFunc
}

func New(cfg *config.Config, logger *slog.Logger, metrics *Metrics) *Scraper {
	s := &Scraper{
		cfg:     cfg,
		logger:  logger.With("component", "scraper"),
		human:   NewHumanizer(cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight),
		metrics: metrics,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   time.Sleep,
	}
	s.attempt = s.runAttempt
	return s
}

func (s *Scraper) randFloat64() float64 {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rng.Float64()
}

func (s *Scraper) randIntn(n int) int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rng.Intn(n)
}
