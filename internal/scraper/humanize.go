package scraper

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Narrow views of the playwright page so the humanizer can be exercised in
// tests without a browser.
type evaluator interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
}

type pointer interface {
	Move(x float64, y float64, options ...playwright.MouseMoveOptions) error
}

type typer interface {
	Type(text string, options ...playwright.KeyboardTypeOptions) error
}

// Humanizer issues randomized interaction primitives to make an automated
// session look less like one. Every operation is best effort: a failed
// scroll or pointer move never aborts the surrounding attempt. One Humanizer
// may be shared by concurrent attempts; mu guards the rng.
type Humanizer struct {
	mu        sync.Mutex
	rng       *rand.Rand
	sleep     func(time.Duration)
	viewportW int
	viewportH int
}

func NewHumanizer(viewportW, viewportH int) *Humanizer {
	return &Humanizer{
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:     time.Sleep,
		viewportW: viewportW,
		viewportH: viewportH,
	}
}

// Delay suspends the calling flow for a uniformly-random duration between
// minSeconds and maxSeconds.
func (h *Humanizer) Delay(minSeconds, maxSeconds float64) {
	h.sleep(h.uniform(minSeconds, maxSeconds))
}

// SmoothScroll scrolls the page in steps of 200-500px with 0.3-0.8s pauses.
func (h *Humanizer) SmoothScroll(page evaluator, steps int) {
	for i := 0; i < steps; i++ {
		px := 200 + h.intn(301)
		if _, err := page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", px)); err != nil {
			return
		}
		h.sleep(h.uniform(0.3, 0.8))
	}
}

// SimulateMovement issues 2-5 pointer moves to random viewport coordinates
// with 0.1-0.4s pauses between them.
func (h *Humanizer) SimulateMovement(mouse pointer) {
	moves := 2 + h.intn(4)
	for i := 0; i < moves; i++ {
		x := h.float64() * float64(h.viewportW)
		y := h.float64() * float64(h.viewportH)
		if err := mouse.Move(x, y); err != nil {
			return
		}
		h.sleep(h.uniform(0.1, 0.4))
	}
}

// TypeQuery presses each character individually with a 0.05-0.15s inter-key
// delay. The string is never bulk-inserted.
func (h *Humanizer) TypeQuery(keyboard typer, text string) error {
	for _, r := range text {
		if err := keyboard.Type(string(r)); err != nil {
			return err
		}
		h.sleep(h.uniform(0.05, 0.15))
	}
	return nil
}

func (h *Humanizer) uniform(minSeconds, maxSeconds float64) time.Duration {
	seconds := minSeconds + h.float64()*(maxSeconds-minSeconds)
	return time.Duration(seconds * float64(time.Second))
}

func (h *Humanizer) intn(n int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Intn(n)
}

func (h *Humanizer) float64() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64()
}
