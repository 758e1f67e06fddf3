package scraper

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	evaluated []string
}

func (f *fakePage) Evaluate(expression string, _ ...interface{}) (interface{}, error) {
	f.evaluated = append(f.evaluated, expression)
	return nil, nil
}

type fakeMouse struct {
	moves [][2]float64
}

func (f *fakeMouse) Move(x, y float64, _ ...playwright.MouseMoveOptions) error {
	f.moves = append(f.moves, [2]float64{x, y})
	return nil
}

type fakeKeyboard struct {
	typed []string
}

func (f *fakeKeyboard) Type(text string, _ ...playwright.KeyboardTypeOptions) error {
	f.typed = append(f.typed, text)
	return nil
}

func testHumanizer(sleeps *[]time.Duration) *Humanizer {
	return &Humanizer{
		rng:       rand.New(rand.NewSource(42)),
		sleep:     func(d time.Duration) { *sleeps = append(*sleeps, d) },
		viewportW: 1920,
		viewportH: 1080,
	}
}

func TestDelayWithinBounds(t *testing.T) {
	var sleeps []time.Duration
	h := testHumanizer(&sleeps)

	for i := 0; i < 100; i++ {
		h.Delay(2, 4)
	}

	require.Len(t, sleeps, 100)
	for _, d := range sleeps {
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 4*time.Second)
	}
}

func TestSmoothScrollStepsAndPauses(t *testing.T) {
	var sleeps []time.Duration
	h := testHumanizer(&sleeps)
	page := &fakePage{}

	h.SmoothScroll(page, 3)

	require.Len(t, page.evaluated, 3)
	for _, expr := range page.evaluated {
		assert.Regexp(t, `^window\.scrollBy\(0, \d+\)$`, expr)
	}

	require.Len(t, sleeps, 3)
	for _, d := range sleeps {
		assert.GreaterOrEqual(t, d, 300*time.Millisecond)
		assert.LessOrEqual(t, d, 800*time.Millisecond)
	}
}

func TestSimulateMovementStaysInViewport(t *testing.T) {
	var sleeps []time.Duration
	h := testHumanizer(&sleeps)
	mouse := &fakeMouse{}

	h.SimulateMovement(mouse)

	require.GreaterOrEqual(t, len(mouse.moves), 2)
	require.LessOrEqual(t, len(mouse.moves), 5)
	for _, mv := range mouse.moves {
		assert.GreaterOrEqual(t, mv[0], 0.0)
		assert.Less(t, mv[0], 1920.0)
		assert.GreaterOrEqual(t, mv[1], 0.0)
		assert.Less(t, mv[1], 1080.0)
	}
	for _, d := range sleeps {
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 400*time.Millisecond)
	}
}

func TestHumanizerConcurrentUse(t *testing.T) {
	h := &Humanizer{
		rng:       rand.New(rand.NewSource(42)),
		sleep:     func(time.Duration) {},
		viewportW: 1920,
		viewportH: 1080,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page := &fakePage{}
			mouse := &fakeMouse{}
			for j := 0; j < 20; j++ {
				h.Delay(0.1, 0.2)
				h.SmoothScroll(page, 2)
				h.SimulateMovement(mouse)
			}
		}()
	}
	wg.Wait()
}

func TestTypeQueryOneKeyPerCharacter(t *testing.T) {
	var sleeps []time.Duration
	h := testHumanizer(&sleeps)
	kb := &fakeKeyboard{}

	err := h.TypeQuery(kb, "Lenovo")

	require.NoError(t, err)
	require.Equal(t, []string{"L", "e", "n", "o", "v", "o"}, kb.typed)
	require.Len(t, sleeps, 6)
	for _, d := range sleeps {
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}
