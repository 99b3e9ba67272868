package kftrack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swdee/go-kftrack/tracker"
)

func TestLissajousSourceStaysInViewport(t *testing.T) {

	src := NewLissajousSource(640, 480)

	for tick := 0; tick < 2000; tick++ {
		p := src.Position(tick)

		assert.GreaterOrEqual(t, p.X, src.Margin-1e-9, "tick %d", tick)
		assert.LessOrEqual(t, p.X, 640-src.Margin+1e-9, "tick %d", tick)
		assert.GreaterOrEqual(t, p.Y, src.Margin-1e-9, "tick %d", tick)
		assert.LessOrEqual(t, p.Y, 480-src.Margin+1e-9, "tick %d", tick)
	}

	// the curve repeats every period
	assert.InDelta(t, src.Position(0).X, src.Position(1000).X, 1e-9)
	assert.InDelta(t, src.Position(0).Y, src.Position(1000).Y, 1e-9)
}

func TestRandomWalkSource(t *testing.T) {

	src := NewRandomWalkSource(200, 100, 7)
	prev := tracker.Pt(100, 50)

	for i := 0; i < 5000; i++ {
		p := src.Position(i)

		assert.True(t, p.X >= 0 && p.X <= 200 && p.Y >= 0 && p.Y <= 100,
			"step %d left the viewport: %+v", i, p)

		// a clamped bounce can only shorten a step
		assert.LessOrEqual(t, p.Dist(prev), src.MaxSpeed+1e-9, "step %d", i)
		prev = p
	}
}

func TestPointerSource(t *testing.T) {

	src := NewPointerSource(tracker.Pt(1, 2))
	assert.Equal(t, tracker.Pt(1, 2), src.Position(0))

	src.Set(tracker.Pt(30, 40))
	assert.Equal(t, tracker.Pt(30, 40), src.Position(99))
}

func TestStaticAndFuncSources(t *testing.T) {

	assert.Equal(t, tracker.Pt(5, 6), StaticSource(tracker.Pt(5, 6)).Position(3))

	f := PositionFunc(func(tick int) tracker.Point {
		return tracker.Pt(float64(tick), 0)
	})
	assert.Equal(t, tracker.Pt(4, 0), f.Position(4))
}
