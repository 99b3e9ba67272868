package kftrack

import (
	"math"
	"sync"

	"github.com/swdee/go-kftrack/tracker"
)

// PositionSource supplies the true position of the tracked point for a
// tick.  The loop clamps the result to the viewport
type PositionSource interface {
	Position(tick int) tracker.Point
}

// PositionFunc adapts a function to a PositionSource
type PositionFunc func(tick int) tracker.Point

// Position calls f(tick)
func (f PositionFunc) Position(tick int) tracker.Point {
	return f(tick)
}

// StaticSource reports the same position on every tick
type StaticSource tracker.Point

// Position returns the fixed point
func (s StaticSource) Position(int) tracker.Point {
	return tracker.Point(s)
}

// PointerSource reports the last position set by a control surface, such
// as a mouse cursor.  It is safe for concurrent use
type PointerSource struct {
	mu  sync.Mutex
	pos tracker.Point
}

// NewPointerSource returns a PointerSource starting at p
func NewPointerSource(p tracker.Point) *PointerSource {
	return &PointerSource{pos: p}
}

// Set updates the position reported on the next tick
func (s *PointerSource) Set(p tracker.Point) {
	s.mu.Lock()
	s.pos = p
	s.mu.Unlock()
}

// Position returns the last position set
func (s *PointerSource) Position(int) tracker.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// LissajousSource moves the point along a Lissajous curve filling the
// viewport, a smooth path with continuously changing acceleration
type LissajousSource struct {
	Width, Height float64
	// A and B are the x and y frequencies
	A, B float64
	// Period is the number of ticks for one cycle of frequency 1
	Period float64
	// Margin keeps the curve away from the viewport edge
	Margin float64
}

// NewLissajousSource returns a 3:2 curve inside a width x height viewport
func NewLissajousSource(width, height int) *LissajousSource {
	return &LissajousSource{
		Width:  float64(width),
		Height: float64(height),
		A:      3,
		B:      2,
		Period: 1000,
		Margin: 20,
	}
}

// Position returns the point on the curve for tick
func (s *LissajousSource) Position(tick int) tracker.Point {

	period := s.Period
	if period <= 0 {
		period = 1000
	}

	t := 2 * math.Pi * float64(tick) / period

	rx := s.Width/2 - s.Margin
	ry := s.Height/2 - s.Margin

	return tracker.Point{
		X: s.Width/2 + rx*math.Sin(s.A*t+math.Pi/2),
		Y: s.Height/2 + ry*math.Sin(s.B*t),
	}
}

// RandomWalkSource moves the point with a random acceleration each tick,
// bouncing off the viewport edges
type RandomWalkSource struct {
	Width, Height float64
	// Variance of the per tick acceleration
	Variance float64
	// MaxSpeed limits the speed in pixels per tick
	MaxSpeed float64
	noise    tracker.NoiseSource
	pos, vel tracker.Point
}

// NewRandomWalkSource returns a random walk starting in the middle of a
// width x height viewport
func NewRandomWalkSource(width, height int, seed uint64) *RandomWalkSource {
	return &RandomWalkSource{
		Width:    float64(width),
		Height:   float64(height),
		Variance: 0.25,
		MaxSpeed: 8,
		noise:    tracker.NewGaussianNoise(seed),
		pos:      tracker.Pt(float64(width)/2, float64(height)/2),
	}
}

// Position advances the walk by one step and returns the new position.  The
// tick argument is ignored, each call is one step
func (s *RandomWalkSource) Position(int) tracker.Point {

	s.vel = s.vel.Add(s.noise.Sample(s.Variance))

	if speed := math.Hypot(s.vel.X, s.vel.Y); speed > s.MaxSpeed && speed > 0 {
		s.vel.X *= s.MaxSpeed / speed
		s.vel.Y *= s.MaxSpeed / speed
	}

	s.pos = s.pos.Add(s.vel)

	// bounce off the edges
	if s.pos.X < 0 || s.pos.X > s.Width {
		s.vel.X = -s.vel.X
	}
	if s.pos.Y < 0 || s.pos.Y > s.Height {
		s.vel.Y = -s.vel.Y
	}

	s.pos = s.pos.Clamp(s.Width, s.Height)

	return s.pos
}
