package tracker

import "math"

// Gate decides on each tick whether a real measurement is due.  It simulates
// a sensor sampling slower than the tick loop by only allowing a real
// measurement every interval ticks
type Gate struct {
	// interval is the number of ticks between real measurements
	interval int
	// lastTick is the tick of the last real measurement
	lastTick int
	// measured is false until the first real measurement is marked
	measured bool
}

// NewGate returns a Gate allowing a real measurement every divisor ticks.
// A divisor below 1 is clamped to 1
func NewGate(divisor int) *Gate {
	g := &Gate{lastTick: -1}
	g.SetInterval(divisor)
	return g
}

// GateFromRates returns a Gate for a loop running at tickRate Hz with a
// sensor sampling at measurementRate Hz
func GateFromRates(tickRate, measurementRate float64) *Gate {
	return NewGate(SkipInterval(tickRate, measurementRate))
}

// SkipInterval returns floor(tickRate/measurementRate) with a minimum of 1.
// A zero or negative measurement rate, or one faster than the tick rate,
// results in 1
func SkipInterval(tickRate, measurementRate float64) int {

	if measurementRate <= 0 || tickRate <= 0 || measurementRate >= tickRate {
		return 1
	}

	skip := int(math.Floor(tickRate / measurementRate))

	if skip < 1 {
		return 1
	}

	return skip
}

// SetInterval changes the number of ticks between real measurements
func (g *Gate) SetInterval(divisor int) {
	if divisor < 1 {
		divisor = 1
	}
	g.interval = divisor
}

// Interval returns the number of ticks between real measurements
func (g *Gate) Interval() int {
	return g.interval
}

// Due reports whether a real measurement is due at tick.  The very first
// tick is always due
func (g *Gate) Due(tick int) bool {
	if !g.measured {
		return true
	}
	return tick >= g.lastTick+g.interval
}

// Mark records that a real measurement was used at tick
func (g *Gate) Mark(tick int) {
	g.lastTick = tick
	g.measured = true
}

// LastTick returns the tick of the last real measurement, or -1 if there
// has not been one
func (g *Gate) LastTick() int {
	return g.lastTick
}

// Reset forgets the last real measurement so the next tick is due
func (g *Gate) Reset() {
	g.lastTick = -1
	g.measured = false
}
