package kftrack

import (
	"fmt"
	"strings"

	"github.com/swdee/go-kftrack/tracker"
)

// Command is a reconfiguration request applied to a Loop between ticks
type Command interface {
	// apply changes the loop, it is only ever called from the tick goroutine
	apply(l *Loop)
	String() string
}

// SetProcessVariance changes the process noise variance and resets the
// filter
type SetProcessVariance float64

func (c SetProcessVariance) apply(l *Loop) {
	l.cfg.ProcessVariance = float64(c)
	l.cfg.Clamp()
	l.reinitFilter()
}

func (c SetProcessVariance) String() string {
	return fmt.Sprintf("process_variance=%g", float64(c))
}

// SetMeasurementVariance changes the measurement noise variance and resets
// the filter
type SetMeasurementVariance float64

func (c SetMeasurementVariance) apply(l *Loop) {
	l.cfg.MeasurementVariance = float64(c)
	l.cfg.Clamp()
	l.reinitFilter()
}

func (c SetMeasurementVariance) String() string {
	return fmt.Sprintf("measurement_variance=%g", float64(c))
}

// SetModelOrder switches the motion model and resets the filter
type SetModelOrder tracker.ModelOrder

func (c SetModelOrder) apply(l *Loop) {
	l.cfg.Model = tracker.ModelOrder(c)
	l.cfg.Clamp()
	l.reinitFilter()
}

func (c SetModelOrder) String() string {
	return "model=" + tracker.ModelOrder(c).String()
}

// SetFallbackMode changes the behaviour on ticks without a real measurement
type SetFallbackMode tracker.FallbackMode

func (c SetFallbackMode) apply(l *Loop) {
	l.cfg.Fallback = tracker.FallbackMode(c)
	l.cfg.Clamp()
	l.fallback.Mode = l.cfg.Fallback
}

func (c SetFallbackMode) String() string {
	return "fallback=" + tracker.FallbackMode(c).String()
}

// SetFallbackNoise toggles noise on synthesized measurements
type SetFallbackNoise bool

func (c SetFallbackNoise) apply(l *Loop) {
	l.cfg.FallbackNoise = bool(c)
	l.fallback.AddNoise = bool(c)
}

func (c SetFallbackNoise) String() string {
	return fmt.Sprintf("fallback_noise=%t", bool(c))
}

// SetSensorNoise toggles the simulated sensor noise
type SetSensorNoise bool

func (c SetSensorNoise) apply(l *Loop) {
	l.cfg.SensorNoise = bool(c)
}

func (c SetSensorNoise) String() string {
	return fmt.Sprintf("sensor_noise=%t", bool(c))
}

// SetSamplingDivisor takes a real measurement every N ticks.  It clears
// any measurement rate
type SetSamplingDivisor int

func (c SetSamplingDivisor) apply(l *Loop) {
	l.cfg.SamplingDivisor = int(c)
	l.cfg.MeasurementRate = 0
	l.cfg.Clamp()
	l.gate.SetInterval(l.cfg.SkipInterval())
}

func (c SetSamplingDivisor) String() string {
	return fmt.Sprintf("sampling_divisor=%d", int(c))
}

// SetMeasurementRate sets the simulated sensor rate in Hz
type SetMeasurementRate float64

func (c SetMeasurementRate) apply(l *Loop) {
	l.cfg.MeasurementRate = float64(c)
	l.cfg.Clamp()
	l.gate.SetInterval(l.cfg.SkipInterval())
}

func (c SetMeasurementRate) String() string {
	return fmt.Sprintf("measurement_rate=%g", float64(c))
}

// SetTickRate changes the loop rate in Hz.  The measurement interval is
// recomputed when a measurement rate is configured
type SetTickRate float64

func (c SetTickRate) apply(l *Loop) {
	l.cfg.TickRate = float64(c)
	l.cfg.Clamp()
	l.gate.SetInterval(l.cfg.SkipInterval())
}

func (c SetTickRate) String() string {
	return fmt.Sprintf("tick_rate=%g", float64(c))
}

// SetPaused pauses or resumes the loop
type SetPaused bool

func (c SetPaused) apply(l *Loop) {
	l.paused = bool(c)
}

func (c SetPaused) String() string {
	return fmt.Sprintf("paused=%t", bool(c))
}

// TogglePause flips the paused state
type TogglePause struct{}

func (TogglePause) apply(l *Loop) {
	l.paused = !l.paused
}

func (TogglePause) String() string {
	return "toggle_pause"
}

// ClearTracks empties all trails.  Filter state and tick counters are left
// untouched
type ClearTracks struct{}

func (ClearTracks) apply(l *Loop) {
	l.trail.Reset()
}

func (ClearTracks) String() string {
	return "clear_tracks"
}

// ParseCommand builds a Command from a name and value as received from a
// control surface, eg: "process_variance", "1e-4"
func ParseCommand(name, value string) (Command, error) {

	var (
		cmd Command
		err error
		f   float64
		b   bool
	)

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "process_variance":
		f, err = parseFloat(value)
		cmd = SetProcessVariance(f)
	case "measurement_variance":
		f, err = parseFloat(value)
		cmd = SetMeasurementVariance(f)
	case "model":
		var order tracker.ModelOrder
		order, err = tracker.ParseModelOrder(value)
		cmd = SetModelOrder(order)
	case "fallback":
		var mode tracker.FallbackMode
		mode, err = tracker.ParseFallbackMode(value)
		cmd = SetFallbackMode(mode)
	case "fallback_noise":
		b, err = parseBool(value)
		cmd = SetFallbackNoise(b)
	case "sensor_noise":
		b, err = parseBool(value)
		cmd = SetSensorNoise(b)
	case "sampling_divisor":
		f, err = parseFloat(value)
		cmd = SetSamplingDivisor(int(f))
	case "measurement_rate":
		f, err = parseFloat(value)
		cmd = SetMeasurementRate(f)
	case "tick_rate":
		f, err = parseFloat(value)
		cmd = SetTickRate(f)
	case "paused":
		b, err = parseBool(value)
		cmd = SetPaused(b)
	case "toggle_pause", "pause":
		cmd = TogglePause{}
	case "clear_tracks", "clear":
		cmd = ClearTracks{}
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}

	if err != nil {
		return nil, fmt.Errorf("command %s: %w", name, err)
	}

	return cmd, nil
}
