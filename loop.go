package kftrack

import (
	"fmt"
	"sync"

	"github.com/swdee/go-kftrack/tracker"
)

// Snapshot is the result of a single tick handed to publishers for display
type Snapshot struct {
	// Tick is the index of the tick that produced the snapshot
	Tick int
	// Raw is the true position from the position source
	Raw tracker.Point
	// Measured is Raw with simulated sensor noise
	Measured tracker.Point
	// Prediction is the filter prediction for the tick
	Prediction tracker.Point
	// Estimate is the point appended to the filtered track
	Estimate tracker.Point
	// Measurement is true when a real measurement corrected the filter
	Measurement bool
	// LastMeasurementTick is the tick of the most recent real measurement
	LastMeasurementTick int
	// CovarianceTrace is the trace of the error covariance after the tick
	CovarianceTrace float64
	// Model and Fallback in effect for the tick
	Model    tracker.ModelOrder
	Fallback tracker.FallbackMode
	// Trail holds the track history, it is shared with the loop and safe
	// for concurrent reads
	Trail *tracker.Trail
}

// Publisher consumes snapshots, typically a renderer
type Publisher interface {
	Publish(snap Snapshot)
}

// PublisherFunc adapts a function to a Publisher
type PublisherFunc func(snap Snapshot)

// Publish calls f(snap)
func (f PublisherFunc) Publish(snap Snapshot) {
	f(snap)
}

// Loop is the tracking loop orchestrator.  All filter, gate and counter
// state is owned by the goroutine calling Tick.  Commands may be submitted
// from any goroutine and are applied at the start of the next tick
type Loop struct {
	cfg      Config
	source   PositionSource
	noise    tracker.NoiseSource
	kf       *tracker.KalmanFilter
	gate     *tracker.Gate
	fallback tracker.Fallback
	trail    *tracker.Trail
	// tick is the number of ticks run
	tick   int
	paused bool

	publishers []Publisher

	// mu guards pending
	mu      sync.Mutex
	pending []Command
}

// NewLoop returns a Loop sampling positions from source.  The config is
// clamped before use
func NewLoop(cfg Config, source PositionSource) *Loop {

	cfg.Clamp()

	l := &Loop{
		cfg:    cfg,
		source: source,
		noise:  tracker.NewGaussianNoise(cfg.Seed),
		gate:   tracker.NewGate(cfg.SkipInterval()),
		trail:  tracker.NewTrail(cfg.TrailSize),
		paused: cfg.Paused,
		fallback: tracker.Fallback{
			Mode:     cfg.Fallback,
			AddNoise: cfg.FallbackNoise,
			Noise:    tracker.NewGaussianNoise(cfg.Seed + 1),
		},
	}

	l.kf = tracker.NewKalmanFilter(cfg.Model, cfg.ProcessVariance, cfg.MeasurementVariance)

	return l
}

// SetSensorNoiseSource replaces the simulated sensor noise generator
func (l *Loop) SetSensorNoiseSource(n tracker.NoiseSource) {
	l.noise = n
}

// SetFallbackNoiseSource replaces the synthesized measurement noise
// generator
func (l *Loop) SetFallbackNoiseSource(n tracker.NoiseSource) {
	l.fallback.Noise = n
}

// AddPublisher registers a consumer of tick snapshots
func (l *Loop) AddPublisher(p Publisher) {
	l.publishers = append(l.publishers, p)
}

// Submit queues a command to be applied before the next tick
func (l *Loop) Submit(cmd Command) {
	l.mu.Lock()
	l.pending = append(l.pending, cmd)
	l.mu.Unlock()
}

// drain applies queued commands in submission order
func (l *Loop) drain() {

	l.mu.Lock()
	cmds := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, cmd := range cmds {
		cmd.apply(l)
		Logf("applied command %v", cmd)
	}
}

// reinitFilter rebuilds the filter from the current config.  Trails and
// counters are untouched
func (l *Loop) reinitFilter() {
	l.kf.Reinitialize(l.cfg.Model, l.cfg.ProcessVariance, l.cfg.MeasurementVariance)
}

// Tick runs one iteration of the loop.  The bool result is false when the
// loop is paused and nothing was done
func (l *Loop) Tick() (Snapshot, bool, error) {

	l.drain()

	if l.paused {
		return Snapshot{}, false, nil
	}

	width := float64(l.cfg.Width)
	height := float64(l.cfg.Height)

	// sample the true position and derive the noisy measurement
	raw := l.source.Position(l.tick).Clamp(width, height)
	measured := raw

	if l.cfg.SensorNoise {
		measured = raw.Add(l.noise.Sample(l.cfg.MeasurementVariance))
	}

	l.trail.Add(tracker.Truth, raw)
	l.trail.Add(tracker.Measured, measured)

	prediction := l.kf.Predict()
	due := l.gate.Due(l.tick)

	var (
		estimate tracker.Point
		err      error
	)

	if due {
		estimate, err = l.kf.Correct(measured)

		if err == nil {
			l.gate.Mark(l.tick)
		} else {
			estimate = prediction
			err = fmt.Errorf("tick %d: %w", l.tick, err)
		}

	} else {
		estimate, err = l.fallback.Apply(l.kf, prediction)

		if err != nil {
			err = fmt.Errorf("tick %d: %w", l.tick, err)
		}
	}

	l.trail.Add(tracker.Filtered, estimate)

	snap := Snapshot{
		Tick:                l.tick,
		Raw:                 raw,
		Measured:            measured,
		Prediction:          prediction,
		Estimate:            estimate,
		Measurement:         due && err == nil,
		LastMeasurementTick: l.gate.LastTick(),
		CovarianceTrace:     l.kf.CovarianceTrace(),
		Model:               l.cfg.Model,
		Fallback:            l.cfg.Fallback,
		Trail:               l.trail,
	}

	l.tick++

	for _, p := range l.publishers {
		p.Publish(snap)
	}

	return snap, true, err
}

// Config returns the current config.  Like Filter it must only be used
// from the tick goroutine
func (l *Loop) Config() Config {
	return l.cfg
}

// TickCount returns the number of ticks run
func (l *Loop) TickCount() int {
	return l.tick
}

// LastMeasurementTick returns the tick of the last real measurement, or -1
func (l *Loop) LastMeasurementTick() int {
	return l.gate.LastTick()
}

// Paused reports whether the loop is paused
func (l *Loop) Paused() bool {
	return l.paused
}

// Filter returns the Kalman filter.  It must only be used from the tick
// goroutine
func (l *Loop) Filter() *tracker.KalmanFilter {
	return l.kf
}

// Trail returns the track history
func (l *Loop) Trail() *tracker.Trail {
	return l.trail
}
