package kftrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-kftrack/tracker"
)

func init() {
	SetLogger(nil)
}

// testConfig is the stationary point scenario used throughout the tests
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Model = tracker.ConstantVelocity
	cfg.ProcessVariance = 1e-4
	cfg.MeasurementVariance = 10
	cfg.SensorNoise = false
	return cfg
}

func TestLoopTrackLengths(t *testing.T) {
	t.Parallel()

	loop := NewLoop(DefaultConfig(), NewLissajousSource(640, 480))

	for i := 1; i <= 1200; i++ {
		_, ran, err := loop.Tick()
		require.NoError(t, err)
		require.True(t, ran)

		for _, cat := range tracker.Categories {
			require.Equal(t, min(i, 1000), loop.Trail().Len(cat), "tick %d %v", i, cat)
		}
	}

	assert.Equal(t, 1200, loop.TickCount())
}

func TestLoopMeasurementEveryTick(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.TickRate = 50
	cfg.MeasurementRate = 50

	loop := NewLoop(cfg, StaticSource(tracker.Pt(100, 100)))

	for i := 0; i < 20; i++ {
		snap, _, err := loop.Tick()
		require.NoError(t, err)

		assert.True(t, snap.Measurement, "tick %d", i)
		assert.Equal(t, i, snap.Tick)
		assert.Equal(t, i, snap.LastMeasurementTick)
		assert.Equal(t, i, loop.LastMeasurementTick())
	}
}

func TestLoopPredictOnlyDivisor(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SamplingDivisor = 5
	cfg.Fallback = tracker.FallbackPredictOnly
	cfg.SensorNoise = true

	loop := NewLoop(cfg, NewLissajousSource(640, 480))

	last := -1
	var advances []int

	for i := 0; i < 25; i++ {
		prevTrace := loop.Filter().CovarianceTrace()

		snap, _, err := loop.Tick()
		require.NoError(t, err)

		if snap.LastMeasurementTick != last {
			advances = append(advances, snap.Tick)
			last = snap.LastMeasurementTick
			assert.True(t, snap.Measurement)
			continue
		}

		// the filtered point is exactly the prediction and the covariance
		// only grew by the prediction step
		assert.False(t, snap.Measurement)
		assert.Equal(t, snap.Prediction, snap.Estimate)

		filtered, ok := loop.Trail().Last(tracker.Filtered)
		require.True(t, ok)
		assert.Equal(t, snap.Prediction, filtered)
		assert.Greater(t, snap.CovarianceTrace, prevTrace)
		assert.Equal(t, tracker.Predicted, loop.Filter().Phase())
	}

	assert.Equal(t, []int{0, 5, 10, 15, 20}, advances)
}

func TestLoopSynthesizeFallback(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SamplingDivisor = 3
	cfg.Fallback = tracker.FallbackSynthesize

	loop := NewLoop(cfg, StaticSource(tracker.Pt(200, 100)))

	for i := 0; i < 12; i++ {
		snap, _, err := loop.Tick()
		require.NoError(t, err)

		assert.Equal(t, i%3 == 0, snap.Measurement, "tick %d", i)
		assert.Equal(t, tracker.Corrected, loop.Filter().Phase())

		if !snap.Measurement {
			// a noiseless synthetic measurement of the prediction does not
			// move the estimate
			assert.InDelta(t, snap.Prediction.X, snap.Estimate.X, 1e-9)
			assert.InDelta(t, snap.Prediction.Y, snap.Estimate.Y, 1e-9)
			assert.Equal(t, i-i%3, snap.LastMeasurementTick)
		}
	}
}

// TestLoopConvergence runs the stationary point scenario, the filtered
// track heads from the origin toward the point
func TestLoopConvergence(t *testing.T) {
	t.Parallel()

	target := tracker.Pt(100, 100)
	loop := NewLoop(testConfig(), StaticSource(target))

	for i := 0; i < 10; i++ {
		_, _, err := loop.Tick()
		require.NoError(t, err)
	}

	filtered := loop.Trail().GetPoints(tracker.Filtered)
	require.Len(t, filtered, 10)

	assert.InDelta(t, 1.961745473083597, filtered[0].X, 1e-9)
	assert.InDelta(t, filtered[0].X, filtered[0].Y, 1e-9)

	for i := 1; i < 8; i++ {
		assert.Less(t, filtered[i].Dist(target), filtered[i-1].Dist(target), "tick %d", i)
	}

	for i := 0; i < 400; i++ {
		_, _, err := loop.Tick()
		require.NoError(t, err)
	}

	last, ok := loop.Trail().Last(tracker.Filtered)
	require.True(t, ok)
	assert.InDelta(t, 0, last.Dist(target), 0.01)
}

func TestLoopPause(t *testing.T) {
	t.Parallel()

	loop := NewLoop(testConfig(), StaticSource(tracker.Pt(10, 10)))

	for i := 0; i < 3; i++ {
		_, _, err := loop.Tick()
		require.NoError(t, err)
	}

	state := loop.Filter().State()

	loop.Submit(TogglePause{})

	for i := 0; i < 5; i++ {
		_, ran, err := loop.Tick()
		require.NoError(t, err)
		assert.False(t, ran)
	}

	assert.True(t, loop.Paused())
	assert.Equal(t, 3, loop.TickCount())
	assert.Equal(t, 3, loop.Trail().Len(tracker.Filtered))
	assert.Equal(t, state, loop.Filter().State())

	loop.Submit(SetPaused(false))

	_, ran, err := loop.Tick()
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 4, loop.TickCount())
}

func TestLoopClearTracks(t *testing.T) {
	t.Parallel()

	loop := NewLoop(testConfig(), NewLissajousSource(640, 480))

	for i := 0; i < 30; i++ {
		_, _, err := loop.Tick()
		require.NoError(t, err)
	}

	state := loop.Filter().State()
	last := loop.LastMeasurementTick()

	// pause in the same batch so the clear can be observed before the next
	// tick appends again
	loop.Submit(ClearTracks{})
	loop.Submit(SetPaused(true))

	_, ran, err := loop.Tick()
	require.NoError(t, err)
	require.False(t, ran)

	for _, cat := range tracker.Categories {
		assert.Equal(t, 0, loop.Trail().Len(cat), "%v", cat)
		_, ok := loop.Trail().Last(cat)
		assert.False(t, ok)
	}

	assert.Equal(t, state, loop.Filter().State())
	assert.Equal(t, 30, loop.TickCount())
	assert.Equal(t, last, loop.LastMeasurementTick())
}

func TestLoopReconfigure(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	loop := NewLoop(cfg, StaticSource(tracker.Pt(100, 100)))

	for i := 0; i < 5; i++ {
		_, _, err := loop.Tick()
		require.NoError(t, err)
	}

	loop.Submit(SetModelOrder(tracker.ConstantAcceleration))
	loop.Submit(SetPaused(true))

	_, _, err := loop.Tick()
	require.NoError(t, err)

	// reinitialized with the larger state and no history
	assert.Equal(t, tracker.ConstantAcceleration, loop.Filter().Order())
	assert.Equal(t, make([]float64, 6), loop.Filter().State())
	assert.InDelta(t, 0.6, loop.Filter().CovarianceTrace(), 1e-12)
	assert.Equal(t, 5, loop.Trail().Len(tracker.Filtered), "trails survive reinitialize")

	loop.Submit(SetMeasurementVariance(-3))
	loop.Submit(SetProcessVariance(0))
	loop.Submit(SetPaused(false))

	snap, ran, err := loop.Tick()
	require.NoError(t, err)
	require.True(t, ran)

	assert.Equal(t, MinVariance, loop.Filter().MeasurementVariance())
	assert.Equal(t, MinVariance, loop.Filter().ProcessVariance())
	assert.Equal(t, tracker.ConstantAcceleration, snap.Model)
	assert.Len(t, loop.Filter().State(), 6)
}

func TestLoopGateCommands(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.TickRate = 50
	loop := NewLoop(cfg, StaticSource(tracker.Pt(1, 1)))

	loop.Submit(SetMeasurementRate(10))
	_, _, err := loop.Tick()
	require.NoError(t, err)
	assert.Equal(t, 5, loop.Config().SkipInterval())

	loop.Submit(SetTickRate(100))
	_, _, err = loop.Tick()
	require.NoError(t, err)
	assert.Equal(t, 10, loop.Config().SkipInterval())

	loop.Submit(SetSamplingDivisor(0))
	_, _, err = loop.Tick()
	require.NoError(t, err)
	assert.Equal(t, 1, loop.Config().SkipInterval())
	assert.Equal(t, float64(0), loop.Config().MeasurementRate)
}

// offsetNoise adds a fixed offset so noise paths are deterministic
type offsetNoise tracker.Point

func (o offsetNoise) Sample(float64) tracker.Point {
	return tracker.Point(o)
}

func TestLoopSensorNoise(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SensorNoise = true
	cfg.Width = 50
	cfg.Height = 50

	loop := NewLoop(cfg, StaticSource(tracker.Pt(80, -5)))
	loop.SetSensorNoiseSource(offsetNoise(tracker.Pt(2, 3)))

	snap, _, err := loop.Tick()
	require.NoError(t, err)

	assert.Equal(t, tracker.Pt(50, 0), snap.Raw, "raw position is clamped to the viewport")
	assert.Equal(t, tracker.Pt(52, 3), snap.Measured)

	loop.Submit(SetSensorNoise(false))

	snap, _, err = loop.Tick()
	require.NoError(t, err)
	assert.Equal(t, snap.Raw, snap.Measured)
}

func TestLoopPublishers(t *testing.T) {
	t.Parallel()

	loop := NewLoop(testConfig(), StaticSource(tracker.Pt(5, 5)))

	var got []Snapshot
	loop.AddPublisher(PublisherFunc(func(s Snapshot) {
		got = append(got, s)
	}))

	for i := 0; i < 3; i++ {
		_, _, err := loop.Tick()
		require.NoError(t, err)
	}

	loop.Submit(SetPaused(true))
	_, _, err := loop.Tick()
	require.NoError(t, err)

	require.Len(t, got, 3, "paused ticks are not published")
	assert.Equal(t, 2, got[2].Tick)
	assert.Equal(t, tracker.Pt(5, 5), got[2].Raw)
	assert.Same(t, loop.Trail(), got[2].Trail)
}
