package kftrack

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-kftrack/tracker"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Empty(t, cfg.Clamp(), "defaults must already be in range")
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 1, cfg.SkipInterval())
	assert.Equal(t, tracker.ConstantAcceleration, cfg.Model)
	assert.Equal(t, tracker.FallbackPredictOnly, cfg.Fallback)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		// simulate a 10Hz sensor on a 50Hz loop
		"tick_rate": 50,
		"measurement_rate": 10,
		"model": "velocity",
		"fallback": "synthesize",
		"fallback_noise": true,
		"measurement_variance": 10,
		"process_variance": 1e-4,
	}`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.SkipInterval())
	assert.Equal(t, tracker.ConstantVelocity, cfg.Model)
	assert.Equal(t, tracker.FallbackSynthesize, cfg.Fallback)
	assert.True(t, cfg.FallbackNoise)
	assert.Equal(t, 10.0, cfg.MeasurementVariance)
	assert.Equal(t, 1e-4, cfg.ProcessVariance)

	// untouched fields keep their defaults
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, tracker.DefaultTrackSize, cfg.TrailSize)
	assert.True(t, cfg.SensorNoise)
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig([]byte(`{"tick_rate": `))
	assert.Error(t, err)

	_, err = ParseConfig([]byte(`{"model": "jerk"}`))
	assert.ErrorIs(t, err, tracker.ErrUnknownModel)

	_, err = ParseConfig([]byte(`{"fallback": "guess"}`))
	assert.ErrorIs(t, err, tracker.ErrUnknownFallback)
}

func TestConfigClamp(t *testing.T) {
	t.Parallel()

	cfg := Config{
		TickRate:            0,
		MeasurementRate:     -1,
		SamplingDivisor:     -4,
		ProcessVariance:     -1,
		MeasurementVariance: 0,
		Width:               0,
		Height:              -1,
	}

	changed := cfg.Clamp()

	assert.ElementsMatch(t, []string{
		"tick_rate", "measurement_rate", "sampling_divisor", "process_variance",
		"measurement_variance", "model", "width", "height", "trail_size",
	}, changed)

	assert.Equal(t, 1.0, cfg.TickRate)
	assert.Equal(t, 0.0, cfg.MeasurementRate)
	assert.Equal(t, 1, cfg.SkipInterval())
	assert.Equal(t, MinVariance, cfg.ProcessVariance)
	assert.Equal(t, MinVariance, cfg.MeasurementVariance)
	assert.Equal(t, tracker.ConstantAcceleration, cfg.Model)
	assert.Equal(t, 1, cfg.Width)
	assert.Equal(t, 1, cfg.Height)
	assert.Equal(t, tracker.DefaultTrackSize, cfg.TrailSize)
	assert.Equal(t, time.Second, cfg.TickInterval())
}

func TestTickInterval(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	cfg.TickRate = 30
	assert.Equal(t, 33*time.Millisecond, cfg.TickInterval())

	cfg.TickRate = 5000
	assert.Equal(t, time.Millisecond, cfg.TickInterval())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path := filepath.Join(dir, "track.hujson")
	require.NoError(t, os.WriteFile(path, []byte(`{"sampling_divisor": 4, /* slow */ }`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.SkipInterval())

	bad := filepath.Join(dir, "track.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`tick_rate: 5`), 0o600))

	_, err = LoadConfig(bad)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
