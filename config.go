package kftrack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/swdee/go-kftrack/tracker"
	"github.com/tailscale/hujson"
)

// MinVariance is the smallest noise variance accepted, non positive values
// are clamped to it
const MinVariance = 1e-9

// maxConfigSize is the largest config file LoadConfig will read
const maxConfigSize = 1 << 20

// Config holds the tracking loop settings.  The zero value is not useful,
// start from DefaultConfig
type Config struct {
	// TickRate is the loop rate in Hz
	TickRate float64 `json:"tick_rate"`
	// MeasurementRate is the simulated sensor rate in Hz.  When zero the
	// SamplingDivisor is used instead
	MeasurementRate float64 `json:"measurement_rate,omitempty"`
	// SamplingDivisor takes a real measurement every N ticks
	SamplingDivisor int `json:"sampling_divisor"`
	// ProcessVariance is the diagonal of the process noise covariance
	ProcessVariance float64 `json:"process_variance"`
	// MeasurementVariance is the diagonal of the measurement noise
	// covariance and the variance of the simulated sensor noise
	MeasurementVariance float64 `json:"measurement_variance"`
	// Model selects the motion model order
	Model tracker.ModelOrder `json:"model"`
	// Fallback selects the behaviour on ticks without a real measurement
	Fallback tracker.FallbackMode `json:"fallback"`
	// FallbackNoise adds noise to synthesized measurements
	FallbackNoise bool `json:"fallback_noise"`
	// SensorNoise adds noise to the raw position to form the measurement
	SensorNoise bool `json:"sensor_noise"`
	// Width and Height define the viewport positions are clamped to
	Width  int `json:"width"`
	Height int `json:"height"`
	// TrailSize is the number of most recent points kept per track
	TrailSize int `json:"trail_size"`
	// Seed seeds the noise generators
	Seed uint64 `json:"seed"`
	// Paused starts the loop paused
	Paused bool `json:"paused"`
}

// DefaultConfig returns the default settings
func DefaultConfig() Config {
	return Config{
		TickRate:            50,
		SamplingDivisor:     1,
		ProcessVariance:     1e-5,
		MeasurementVariance: 50,
		Model:               tracker.ConstantAcceleration,
		Fallback:            tracker.FallbackPredictOnly,
		SensorNoise:         true,
		Width:               640,
		Height:              480,
		TrailSize:           tracker.DefaultTrackSize,
		Seed:                1,
	}
}

// LoadConfig reads a config file over the defaults.  The file is JSON and
// may contain comments and trailing commas.  Fields omitted keep their
// default value.  The result is clamped
func LoadConfig(path string) (Config, error) {

	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)

	if ext := filepath.Ext(cleanPath); ext != ".json" && ext != ".hujson" {
		return cfg, fmt.Errorf("config file must have .json or .hujson extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)

	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}

	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)

	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err = ParseConfig(data)

	if err != nil {
		return cfg, fmt.Errorf("%s: %w", cleanPath, err)
	}

	return cfg, nil
}

// ParseConfig decodes config data over the defaults and clamps the result
func ParseConfig(data []byte) (Config, error) {

	cfg := DefaultConfig()

	std, err := hujson.Standardize(data)

	if err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := json.Unmarshal(std, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Clamp()

	return cfg, nil
}

// Clamp corrects out of range values so they can never reach matrix
// construction or the measurement gate.  It returns the names of the fields
// that were changed
func (c *Config) Clamp() []string {

	var changed []string

	fix := func(name string, bad bool, apply func()) {
		if bad {
			apply()
			changed = append(changed, name)
		}
	}

	def := DefaultConfig()

	fix("tick_rate", c.TickRate <= 0, func() { c.TickRate = 1 })
	fix("measurement_rate", c.MeasurementRate < 0, func() { c.MeasurementRate = 0 })
	fix("sampling_divisor", c.SamplingDivisor < 1, func() { c.SamplingDivisor = 1 })
	fix("process_variance", !(c.ProcessVariance > 0), func() { c.ProcessVariance = MinVariance })
	fix("measurement_variance", !(c.MeasurementVariance > 0), func() { c.MeasurementVariance = MinVariance })
	fix("model", c.Model != tracker.ConstantVelocity && c.Model != tracker.ConstantAcceleration,
		func() { c.Model = def.Model })
	fix("fallback", c.Fallback != tracker.FallbackPredictOnly && c.Fallback != tracker.FallbackSynthesize,
		func() { c.Fallback = def.Fallback })
	fix("width", c.Width < 1, func() { c.Width = 1 })
	fix("height", c.Height < 1, func() { c.Height = 1 })
	fix("trail_size", c.TrailSize < 1, func() { c.TrailSize = def.TrailSize })

	for _, name := range changed {
		Logf("config: clamped out of range %s", name)
	}

	return changed
}

// SkipInterval returns the number of ticks between real measurements
func (c Config) SkipInterval() int {
	if c.MeasurementRate > 0 {
		return tracker.SkipInterval(c.TickRate, c.MeasurementRate)
	}
	if c.SamplingDivisor < 1 {
		return 1
	}
	return c.SamplingDivisor
}

// TickInterval returns the scheduler period, 1000/TickRate milliseconds
func (c Config) TickInterval() time.Duration {

	if c.TickRate <= 0 {
		return time.Second
	}

	ms := int(1000.0 / c.TickRate)

	if ms < 1 {
		ms = 1
	}

	return time.Duration(ms) * time.Millisecond
}
