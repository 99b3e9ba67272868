package tracker

import (
	"fmt"
	"strings"
)

// FallbackMode is the behaviour used on ticks where no real measurement is
// due
type FallbackMode int

const (
	// FallbackPredictOnly skips the correction and publishes the prediction
	FallbackPredictOnly FallbackMode = iota
	// FallbackSynthesize feeds the prediction back through Correct as a
	// synthetic measurement
	FallbackSynthesize
)

// String returns the config name of the fallback mode
func (m FallbackMode) String() string {
	switch m {
	case FallbackPredictOnly:
		return "predict"
	case FallbackSynthesize:
		return "synthesize"
	}
	return fmt.Sprintf("FallbackMode(%d)", int(m))
}

// ParseFallbackMode converts a config name into a FallbackMode
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "predict", "predict-only":
		return FallbackPredictOnly, nil
	case "synthesize", "synthesise", "fake":
		return FallbackSynthesize, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFallback, s)
}

// MarshalText implements encoding.TextMarshaler
func (m FallbackMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *FallbackMode) UnmarshalText(b []byte) error {
	v, err := ParseFallbackMode(string(b))

	if err != nil {
		return err
	}

	*m = v
	return nil
}

// Fallback produces the estimate for a tick without a real measurement
type Fallback struct {
	Mode FallbackMode
	// AddNoise adds zero mean Gaussian noise with the measurement noise
	// variance to a synthesized measurement
	AddNoise bool
	// Noise is the source of synthesized measurement noise
	Noise NoiseSource
}

// Apply returns the estimate for the tick given the prediction just made
// by kf.  Only the synthesize mode touches the filter, and neither mode
// counts as a real measurement
func (f *Fallback) Apply(kf *KalmanFilter, prediction Point) (Point, error) {

	if f.Mode == FallbackPredictOnly {
		return prediction, nil
	}

	z := prediction

	if f.AddNoise && f.Noise != nil {
		z = z.Add(f.Noise.Sample(kf.MeasurementVariance()))
	}

	est, err := kf.Correct(z)

	if err != nil {
		return prediction, fmt.Errorf("fallback correction: %w", err)
	}

	return est, nil
}
