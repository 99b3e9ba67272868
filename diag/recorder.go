// Package diag records per tick filter diagnostics and renders them as a
// chart image for the frame overlay or as an HTML page.
package diag

import (
	"sync"

	"github.com/swdee/go-kftrack"
	"github.com/swdee/go-kftrack/tracker"
)

// Sample is the diagnostics captured for a single tick
type Sample struct {
	Tick int
	// CovarianceTrace is the trace of the error covariance after the tick
	CovarianceTrace float64
	// Innovation is the distance between the measurement and the
	// prediction, only set on ticks with a real measurement
	Innovation float64
	// Measurement is true when a real measurement was used
	Measurement bool
}

// Recorder is a kftrack.Publisher keeping the most recent samples.  It is
// safe for concurrent use
type Recorder struct {
	mu sync.Mutex
	// trace and innovation reuse the bounded track with X as the tick
	trace      *tracker.Track
	innovation *tracker.Track
	last       Sample
	count      int
}

// NewRecorder returns a Recorder holding at most size samples
func NewRecorder(size int) *Recorder {
	return &Recorder{
		trace:      tracker.NewTrack(size),
		innovation: tracker.NewTrack(size),
	}
}

// Publish records the snapshot diagnostics
func (r *Recorder) Publish(snap kftrack.Snapshot) {

	s := Sample{
		Tick:            snap.Tick,
		CovarianceTrace: snap.CovarianceTrace,
		Measurement:     snap.Measurement,
	}

	if snap.Measurement {
		s.Innovation = snap.Measured.Dist(snap.Prediction)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.trace.Add(tracker.Pt(float64(s.Tick), s.CovarianceTrace))

	if s.Measurement {
		r.innovation.Add(tracker.Pt(float64(s.Tick), s.Innovation))
	}

	r.last = s
	r.count++
}

// Last returns the most recent sample.  The bool is false before the first
// tick is recorded
func (r *Recorder) Last() (Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.count > 0
}

// Count returns the number of ticks recorded
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Series returns copies of the covariance trace and innovation series as
// tick, value points
func (r *Recorder) Series() (trace, innovation []tracker.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trace.Points(), r.innovation.Points()
}

// Reset discards all samples
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trace.Clear()
	r.innovation.Clear()
	r.last = Sample{}
	r.count = 0
}
