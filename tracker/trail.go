package tracker

import "sync"

// DefaultTrackSize is the number of most recent points kept per track
const DefaultTrackSize = 1000

// Category identifies one of the independent tracks kept in a Trail
type Category int

const (
	// Truth is the raw position reported by the position source
	Truth Category = iota
	// Measured is the raw position with simulated sensor noise
	Measured
	// Filtered is the filter estimate
	Filtered

	numCategories
)

// Categories lists every track category in drawing order
var Categories = []Category{Truth, Measured, Filtered}

// String returns the name of the category
func (c Category) String() string {
	switch c {
	case Truth:
		return "truth"
	case Measured:
		return "measured"
	case Filtered:
		return "filtered"
	}
	return "unknown"
}

// Track is a bounded FIFO of points backed by a ring buffer.  When full the
// oldest point is evicted on each Add
type Track struct {
	points []Point
	// head is the index of the oldest point
	head int
	size int
}

// NewTrack returns an empty Track holding at most capacity points
func NewTrack(capacity int) *Track {
	if capacity < 1 {
		capacity = DefaultTrackSize
	}
	return &Track{
		points: make([]Point, capacity),
	}
}

// Add appends p, evicting the oldest point if the track is full
func (t *Track) Add(p Point) {

	if t.size < len(t.points) {
		t.points[(t.head+t.size)%len(t.points)] = p
		t.size++
		return
	}

	// overwrite the oldest point and advance head
	t.points[t.head] = p
	t.head = (t.head + 1) % len(t.points)
}

// Clear removes all points
func (t *Track) Clear() {
	t.head = 0
	t.size = 0
}

// Len returns the number of points held
func (t *Track) Len() int {
	return t.size
}

// Cap returns the maximum number of points held
func (t *Track) Cap() int {
	return len(t.points)
}

// Last returns the most recently added point.  The bool is false when the
// track is empty
func (t *Track) Last() (Point, bool) {
	if t.size == 0 {
		return Point{}, false
	}
	return t.points[(t.head+t.size-1)%len(t.points)], true
}

// Points returns a copy of the points ordered oldest first
func (t *Track) Points() []Point {
	out := make([]Point, t.size)

	for i := 0; i < t.size; i++ {
		out[i] = t.points[(t.head+i)%len(t.points)]
	}

	return out
}

// Trail keeps the truth, measured and filtered track history used for
// drawing.  It is safe for concurrent use so a renderer may read it while
// the tracking loop writes
type Trail struct {
	// size is the maximum number of most recent points kept per track
	size   int
	tracks [numCategories]*Track
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the maximum
// length of each track
func NewTrail(size int) *Trail {
	if size < 1 {
		size = DefaultTrackSize
	}

	t := &Trail{size: size}

	for i := range t.tracks {
		t.tracks[i] = NewTrack(size)
	}

	return t
}

// Size returns the maximum length of each track
func (t *Trail) Size() int {
	return t.size
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	for _, track := range t.tracks {
		track.Clear()
	}
}

// Add a point to the track of the given category
func (t *Trail) Add(cat Category, p Point) {
	t.Lock()
	defer t.Unlock()

	if track := t.track(cat); track != nil {
		track.Add(p)
	}
}

// GetPoints gets a copy of the point history for a category, oldest first
func (t *Trail) GetPoints(cat Category) []Point {
	t.Lock()
	defer t.Unlock()

	if track := t.track(cat); track != nil {
		return track.Points()
	}

	return nil
}

// Last returns the most recent point of a category.  The bool is false when
// there is nothing to draw yet
func (t *Trail) Last(cat Category) (Point, bool) {
	t.Lock()
	defer t.Unlock()

	if track := t.track(cat); track != nil {
		return track.Last()
	}

	return Point{}, false
}

// Len returns the number of points held for a category
func (t *Trail) Len(cat Category) int {
	t.Lock()
	defer t.Unlock()

	if track := t.track(cat); track != nil {
		return track.Len()
	}

	return 0
}

// track returns the track for cat, callers must hold the lock
func (t *Trail) track(cat Category) *Track {
	if cat < 0 || cat >= numCategories {
		return nil
	}
	return t.tracks[cat]
}
