package explore

// DeadEndDetector turns a stream of front-wall observations into discrete
// dead-end events. A sustained wall contact is collapsed into pulses at
// most one per debounce gap; two counted pulses inside the stale window
// make a dead end.
//
// A DeadEndDetector is not safe for concurrent use.
type DeadEndDetector struct {
	debounceGap float64
	staleWindow float64

	pending     int     // counted detections in the open window, 0..2
	windowStart float64 // time of the most recent counted detection
}

// NewDeadEndDetector returns an idle detector.
func NewDeadEndDetector(debounceGap, staleWindow float64) *DeadEndDetector {
	return &DeadEndDetector{
		debounceGap: debounceGap,
		staleWindow: staleWindow,
	}
}

// Observe advances the detector by one tick and reports whether a dead end
// fired. t is the current time in seconds and must not decrease between
// calls.
func (d *DeadEndDetector) Observe(frontWall bool, t float64) bool {
	// Expire before counting so that a contact arriving after a long
	// silence opens a fresh window instead of pairing with the old one.
	if d.pending > 0 && t-d.windowStart > d.staleWindow {
		d.pending = 0
	}

	if frontWall && (d.pending == 0 || t-d.windowStart > d.debounceGap) {
		d.windowStart = t
		d.pending++
	}

	if d.pending >= 2 {
		d.pending = 0
		return true
	}
	return false
}

// Pending returns the number of counted detections in the open window.
func (d *DeadEndDetector) Pending() int {
	return d.pending
}

// WindowStart returns the time of the most recent counted detection.
// It is meaningless while Pending is zero.
func (d *DeadEndDetector) WindowStart() float64 {
	return d.windowStart
}

// Reset returns the detector to idle.
func (d *DeadEndDetector) Reset() {
	d.pending = 0
	d.windowStart = 0
}
