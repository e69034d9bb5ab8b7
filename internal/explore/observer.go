package explore

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lightseeker/internal/monitoring"
)

// Observer receives the controller's progress events. Implementations must
// not block; they are called from inside a tick.
type Observer interface {
	// DeadEndRecorded is called after each record is appended to memory.
	DeadEndRecorded(rec Record)
	// TargetSelected is called once, when memory first becomes full.
	TargetSelected(target Record)
	// TargetReached is called once, with the position that satisfied the
	// arrival check.
	TargetReached(target Record, pos r3.Vec)
}

// LogObserver writes human-readable progress through monitoring.Logf.
type LogObserver struct{}

func (LogObserver) DeadEndRecorded(rec Record) {
	monitoring.Logf("Dead end %d: light intensity %f at x=%f y=%f z=%f",
		rec.Index, rec.Light, rec.Position.X, rec.Position.Y, rec.Position.Z)
}

func (LogObserver) TargetSelected(target Record) {
	monitoring.Logf("Brightest light intensity %f found at dead end %d (x=%f y=%f z=%f)",
		target.Light, target.Index, target.Position.X, target.Position.Y, target.Position.Z)
}

func (LogObserver) TargetReached(target Record, pos r3.Vec) {
	monitoring.Logf("Robot at position with brightest light intensity reached: dead end %d (x=%f y=%f z=%f)",
		target.Index, pos.X, pos.Y, pos.Z)
}

// MultiObserver fans every event out to each member in order.
type MultiObserver []Observer

func (m MultiObserver) DeadEndRecorded(rec Record) {
	for _, o := range m {
		o.DeadEndRecorded(rec)
	}
}

func (m MultiObserver) TargetSelected(target Record) {
	for _, o := range m {
		o.TargetSelected(target)
	}
}

func (m MultiObserver) TargetReached(target Record, pos r3.Vec) {
	for _, o := range m {
		o.TargetReached(target, pos)
	}
}

type nopObserver struct{}

func (nopObserver) DeadEndRecorded(Record)       {}
func (nopObserver) TargetSelected(Record)        {}
func (nopObserver) TargetReached(Record, r3.Vec) {}
