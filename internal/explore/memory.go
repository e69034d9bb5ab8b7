package explore

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Record is what the robot remembers about one dead end.
type Record struct {
	Index    int     // 1-based discovery order
	Light    float64 // light intensity at the dead end
	Position r3.Vec
	Time     float64 // simulation time the dead end fired
}

func (r Record) String() string {
	return fmt.Sprintf("dead end %d: light=%f x=%f y=%f z=%f", r.Index, r.Light, r.Position.X, r.Position.Y, r.Position.Z)
}

// Memory is a bounded, append-only log of dead-end records. Once it holds
// Cap records further appends are refused.
type Memory struct {
	records  []Record
	capacity int
}

// NewMemory returns an empty memory holding at most capacity records.
func NewMemory(capacity int) *Memory {
	return &Memory{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}
}

// Append records a dead end. It returns false and leaves the memory
// untouched when the memory is already full.
func (m *Memory) Append(light float64, pos r3.Vec, t float64) (Record, bool) {
	if m.Full() {
		return Record{}, false
	}
	rec := Record{
		Index:    len(m.records) + 1,
		Light:    light,
		Position: pos,
		Time:     t,
	}
	m.records = append(m.records, rec)
	return rec, true
}

// Len returns the number of records written so far.
func (m *Memory) Len() int { return len(m.records) }

// Cap returns the memory bound.
func (m *Memory) Cap() int { return m.capacity }

// Full reports whether the memory has reached its bound.
func (m *Memory) Full() bool { return len(m.records) >= m.capacity }

// At returns the record at 0-based position i.
func (m *Memory) At(i int) (Record, bool) {
	if i < 0 || i >= len(m.records) {
		return Record{}, false
	}
	return m.records[i], true
}

// Records returns a copy of the stored records in discovery order.
func (m *Memory) Records() []Record {
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}
