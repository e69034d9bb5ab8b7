// Package explore holds the per-tick decision logic of the exploration
// controller: sensor thresholding, dead-end detection, left-hand wall
// following, the bounded dead-end memory, brightest-target selection and
// the arrival check. Everything here is synchronous and owned by a single
// Controller; sensor and actuator hardware sit behind the narrow
// collaborator interfaces declared in robot.go.
package explore

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is one control cycle's worth of sensor readings.
type Sample struct {
	FrontRange      float64 // front-facing proximity sensor (raw counts)
	LeftRange       float64 // left-facing proximity sensor
	LeftCornerRange float64 // left-corner proximity sensor
	Light           float64 // ambient light intensity
	Position        r3.Vec  // absolute position (GPS), metres
	Time            float64 // simulation time, seconds
}

// Speeds is a pair of wheel velocity commands in rad/s.
type Speeds struct {
	Left  float64
	Right float64
}

func (s Speeds) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", s.Left, s.Right)
}

// Command is the output of a single Tick.
type Command struct {
	Speeds
	// DeadEnd is set on ticks where the detector fired. Speeds are then
	// carried over from the previous tick.
	DeadEnd bool
	// Stop is set once the target has been reached. The loop writes
	// Speeds, then a zero command, and terminates.
	Stop bool
}
