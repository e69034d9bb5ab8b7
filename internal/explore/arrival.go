package explore

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Arrived reports whether pos lies strictly within tol of target on every
// axis independently.
func Arrived(pos, target r3.Vec, tol float64) bool {
	d := r3.Sub(pos, target)
	return math.Abs(d.X) < tol && math.Abs(d.Y) < tol && math.Abs(d.Z) < tol
}
