// Package units converts between the wheel angular velocities the robot is
// commanded in and the linear and turning speeds of its body.
package units

import "math"

// e-puck drive geometry.
const (
	WheelRadius = 0.0205 // metres
	AxleLength  = 0.052  // metres, wheel to wheel
)

// WheelToLinear converts a wheel angular velocity in rad/s to the ground
// speed of that wheel in m/s.
func WheelToLinear(radPerSec float64) float64 {
	return radPerSec * WheelRadius
}

// LinearToWheel converts a ground speed in m/s to the wheel angular
// velocity in rad/s that produces it.
func LinearToWheel(mps float64) float64 {
	return mps / WheelRadius
}

// BodyVelocity returns the forward speed (m/s) and turn rate (rad/s,
// positive counter-clockwise) of a differential-drive body whose wheels
// turn at left and right rad/s.
func BodyVelocity(left, right float64) (linear, angular float64) {
	vl, vr := WheelToLinear(left), WheelToLinear(right)
	return (vl + vr) / 2, (vr - vl) / AxleLength
}

// DegreesPerSecond converts a turn rate from rad/s.
func DegreesPerSecond(radPerSec float64) float64 {
	return radPerSec * 180 / math.Pi
}
