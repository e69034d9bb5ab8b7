// Package robot implements the collaborators the exploration controller
// drives: the telemetry line codec, a serial link to a physical robot, a
// replay of recorded telemetry, and a real-time pacer.
package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lightseeker/internal/explore"
)

// ErrMalformedFrame is returned for telemetry lines that cannot be turned
// into a sample.
var ErrMalformedFrame = errors.New("malformed telemetry frame")

// Proximity sensor layout of the e-puck: ps0..ps7 clockwise from front-right.
const (
	leftSensor       = 5
	leftCornerSensor = 6
	frontSensor      = 7
	proximitySensors = 8
)

// StopCommand halts both motors.
const StopCommand = "STOP"

// Frame is one telemetry line as emitted by the robot.
type Frame struct {
	Time   float64   `json:"t"`   // simulation time, seconds
	Ranges []float64 `json:"ps"`  // proximity readings ps0..ps7
	Lights []float64 `json:"ls"`  // light sensors, ls0 first
	GPS    []float64 `json:"gps"` // x, y, z
}

// ParseFrame decodes a single JSON telemetry line.
func ParseFrame(line string) (Frame, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Frame{}, fmt.Errorf("%w: expected JSON object, got %q", ErrMalformedFrame, line)
	}
	var f Frame
	if err := json.Unmarshal([]byte(line), &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return f, nil
}

// Sample converts the frame into a controller sample.
func (f Frame) Sample() (explore.Sample, error) {
	if len(f.Ranges) != proximitySensors {
		return explore.Sample{}, fmt.Errorf("%w: want %d proximity readings, got %d", ErrMalformedFrame, proximitySensors, len(f.Ranges))
	}
	if len(f.Lights) == 0 {
		return explore.Sample{}, fmt.Errorf("%w: no light reading", ErrMalformedFrame)
	}
	if len(f.GPS) != 3 {
		return explore.Sample{}, fmt.Errorf("%w: want 3 gps values, got %d", ErrMalformedFrame, len(f.GPS))
	}
	return explore.Sample{
		FrontRange:      f.Ranges[frontSensor],
		LeftRange:       f.Ranges[leftSensor],
		LeftCornerRange: f.Ranges[leftCornerSensor],
		Light:           f.Lights[0],
		Position:        r3.Vec{X: f.GPS[0], Y: f.GPS[1], Z: f.GPS[2]},
		Time:            f.Time,
	}, nil
}

// DecodeSample parses a telemetry line straight into a sample.
func DecodeSample(line string) (explore.Sample, error) {
	f, err := ParseFrame(line)
	if err != nil {
		return explore.Sample{}, err
	}
	return f.Sample()
}

// EncodeSample renders s as a telemetry line. Sensors the controller does
// not read are written as zero.
func EncodeSample(s explore.Sample) (string, error) {
	ranges := make([]float64, proximitySensors)
	ranges[frontSensor] = s.FrontRange
	ranges[leftSensor] = s.LeftRange
	ranges[leftCornerSensor] = s.LeftCornerRange
	b, err := json.Marshal(Frame{
		Time:   s.Time,
		Ranges: ranges,
		Lights: []float64{s.Light},
		GPS:    []float64{s.Position.X, s.Position.Y, s.Position.Z},
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatVelocity renders a wheel velocity command.
func FormatVelocity(left, right float64) string {
	return fmt.Sprintf("V %.4f %.4f", left, right)
}
