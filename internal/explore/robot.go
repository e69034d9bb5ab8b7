package explore

import (
	"context"
	"errors"
)

// ErrStopped is returned by a StepDriver when no further steps are
// available (simulation ended, telemetry stream closed, replay exhausted).
var ErrStopped = errors.New("step driver stopped")

// SensorProvider supplies the current tick's readings. It is called once
// per tick, after Step.
type SensorProvider interface {
	Sample() (Sample, error)
}

// StepDriver advances time by one control period.
type StepDriver interface {
	Step(ctx context.Context) error
}

// Actuator applies wheel velocity commands.
type Actuator interface {
	SetVelocity(left, right float64) error
}

// Robot bundles the three collaborators a Controller drives. Most drivers
// implement all of them on one type.
type Robot interface {
	StepDriver
	SensorProvider
	Actuator
}
