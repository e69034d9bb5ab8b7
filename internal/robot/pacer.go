package robot

import (
	"context"
	"time"

	"github.com/banshee-data/lightseeker/internal/explore"
	"github.com/banshee-data/lightseeker/internal/monitoring"
	"github.com/banshee-data/lightseeker/internal/timeutil"
)

// Pacer holds each Step of the wrapped driver until the next tick of a
// fixed-period ticker, so a replay runs at the robot's real control rate.
type Pacer struct {
	next     explore.StepDriver
	clock    timeutil.Clock
	ticker   timeutil.Ticker
	interval time.Duration
	last     time.Time
	overruns int
}

// NewPacer starts a ticker of the given interval on clock.
func NewPacer(next explore.StepDriver, clock timeutil.Clock, interval time.Duration) *Pacer {
	return &Pacer{
		next:     next,
		clock:    clock,
		ticker:   clock.NewTicker(interval),
		interval: interval,
	}
}

// Step waits for the next tick, then steps the wrapped driver.
func (p *Pacer) Step(ctx context.Context) error {
	if !p.last.IsZero() {
		if busy := p.clock.Since(p.last); busy > p.interval {
			p.overruns++
			monitoring.Logf("control tick overran: %s > %s", busy, p.interval)
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C():
	}
	p.last = p.clock.Now()
	return p.next.Step(ctx)
}

// Overruns returns how many ticks took longer than the interval.
func (p *Pacer) Overruns() int { return p.overruns }

// Stop releases the ticker.
func (p *Pacer) Stop() {
	p.ticker.Stop()
}

// Assemble combines separately implemented collaborators into one
// explore.Robot, e.g. a Pacer stepping a Replay that also provides the
// sensors and actuator.
func Assemble(step explore.StepDriver, sensors explore.SensorProvider, act explore.Actuator) explore.Robot {
	return assembled{step, sensors, act}
}

type assembled struct {
	explore.StepDriver
	explore.SensorProvider
	explore.Actuator
}
