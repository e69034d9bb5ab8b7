package explore

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/lightseeker/internal/monitoring"
)

// Controller is the closed-loop exploration controller. It owns all run
// state: the dead-end detector, the exploration memory, the selected
// target and the terminal reached flag.
//
// A Controller is driven from a single goroutine, one Tick per control
// period.
type Controller struct {
	cfg        Config
	thresholds Thresholds
	obs        Observer

	detector *DeadEndDetector
	memory   *Memory

	target    Record
	hasTarget bool
	reached   bool

	speeds Speeds
	ticks  int
}

// NewController validates cfg and returns a controller ready for its first
// tick. A nil observer discards all events.
func NewController(cfg Config, obs Observer) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid controller config: %w", err)
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Controller{
		cfg:        cfg,
		thresholds: cfg.Thresholds(),
		obs:        obs,
		detector:   NewDeadEndDetector(cfg.DebounceGap, cfg.StaleWindow),
		memory:     NewMemory(cfg.MemoryCapacity),
		// The robot starts driving straight ahead at full speed.
		speeds: Speeds{Left: cfg.MaxSpeed, Right: cfg.MaxSpeed},
	}, nil
}

// Tick runs one control cycle on s and returns the command to apply.
// Once the target has been reached every further call returns a zero
// command with Stop set.
func (c *Controller) Tick(s Sample) Command {
	if c.reached {
		return Command{Stop: true}
	}
	c.ticks++

	features := Classify(s, c.thresholds)
	deadEnd := c.detector.Observe(features.FrontWall, s.Time)
	if deadEnd {
		// Speeds are deliberately left as they were on the previous tick.
		c.handleDeadEnd(s)
	} else {
		c.speeds = WallFollow(features, c.cfg.MaxSpeed)
	}
	c.speeds = clampSpeeds(c.speeds, c.cfg.MaxSpeed)

	return Command{Speeds: c.speeds, DeadEnd: deadEnd, Stop: c.reached}
}

func (c *Controller) handleDeadEnd(s Sample) {
	if rec, ok := c.memory.Append(s.Light, s.Position, s.Time); ok {
		c.obs.DeadEndRecorded(rec)
		if c.memory.Full() {
			c.selectTarget()
		}
	}

	// Arrival is only checked at dead ends, never while wall following.
	if c.hasTarget && Arrived(s.Position, c.target.Position, c.cfg.PositionTolerance) {
		c.reached = true
		c.obs.TargetReached(c.target, s.Position)
	}
}

func (c *Controller) selectTarget() {
	target, err := SelectBrightest(c.memory.Records())
	if err != nil {
		// Unreachable with a full memory of positive capacity.
		monitoring.Logf("target selection failed: %v", err)
		return
	}
	c.target = target
	c.hasTarget = true
	c.obs.TargetSelected(target)
}

// Run drives the controller until the target is reached, the step driver
// stops, or ctx is cancelled. Reaching the target or the driver running
// out of steps both return nil.
func (c *Controller) Run(ctx context.Context, robot Robot) error {
	for {
		if err := robot.Step(ctx); err != nil {
			if errors.Is(err, ErrStopped) {
				monitoring.Logf("step driver stopped after %d ticks (target reached: %t)", c.ticks, c.reached)
				return nil
			}
			return err
		}

		sample, err := robot.Sample()
		if err != nil {
			return fmt.Errorf("failed to read sensors: %w", err)
		}

		cmd := c.Tick(sample)
		if err := robot.SetVelocity(cmd.Left, cmd.Right); err != nil {
			return fmt.Errorf("failed to set velocity: %w", err)
		}

		if cmd.Stop {
			if err := robot.SetVelocity(0, 0); err != nil {
				return fmt.Errorf("failed to stop motors: %w", err)
			}
			return nil
		}
	}
}

// Reached reports whether the run has terminated at the target.
func (c *Controller) Reached() bool { return c.reached }

// Target returns the selected target, if memory has filled.
func (c *Controller) Target() (Record, bool) { return c.target, c.hasTarget }

// Memory exposes the exploration memory for inspection.
func (c *Controller) Memory() *Memory { return c.memory }

// Detector exposes the dead-end detector for inspection.
func (c *Controller) Detector() *DeadEndDetector { return c.detector }

// Speeds returns the most recent clamped wheel command.
func (c *Controller) Speeds() Speeds { return c.speeds }

// Ticks returns the number of ticks processed.
func (c *Controller) Ticks() int { return c.ticks }

// Config returns the controller's configuration.
func (c *Controller) Config() Config { return c.cfg }
