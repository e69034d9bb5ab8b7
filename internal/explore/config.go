package explore

import (
	"fmt"
	"time"
)

// Default controller constants. These match the e-puck maze controller
// the tuning was done against.
const (
	DefaultMaxSpeed          = 6.28  // rad/s
	DefaultWallThreshold     = 100.0 // proximity counts
	DefaultLightThreshold    = 500.0
	DefaultPositionTolerance = 0.07 // metres, per axis
	DefaultTickInterval      = 64 * time.Millisecond
	DefaultDebounceGap       = 1.7  // seconds
	DefaultStaleWindow       = 10.0 // seconds
	DefaultMemoryCapacity    = 10
)

// Config holds the fixed parameters of a Controller.
type Config struct {
	MaxSpeed          float64       // wheel speed limit, also the clamp bound
	WallThreshold     float64       // proximity reading above which a wall is present
	LightThreshold    float64       // reported in Features.Bright only
	PositionTolerance float64       // per-axis arrival tolerance
	TickInterval      time.Duration // control period requested from the step driver
	DebounceGap       float64       // minimum spacing of counted front-wall detections
	StaleWindow       float64       // pending detections older than this are dropped
	MemoryCapacity    int           // number of dead ends explored before returning
}

// DefaultConfig returns the controller configuration with all documented
// defaults filled in.
func DefaultConfig() Config {
	return Config{
		MaxSpeed:          DefaultMaxSpeed,
		WallThreshold:     DefaultWallThreshold,
		LightThreshold:    DefaultLightThreshold,
		PositionTolerance: DefaultPositionTolerance,
		TickInterval:      DefaultTickInterval,
		DebounceGap:       DefaultDebounceGap,
		StaleWindow:       DefaultStaleWindow,
		MemoryCapacity:    DefaultMemoryCapacity,
	}
}

// Validate checks that every parameter is usable.
func (c Config) Validate() error {
	if c.MaxSpeed <= 0 {
		return fmt.Errorf("max_speed must be positive, got %f", c.MaxSpeed)
	}
	if c.WallThreshold <= 0 {
		return fmt.Errorf("wall_threshold must be positive, got %f", c.WallThreshold)
	}
	if c.LightThreshold <= 0 {
		return fmt.Errorf("light_threshold must be positive, got %f", c.LightThreshold)
	}
	if c.PositionTolerance <= 0 {
		return fmt.Errorf("position_tolerance must be positive, got %f", c.PositionTolerance)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.DebounceGap <= 0 {
		return fmt.Errorf("debounce_gap must be positive, got %f", c.DebounceGap)
	}
	if c.StaleWindow <= c.DebounceGap {
		return fmt.Errorf("stale_window (%f) must exceed debounce_gap (%f)", c.StaleWindow, c.DebounceGap)
	}
	if c.MemoryCapacity <= 0 {
		return fmt.Errorf("memory_capacity must be positive, got %d", c.MemoryCapacity)
	}
	return nil
}

// Thresholds returns the classifier thresholds for this configuration.
func (c Config) Thresholds() Thresholds {
	return Thresholds{Wall: c.WallThreshold, Light: c.LightThreshold}
}
