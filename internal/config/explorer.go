package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/lightseeker/internal/explore"
	"github.com/banshee-data/lightseeker/internal/serialmux"
)

// DefaultConfigPath is the path to the canonical explorer defaults file.
const DefaultConfigPath = "config/explorer.defaults.json"

// ExplorerConfig is the on-disk configuration of the exploration
// controller. Every field is optional; the Get* methods fall back to the
// documented defaults for anything the file leaves out.
type ExplorerConfig struct {
	// Motion
	MaxSpeed *float64 `json:"max_speed,omitempty"`

	// Classifier thresholds
	WallThreshold  *float64 `json:"wall_threshold,omitempty"`
	LightThreshold *float64 `json:"light_threshold,omitempty"`

	// Arrival
	PositionTolerance *float64 `json:"position_tolerance,omitempty"`

	// Timing
	TickInterval *string  `json:"tick_interval,omitempty"` // duration string like "64ms"
	DebounceGap  *float64 `json:"debounce_gap,omitempty"`  // seconds
	StaleWindow  *float64 `json:"stale_window,omitempty"`  // seconds

	// Memory
	MemoryCapacity *int `json:"memory_capacity,omitempty"`

	// Serial link to the robot
	Serial *serialmux.PortOptions `json:"serial,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyExplorerConfig returns an ExplorerConfig with all fields nil.
func EmptyExplorerConfig() *ExplorerConfig {
	return &ExplorerConfig{}
}

// DefaultExplorerConfig returns an ExplorerConfig with every field set to
// its default.
func DefaultExplorerConfig() *ExplorerConfig {
	d := explore.DefaultConfig()
	return &ExplorerConfig{
		MaxSpeed:          ptrFloat64(d.MaxSpeed),
		WallThreshold:     ptrFloat64(d.WallThreshold),
		LightThreshold:    ptrFloat64(d.LightThreshold),
		PositionTolerance: ptrFloat64(d.PositionTolerance),
		TickInterval:      ptrString(d.TickInterval.String()),
		DebounceGap:       ptrFloat64(d.DebounceGap),
		StaleWindow:       ptrFloat64(d.StaleWindow),
		MemoryCapacity:    ptrInt(d.MemoryCapacity),
		Serial:            &serialmux.PortOptions{BaudRate: serialmux.DefaultBaudRate, DataBits: 8, StopBits: 1, Parity: "N"},
	}
}

// LoadExplorerConfig loads an ExplorerConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadExplorerConfig(path string) (*ExplorerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyExplorerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching upwards from the
// current directory. Panics if the file cannot be loaded; intended for
// test setup.
func MustLoadDefaultConfig() *ExplorerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/tools/plot-run/
	}
	for _, path := range candidates {
		if cfg, err := LoadExplorerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set. Unset fields take defaults and
// are always valid.
func (c *ExplorerConfig) Validate() error {
	if c.TickInterval != nil && *c.TickInterval != "" {
		if _, err := time.ParseDuration(*c.TickInterval); err != nil {
			return fmt.Errorf("invalid tick_interval '%s': %w", *c.TickInterval, err)
		}
	}

	if c.Serial != nil {
		if _, err := c.Serial.Normalize(); err != nil {
			return fmt.Errorf("invalid serial options: %w", err)
		}
	}

	// The remaining checks live with the controller so that both the file
	// and programmatic configs go through the same rules.
	return c.ControllerConfig().Validate()
}

// ControllerConfig resolves the file into the controller's configuration.
func (c *ExplorerConfig) ControllerConfig() explore.Config {
	return explore.Config{
		MaxSpeed:          c.GetMaxSpeed(),
		WallThreshold:     c.GetWallThreshold(),
		LightThreshold:    c.GetLightThreshold(),
		PositionTolerance: c.GetPositionTolerance(),
		TickInterval:      c.GetTickInterval(),
		DebounceGap:       c.GetDebounceGap(),
		StaleWindow:       c.GetStaleWindow(),
		MemoryCapacity:    c.GetMemoryCapacity(),
	}
}

// GetMaxSpeed returns the max_speed value or the default.
func (c *ExplorerConfig) GetMaxSpeed() float64 {
	if c.MaxSpeed == nil {
		return explore.DefaultMaxSpeed
	}
	return *c.MaxSpeed
}

// GetWallThreshold returns the wall_threshold value or the default.
func (c *ExplorerConfig) GetWallThreshold() float64 {
	if c.WallThreshold == nil {
		return explore.DefaultWallThreshold
	}
	return *c.WallThreshold
}

// GetLightThreshold returns the light_threshold value or the default.
func (c *ExplorerConfig) GetLightThreshold() float64 {
	if c.LightThreshold == nil {
		return explore.DefaultLightThreshold
	}
	return *c.LightThreshold
}

// GetPositionTolerance returns the position_tolerance value or the default.
func (c *ExplorerConfig) GetPositionTolerance() float64 {
	if c.PositionTolerance == nil {
		return explore.DefaultPositionTolerance
	}
	return *c.PositionTolerance
}

// GetTickInterval parses and returns the TickInterval as a time.Duration.
func (c *ExplorerConfig) GetTickInterval() time.Duration {
	if c.TickInterval == nil || *c.TickInterval == "" {
		return explore.DefaultTickInterval
	}
	d, err := time.ParseDuration(*c.TickInterval)
	if err != nil {
		return explore.DefaultTickInterval // default on parse error
	}
	return d
}

// GetDebounceGap returns the debounce_gap value or the default.
func (c *ExplorerConfig) GetDebounceGap() float64 {
	if c.DebounceGap == nil {
		return explore.DefaultDebounceGap
	}
	return *c.DebounceGap
}

// GetStaleWindow returns the stale_window value or the default.
func (c *ExplorerConfig) GetStaleWindow() float64 {
	if c.StaleWindow == nil {
		return explore.DefaultStaleWindow
	}
	return *c.StaleWindow
}

// GetMemoryCapacity returns the memory_capacity value or the default.
func (c *ExplorerConfig) GetMemoryCapacity() int {
	if c.MemoryCapacity == nil {
		return explore.DefaultMemoryCapacity
	}
	return *c.MemoryCapacity
}

// GetSerial returns the serial port options, or the defaults.
func (c *ExplorerConfig) GetSerial() serialmux.PortOptions {
	if c.Serial == nil {
		return serialmux.PortOptions{}
	}
	return *c.Serial
}
