// Package config handles configuration loading and validation for tapd.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"tapd/internal/action"
	"tapd/internal/gesture"
	"tapd/internal/logging"
)

// Config is the top-level tapd configuration.
type Config struct {
	Device DeviceConfig `toml:"device" json:"device" yaml:"device"`
	Zones  ZonesConfig  `toml:"zones" json:"zones" yaml:"zones"`

	// Detectors overrides the built-in edge detectors when non-empty.
	Detectors []DetectorConfig `toml:"detectors" json:"detectors" yaml:"detectors"`

	// Bindings maps edge zones (left/right/top) to action names.
	Bindings map[string]string `toml:"bindings" json:"bindings" yaml:"bindings"`

	// Actions defines extra catalog entries as path specs, keyed by name.
	Actions map[string][]action.PathSpec `toml:"actions" json:"actions" yaml:"actions"`

	// ActionLibrary is a directory of *.trace and *.json gesture files.
	ActionLibrary string `toml:"action_library" json:"action_library" yaml:"action_library"`

	Replay  ReplayConfig   `toml:"replay" json:"replay" yaml:"replay"`
	Logging logging.Config `toml:"logging" json:"logging" yaml:"logging"`
}

// DeviceConfig selects the touchscreen evdev node.
type DeviceConfig struct {
	// Path is an evdev node path or a bare event index.
	Path string `toml:"path" json:"path" yaml:"path"`

	// Grab takes exclusive hold of the device so recognized taps do
	// not also reach the display server.
	Grab bool `toml:"grab" json:"grab" yaml:"grab"`
}

// ZonesConfig holds the edge-band coordinate thresholds.
type ZonesConfig struct {
	TopMinY   int32 `toml:"top_min_y" json:"top_min_y" yaml:"top_min_y"`
	DeadMinY  int32 `toml:"dead_min_y" json:"dead_min_y" yaml:"dead_min_y"`
	LeftMaxX  int32 `toml:"left_max_x" json:"left_max_x" yaml:"left_max_x"`
	RightMinX int32 `toml:"right_min_x" json:"right_min_x" yaml:"right_min_x"`
}

// DetectorConfig describes one gesture detector.
type DetectorConfig struct {
	Name string `toml:"name" json:"name" yaml:"name"`
	Kind string `toml:"kind" json:"kind" yaml:"kind"`
	Zone string `toml:"zone" json:"zone" yaml:"zone"`

	// Rect bounds for double_tap_zone detectors; nil is unbounded.
	MinX *int32 `toml:"min_x" json:"min_x,omitempty" yaml:"min_x"`
	MaxX *int32 `toml:"max_x" json:"max_x,omitempty" yaml:"max_x"`
	MinY *int32 `toml:"min_y" json:"min_y,omitempty" yaml:"min_y"`
	MaxY *int32 `toml:"max_y" json:"max_y,omitempty" yaml:"max_y"`

	MaxDistance      int32  `toml:"max_distance" json:"max_distance,omitempty" yaml:"max_distance"`
	MaxTapDurationMs int    `toml:"max_tap_duration_ms" json:"max_tap_duration_ms,omitempty" yaml:"max_tap_duration_ms"`
	MaxGapMs         int    `toml:"max_gap_ms" json:"max_gap_ms,omitempty" yaml:"max_gap_ms"`
	Action           string `toml:"action" json:"action" yaml:"action"`
}

// ReplayConfig holds injection behavior toggles.
type ReplayConfig struct {
	// DryRun paces through actions without writing to the device.
	DryRun bool `toml:"dry_run" json:"dry_run" yaml:"dry_run"`

	// NoSleep replays actions without inter-record delays.
	NoSleep bool `toml:"no_sleep" json:"no_sleep" yaml:"no_sleep"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	th := gesture.DefaultThresholds()
	return &Config{
		Device: DeviceConfig{
			Path: "/dev/input/by-path/platform-30a40000.i2c-event",
			Grab: true,
		},
		Zones: ZonesConfig{
			TopMinY:   th.TopMinY,
			DeadMinY:  th.DeadMinY,
			LeftMaxX:  th.LeftMaxX,
			RightMinX: th.RightMinX,
		},
		Bindings: map[string]string{
			string(gesture.ZoneLeft):  action.Prev,
			string(gesture.ZoneRight): action.Next,
			string(gesture.ZoneTop):   action.Home,
		},
		Logging: logging.DefaultConfig(),
	}
}

// ApplyEnvOverrides applies TAPD_* environment variables on top of the
// file configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TAPD_DEVICE"); v != "" {
		c.Device.Path = v
	}
	if v := os.Getenv("TAPD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TAPD_ACTION_LIBRARY"); v != "" {
		c.ActionLibrary = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	z := c.Zones
	if z.DeadMinY > z.TopMinY {
		return fmt.Errorf("zones: dead_min_y %d exceeds top_min_y %d", z.DeadMinY, z.TopMinY)
	}
	if z.LeftMaxX > z.RightMinX {
		return fmt.Errorf("zones: left_max_x %d exceeds right_min_x %d", z.LeftMaxX, z.RightMinX)
	}

	for zone := range c.Bindings {
		switch gesture.Zone(zone) {
		case gesture.ZoneLeft, gesture.ZoneRight, gesture.ZoneTop:
		default:
			return fmt.Errorf("bindings: unknown zone %q", zone)
		}
	}

	for i, d := range c.Detectors {
		if d.Name == "" {
			return fmt.Errorf("detector %d has no name", i)
		}
		switch gesture.Kind(d.Kind) {
		case gesture.KindDoubleTapEdge, gesture.KindDoubleTapZone:
		default:
			return fmt.Errorf("detector %q: unknown kind %q", d.Name, d.Kind)
		}
		if d.Action == "" {
			return fmt.Errorf("detector %q has no action", d.Name)
		}
		if d.MaxTapDurationMs < 0 || d.MaxGapMs < 0 {
			return fmt.Errorf("detector %q has a negative timing", d.Name)
		}
	}

	for name, specs := range c.Actions {
		if name == "" {
			return fmt.Errorf("actions: entry with empty name")
		}
		if _, err := action.Paths(specs); err != nil {
			return fmt.Errorf("action %q: %w", name, err)
		}
	}

	return c.Logging.Validate()
}

// Thresholds converts the zone section to its runtime form.
func (c *Config) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{
		TopMinY:   c.Zones.TopMinY,
		DeadMinY:  c.Zones.DeadMinY,
		LeftMaxX:  c.Zones.LeftMaxX,
		RightMinX: c.Zones.RightMinX,
	}
}

// GestureDetectors resolves the configured detectors, falling back to
// the built-in edge taps wired through the zone bindings.
func (c *Config) GestureDetectors() []gesture.Detector {
	if len(c.Detectors) == 0 {
		return gesture.EdgeDetectors(
			c.Bindings[string(gesture.ZoneLeft)],
			c.Bindings[string(gesture.ZoneRight)],
			c.Bindings[string(gesture.ZoneTop)],
		)
	}

	out := make([]gesture.Detector, 0, len(c.Detectors))
	for _, d := range c.Detectors {
		out = append(out, gesture.Detector{
			Name:           d.Name,
			Kind:           gesture.Kind(d.Kind),
			Zone:           gesture.Zone(d.Zone),
			Rect:           gesture.Rect{MinX: d.MinX, MaxX: d.MaxX, MinY: d.MinY, MaxY: d.MaxY},
			MaxDistance:    d.MaxDistance,
			MaxTapDuration: time.Duration(d.MaxTapDurationMs) * time.Millisecond,
			MaxGap:         time.Duration(d.MaxGapMs) * time.Millisecond,
			Action:         d.Action,
		})
	}
	return out
}

// Catalog builds the action catalog: built-ins first, then the library
// directory, then inline config actions (highest precedence).
func (c *Config) Catalog(log *slog.Logger) (*action.Catalog, error) {
	cat := action.NewCatalog(log)
	if c.ActionLibrary != "" {
		if err := cat.LoadDir(c.ActionLibrary); err != nil {
			return nil, err
		}
	}
	for name, specs := range c.Actions {
		paths, err := action.Paths(specs)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", name, err)
		}
		if err := cat.Add(action.Action{Name: name, Paths: paths}); err != nil {
			return nil, err
		}
	}
	return cat, nil
}
