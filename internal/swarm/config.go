package swarm

import (
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// LatLng is a geographic coordinate as it appears in config files and API
// payloads.
type LatLng struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// Point converts to the orb convention (lon first).
func (l LatLng) Point() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

// Config holds the launch-time parameters of a simulation run. All values
// are static for the duration of a run.
type Config struct {
	// Agents is the number of drones launched. 1–10.
	Agents int `yaml:"agents"`
	// Density is the detection target-count hint. The generated victim count
	// is density scaled by a uniform ±20% factor. 1–50.
	Density float64 `yaml:"density"`
	// FloodRadius is the radius of the flood disc in meters. 100–5000.
	FloodRadius float64 `yaml:"flood_radius_m"`
	// TriggerRange is the rescue trigger distance in meters. 5–200.
	TriggerRange float64 `yaml:"trigger_range_m"`
	// Speed is the drone step length in meters per tick.
	Speed float64 `yaml:"speed_m_per_tick"`
	// TickMillis is the clock period in milliseconds. 10–1000.
	TickMillis int `yaml:"tick_interval_ms"`
	// FloodCenter is the user-chosen flood centre. Optional in the file;
	// Launch fails until a centre is set one way or another.
	FloodCenter *LatLng `yaml:"flood_center,omitempty"`
}

// DefaultConfig returns the demo defaults.
func DefaultConfig() Config {
	return Config{
		Agents:       3,
		Density:      12,
		FloodRadius:  800,
		TriggerRange: 25,
		Speed:        20,
		TickMillis:   50,
	}
}

// LoadConfig reads a yaml config file and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TickPeriod returns the clock period as a duration.
func (c Config) TickPeriod() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// Validate enforces the configured bounds.
func (c Config) Validate() error {
	if c.Agents < 1 || c.Agents > 10 {
		return fmt.Errorf("config: agents %d out of range 1–10", c.Agents)
	}
	if c.Density < 1 || c.Density > 50 {
		return fmt.Errorf("config: density %.1f out of range 1–50", c.Density)
	}
	if c.FloodRadius < 100 || c.FloodRadius > 5000 {
		return fmt.Errorf("config: flood radius %.0fm out of range 100–5000m", c.FloodRadius)
	}
	if c.TriggerRange < 5 || c.TriggerRange > 200 {
		return fmt.Errorf("config: trigger range %.0fm out of range 5–200m", c.TriggerRange)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("config: speed must be positive, got %.1f", c.Speed)
	}
	if c.TickMillis < 10 || c.TickMillis > 1000 {
		return fmt.Errorf("config: tick interval %dms out of range 10–1000ms", c.TickMillis)
	}
	return nil
}
