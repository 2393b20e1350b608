// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Input     InputConfig     `yaml:"input"`
	Emitters  EmitterConfig   `yaml:"emitters"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// FluidConfig holds solver parameters. The constants are tuned for looks,
// not derived from a stability analysis.
type FluidConfig struct {
	ResolutionScale     float64 `yaml:"resolution_scale"`     // Grid size as a fraction of the viewport
	Iterations          int     `yaml:"iterations"`           // Jacobi passes per step
	DT                  float64 `yaml:"dt"`                   // Timestep used by the hosts' fixed-step loop
	DissipationVelocity float64 `yaml:"dissipation_velocity"` // Velocity multiplier per advection
	DissipationDye      float64 `yaml:"dissipation_dye"`      // Dye multiplier per advection
	SplatRadius         float64 `yaml:"splat_radius"`         // Gaussian falloff radius in squared UV units
	SplatForce          float64 `yaml:"splat_force"`          // Multiplier applied to velocity splats
	Curl                float64 `yaml:"curl"`                 // Vorticity confinement strength (0 = off)
	AlphaScale          float64 `yaml:"alpha_scale"`          // Display alpha = |rgb| * this
}

// InputConfig holds pointer-to-splat conversion parameters.
type InputConfig struct {
	HueSpeed       float64 `yaml:"hue_speed"`       // Degrees of hue advanced per second of motion
	Saturation     float64 `yaml:"saturation"`      // Splat colour saturation [0,1]
	Value          float64 `yaml:"value"`           // Splat colour value [0,1]
	ColorIntensity float64 `yaml:"color_intensity"` // Dye added per splat
	MotionScale    float64 `yaml:"motion_scale"`    // Pointer pixels -> grid velocity
}

// EmitterConfig holds burst and idle emitter parameters.
type EmitterConfig struct {
	BurstCount int     `yaml:"burst_count"` // Emitters spawned per click
	BurstSpeed float64 `yaml:"burst_speed"` // Normalized units per second
	BurstLife  float64 `yaml:"burst_life"`  // Seconds
	Force      float64 `yaml:"force"`       // Splat delta per unit of emitter speed
	IdleCount  int     `yaml:"idle_count"`  // Wandering emitters while the pointer is idle
	IdleSpeed  float64 `yaml:"idle_speed"`  // Noise time scale
	IdleAfter  float64 `yaml:"idle_after"`  // Seconds without input before idle emitters start
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow        int `yaml:"stats_window"`        // Steps per stats record
	PerfWindow         int `yaml:"perf_window"`         // Steps in the rolling perf window
	DivergenceInterval int `yaml:"divergence_interval"` // Measure post-projection divergence every N steps (0 = never)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32  float32 // Fluid.DT as float32
	GridW int     // Simulation grid width at the configured screen size
	GridH int     // Simulation grid height at the configured screen size
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse overlays data on the embedded defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in data
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects settings that would change solver behaviour if clamped.
// Every offending key is reported.
func (c *Config) Validate() error {
	var errs []error
	bad := func(key string, value any, want string) {
		errs = append(errs, fmt.Errorf("%w: %s = %v (want %s)", ErrInvalid, key, value, want))
	}

	if c.Screen.Width <= 0 {
		bad("screen.width", c.Screen.Width, "> 0")
	}
	if c.Screen.Height <= 0 {
		bad("screen.height", c.Screen.Height, "> 0")
	}
	if err := c.Fluid.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Input.Saturation < 0 || c.Input.Saturation > 1 {
		bad("input.saturation", c.Input.Saturation, "in [0, 1]")
	}
	if c.Input.Value < 0 || c.Input.Value > 1 {
		bad("input.value", c.Input.Value, "in [0, 1]")
	}
	if c.Input.ColorIntensity < 0 {
		bad("input.color_intensity", c.Input.ColorIntensity, ">= 0")
	}
	if c.Input.MotionScale < 0 {
		bad("input.motion_scale", c.Input.MotionScale, ">= 0")
	}
	if c.Emitters.BurstLife <= 0 {
		bad("emitters.burst_life", c.Emitters.BurstLife, "> 0")
	}
	if c.Emitters.Force < 0 {
		bad("emitters.force", c.Emitters.Force, ">= 0")
	}
	if c.Emitters.BurstCount < 0 {
		bad("emitters.burst_count", c.Emitters.BurstCount, ">= 0")
	}
	if c.Emitters.IdleCount < 0 {
		bad("emitters.idle_count", c.Emitters.IdleCount, ">= 0")
	}
	if c.Telemetry.StatsWindow < 1 {
		bad("telemetry.stats_window", c.Telemetry.StatsWindow, ">= 1")
	}

	return errors.Join(errs...)
}

// Validate checks the solver parameters on their own, so the fluid package
// can reject a FluidConfig built without going through Load.
func (f *FluidConfig) Validate() error {
	var errs []error
	bad := func(key string, value any, want string) {
		errs = append(errs, fmt.Errorf("%w: fluid.%s = %v (want %s)", ErrInvalid, key, value, want))
	}

	if f.ResolutionScale <= 0 || f.ResolutionScale > 1 {
		bad("resolution_scale", f.ResolutionScale, "in (0, 1]")
	}
	if f.Iterations <= 0 {
		bad("iterations", f.Iterations, "> 0")
	}
	if f.DT <= 0 {
		bad("dt", f.DT, "> 0")
	}
	if f.DissipationVelocity <= 0 || f.DissipationVelocity > 1 {
		bad("dissipation_velocity", f.DissipationVelocity, "in (0, 1]")
	}
	if f.DissipationDye <= 0 || f.DissipationDye > 1 {
		bad("dissipation_dye", f.DissipationDye, "in (0, 1]")
	}
	if f.SplatRadius <= 0 {
		bad("splat_radius", f.SplatRadius, "> 0")
	}
	if f.SplatForce < 0 {
		bad("splat_force", f.SplatForce, ">= 0")
	}
	if f.Curl < 0 {
		bad("curl", f.Curl, ">= 0")
	}
	if f.AlphaScale <= 0 {
		bad("alpha_scale", f.AlphaScale, "> 0")
	}

	return errors.Join(errs...)
}

// GridSize returns the simulation grid size for a viewport.
func (f *FluidConfig) GridSize(viewW, viewH int) (int, int) {
	w := int(float64(viewW) * f.ResolutionScale)
	h := int(float64(viewH) * f.ResolutionScale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Fluid.DT)
	c.Derived.GridW, c.Derived.GridH = c.Fluid.GridSize(c.Screen.Width, c.Screen.Height)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
