package game

import (
	"github.com/pthm-cable/ink/config"
	"github.com/pthm-cable/ink/telemetry"
)

// Controls is the key legend shown at the bottom of the window.
const Controls = "[Mouse] stir  [Click] burst  [Space] pause  [R] reset  [V] velocity  [P] perf  [T] tune  [F11] fullscreen"

// Options configures a Game.
type Options struct {
	// Config overrides the global configuration. Nil uses config.Cfg().
	Config *config.Config

	Seed      int64
	LogStats  bool
	OutputDir string
	Headless  bool

	// StepsPerUpdate runs several fixed steps per Update call.
	StepsPerUpdate int

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.StepStats)
}
