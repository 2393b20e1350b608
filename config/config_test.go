package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if cfg.Fluid.Iterations != 10 {
		t.Errorf("expected 10 iterations, got %d", cfg.Fluid.Iterations)
	}
	if cfg.Fluid.ResolutionScale != 0.5 {
		t.Errorf("expected resolution scale 0.5, got %f", cfg.Fluid.ResolutionScale)
	}
	if cfg.Derived.GridW != 640 || cfg.Derived.GridH != 360 {
		t.Errorf("expected 640x360 grid, got %dx%d", cfg.Derived.GridW, cfg.Derived.GridH)
	}
	if cfg.Derived.DT32 != float32(cfg.Fluid.DT) {
		t.Errorf("DT32 not derived: %f vs %f", cfg.Derived.DT32, cfg.Fluid.DT)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte("fluid:\n  iterations: 25\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Fluid.Iterations != 25 {
		t.Errorf("expected overridden iterations 25, got %d", cfg.Fluid.Iterations)
	}
	// Untouched keys keep their defaults
	if cfg.Fluid.SplatForce != 5.0 {
		t.Errorf("expected default splat force 5.0, got %f", cfg.Fluid.SplatForce)
	}
}

func TestValidateRejectsBadSolverSettings(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		key  string
	}{
		{"zero iterations", "fluid:\n  iterations: 0\n", "fluid.iterations"},
		{"negative iterations", "fluid:\n  iterations: -3\n", "fluid.iterations"},
		{"zero resolution", "fluid:\n  resolution_scale: 0\n", "fluid.resolution_scale"},
		{"zero splat radius", "fluid:\n  splat_radius: 0\n", "fluid.splat_radius"},
		{"dissipation above one", "fluid:\n  dissipation_dye: 1.5\n", "fluid.dissipation_dye"},
		{"zero dissipation", "fluid:\n  dissipation_velocity: 0\n", "fluid.dissipation_velocity"},
		{"zero screen", "screen:\n  width: 0\n", "screen.width"},
		{"saturation above one", "input:\n  saturation: 1.2\n", "input.saturation"},
		{"negative motion scale", "input:\n  motion_scale: -1\n", "input.motion_scale"},
		{"zero burst life", "emitters:\n  burst_life: 0\n", "emitters.burst_life"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error to name %q, got %v", tt.key, err)
			}
		})
	}
}

func TestValidateReportsEveryKey(t *testing.T) {
	_, err := Parse([]byte("fluid:\n  iterations: 0\n  splat_radius: -1\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "iterations") || !strings.Contains(msg, "splat_radius") {
		t.Errorf("expected both keys in error, got %v", msg)
	}
}

func TestGridSizeNeverZero(t *testing.T) {
	f := FluidConfig{ResolutionScale: 0.5}
	w, h := f.GridSize(1, 1)
	if w != 1 || h != 1 {
		t.Errorf("expected 1x1 minimum grid, got %dx%d", w, h)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Fluid.Curl = 12

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Fluid.Curl != 12 {
		t.Errorf("expected curl 12 after reload, got %f", loaded.Fluid.Curl)
	}
}
