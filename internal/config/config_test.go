package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ls-lander.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := DefaultConfig()

	if cfg.Sim.Craft != want.Sim.Craft {
		t.Errorf("Craft = %+v, want %+v", cfg.Sim.Craft, want.Sim.Craft)
	}
	if cfg.Sim.Params != want.Sim.Params {
		t.Errorf("Params = %+v, want %+v", cfg.Sim.Params, want.Sim.Params)
	}
	if cfg.Sim.Scenario != want.Sim.Scenario {
		t.Errorf("Scenario = %+v, want %+v", cfg.Sim.Scenario, want.Sim.Scenario)
	}
	if cfg.UI.TickInterval != 50*time.Millisecond {
		t.Errorf("UI.TickInterval = %v, want 50ms", cfg.UI.TickInterval)
	}
	if cfg.Sim.LiveGravity {
		t.Error("live gravity should default to off")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
catalog:
  path: kerbol.yaml
  epoch: "2030-06-01"
sim:
  live_gravity: true
  time_scale: 5
  hysteresis_m: 25
  craft:
    mass_kg: 9000
  scenario:
    target: mars
    altitude_m: 12000
  trajectory:
    steps: 120
telemetry:
  listen: ":9100"
  frame_interval: 500ms
ui:
  tick_interval: 100ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"log_level", cfg.LogLevel, "debug"},
		{"catalog.path", cfg.Catalog.Path, "kerbol.yaml"},
		{"sim.live_gravity", cfg.Sim.LiveGravity, true},
		{"sim.time_scale", cfg.Sim.TimeScale, 5.0},
		{"sim.hysteresis_m", cfg.Sim.Hysteresis, 25.0},
		{"sim.craft.mass_kg", cfg.Sim.Craft.Mass, 9000.0},
		{"sim.craft.max_fuel_kg (default)", cfg.Sim.Craft.MaxFuel, DefaultConfig().Sim.Craft.MaxFuel},
		{"sim.scenario.target", cfg.Sim.Scenario.Target, "mars"},
		{"sim.scenario.altitude_m", cfg.Sim.Scenario.AltitudeM, 12000.0},
		{"sim.trajectory.steps", cfg.Sim.Trajectory.Steps, 120},
		{"telemetry.listen", cfg.Telemetry.Listen, ":9100"},
		{"telemetry.frame_interval", cfg.Telemetry.FrameInterval, 500 * time.Millisecond},
		{"ui.tick_interval", cfg.UI.TickInterval, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	epoch, err := cfg.Epoch()
	if err != nil {
		t.Fatalf("Epoch: %v", err)
	}
	if want := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC); !epoch.Equal(want) {
		t.Errorf("Epoch() = %v, want %v", epoch, want)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LS_LANDER_SIM_TIME_SCALE", "20")
	t.Setenv("LS_LANDER_SIM_SCENARIO_TARGET", "europa")
	t.Setenv("LS_LANDER_TELEMETRY_LISTEN", "127.0.0.1:0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sim.TimeScale != 20 {
		t.Errorf("TimeScale = %v, want 20", cfg.Sim.TimeScale)
	}
	if cfg.Sim.Scenario.Target != "europa" {
		t.Errorf("Target = %q, want europa", cfg.Sim.Scenario.Target)
	}
	if cfg.Telemetry.Listen != "127.0.0.1:0" {
		t.Errorf("Listen = %q", cfg.Telemetry.Listen)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"time scale", "sim:\n  time_scale: 250\n", ErrInvalid},
		{"mass", "sim:\n  craft:\n    mass_kg: 0\n", ErrInvalid},
		{"epoch", "catalog:\n  epoch: yesterday\n", ErrInvalid},
		{"hysteresis", "sim:\n  hysteresis_m: -1\n", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestEpochEmpty(t *testing.T) {
	epoch, err := DefaultConfig().Epoch()
	if err != nil || !epoch.IsZero() {
		t.Errorf("Epoch() = %v, %v; want zero time", epoch, err)
	}
}
