// Package config loads ls-lander settings from a YAML file and
// LS_LANDER_* environment variables on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/litescript/ls-lander/internal/sim"
	"github.com/litescript/ls-lander/internal/state"
)

// EnvPrefix is prepended to environment overrides, e.g. LS_LANDER_SIM_TIME_SCALE.
const EnvPrefix = "LS_LANDER"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Sim       sim.Config      `mapstructure:"sim"`
	State     state.Config    `mapstructure:"state"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	UI        UIConfig        `mapstructure:"ui"`
}

// CatalogConfig selects the body catalog.
type CatalogConfig struct {
	Path  string `mapstructure:"path"`  // YAML catalog; empty uses the built-in solar system
	Epoch string `mapstructure:"epoch"` // RFC 3339 date for built-in planet layout
}

// TelemetryConfig controls the optional HTTP server.
type TelemetryConfig struct {
	Listen        string        `mapstructure:"listen"` // empty disables the server
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	PathStride    int           `mapstructure:"path_stride"`
}

// UIConfig controls the terminal UI.
type UIConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	EventLines   int           `mapstructure:"event_lines"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Sim:      sim.DefaultConfig(),
		State:    state.DefaultConfig(),
		Telemetry: TelemetryConfig{
			FrameInterval: 200 * time.Millisecond,
			PathStride:    10,
		},
		UI: UIConfig{
			TickInterval: 50 * time.Millisecond,
			EventLines:   6,
		},
	}
}

// Load reads path (if non-empty) and environment overrides over the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment variables can override
// values that are absent from the file.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.epoch", d.Catalog.Epoch)

	v.SetDefault("sim.live_gravity", d.Sim.LiveGravity)
	v.SetDefault("sim.hysteresis_m", d.Sim.Hysteresis)
	v.SetDefault("sim.time_scale", d.Sim.TimeScale)
	v.SetDefault("sim.autopilot", d.Sim.Autopilot)

	v.SetDefault("sim.craft.mass_kg", d.Sim.Craft.Mass)
	v.SetDefault("sim.craft.max_fuel_kg", d.Sim.Craft.MaxFuel)
	v.SetDefault("sim.craft.oxygen_h", d.Sim.Craft.Oxygen)
	v.SetDefault("sim.craft.power_kwh", d.Sim.Craft.Power)
	v.SetDefault("sim.craft.rated_thrust_n", d.Sim.Craft.RatedThrust)

	v.SetDefault("sim.params.burn_rate", d.Sim.Params.BurnRate)
	v.SetDefault("sim.params.crew", d.Sim.Params.Crew)
	v.SetDefault("sim.params.base_oxygen_rate", d.Sim.Params.BaseOxygenRate)
	v.SetDefault("sim.params.thrust_oxygen_factor", d.Sim.Params.ThrustOxygenFactor)
	v.SetDefault("sim.params.base_power_rate", d.Sim.Params.BasePowerRate)
	v.SetDefault("sim.params.thrust_power_factor", d.Sim.Params.ThrustPowerFactor)
	v.SetDefault("sim.params.rcs_thrust_n", d.Sim.Params.RCSThrust)

	v.SetDefault("sim.scenario.target", d.Sim.Scenario.Target)
	v.SetDefault("sim.scenario.altitude_m", d.Sim.Scenario.AltitudeM)
	v.SetDefault("sim.scenario.descent_rate_ms", d.Sim.Scenario.DescentRateMS)

	v.SetDefault("sim.trajectory.steps", d.Sim.Trajectory.Steps)
	v.SetDefault("sim.trajectory.dt", d.Sim.Trajectory.Dt)
	v.SetDefault("sim.trajectory.position_tolerance_m", d.Sim.Trajectory.PositionTolerance)
	v.SetDefault("sim.trajectory.velocity_tolerance_ms", d.Sim.Trajectory.VelocityTolerance)

	v.SetDefault("state.max_history", d.State.MaxHistoryLen)
	v.SetDefault("state.max_events", d.State.MaxEvents)
	v.SetDefault("state.history_interval_s", d.State.HistoryInterval)

	v.SetDefault("telemetry.listen", d.Telemetry.Listen)
	v.SetDefault("telemetry.frame_interval", d.Telemetry.FrameInterval)
	v.SetDefault("telemetry.path_stride", d.Telemetry.PathStride)

	v.SetDefault("ui.tick_interval", d.UI.TickInterval)
	v.SetDefault("ui.event_lines", d.UI.EventLines)
}

// Validate checks ranges the simulation relies on.
func (c Config) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	s := c.Sim
	check(s.Craft.Mass > 0, "sim.craft.mass_kg must be positive")
	check(s.Craft.MaxFuel >= 0, "sim.craft.max_fuel_kg must not be negative")
	check(s.Craft.Oxygen >= 0, "sim.craft.oxygen_h must not be negative")
	check(s.Craft.Power >= 0, "sim.craft.power_kwh must not be negative")
	check(s.Craft.RatedThrust >= 0, "sim.craft.rated_thrust_n must not be negative")
	check(s.Params.Crew >= 0, "sim.params.crew must not be negative")
	check(s.TimeScale >= 0 && s.TimeScale <= sim.MaxTimeScale,
		fmt.Sprintf("sim.time_scale must be within [0, %g]", sim.MaxTimeScale))
	check(s.Hysteresis >= 0, "sim.hysteresis_m must not be negative")
	check(s.Scenario.Target != "", "sim.scenario.target is required")
	check(s.Trajectory.Steps >= 0, "sim.trajectory.steps must not be negative")
	check(s.Trajectory.Dt > 0, "sim.trajectory.dt must be positive")
	check(c.UI.TickInterval > 0, "ui.tick_interval must be positive")
	check(c.Telemetry.FrameInterval > 0, "telemetry.frame_interval must be positive")

	if c.Catalog.Epoch != "" {
		_, err := c.Epoch()
		check(err == nil, "catalog.epoch must be an RFC 3339 date")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Epoch parses catalog.epoch. A zero time means the catalog default.
func (c Config) Epoch() (time.Time, error) {
	if c.Catalog.Epoch == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, c.Catalog.Epoch); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, c.Catalog.Epoch)
}
