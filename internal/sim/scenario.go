// Package sim owns one flight session: it steps the craft, runs the landing
// controller and refreshes the predicted path once per tick.
package sim

import (
	"errors"
	"fmt"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/flight"
	"github.com/litescript/ls-lander/internal/trajectory"
)

// MaxTimeScale bounds the time-scale multiplier.
const MaxTimeScale = 100.0

var (
	// ErrNotSolid is returned when a scenario targets a star.
	ErrNotSolid = errors.New("target body has no surface")
	// ErrBadState is returned when a saved craft state cannot be resumed.
	ErrBadState = errors.New("saved state is not resumable")
)

// Scenario places the craft above a body at session start.
type Scenario struct {
	Target        string  `mapstructure:"target" json:"target"`
	AltitudeM     float64 `mapstructure:"altitude_m" json:"altitude_m"`
	DescentRateMS float64 `mapstructure:"descent_rate_ms" json:"descent_rate_ms"`
}

// DefaultScenario starts 2 km over the Moon, falling at 20 m/s.
func DefaultScenario() Scenario {
	return Scenario{Target: "moon", AltitudeM: 2000, DescentRateMS: 20}
}

// Up is the local vertical used when placing a craft over a body.
var Up = astro.Vec3{Z: 1}

// Build returns the initial craft state for the scenario. The craft hangs
// over the body along Up with its forward axis pointing up.
func (sc Scenario) Build(c *bodies.Catalog, craft flight.Craft) (flight.State, error) {
	b, err := c.Get(sc.Target)
	if err != nil {
		return flight.State{}, fmt.Errorf("scenario: %w", err)
	}
	if !b.Solid() {
		return flight.State{}, fmt.Errorf("scenario target %q: %w", b.ID, ErrNotSolid)
	}

	s := flight.NewState(craft)
	offset := astro.MetersToAU(b.RadiusMeters() + sc.AltitudeM)
	s.Position = b.Position.Add(Up.Scale(offset))
	s.Velocity = Up.Scale(-sc.DescentRateMS)
	s = flight.PointAt(s, Up)
	s.TargetBody = b.ID
	return s, nil
}

// Config holds everything a session needs besides the catalog.
type Config struct {
	Craft       flight.Craft      `mapstructure:"craft"`
	Params      flight.Params     `mapstructure:"params"`
	Scenario    Scenario          `mapstructure:"scenario"`
	Trajectory  trajectory.Config `mapstructure:"trajectory"`
	LiveGravity bool              `mapstructure:"live_gravity"`
	Hysteresis  float64           `mapstructure:"hysteresis_m"`
	TimeScale   float64           `mapstructure:"time_scale"`
	Autopilot   bool              `mapstructure:"autopilot"`
}

// DefaultConfig returns a thrust-only session over the Moon at real time.
func DefaultConfig() Config {
	return Config{
		Craft:      flight.DefaultCraft(),
		Params:     flight.DefaultParams(),
		Scenario:   DefaultScenario(),
		Trajectory: trajectory.DefaultConfig(),
		TimeScale:  1,
	}
}

// ClampTimeScale bounds f to [0, MaxTimeScale].
func ClampTimeScale(f float64) float64 {
	switch {
	case !(f > 0):
		return 0
	case f > MaxTimeScale:
		return MaxTimeScale
	default:
		return f
	}
}
