// Package flight integrates spacecraft kinematics and consumables from thrust commands.
//
// Units: position in AU, velocity in m/s, acceleration in m/s², mass and fuel in kg,
// oxygen in hours, power in kWh, thrust in newtons, dt in seconds.
package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-lander/internal/astro"
)

// Standard gravity in m/s², used to turn specific impulse into a burn rate.
const g0 = 9.80665

// ForwardAxis is the body-frame axis the main engine pushes along.
var ForwardAxis = astro.Vec3{Z: 1}

// Engine selects which thrusters a command fires.
type Engine int

const (
	// EngineMain is the high-thrust engine; it only pushes along ForwardAxis.
	EngineMain Engine = iota
	// EngineRCS is the low-thrust omnidirectional reaction control system.
	EngineRCS
)

// String returns the engine name.
func (e Engine) String() string {
	switch e {
	case EngineMain:
		return "MAIN"
	case EngineRCS:
		return "RCS"
	default:
		return "UNKNOWN"
	}
}

// State is the spacecraft record owned by the simulation loop.
type State struct {
	Position     astro.Vec3 `json:"position_au"`
	Velocity     astro.Vec3 `json:"velocity_ms"`
	Orientation  mgl64.Quat `json:"orientation"`
	Mass         float64    `json:"mass_kg"`
	Fuel         float64    `json:"fuel_kg"`
	MaxFuel      float64    `json:"max_fuel_kg"`
	Oxygen       float64    `json:"oxygen_h"`
	Power        float64    `json:"power_kwh"`
	RatedThrust  float64    `json:"rated_thrust_n"`
	ThrustVector astro.Vec3 `json:"thrust_vector"`
	ThrustLevel  float64    `json:"thrust_level"`
	Autopilot    bool       `json:"autopilot"`
	TargetBody   string     `json:"target_body,omitempty"`
}

// Attitude returns the orientation as a unit quaternion, treating a
// zero or non-finite quaternion as identity.
func (s State) Attitude() mgl64.Quat {
	q := s.Orientation
	l := q.Len()
	if !(l > 1e-12) || !astro.FromMgl(q.V).IsFinite() {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// Forward returns the main engine thrust direction in the world frame.
func (s State) Forward() astro.Vec3 {
	return astro.FromMgl(s.Attitude().Rotate(ForwardAxis.Mgl())).Normalized()
}

// Speed returns |velocity| in m/s.
func (s State) Speed() float64 {
	return s.Velocity.Norm()
}

// Command is a resolved pilot input for one tick.
type Command struct {
	Direction astro.Vec3 // world frame, need not be normalized
	Level     float64    // fraction of rated thrust
	Engine    Engine
	Rotation  astro.Vec3 // body-frame angular velocity in rad/s
}

// Craft describes a vehicle at session start.
type Craft struct {
	Mass        float64 `mapstructure:"mass_kg" yaml:"mass_kg"`
	MaxFuel     float64 `mapstructure:"max_fuel_kg" yaml:"max_fuel_kg"`
	Oxygen      float64 `mapstructure:"oxygen_h" yaml:"oxygen_h"`
	Power       float64 `mapstructure:"power_kwh" yaml:"power_kwh"`
	RatedThrust float64 `mapstructure:"rated_thrust_n" yaml:"rated_thrust_n"`
}

// DefaultCraft is a small crewed lander.
func DefaultCraft() Craft {
	return Craft{
		Mass:        15000,
		MaxFuel:     8000,
		Oxygen:      48,
		Power:       120,
		RatedThrust: 45000,
	}
}

// NewState returns a fully fuelled craft at rest at the origin.
func NewState(c Craft) State {
	return State{
		Orientation: mgl64.QuatIdent(),
		Mass:        c.Mass,
		Fuel:        c.MaxFuel,
		MaxFuel:     c.MaxFuel,
		Oxygen:      c.Oxygen,
		Power:       c.Power,
		RatedThrust: c.RatedThrust,
	}
}

// Params holds engine and life-support rates.
type Params struct {
	BurnRate           float64 `mapstructure:"burn_rate"`            // kg of fuel per N·s
	Crew               int     `mapstructure:"crew"`                 // crew count
	BaseOxygenRate     float64 `mapstructure:"base_oxygen_rate"`     // hours per crew-second
	ThrustOxygenFactor float64 `mapstructure:"thrust_oxygen_factor"` // hours per second at full thrust
	BasePowerRate      float64 `mapstructure:"base_power_rate"`      // kWh per second
	ThrustPowerFactor  float64 `mapstructure:"thrust_power_factor"`  // kWh per second at full thrust
	RCSThrust          float64 `mapstructure:"rcs_thrust_n"`         // newtons
}

// BurnRateForIsp converts a specific impulse in seconds to kg per N·s.
func BurnRateForIsp(isp float64) float64 {
	if isp <= 0 {
		return 0
	}
	return 1 / (isp * g0)
}

// DefaultParams returns rates for a hypergolic lander with two crew.
func DefaultParams() Params {
	return Params{
		BurnRate:           BurnRateForIsp(311),
		Crew:               2,
		BaseOxygenRate:     1.0 / 3600,
		ThrustOxygenFactor: 0.5 / 3600,
		BasePowerRate:      0.8 / 3600,
		ThrustPowerFactor:  6.0 / 3600,
		RCSThrust:          1800,
	}
}

// Resources flags depleted consumables.
type Resources struct {
	Fuel   bool `json:"fuel"`
	Oxygen bool `json:"oxygen"`
	Power  bool `json:"power"`
}

// Any reports whether anything is depleted.
func (r Resources) Any() bool {
	return r.Fuel || r.Oxygen || r.Power
}

// Exhaustion reports which consumables are at zero. Whether that ends the
// session is the caller's decision.
func Exhaustion(s State) Resources {
	return Resources{
		Fuel:   s.Fuel <= 0,
		Oxygen: s.Oxygen <= 0,
		Power:  s.Power <= 0,
	}
}
