package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/gravity"
)

// ApplyThrust fires the main-rated engine along direction for dt seconds
// using forward Euler. It is a no-op when there is no fuel or direction is
// degenerate.
func ApplyThrust(s State, direction astro.Vec3, level, dt float64, p Params) State {
	if s.Fuel <= 0 || direction.Degenerate() || !(s.Mass > 0) {
		return s
	}
	level = clamp01(level)
	dt = sanitizeDt(dt)

	dir := direction.Normalized()
	force := s.RatedThrust * level
	accel := dir.Scale(force / s.Mass)

	s.Velocity = s.Velocity.Sanitize().Add(accel.Scale(dt))
	s.Fuel = math.Max(0, s.Fuel-s.RatedThrust*level*p.BurnRate*dt)
	s.ThrustVector = dir
	s.ThrustLevel = level
	return s
}

// ApplyCommand resolves an engine class and fires it. MAIN only pushes
// along the craft's forward axis, losing the off-axis share of the request;
// RCS pushes in any direction at Params.RCSThrust.
func ApplyCommand(s State, cmd Command, dt float64, p Params) State {
	level := clamp01(cmd.Level)
	if level == 0 || s.Fuel <= 0 || cmd.Direction.Degenerate() {
		return idle(s)
	}

	switch cmd.Engine {
	case EngineMain:
		fwd := s.Forward()
		along := cmd.Direction.Normalized().Dot(fwd)
		if along <= 0 {
			return idle(s)
		}
		return ApplyThrust(s, fwd, level*along, dt, p)

	case EngineRCS:
		rated := s.RatedThrust
		s.RatedThrust = p.RCSThrust
		s = ApplyThrust(s, cmd.Direction, level, dt, p)
		s.RatedThrust = rated
		return s

	default:
		return idle(s)
	}
}

func idle(s State) State {
	s.ThrustLevel = 0
	s.ThrustVector = astro.Vec3{}
	return s
}

// Rotate integrates a body-frame angular velocity (rad/s) over dt.
func Rotate(s State, angularVelocity astro.Vec3, dt float64) State {
	dt = sanitizeDt(dt)
	rate := angularVelocity.Sanitize()
	angle := rate.Norm() * dt
	if angle == 0 || rate.Degenerate() {
		return s
	}
	dq := mgl64.QuatRotate(angle, rate.Normalized().Mgl())
	s.Orientation = s.Attitude().Mul(dq).Normalize()
	return s
}

// PointAt orients the craft so its forward axis matches dir.
func PointAt(s State, dir astro.Vec3) State {
	if dir.Degenerate() {
		return s
	}
	s.Orientation = mgl64.QuatBetweenVectors(ForwardAxis.Mgl(), dir.Normalized().Mgl()).Normalize()
	return s
}

// UpdateConsumables drains oxygen and power for dt seconds. Neither goes below zero.
func UpdateConsumables(s State, dt float64, p Params) State {
	dt = sanitizeDt(dt)
	level := clamp01(s.ThrustLevel)

	oxygenRate := p.BaseOxygenRate*float64(p.Crew) + level*p.ThrustOxygenFactor
	powerRate := p.BasePowerRate + level*p.ThrustPowerFactor

	s.Oxygen = math.Max(0, s.Oxygen-math.Max(0, oxygenRate)*dt)
	s.Power = math.Max(0, s.Power-math.Max(0, powerRate)*dt)
	return s
}

// IntegratePosition advances position by velocity·dt, converting m to AU.
func IntegratePosition(s State, dt float64) State {
	dt = sanitizeDt(dt)
	s.Position = s.Position.Add(s.Velocity.Sanitize().Scale(dt).ToAU())
	return s
}

// ApplyGravity adds the catalog's gravitational pull over dt to the velocity.
func ApplyGravity(s State, bs []bodies.Body, dt float64) State {
	dt = sanitizeDt(dt)
	a := gravity.Acceleration(s.Position.ToMeters(), bs)
	s.Velocity = s.Velocity.Sanitize().Add(a.Scale(dt))
	return s
}

// EmergencyStop zeroes velocity and thrust instantly. This is a control
// action, not a physical result.
func EmergencyStop(s State) State {
	s.Velocity = astro.Vec3{}
	s.ThrustLevel = 0
	s.ThrustVector = astro.Vec3{}
	return s
}

func clamp01(f float64) float64 {
	if !(f > 0) {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func sanitizeDt(dt float64) float64 {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0
	}
	return dt
}
