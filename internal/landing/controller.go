package landing

import (
	"math"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/flight"
)

// Context is the landing state for the current attempt.
type Context struct {
	Phase             Phase    `json:"phase"`
	Altitude          float64  `json:"altitude_m"`
	VerticalSpeed     float64  `json:"vertical_speed_ms"` // positive = descending
	Speed             float64  `json:"speed_ms"`
	Target            string   `json:"target,omitempty"`
	RecommendedThrust float64  `json:"recommended_thrust"`
	GearDeployed      bool     `json:"gear_deployed"`
	InRange           bool     `json:"in_range"`
	Outcome           *Outcome `json:"outcome,omitempty"`
}

// Landed reports whether the attempt has ended on a surface.
func (c Context) Landed() bool {
	return c.Phase == PhaseLanded
}

// AdvisoryActive reports whether a retro-thrust advisory is being given.
func (c Context) AdvisoryActive() bool {
	return c.InRange && c.Altitude <= AdvisoryCeiling && c.Phase != PhaseLanded
}

// EffectKind identifies a transition side effect.
type EffectKind int

const (
	EffectPhaseChanged EffectKind = iota
	EffectGearDeployed
	EffectLanded
)

// String returns the effect name.
func (k EffectKind) String() string {
	switch k {
	case EffectPhaseChanged:
		return "phase_changed"
	case EffectGearDeployed:
		return "gear_deployed"
	case EffectLanded:
		return "landed"
	default:
		return "unknown"
	}
}

// Effect is emitted once per transition for an outside dispatcher.
type Effect struct {
	Kind    EffectKind `json:"kind"`
	From    Phase      `json:"from"`
	To      Phase      `json:"to"`
	Target  string     `json:"target,omitempty"`
	Outcome Outcome    `json:"outcome"`
}

// MarshalText lets EffectKind encode by name.
func (k EffectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Nearest returns the non-star body whose surface is closest to posAU and
// the altitude above it in meters. ok is false when no solid body exists.
func Nearest(posAU astro.Vec3, bs []bodies.Body) (body bodies.Body, altitude float64, ok bool) {
	p := posAU.Sanitize().ToMeters()
	altitude = math.Inf(1)
	for _, b := range bs {
		if !b.Solid() {
			continue
		}
		alt := p.Sub(b.Position.ToMeters()).Norm() - b.RadiusMeters()
		if math.IsNaN(alt) {
			continue
		}
		if alt < altitude {
			body, altitude, ok = b, alt, true
		}
	}
	return body, altitude, ok
}

// Controller runs the phase state machine for one craft.
type Controller struct {
	// Hysteresis in meters an ascending craft must clear past a phase
	// boundary before the phase moves up. Zero disables it.
	Hysteresis float64

	ctx Context
}

// NewController returns a controller starting in SPACE.
func NewController(hysteresis float64) *Controller {
	c := &Controller{Hysteresis: math.Max(0, hysteresis)}
	c.Reset()
	return c
}

// Context returns a copy of the current landing context.
func (c *Controller) Context() Context {
	ctx := c.ctx
	if ctx.Outcome != nil {
		o := *ctx.Outcome
		ctx.Outcome = &o
	}
	return ctx
}

// Reset starts a new attempt.
func (c *Controller) Reset() {
	c.ctx = Context{Phase: PhaseSpace}
}

// Update measures the craft against the catalog and returns the effects of
// any phase transition. LANDED is terminal until Reset.
func (c *Controller) Update(s flight.State, bs []bodies.Body) []Effect {
	if c.ctx.Phase == PhaseLanded {
		return nil
	}

	body, alt, ok := Nearest(s.Position, bs)
	if !ok {
		c.ctx.InRange = false
		c.ctx.RecommendedThrust = 0
		return nil
	}

	if c.ctx.Target != "" && body.ID != c.ctx.Target {
		c.Reset()
	}

	up := s.Position.Sanitize().ToMeters().Sub(body.Position.ToMeters()).Normalized()
	vel := s.Velocity.Sanitize()

	c.ctx.Target = body.ID
	c.ctx.Altitude = alt
	c.ctx.VerticalSpeed = -vel.Dot(up)
	c.ctx.Speed = vel.Norm()

	if alt > MaxTrackingAltitude {
		c.ctx.InRange = false
		c.ctx.RecommendedThrust = 0
		return nil
	}
	c.ctx.InRange = true
	c.ctx.RecommendedThrust = RecommendedThrust(alt, c.ctx.VerticalSpeed)

	next := c.resolve(alt)
	if next == c.ctx.Phase {
		return nil
	}
	return c.transition(next)
}

// resolve applies the hysteresis band to upward moves.
func (c *Controller) resolve(alt float64) Phase {
	next := PhaseFor(alt)
	if next >= c.ctx.Phase || c.Hysteresis <= 0 {
		return next
	}
	damped := PhaseFor(alt - c.Hysteresis)
	if damped >= c.ctx.Phase {
		return c.ctx.Phase
	}
	return damped
}

func (c *Controller) transition(next Phase) []Effect {
	prev := c.ctx.Phase
	c.ctx.Phase = next

	effects := []Effect{{Kind: EffectPhaseChanged, From: prev, To: next, Target: c.ctx.Target}}

	// A step can skip FINAL_APPROACH entirely at high time scales.
	if next >= PhaseFinalApproach && !c.ctx.GearDeployed {
		c.ctx.GearDeployed = true
		effects = append(effects, Effect{Kind: EffectGearDeployed, From: prev, To: next, Target: c.ctx.Target})
	}

	if next == PhaseLanded {
		outcome := HandleLanding(c.ctx.VerticalSpeed)
		c.ctx.Outcome = &outcome
		c.ctx.RecommendedThrust = 0
		effects = append(effects, Effect{Kind: EffectLanded, From: prev, To: next, Target: c.ctx.Target, Outcome: outcome})
	}
	return effects
}
