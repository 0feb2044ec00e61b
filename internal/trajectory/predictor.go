package trajectory

import (
	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
)

// Config controls prediction length and cache tolerances.
type Config struct {
	Steps             int     `mapstructure:"steps"`
	Dt                float64 `mapstructure:"dt"`                    // seconds per step
	PositionTolerance float64 `mapstructure:"position_tolerance_m"` // meters
	VelocityTolerance float64 `mapstructure:"velocity_tolerance_ms"` // m/s
}

// DefaultConfig predicts 20 minutes ahead at 2 s resolution.
func DefaultConfig() Config {
	return Config{
		Steps:             600,
		Dt:                2,
		PositionTolerance: 50,
		VelocityTolerance: 0.05,
	}
}

// Predictor caches the last path and recomputes only when the craft has
// drifted from the cached inputs by more than the configured tolerances.
type Predictor struct {
	cfg Config

	valid     bool
	lastPos   astro.Vec3
	lastVel   astro.Vec3
	lastCount int
	path      Path

	hits   int
	misses int
}

// NewPredictor creates a predictor.
func NewPredictor(cfg Config) *Predictor {
	return &Predictor{cfg: cfg}
}

// Predict returns the cached path when still valid, otherwise recomputes it.
func (p *Predictor) Predict(positionAU, velocityMS astro.Vec3, bs []bodies.Body) Path {
	if p.fresh(positionAU, velocityMS, len(bs)) {
		p.hits++
		return p.path
	}

	p.misses++
	p.path = Predict(positionAU, velocityMS, bs, p.cfg.Steps, p.cfg.Dt)
	p.lastPos = positionAU
	p.lastVel = velocityMS
	p.lastCount = len(bs)
	p.valid = true
	return p.path
}

func (p *Predictor) fresh(pos, vel astro.Vec3, count int) bool {
	if !p.valid || count != p.lastCount {
		return false
	}
	drift := pos.Sub(p.lastPos).ToMeters().Norm()
	dv := vel.Sub(p.lastVel).Norm()
	return drift <= p.cfg.PositionTolerance && dv <= p.cfg.VelocityTolerance
}

// Invalidate forces the next call to recompute.
func (p *Predictor) Invalidate() {
	p.valid = false
}

// Stats returns cache hit and miss counts.
func (p *Predictor) Stats() (hits, misses int) {
	return p.hits, p.misses
}
