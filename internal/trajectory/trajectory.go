// Package trajectory forward-simulates a ballistic path for display.
package trajectory

import (
	"encoding/json"
	"iter"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/gravity"
)

// Path is a finite, ordered sequence of predicted positions in AU.
type Path struct {
	points []astro.Vec3
}

// Len returns the number of samples.
func (p Path) Len() int {
	return len(p.points)
}

// At returns the i-th sample.
func (p Path) At(i int) astro.Vec3 {
	return p.points[i]
}

// All iterates the samples from the start; it can be ranged over any number of times.
func (p Path) All() iter.Seq2[int, astro.Vec3] {
	return func(yield func(int, astro.Vec3) bool) {
		for i, pt := range p.points {
			if !yield(i, pt) {
				return
			}
		}
	}
}

// Last returns the final sample, or false for an empty path.
func (p Path) Last() (astro.Vec3, bool) {
	if len(p.points) == 0 {
		return astro.Vec3{}, false
	}
	return p.points[len(p.points)-1], true
}

// MarshalJSON encodes the samples as an array of positions.
func (p Path) MarshalJSON() ([]byte, error) {
	if p.points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.points)
}

// Stride returns every n-th sample plus the last one, for coarse rendering
// and telemetry.
func (p Path) Stride(n int) Path {
	if n <= 1 || len(p.points) <= 2 {
		return p
	}
	out := make([]astro.Vec3, 0, len(p.points)/n+1)
	for i := 0; i < len(p.points); i += n {
		out = append(out, p.points[i])
	}
	if (len(p.points)-1)%n != 0 {
		out = append(out, p.points[len(p.points)-1])
	}
	return Path{points: out}
}

// Predict integrates the craft forward under gravity alone with explicit Euler
// and returns exactly steps samples. Position is in AU, velocity in m/s and dt
// in seconds; velocity is converted to AU/s once before integrating. The path
// is not truncated when it passes through a body.
func Predict(positionAU, velocityMS astro.Vec3, bs []bodies.Body, steps int, dt float64) Path {
	if steps <= 0 {
		return Path{}
	}
	if !(dt > 0) {
		dt = 0
	}

	pos := positionAU.Sanitize()
	vel := velocityMS.Sanitize().ToAU()
	points := make([]astro.Vec3, 0, steps)

	for i := 0; i < steps; i++ {
		// Gravity is evaluated in meters and brought back to AU/s².
		acc := gravity.Acceleration(pos.ToMeters(), bs).ToAU()
		vel = vel.Add(acc.Scale(dt))
		pos = pos.Add(vel.Scale(dt))
		points = append(points, pos)
	}
	return Path{points: points}
}
