// Package gravity evaluates Newtonian point-mass acceleration from a body catalog.
package gravity

import (
	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
)

// G is the gravitational constant in m³/(kg·s²).
const G = 6.67430e-11

// MinDistance is the collision-proximity floor in meters. Closer bodies
// contribute nothing; contact is the landing controller's concern.
const MinDistance = 1.0

// Acceleration returns the net acceleration in m/s² at a point given in meters.
// Massless, negative-mass and too-close bodies are skipped; the result is
// always finite.
func Acceleration(point astro.Vec3, bs []bodies.Body) astro.Vec3 {
	if !point.IsFinite() {
		return astro.Vec3{}
	}

	var total astro.Vec3
	for _, b := range bs {
		total = total.Add(contribution(point, b))
	}
	return total.Sanitize()
}

// AccelerationAU returns the net acceleration in AU/s² at a point given in AU.
func AccelerationAU(pointAU astro.Vec3, bs []bodies.Body) astro.Vec3 {
	return Acceleration(pointAU.ToMeters(), bs).ToAU()
}

func contribution(point astro.Vec3, b bodies.Body) astro.Vec3 {
	if !(b.Mass > 0) {
		return astro.Vec3{}
	}
	delta := b.Position.ToMeters().Sub(point)
	if !delta.IsFinite() {
		return astro.Vec3{}
	}
	d := delta.Norm()
	if d < MinDistance {
		return astro.Vec3{}
	}
	// G·m/d² along delta/d
	return delta.Scale(G * b.Mass / (d * d * d)).Sanitize()
}
