// Package astro provides the vector math and unit conversions shared by the
// flight, gravity, trajectory and landing packages.
package astro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

// MetersPerAU is the Astronomical Unit in meters.
const MetersPerAU = 1.495978707e11

// degenerateNorm is the magnitude below which a vector has no usable direction.
const degenerateNorm = 1e-12

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
// Zero, near-zero and non-finite vectors normalize to the zero vector.
func (v Vec3) Normalized() Vec3 {
	if !v.IsFinite() {
		return Vec3{}
	}
	n := v.Norm()
	if scalar.EqualWithinAbs(n, 0, degenerateNorm) {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the inner product.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Cross returns the cross product v x u.
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Sanitize returns v, or the zero vector when any component is NaN or infinite.
func (v Vec3) Sanitize() Vec3 {
	if !v.IsFinite() {
		return Vec3{}
	}
	return v
}

// Degenerate reports whether v has no usable direction.
func (v Vec3) Degenerate() bool {
	return v.Normalized().IsZero()
}

// Mgl converts to a mathgl vector for quaternion operations.
func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts a mathgl vector.
func FromMgl(m mgl64.Vec3) Vec3 {
	return Vec3{X: m[0], Y: m[1], Z: m[2]}
}

// ApproxEqual reports whether every component differs by at most tol.
func (v Vec3) ApproxEqual(u Vec3, tol float64) bool {
	return scalar.EqualWithinAbs(v.X, u.X, tol) &&
		scalar.EqualWithinAbs(v.Y, u.Y, tol) &&
		scalar.EqualWithinAbs(v.Z, u.Z, tol)
}

// AUToMeters converts Astronomical Units to meters.
func AUToMeters(au float64) float64 {
	return au * MetersPerAU
}

// MetersToAU converts meters to Astronomical Units.
func MetersToAU(m float64) float64 {
	return m / MetersPerAU
}

// ToMeters converts an AU position vector to meters.
func (v Vec3) ToMeters() Vec3 {
	return v.Scale(MetersPerAU)
}

// ToAU converts a meter vector (position, velocity or acceleration) to AU.
func (v Vec3) ToAU() Vec3 {
	return v.Scale(1 / MetersPerAU)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
