package astro

import "math"

// KmPerAU is the Astronomical Unit in kilometers.
const KmPerAU = MetersPerAU / 1000

// KmToAU converts kilometers to Astronomical Units.
func KmToAU(km float64) float64 {
	return km / KmPerAU
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * KmPerAU
}

// ProjectedPoint represents a 2D projected position with metadata.
type ProjectedPoint struct {
	X float64 // Screen X coordinate (normalized)
	Y float64 // Screen Y coordinate (normalized)
	R float64 // True 3D distance from the projection origin in AU
	Z float64 // Out-of-plane offset in AU
}

// ScaleMode defines how radial distances are mapped to screen space.
type ScaleMode int

const (
	// ScaleLogR uses logarithmic scaling: r_display = log10(r_AU/unit + 1)
	ScaleLogR ScaleMode = iota

	// ScaleLinear maps radius linearly, clamped at Span AU
	ScaleLinear
)

// String returns the mode name.
func (m ScaleMode) String() string {
	switch m {
	case ScaleLogR:
		return "log"
	case ScaleLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// ProjectionConfig configures the top-down projection.
type ProjectionConfig struct {
	Origin Vec3      // Projection centre in AU
	Span   float64   // Radius in AU mapped to the view edge
	Scale  float64   // Zoom multiplier
	Mode   ScaleMode // Scaling mode
}

// DefaultProjectionConfig returns a view of the inner solar system.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		Span:  2.0,
		Scale: 1.0,
		Mode:  ScaleLogR,
	}
}

// ProjectTopDown projects a 3D position onto the XY plane relative to cfg.Origin.
// A point at distance Span maps to radius 1 before zoom is applied.
func ProjectTopDown(v Vec3, cfg ProjectionConfig) ProjectedPoint {
	d := v.Sub(cfg.Origin)
	rPlane := math.Sqrt(d.X*d.X + d.Y*d.Y)
	rDisplay := scaleRadius(rPlane, cfg)
	angle := math.Atan2(d.Y, d.X)

	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	return ProjectedPoint{
		X: rDisplay * math.Cos(angle) * scale,
		Y: rDisplay * math.Sin(angle) * scale,
		R: d.Norm(),
		Z: d.Z,
	}
}

func scaleRadius(rAU float64, cfg ProjectionConfig) float64 {
	span := cfg.Span
	if span <= 0 {
		span = 1
	}
	switch cfg.Mode {
	case ScaleLinear:
		if rAU > span {
			return 1
		}
		return rAU / span
	default:
		// log10(r/span*9 + 1) is 0 at the origin and 1 at span
		return math.Log10(rAU/span*9 + 1)
	}
}
