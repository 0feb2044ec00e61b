// Package bodies holds the read-only catalog of massive bodies the simulation
// flies through.
package bodies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/litescript/ls-lander/internal/astro"
)

// Type categorizes celestial bodies.
type Type int

const (
	TypeStar Type = iota
	TypePlanet
	TypeMoon
	TypeDwarf
	TypeAsteroid
	TypeStation
)

// String returns the body type name.
func (t Type) String() string {
	switch t {
	case TypeStar:
		return "star"
	case TypePlanet:
		return "planet"
	case TypeMoon:
		return "moon"
	case TypeDwarf:
		return "dwarf"
	case TypeAsteroid:
		return "asteroid"
	case TypeStation:
		return "station"
	default:
		return "unknown"
	}
}

// ParseType parses a body type name.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "star":
		return TypeStar, nil
	case "planet":
		return TypePlanet, nil
	case "moon":
		return TypeMoon, nil
	case "dwarf", "dwarf_planet":
		return TypeDwarf, nil
	case "asteroid":
		return TypeAsteroid, nil
	case "station":
		return TypeStation, nil
	default:
		return 0, fmt.Errorf("unknown body type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Body is the physics view of a celestial body. Rendering data lives elsewhere.
type Body struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     Type       `json:"type"`
	Mass     float64    `json:"mass_kg"`
	Radius   float64    `json:"radius_au"`
	Position astro.Vec3 `json:"position_au"`
	ParentID string     `json:"parent_id,omitempty"` // orbit-line rendering only
}

// Solid reports whether a craft can land on the body.
func (b Body) Solid() bool {
	return b.Type != TypeStar
}

// RadiusMeters returns the body radius in meters.
func (b Body) RadiusMeters() float64 {
	return astro.AUToMeters(b.Radius)
}

// Catalog errors.
var (
	ErrNegativeMass  = errors.New("body mass must be non-negative")
	ErrDuplicateID   = errors.New("duplicate body id")
	ErrUnknownParent = errors.New("unknown parent body")
	ErrUnknownBody   = errors.New("unknown body")
	ErrEmptyID       = errors.New("body id is required")
)
