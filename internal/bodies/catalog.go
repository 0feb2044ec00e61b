package bodies

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-lander/internal/astro"
)

// jdJ2000 is the Julian date of the J2000 epoch.
const jdJ2000 = 2451545.0

// DefaultEpoch is the epoch the built-in catalog is laid out for.
var DefaultEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Definition describes a body as written in a catalog file.
// A body is placed by, in order of precedence: an explicit position,
// a circular heliocentric orbit, or a circular orbit around its parent.
type Definition struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Type        string    `yaml:"type"`
	MassKg      float64   `yaml:"mass_kg"`
	RadiusKm    float64   `yaml:"radius_km"`
	PositionAU  []float64 `yaml:"position_au,omitempty"`
	SemiMajorAU float64   `yaml:"semi_major_au,omitempty"`
	Parent      string    `yaml:"parent,omitempty"`
	OrbitKm     float64   `yaml:"orbit_km,omitempty"`
	PeriodDays  float64   `yaml:"period_days,omitempty"`
}

// File is the on-disk catalog layout.
type File struct {
	Epoch  time.Time    `yaml:"epoch,omitempty"`
	Bodies []Definition `yaml:"bodies"`
}

// Catalog is an immutable, ordered set of bodies.
type Catalog struct {
	epoch  time.Time
	bodies []Body
	index  map[string]int
}

// Build validates definitions and lays them out at the given epoch.
// Parents must be defined before their children.
func Build(defs []Definition, epoch time.Time) (*Catalog, error) {
	c := &Catalog{
		epoch:  epoch,
		bodies: make([]Body, 0, len(defs)),
		index:  make(map[string]int, len(defs)),
	}
	days := daysSinceJ2000(epoch)

	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("body %q: %w", d.Name, ErrEmptyID)
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("body %q: %w", d.ID, ErrDuplicateID)
		}
		if d.MassKg < 0 || math.IsNaN(d.MassKg) {
			return nil, fmt.Errorf("body %q: %w", d.ID, ErrNegativeMass)
		}
		typ, err := ParseType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", d.ID, err)
		}

		pos, err := c.place(d, days)
		if err != nil {
			return nil, err
		}

		name := d.Name
		if name == "" {
			name = d.ID
		}
		c.index[d.ID] = len(c.bodies)
		c.bodies = append(c.bodies, Body{
			ID:       d.ID,
			Name:     name,
			Type:     typ,
			Mass:     d.MassKg,
			Radius:   astro.KmToAU(d.RadiusKm),
			Position: pos,
			ParentID: d.Parent,
		})
	}
	return c, nil
}

func (c *Catalog) place(d Definition, days float64) (astro.Vec3, error) {
	if len(d.PositionAU) > 0 {
		if len(d.PositionAU) != 3 {
			return astro.Vec3{}, fmt.Errorf("body %q: position_au needs 3 components, got %d", d.ID, len(d.PositionAU))
		}
		return astro.Vec3{X: d.PositionAU[0], Y: d.PositionAU[1], Z: d.PositionAU[2]}, nil
	}

	var origin astro.Vec3
	if d.Parent != "" {
		i, ok := c.index[d.Parent]
		if !ok {
			return astro.Vec3{}, fmt.Errorf("body %q parent %q: %w", d.ID, d.Parent, ErrUnknownParent)
		}
		origin = c.bodies[i].Position
	}

	switch {
	case d.SemiMajorAU > 0:
		// Period from Kepler's third law when not given.
		period := d.PeriodDays
		if period <= 0 {
			period = math.Sqrt(d.SemiMajorAU*d.SemiMajorAU*d.SemiMajorAU) * 365.25
		}
		return origin.Add(circularPosition(d.SemiMajorAU, period, days)), nil
	case d.OrbitKm > 0:
		return origin.Add(circularPosition(astro.KmToAU(d.OrbitKm), d.PeriodDays, days)), nil
	default:
		return origin, nil
	}
}

// circularPosition is a rough placement that ignores eccentricity and inclination.
func circularPosition(radiusAU, periodDays, days float64) astro.Vec3 {
	if periodDays <= 0 {
		return astro.Vec3{X: radiusAU}
	}
	meanAnomaly := 2 * math.Pi * math.Mod(days/periodDays, 1)
	return astro.Vec3{
		X: radiusAU * math.Cos(meanAnomaly),
		Y: radiusAU * math.Sin(meanAnomaly),
	}
}

func daysSinceJ2000(t time.Time) float64 {
	if t.IsZero() {
		t = DefaultEpoch
	}
	return julian.TimeToJD(t) - jdJ2000
}

// Epoch returns the layout epoch.
func (c *Catalog) Epoch() time.Time {
	return c.epoch
}

// Bodies returns a copy of all bodies in catalog order.
func (c *Catalog) Bodies() []Body {
	out := make([]Body, len(c.bodies))
	copy(out, c.bodies)
	return out
}

// Len returns the number of bodies.
func (c *Catalog) Len() int {
	return len(c.bodies)
}

// Get returns a body by ID.
func (c *Catalog) Get(id string) (Body, error) {
	i, ok := c.index[id]
	if !ok {
		return Body{}, fmt.Errorf("%q: %w", id, ErrUnknownBody)
	}
	return c.bodies[i], nil
}

// Solid returns all bodies a craft can land on.
func (c *Catalog) Solid() []Body {
	var out []Body
	for _, b := range c.bodies {
		if b.Solid() {
			out = append(out, b)
		}
	}
	return out
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a catalog from YAML.
func Decode(r io.Reader) (*Catalog, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	epoch := file.Epoch
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}
	return Build(file.Bodies, epoch)
}

// WriteYAML writes the laid-out catalog with explicit positions, so that
// reloading it reproduces the same bodies regardless of epoch.
func (c *Catalog) WriteYAML(w io.Writer) error {
	file := File{Epoch: c.epoch}
	for _, b := range c.bodies {
		file.Bodies = append(file.Bodies, Definition{
			ID:         b.ID,
			Name:       b.Name,
			Type:       b.Type.String(),
			MassKg:     b.Mass,
			RadiusKm:   astro.AUToKm(b.Radius),
			PositionAU: []float64{b.Position.X, b.Position.Y, b.Position.Z},
			Parent:     b.ParentID,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}
