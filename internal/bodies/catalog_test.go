package bodies

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-lander/internal/astro"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		expected Type
		wantErr  bool
	}{
		{"star", TypeStar, false},
		{"Planet", TypePlanet, false},
		{" moon ", TypeMoon, false},
		{"dwarf_planet", TypeDwarf, false},
		{"asteroid", TypeAsteroid, false},
		{"station", TypeStation, false},
		{"comet", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseType(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseType(%q) err = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.expected {
				t.Errorf("ParseType(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	for _, typ := range []Type{TypeStar, TypePlanet, TypeMoon, TypeDwarf, TypeAsteroid, TypeStation} {
		back, err := ParseType(typ.String())
		if err != nil || back != typ {
			t.Errorf("ParseType(%q) = %v, %v", typ.String(), back, err)
		}
	}
	if Type(42).String() != "unknown" {
		t.Errorf("Type(42).String() = %q", Type(42).String())
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if c.Len() != len(BuiltinDefinitions) {
		t.Fatalf("Len() = %d, want %d", c.Len(), len(BuiltinDefinitions))
	}

	sun, err := c.Get("sun")
	if err != nil {
		t.Fatalf("Get(sun): %v", err)
	}
	if sun.Solid() {
		t.Error("sun should not be solid")
	}
	if !sun.Position.IsZero() {
		t.Errorf("sun position = %v, want origin", sun.Position)
	}

	for _, b := range c.Solid() {
		if b.Type == TypeStar {
			t.Errorf("Solid() returned star %q", b.ID)
		}
	}

	earth, _ := c.Get("earth")
	if d := earth.Position.Norm(); math.Abs(d-1.0) > 1e-9 {
		t.Errorf("earth heliocentric distance = %v AU, want 1", d)
	}
	if got := earth.RadiusMeters(); math.Abs(got-6.371e6) > 1 {
		t.Errorf("earth radius = %v m, want 6.371e6", got)
	}

	moon, _ := c.Get("moon")
	sep := astro.AUToKm(moon.Position.Sub(earth.Position).Norm())
	if math.Abs(sep-384400) > 1 {
		t.Errorf("moon-earth separation = %v km, want 384400", sep)
	}
	if moon.ParentID != "earth" {
		t.Errorf("moon parent = %q, want earth", moon.ParentID)
	}
}

func TestBuiltinEpochMovesPlanets(t *testing.T) {
	a, _ := Builtin(DefaultEpoch).Get("mars")
	b, _ := Builtin(DefaultEpoch.Add(90 * 24 * time.Hour)).Get("mars")
	if a.Position.ApproxEqual(b.Position, 1e-6) {
		t.Error("mars should be placed differently 90 days apart")
	}
	if math.Abs(a.Position.Norm()-b.Position.Norm()) > 1e-9 {
		t.Error("circular placement should keep orbit radius")
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := Default().Get("vulcan")
	if !errors.Is(err, ErrUnknownBody) {
		t.Errorf("Get(vulcan) err = %v, want ErrUnknownBody", err)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
		want error
	}{
		{
			name: "negative mass",
			defs: []Definition{{ID: "x", Type: "planet", MassKg: -1}},
			want: ErrNegativeMass,
		},
		{
			name: "duplicate",
			defs: []Definition{{ID: "x", Type: "planet"}, {ID: "x", Type: "moon"}},
			want: ErrDuplicateID,
		},
		{
			name: "unknown parent",
			defs: []Definition{{ID: "x", Type: "moon", Parent: "nope", OrbitKm: 10}},
			want: ErrUnknownParent,
		},
		{
			name: "empty id",
			defs: []Definition{{Name: "Nameless", Type: "planet"}},
			want: ErrEmptyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.defs, DefaultEpoch)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildBadType(t *testing.T) {
	_, err := Build([]Definition{{ID: "x", Type: "nebula"}}, DefaultEpoch)
	if err == nil || !strings.Contains(err.Error(), "nebula") {
		t.Errorf("Build() err = %v, want unknown type error", err)
	}
}

func TestDecode(t *testing.T) {
	src := `
epoch: 2030-06-01T00:00:00Z
bodies:
  - id: kerbol
    name: Kerbol
    type: star
    mass_kg: 1.7565e28
    radius_km: 261600
  - id: kerbin
    name: Kerbin
    type: planet
    mass_kg: 5.2915e22
    radius_km: 600
    position_au: [0.09, 0, 0]
  - id: mun
    type: moon
    mass_kg: 9.76e20
    radius_km: 200
    parent: kerbin
    orbit_km: 12000
`
	c, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if !c.Epoch().Equal(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Epoch() = %v", c.Epoch())
	}

	mun, err := c.Get("mun")
	if err != nil {
		t.Fatalf("Get(mun): %v", err)
	}
	if mun.Name != "mun" {
		t.Errorf("name defaults to id, got %q", mun.Name)
	}
	// No period: the moon sits on the parent's +X axis.
	want := astro.Vec3{X: 0.09 + astro.KmToAU(12000)}
	if !mun.Position.ApproxEqual(want, 1e-12) {
		t.Errorf("mun position = %v, want %v", mun.Position, want)
	}
}

func TestDecodeBadPosition(t *testing.T) {
	src := "bodies:\n  - id: x\n    type: planet\n    position_au: [1, 2]\n"
	if _, err := Decode(strings.NewReader(src)); err == nil {
		t.Error("expected error for 2-component position")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	orig := Default()

	var buf bytes.Buffer
	if err := orig.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Len() != orig.Len() {
		t.Fatalf("Len() = %d, want %d", back.Len(), orig.Len())
	}
	for _, want := range orig.Bodies() {
		got, err := back.Get(want.ID)
		if err != nil {
			t.Fatalf("Get(%s): %v", want.ID, err)
		}
		if got.Type != want.Type || got.Mass != want.Mass {
			t.Errorf("%s: got %+v, want %+v", want.ID, got, want)
		}
		if !got.Position.ApproxEqual(want.Position, 1e-12) {
			t.Errorf("%s position = %v, want %v", want.ID, got.Position, want.Position)
		}
		if math.Abs(got.Radius-want.Radius) > 1e-15 {
			t.Errorf("%s radius = %v, want %v", want.ID, got.Radius, want.Radius)
		}
	}
}
