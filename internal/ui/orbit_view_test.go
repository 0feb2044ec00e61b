package ui

import (
	"strings"
	"testing"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/sim"
	"github.com/litescript/ls-lander/internal/trajectory"
)

func testOrbitModel(t *testing.T) OrbitModel {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Trajectory = trajectory.Config{Steps: 10, Dt: 5}
	s, err := sim.NewSession(cfg, bodies.Default(), nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return NewOrbitModel(s.Catalog().Bodies()).SetSize(100, 30).UpdateData(s.Frame())
}

func TestOrbitModel_ZoomKeys(t *testing.T) {
	m := testOrbitModel(t)
	if got := m.scale(); got != 1.0 {
		t.Fatalf("default scale = %v, want 1", got)
	}

	tests := []struct {
		key  rune
		want float64
	}{
		{']', 1.5},
		{']', 2.0},
		{'[', 1.5},
		{'0', 1.0},
		{'[', 0.75},
	}
	for _, tt := range tests {
		m, _ = m.Update(runeKey(tt.key))
		if got := m.scale(); got != tt.want {
			t.Errorf("after %q scale = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestOrbitModel_ZoomBounds(t *testing.T) {
	m := testOrbitModel(t)
	for range len(zoomLevels) + 2 {
		m, _ = m.Update(runeKey(']'))
	}
	if got := m.scale(); got != zoomLevels[len(zoomLevels)-1] {
		t.Errorf("max scale = %v", got)
	}
	for range len(zoomLevels) + 2 {
		m, _ = m.Update(runeKey('['))
	}
	if got := m.scale(); got != zoomLevels[0] {
		t.Errorf("min scale = %v", got)
	}
}

func TestOrbitModel_Toggles(t *testing.T) {
	m := testOrbitModel(t)

	m, _ = m.Update(runeKey('z'))
	if m.scaleMode != astro.ScaleLogR {
		t.Errorf("z should switch to log scale, got %v", m.scaleMode)
	}
	m, _ = m.Update(runeKey('v'))
	if m.plane != PlaneTop {
		t.Errorf("v should switch to the top plane, got %v", m.plane)
	}
	m, _ = m.Update(runeKey('l'))
	if m.labels {
		t.Error("l should hide labels")
	}

	out := m.View()
	if !strings.Contains(out, "top") || !strings.Contains(out, m.scaleMode.String()) {
		t.Errorf("HUD should reflect toggles:\n%s", out)
	}
	if strings.Contains(out, "craft") {
		t.Error("craft label drawn with labels off")
	}
}

func TestOrbitModel_Projection(t *testing.T) {
	m := testOrbitModel(t)

	cfg, target, ok := m.projection()
	if !ok {
		t.Fatal("target should be found")
	}
	if target.ID != "moon" {
		t.Errorf("target = %q, want moon", target.ID)
	}
	if cfg.Span < target.Radius*1.5 {
		t.Errorf("span %v smaller than the target limb", cfg.Span)
	}
}

func TestOrbitModel_FlattenSidePlane(t *testing.T) {
	m := NewOrbitModel(nil)
	v := astro.Vec3{X: 1, Y: 2, Z: 3}

	if got := m.flatten(v); got != (astro.Vec3{X: 1, Y: 3, Z: 2}) {
		t.Errorf("side flatten = %+v", got)
	}
	m.plane = PlaneTop
	if got := m.flatten(v); got != v {
		t.Errorf("top flatten = %+v", got)
	}
}

func TestOrbitModel_View(t *testing.T) {
	m := testOrbitModel(t)
	out := m.View()

	for _, want := range []string{"◆", "●", "Moon", "Zoom:", "Plane:", "side"} {
		if !strings.Contains(out, want) {
			t.Errorf("orbit view missing %q", want)
		}
	}
}

func TestOrbitModel_NoTarget(t *testing.T) {
	m := NewOrbitModel(nil).SetSize(80, 20).UpdateData(sim.Frame{})
	if out := m.View(); !strings.Contains(out, "no target in range") {
		t.Errorf("View() = %q", out)
	}
}

func TestOrbitModel_TooSmall(t *testing.T) {
	m := testOrbitModel(t).SetSize(30, 8)
	if got := m.View(); got != "Terminal too small for orbit view" {
		t.Errorf("View() = %q", got)
	}
}

func TestOrbitModel_PathEndAltitude(t *testing.T) {
	m := testOrbitModel(t)
	_, target, _ := m.projection()

	alt, ok := m.endAltitude(target)
	if !ok {
		t.Fatal("predicted path should have an endpoint")
	}
	want := "ends " + sim.FormatAltitude(alt)
	if alt <= 0 {
		want = "ends below surface"
	}
	if out := m.renderHUD(); !strings.Contains(out, want) {
		t.Errorf("HUD missing %q:\n%s", want, out)
	}

	empty := m.UpdateData(sim.Frame{Landing: m.frame.Landing})
	if _, ok := empty.endAltitude(target); ok {
		t.Error("empty path should have no endpoint")
	}
	if strings.Contains(empty.renderHUD(), "ends") {
		t.Error("HUD shows an endpoint for an empty path")
	}
}

func TestCanvasLabelMultibyte(t *testing.T) {
	c := NewOrbitModel(nil).SetSize(40, 10).newCanvas(astro.DefaultProjectionConfig())
	c.label(3, 1, "◄ craft")

	if got := string(c.grid[1][3:10]); got != "◄ craft" {
		t.Errorf("label cells = %q, want contiguous text", got)
	}
	if c.grid[1][10] != ' ' {
		t.Errorf("label overran into column 10: %q", c.grid[1][10])
	}
}
