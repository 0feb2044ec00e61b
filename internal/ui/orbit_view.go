package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/sim"
)

// Plane selects which pair of world axes the orbit view draws.
type Plane int

const (
	PlaneTop  Plane = iota // X/Y, looking down the Z axis
	PlaneSide              // X/Z, looking along the Y axis
)

// String returns the plane name.
func (p Plane) String() string {
	if p == PlaneSide {
		return "side"
	}
	return "top"
}

// Discrete zoom levels for clean stepping
var zoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0, 25.0, 100.0}

const defaultZoom = 3

// OrbitModel renders a projection of the bodies and predicted path around
// the tracked target.
type OrbitModel struct {
	width  int
	height int
	frame  sim.Frame
	bodies []bodies.Body

	zoomLevel int
	scaleMode astro.ScaleMode
	plane     Plane
	labels    bool
}

// NewOrbitModel creates the orbit view over a fixed set of bodies.
func NewOrbitModel(bs []bodies.Body) OrbitModel {
	return OrbitModel{
		bodies:    bs,
		zoomLevel: defaultZoom,
		scaleMode: astro.ScaleLinear,
		plane:     PlaneSide,
		labels:    true,
	}
}

func (m OrbitModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

// SetSize updates the viewport size.
func (m OrbitModel) SetSize(width, height int) OrbitModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData replaces the displayed frame.
func (m OrbitModel) UpdateData(f sim.Frame) OrbitModel {
	m.frame = f
	return m
}

// Update handles view-local keys.
func (m OrbitModel) Update(msg tea.Msg) (OrbitModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "]":
			if m.zoomLevel < len(zoomLevels)-1 {
				m.zoomLevel++
			}
		case "[":
			if m.zoomLevel > 0 {
				m.zoomLevel--
			}
		case "0":
			m.zoomLevel = defaultZoom
		case "z":
			m.scaleMode = (m.scaleMode + 1) % 2
		case "v":
			m.plane = (m.plane + 1) % 2
		case "l":
			m.labels = !m.labels
		}
	}
	return m, nil
}

// projection centres the view on the target body and sizes it so the craft
// and the target surface both fit.
func (m OrbitModel) projection() (astro.ProjectionConfig, bodies.Body, bool) {
	cfg := astro.DefaultProjectionConfig()
	cfg.Mode = m.scaleMode
	cfg.Scale = m.scale()

	var target bodies.Body
	found := false
	for _, b := range m.bodies {
		if b.ID == m.frame.Landing.Target {
			target, found = b, true
			break
		}
	}
	if !found {
		return cfg, target, false
	}

	cfg.Origin = m.flatten(target.Position)
	dist := m.flatten(m.frame.State.Position).Sub(cfg.Origin).Norm()
	cfg.Span = math.Max(target.Radius*1.5, dist*1.2)
	return cfg, target, true
}

// flatten maps world coordinates into the drawing plane, which ProjectTopDown
// always treats as X/Y.
func (m OrbitModel) flatten(v astro.Vec3) astro.Vec3 {
	if m.plane == PlaneSide {
		return astro.Vec3{X: v.X, Y: v.Z, Z: v.Y}
	}
	return v
}

// View renders the orbit view.
func (m OrbitModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for orbit view"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(), m.renderHUD())
}

type canvas struct {
	grid           [][]rune
	w, h           int
	cx, cy         int
	displayScale   float64
	cfg            astro.ProjectionConfig
	flatten        func(astro.Vec3) astro.Vec3
	aspectCorrectY float64
}

func (m OrbitModel) newCanvas(cfg astro.ProjectionConfig) *canvas {
	h := m.height - 4
	if h < 5 {
		h = 5
	}
	w := m.width
	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
	}
	cx, cy := w/2, h/2
	return &canvas{
		grid: grid, w: w, h: h, cx: cx, cy: cy,
		// Terminal cells are about twice as tall as wide.
		displayScale:   float64(min(cx, cy*2)) * 0.9,
		cfg:            cfg,
		flatten:        m.flatten,
		aspectCorrectY: 0.5,
	}
}

func (c *canvas) toScreen(v astro.Vec3) (int, int) {
	p := astro.ProjectTopDown(c.flatten(v), c.cfg)
	return c.cx + int(math.Round(p.X*c.displayScale)),
		c.cy - int(math.Round(p.Y*c.displayScale*c.aspectCorrectY))
}

func (c *canvas) set(x, y int, r rune, overwrite bool) bool {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return false
	}
	if !overwrite && c.grid[y][x] != ' ' {
		return false
	}
	c.grid[y][x] = r
	return true
}

func (c *canvas) label(x, y int, text string) {
	col := 0
	for _, r := range text {
		px := x + col
		col++
		if px >= c.w {
			break
		}
		if px >= 0 && y >= 0 && y < c.h && (c.grid[y][px] == ' ' || c.grid[y][px] == '·') {
			c.grid[y][px] = r
		}
	}
}

// drawCircle outlines a body's limb.
func (c *canvas) drawCircle(center astro.Vec3, radiusAU float64) {
	cx, cy := c.toScreen(center)
	ex, _ := c.toScreen(center.Add(astro.Vec3{X: radiusAU}))
	r := math.Abs(float64(ex - cx))
	if r < 1 {
		return
	}

	steps := int(2 * math.Pi * r)
	steps = max(8, min(steps, 720))
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(r*math.Cos(theta)))
		y := cy - int(math.Round(r*math.Sin(theta)*c.aspectCorrectY))
		c.set(x, y, '○', false)
	}
}

func (m OrbitModel) buildCanvas() string {
	cfg, target, ok := m.projection()
	c := m.newCanvas(cfg)

	if ok {
		c.drawCircle(target.Position, target.Radius)
	}

	for _, p := range m.frame.Path.Stride(2).All() {
		x, y := c.toScreen(p)
		c.set(x, y, '·', false)
	}

	for _, b := range m.bodies {
		x, y := c.toScreen(b.Position)
		glyph := '•'
		switch {
		case b.Type == bodies.TypeStar:
			glyph = '☉'
		case ok && b.ID == target.ID:
			glyph = '●'
		}
		if c.set(x, y, glyph, true) && m.labels && (ok && b.ID == target.ID || !ok) {
			c.label(x+2, y, b.Name)
		}
	}

	x, y := c.toScreen(m.frame.State.Position)
	if c.set(x, y, '◆', true) && m.labels {
		c.label(x+2, y, "◄ craft")
	}

	return renderCanvas(c.grid)
}

func renderCanvas(grid [][]rune) string {
	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	limbStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	sunStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	craftStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))

	var b strings.Builder
	for _, row := range grid {
		for _, ch := range row {
			var style lipgloss.Style
			switch ch {
			case ' ':
				b.WriteRune(ch)
				continue
			case '·':
				style = pathStyle
			case '○':
				style = limbStyle
			case '☉':
				style = sunStyle
			case '●', '•':
				style = bodyStyle
			case '◆', '◄':
				style = craftStyle
			default:
				style = textStyle
			}
			b.WriteString(style.Render(string(ch)))
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func (m OrbitModel) renderHUD() string {
	cfg, target, ok := m.projection()

	var b strings.Builder
	if ok {
		b.WriteString(accentStyle.Render("● " + target.Name))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("span "))
		b.WriteString(valueStyle.Render(sim.FormatAltitude(astro.AUToMeters(cfg.Span))))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("path "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d samples", m.frame.Path.Len())))
		if alt, ok := m.endAltitude(target); ok {
			b.WriteString("  ")
			b.WriteString(dimStyle.Render("ends "))
			if alt <= 0 {
				b.WriteString(warnStyle.Render("below surface"))
			} else {
				b.WriteString(valueStyle.Render(sim.FormatAltitude(alt)))
			}
		}
	} else {
		b.WriteString(dimStyle.Render("no target in range"))
	}
	b.WriteString("\n")

	b.WriteString(dimStyle.Render("Mode:"))
	b.WriteString(valueStyle.Render(cfg.Mode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2gx", m.scale())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Plane:"))
	b.WriteString(valueStyle.Render(m.plane.String()))
	return b.String()
}

// endAltitude is the height above the target's surface at the end of the
// predicted path.
func (m OrbitModel) endAltitude(target bodies.Body) (float64, bool) {
	last, ok := m.frame.Path.Last()
	if !ok {
		return 0, false
	}
	return astro.AUToMeters(last.Sub(target.Position).Norm() - target.Radius), true
}
