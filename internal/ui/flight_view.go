package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-lander/internal/landing"
	"github.com/litescript/ls-lander/internal/sim"
	"github.com/litescript/ls-lander/internal/state"
)

const gaugeWidth = 24

// FlightModel renders the landing HUD.
type FlightModel struct {
	width      int
	height     int
	snapshot   state.Snapshot
	capacity   Capacity
	eventLines int
	showTrend  bool
}

// Capacity holds the full-tank values the consumable gauges are scaled against.
type Capacity struct {
	Fuel   float64
	Oxygen float64
	Power  float64
}

// NewFlightModel creates the HUD model.
func NewFlightModel(capacity Capacity, eventLines int) FlightModel {
	if eventLines < 0 {
		eventLines = 0
	}
	return FlightModel{capacity: capacity, eventLines: eventLines, showTrend: true}
}

// SetSize updates the viewport size.
func (m FlightModel) SetSize(width, height int) FlightModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData replaces the displayed snapshot.
func (m FlightModel) UpdateData(snap state.Snapshot) FlightModel {
	m.snapshot = snap
	return m
}

// Update handles view-local keys.
func (m FlightModel) Update(msg tea.Msg) (FlightModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "t" {
		m.showTrend = !m.showTrend
	}
	return m, nil
}

// View renders the HUD.
func (m FlightModel) View() string {
	if !m.snapshot.HasData {
		return dimStyle.Render("  Waiting for first frame...")
	}

	f := m.snapshot.Frame
	sections := []string{
		m.renderStatus(f),
		m.renderKinematics(f),
		m.renderAdvisory(f.Landing),
		m.renderConsumables(f),
	}
	if m.showTrend {
		sections = append(sections, m.renderTrend())
	}
	if banner := m.renderBanner(f); banner != "" {
		sections = append(sections, banner)
	}
	if m.eventLines > 0 {
		sections = append(sections, m.renderEvents())
	}
	return strings.Join(sections, "\n\n")
}

func (m FlightModel) renderStatus(f sim.Frame) string {
	l := f.Landing
	target := strings.ToUpper(l.Target)
	if target == "" {
		target = "NO TARGET"
	}

	phase := accentStyle.Render("▶ " + l.Phase.String())
	if !l.InRange {
		phase = dimStyle.Render("▷ OUT OF RANGE")
	}

	gear := dimStyle.Render("GEAR UP")
	if l.GearDeployed {
		gear = goodStyle.Render("GEAR DOWN")
	}

	auto := dimStyle.Render("AP off")
	if f.State.Autopilot {
		auto = accentStyle.Render("AP on")
		if f.AutopilotBurn {
			auto = warnStyle.Render("AP burn")
		}
	}

	clock := valueStyle.Render("T+" + sim.FormatSimTime(f.SimTime))
	scale := valueStyle.Render(fmt.Sprintf("x%g", f.TimeScale))
	if f.Paused {
		scale = warnStyle.Render("PAUSED")
	}

	return "  " + strings.Join([]string{
		valueStyle.Bold(true).Render(target), phase, gear, auto, scale, clock,
	}, "   ")
}

func (m FlightModel) renderKinematics(f sim.Frame) string {
	l := f.Landing
	arrow := "↓"
	if l.VerticalSpeed < 0 {
		arrow = "↑"
	}

	engine := "idle"
	if f.State.ThrustLevel > 0 {
		engine = fmt.Sprintf("%3.0f%%", f.State.ThrustLevel*100)
	}

	var b strings.Builder
	b.WriteString("  " + labelStyle.Render("ALT") + valueStyle.Width(14).Render(sim.FormatAltitude(l.Altitude)))
	b.WriteString(labelStyle.Render("V/S") + valueStyle.Width(14).Render(fmt.Sprintf("%s %.1f m/s", arrow, math.Abs(l.VerticalSpeed))))
	b.WriteString(labelStyle.Render("SPEED") + valueStyle.Render(fmt.Sprintf("%.1f m/s", l.Speed)))
	b.WriteString("\n  " + labelStyle.Render("THRUST") + valueStyle.Render(engine))
	return b.String()
}

func (m FlightModel) renderAdvisory(l landing.Context) string {
	label := labelStyle.Render("RETRO")
	if !l.AdvisoryActive() {
		return "  " + label + dimStyle.Render(fmt.Sprintf("-- above %.0f m", landing.AdvisoryCeiling))
	}
	pct := fmt.Sprintf(" %3.0f%%", l.RecommendedThrust*100)
	return "  " + label + renderGauge(l.RecommendedThrust, gaugeWidth) + valueStyle.Render(pct)
}

func (m FlightModel) renderConsumables(f sim.Frame) string {
	s := f.State
	rows := []struct {
		name  string
		value float64
		max   float64
		unit  string
		empty bool
	}{
		{"FUEL", s.Fuel, m.capacity.Fuel, "kg", f.Exhaustion.Fuel},
		{"O2", s.Oxygen, m.capacity.Oxygen, "h", f.Exhaustion.Oxygen},
		{"POWER", s.Power, m.capacity.Power, "kWh", f.Exhaustion.Power},
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		frac := 0.0
		if r.max > 0 {
			frac = r.value / r.max
		}
		value := valueStyle.Render(fmt.Sprintf(" %.1f %s", r.value, r.unit))
		if r.empty {
			value = errorStyle.Render(" EMPTY")
		}
		lines = append(lines, "  "+labelStyle.Render(r.name)+renderGauge(frac, gaugeWidth)+value)
	}
	return strings.Join(lines, "\n")
}

func (m FlightModel) renderTrend() string {
	values := make([]float64, len(m.snapshot.AltitudeHistory))
	for i, p := range m.snapshot.AltitudeHistory {
		values[i] = p.Value
	}
	width := m.width - 12
	if width < 10 {
		width = 10
	}
	return "  " + labelStyle.Render("TREND") + barStyle.Render(sparkline(values, width))
}

func (m FlightModel) renderBanner(f sim.Frame) string {
	var lines []string
	if o := f.Landing.Outcome; o != nil {
		style := goodStyle
		if !o.Success {
			style = errorStyle
		} else if o.Damage > 0 {
			style = warnStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s · damage %.0f%%", o.Message, o.Damage)))
	}
	if f.GameOver {
		lines = append(lines, errorStyle.Render("GAME OVER: "+f.GameOverReason)+dimStyle.Render("  (R to restart)"))
	}
	if len(lines) == 0 {
		return ""
	}
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(0, 1)
	return lipgloss.NewStyle().MarginLeft(2).Render(box.Render(strings.Join(lines, "\n")))
}

func (m FlightModel) renderEvents() string {
	events := m.snapshot.Events
	if len(events) > m.eventLines {
		events = events[len(events)-m.eventLines:]
	}

	var b strings.Builder
	b.WriteString("  " + dimStyle.Render("EVENTS"))
	if len(events) == 0 {
		b.WriteString("\n  " + dimStyle.Render("none"))
	}
	for _, e := range events {
		detail := e.Detail
		if detail == "" {
			detail = e.Target
		}
		b.WriteString(fmt.Sprintf("\n  %s  %s  %s",
			dimStyle.Render("T+"+sim.FormatSimTime(e.SimTime)),
			eventStyle(e.Type).Render(fmt.Sprintf("%-17s", e.Type)),
			valueStyle.Render(detail)))
	}
	return b.String()
}

func eventStyle(t state.EventType) lipgloss.Style {
	switch t {
	case state.EventGameOver, state.EventResourceDepleted:
		return errorStyle
	case state.EventLanded, state.EventGearDeployed:
		return goodStyle
	default:
		return accentStyle
	}
}
