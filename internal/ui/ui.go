// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-lander/internal/logging"
	"github.com/litescript/ls-lander/internal/sim"
	"github.com/litescript/ls-lander/internal/state"
	"github.com/litescript/ls-lander/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewFlight ViewMode = iota
	ViewOrbit
)

const viewCount = 2

// maxFrameDt caps the wall time fed to one tick so a stalled terminal does
// not turn into one huge integration step.
const maxFrameDt = 250 * time.Millisecond

// timeScales are the steps +/- move through.
var timeScales = []float64{0.25, 0.5, 1, 2, 5, 10, 20, 50, 100}

// TickMsg triggers one simulation step.
type TickMsg time.Time

// PublishFunc receives every frame with the events it produced.
type PublishFunc func(f sim.Frame, events []state.Event, tickDuration time.Duration)

// Options configures the root model.
type Options struct {
	TickInterval time.Duration
	EventLines   int
	Capacity     Capacity
	Publish      PublishFunc
	Log          *logging.Logger
}

// Model is the root Bubble Tea model. It is the single writer of the session.
type Model struct {
	session *sim.Session
	state   *state.Manager
	opts    Options
	input   *InputMapper
	log     *logging.Logger
	now     func() time.Time

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	lastTick  time.Time

	// Sub-models
	flight FlightModel
	orbit  OrbitModel
}

// New creates the root model and records the session's initial frame.
func New(session *sim.Session, stateMgr *state.Manager, opts Options) Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	if opts.Capacity == (Capacity{}) {
		craft := session.Config().Craft
		opts.Capacity = Capacity{Fuel: craft.MaxFuel, Oxygen: craft.Oxygen, Power: craft.Power}
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	m := Model{
		session:  session,
		state:    stateMgr,
		opts:     opts,
		input:    NewInputMapper(0),
		log:      log.With("ui"),
		now:      time.Now,
		viewMode: ViewFlight,
		flight:   NewFlightModel(opts.Capacity, opts.EventLines),
		orbit:    NewOrbitModel(session.Catalog().Bodies()),
	}
	m.record(session.Frame(), 0)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewFlight
		case "2":
			m.viewMode = ViewOrbit
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "p":
			if m.session.TogglePause() {
				m.statusMsg = "Paused"
			} else {
				m.statusMsg = "Resumed"
			}
			m.record(m.session.Idle(), 0)
		case "+", "=":
			m.setTimeScale(nextTimeScale(m.session.TimeScale(), true))
		case "-", "_":
			m.setTimeScale(nextTimeScale(m.session.TimeScale(), false))
		case "g":
			if m.session.ToggleAutopilot() {
				m.statusMsg = "Autopilot engaged"
			} else {
				m.statusMsg = "Autopilot off"
			}
			m.record(m.session.Idle(), 0)
		case "R":
			m.input.Reset()
			m.lastTick = time.Time{}
			m.statusMsg = "Flight restarted"
			m.record(m.session.Restart(), 0)

		default:
			if !m.input.Press(key, m.now()) {
				cmds = append(cmds, m.updateActiveView(msg))
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header 3 lines, footer 2.
		contentHeight := msg.Height - 6
		m.flight = m.flight.SetSize(msg.Width, contentHeight)
		m.orbit = m.orbit.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, m.tickCmd())
		m.step(time.Time(msg))

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// step advances the session by the wall time since the previous tick.
func (m *Model) step(at time.Time) {
	frameDt := m.opts.TickInterval
	if !m.lastTick.IsZero() {
		frameDt = at.Sub(m.lastTick)
	}
	m.lastTick = at
	if frameDt > maxFrameDt {
		frameDt = maxFrameDt
	}

	in := m.input.Resolve(m.session.State(), at)
	start := time.Now()
	f := m.session.Tick(frameDt, in)
	m.record(f, time.Since(start))
}

// record pushes a frame through the state manager, the publish hook and the views.
func (m *Model) record(f sim.Frame, tickDuration time.Duration) {
	events := m.state.Update(f, tickDuration)
	for _, e := range events {
		m.log.Debug("%s %s", e.Type, e.Detail)
	}
	if m.opts.Publish != nil {
		m.opts.Publish(f, events, tickDuration)
	}
	m.flight = m.flight.UpdateData(m.state.Snapshot())
	m.orbit = m.orbit.UpdateData(f)
}

func (m *Model) setTimeScale(f float64) {
	got := m.session.SetTimeScale(f)
	m.statusMsg = fmt.Sprintf("Time scale x%g", got)
	m.record(m.session.Idle(), 0)
}

// nextTimeScale returns the next step above (or below) current.
func nextTimeScale(current float64, up bool) float64 {
	if up {
		for _, s := range timeScales {
			if s > current {
				return s
			}
		}
		return timeScales[len(timeScales)-1]
	}
	for i := len(timeScales) - 1; i >= 0; i-- {
		if timeScales[i] < current {
			return timeScales[i]
		}
	}
	return timeScales[0]
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewFlight:
		m.flight, cmd = m.flight.Update(msg)
	case ViewOrbit:
		m.orbit, cmd = m.orbit.Update(msg)
	}
	return cmd
}

// ActiveView returns the view being shown.
func (m Model) ActiveView() ViewMode {
	return m.viewMode
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewFlight:
		content = m.flight.View()
	case ViewOrbit:
		content = m.orbit.View()
	}
	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := "  " + renderTitle("LS-LANDER") + dimStyle.Render(fmt.Sprintf("  v%s · descent simulator", version.Version))
	return "\n" + title + "\n" + m.renderTabs() + "\n"
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Flight", "[2] Orbit"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	var help string
	switch m.viewMode {
	case ViewOrbit:
		help = "[/]: zoom | 0: reset | z: scale | v: plane | l: labels"
	default:
		help = "space: main | wasd/rf: rcs | arrows: rotate | x: stop | t: trend"
	}
	footer := "  " + dimStyle.Render(help+" | p: pause | +/-: time | g: autopilot | R: restart | q: quit")
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.TickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
