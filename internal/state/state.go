// Package state provides thread-safe access to the latest flight frame for
// readers outside the simulation loop.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-lander/internal/flight"
	"github.com/litescript/ls-lander/internal/landing"
	"github.com/litescript/ls-lander/internal/sim"
)

// EventType represents the type of flight event.
type EventType string

const (
	EventPhaseChange      EventType = "PHASE_CHANGE"
	EventGearDeployed     EventType = "GEAR_DEPLOYED"
	EventLanded           EventType = "LANDED"
	EventResourceDepleted EventType = "RESOURCE_DEPLETED"
	EventGameOver         EventType = "GAME_OVER"
	EventRestart          EventType = "RESTART"
)

// Event is a notable change between two frames.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SimTime   float64   `json:"sim_time_s"`
	Target    string    `json:"target,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Damage    float64   `json:"damage,omitempty"`
}

// TimeSeries is a single data point keyed by simulated time.
type TimeSeries struct {
	SimTime float64 `json:"t"`
	Value   float64 `json:"v"`
}

// Manager holds the latest frame, a bounded event log and history series.
type Manager struct {
	mu sync.RWMutex

	current      sim.Frame
	hasData      bool
	lastUpdate   time.Time
	tickDuration time.Duration

	// History buffers
	altitude        []TimeSeries
	fuel            []TimeSeries
	maxHistoryLen   int
	historyInterval float64
	lastSample      float64

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	now func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int     `mapstructure:"max_history"`
	MaxEvents       int     `mapstructure:"max_events"`
	HistoryInterval float64 `mapstructure:"history_interval_s"` // simulated seconds between samples
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   600, // 10 minutes at 1 sample/s
		MaxEvents:       50,
		HistoryInterval: 1,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHistory := cfg.MaxHistoryLen
	if maxHistory <= 0 {
		maxHistory = 600
	}
	return &Manager{
		maxHistoryLen:   maxHistory,
		historyInterval: cfg.HistoryInterval,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		now:             time.Now,
	}
}

// Update stores a new frame and returns the events it produced.
// A frame from a new session generation, or with a lower tick than the
// stored one, is treated as a restart.
func (m *Manager) Update(f sim.Frame, tickDuration time.Duration) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var fresh []Event
	emit := func(e Event) {
		e.Timestamp = now
		e.SimTime = f.SimTime
		m.addEvent(e)
		fresh = append(fresh, e)
	}

	prev := m.current
	if m.hasData && (f.Generation != prev.Generation || f.Tick < prev.Tick) {
		m.altitude = m.altitude[:0]
		m.fuel = m.fuel[:0]
		m.lastSample = 0
		prev = sim.Frame{}
		emit(Event{Type: EventRestart, Target: f.Landing.Target, Phase: f.Landing.Phase.String()})
	}

	m.detectEvents(prev, f, emit)

	m.current = f
	m.hasData = true
	m.lastUpdate = now
	m.tickDuration = tickDuration
	m.sample(f)

	return fresh
}

// detectEvents compares two frames and emits what changed.
func (m *Manager) detectEvents(prev, f sim.Frame, emit func(Event)) {
	for _, e := range f.Effects {
		switch e.Kind {
		case landing.EffectPhaseChanged:
			emit(Event{
				Type:   EventPhaseChange,
				Target: e.Target,
				Phase:  e.To.String(),
				Detail: fmt.Sprintf("%s -> %s", e.From, e.To),
			})
		case landing.EffectGearDeployed:
			emit(Event{Type: EventGearDeployed, Target: e.Target, Phase: e.To.String()})
		case landing.EffectLanded:
			emit(Event{
				Type:   EventLanded,
				Target: e.Target,
				Phase:  e.To.String(),
				Detail: e.Outcome.Message,
				Damage: e.Outcome.Damage,
			})
		}
	}

	for _, r := range newlyDepleted(prev.Exhaustion, f.Exhaustion) {
		emit(Event{Type: EventResourceDepleted, Target: f.Landing.Target, Detail: r})
	}

	if f.GameOver && !prev.GameOver {
		emit(Event{Type: EventGameOver, Target: f.Landing.Target, Phase: f.Landing.Phase.String(), Detail: f.GameOverReason})
	}
}

func newlyDepleted(prev, cur flight.Resources) []string {
	var out []string
	if cur.Fuel && !prev.Fuel {
		out = append(out, "fuel")
	}
	if cur.Oxygen && !prev.Oxygen {
		out = append(out, "oxygen")
	}
	if cur.Power && !prev.Power {
		out = append(out, "power")
	}
	return out
}

// sample appends history points at most once per history interval.
func (m *Manager) sample(f sim.Frame) {
	if len(m.altitude) > 0 && f.SimTime-m.lastSample < m.historyInterval {
		return
	}
	m.lastSample = f.SimTime
	m.altitude = appendBounded(m.altitude, TimeSeries{SimTime: f.SimTime, Value: f.Landing.Altitude}, m.maxHistoryLen)
	m.fuel = appendBounded(m.fuel, TimeSeries{SimTime: f.SimTime, Value: f.State.Fuel}, m.maxHistoryLen)
}

func appendBounded(s []TimeSeries, p TimeSeries, limit int) []TimeSeries {
	s = append(s, p)
	if len(s) > limit {
		s = s[1:]
	}
	return s
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Frame           sim.Frame     `json:"frame"`
	HasData         bool          `json:"has_data"`
	LastUpdate      time.Time     `json:"last_update"`
	TickDuration    time.Duration `json:"tick_duration_ns"`
	Events          []Event       `json:"events"`
	AltitudeHistory []TimeSeries  `json:"altitude_history"`
	FuelHistory     []TimeSeries  `json:"fuel_history"`
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alt := make([]TimeSeries, len(m.altitude))
	copy(alt, m.altitude)
	fuel := make([]TimeSeries, len(m.fuel))
	copy(fuel, m.fuel)

	return Snapshot{
		Frame:           m.current,
		HasData:         m.hasData,
		LastUpdate:      m.lastUpdate,
		TickDuration:    m.tickDuration,
		Events:          m.getEventsOrdered(),
		AltitudeHistory: alt,
		FuelHistory:     fuel,
	}
}

// Frame returns the latest frame.
func (m *Manager) Frame() (sim.Frame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.hasData
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// HasData returns true once a frame has been stored.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasData
}
