// Package telemetry exposes flight frames over HTTP: Prometheus metrics,
// JSON snapshots and a websocket feed.
package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-lander/internal/landing"
	"github.com/litescript/ls-lander/internal/sim"
)

// Collector bundles the flight metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Altitude          prometheus.Gauge
	VerticalSpeed     prometheus.Gauge
	Fuel              prometheus.Gauge
	Oxygen            prometheus.Gauge
	Power             prometheus.Gauge
	TimeScale         prometheus.Gauge
	Phase             prometheus.Gauge
	RecommendedThrust prometheus.Gauge

	PhaseTransitions *prometheus.CounterVec
	Landings         *prometheus.CounterVec
	Ticks            prometheus.Counter
	TickDuration     prometheus.Histogram
}

// NewCollector registers flight metrics against reg, defaulting to the
// global registry when nil. Metrics already registered are reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.Altitude, "lander_altitude_meters", "Altitude above the nearest solid body."},
		{&c.VerticalSpeed, "lander_vertical_speed_mps", "Vertical speed, positive when descending."},
		{&c.Fuel, "lander_fuel_kg", "Remaining propellant."},
		{&c.Oxygen, "lander_oxygen_hours", "Remaining oxygen."},
		{&c.Power, "lander_power_kwh", "Remaining power."},
		{&c.TimeScale, "lander_time_scale", "Simulation time multiplier."},
		{&c.Phase, "lander_phase", "Landing phase index, 0 = SPACE through 6 = LANDED."},
		{&c.RecommendedThrust, "lander_recommended_thrust", "Retro-thrust advisory as a fraction of rated thrust."},
	}
	for _, g := range gauges {
		*g.dst, err = register(reg, prometheus.Gauge(prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help})), g.name)
		if err != nil {
			return nil, err
		}
	}

	c.PhaseTransitions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lander_phase_transitions_total",
		Help: "Landing phase transitions, labeled by the phase entered.",
	}, []string{"phase"}), "lander_phase_transitions_total")
	if err != nil {
		return nil, err
	}

	c.Landings, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lander_landings_total",
		Help: "Touchdowns, labeled by result.",
	}, []string{"result"}), "lander_landings_total")
	if err != nil {
		return nil, err
	}

	c.Ticks, err = register(reg, prometheus.Counter(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lander_ticks_total",
		Help: "Simulation steps taken.",
	})), "lander_ticks_total")
	if err != nil {
		return nil, err
	}

	c.TickDuration, err = register(reg, prometheus.Histogram(prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lander_tick_duration_seconds",
		Help:    "Wall time spent stepping the simulation.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	})), "lander_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	// Export every phase series from the start, at zero.
	for _, p := range landing.Phases() {
		c.PhaseTransitions.WithLabelValues(p.String())
	}

	return c, nil
}

// Record updates the metrics from a frame. Frames that did not step the
// simulation only refresh the gauges.
func (c *Collector) Record(f sim.Frame, tickDuration time.Duration) {
	if c == nil {
		return
	}

	l := f.Landing
	c.Altitude.Set(l.Altitude)
	c.VerticalSpeed.Set(l.VerticalSpeed)
	c.Fuel.Set(f.State.Fuel)
	c.Oxygen.Set(f.State.Oxygen)
	c.Power.Set(f.State.Power)
	c.TimeScale.Set(f.TimeScale)
	c.Phase.Set(float64(l.Phase))
	c.RecommendedThrust.Set(l.RecommendedThrust)

	for _, e := range f.Effects {
		switch e.Kind {
		case landing.EffectPhaseChanged:
			c.PhaseTransitions.WithLabelValues(e.To.String()).Inc()
		case landing.EffectLanded:
			c.Landings.WithLabelValues(e.Outcome.Result()).Inc()
		}
	}

	if f.Dt > 0 {
		c.Ticks.Inc()
		c.TickDuration.Observe(tickDuration.Seconds())
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
