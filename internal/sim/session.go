package sim

import (
	"fmt"
	"time"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/flight"
	"github.com/litescript/ls-lander/internal/landing"
	"github.com/litescript/ls-lander/internal/logging"
	"github.com/litescript/ls-lander/internal/trajectory"
)

// Input is the pilot's resolved controls for one tick.
type Input struct {
	Command       flight.Command
	EmergencyStop bool
}

// Frame is what a tick produced, for the HUD and telemetry.
type Frame struct {
	Tick           uint64           `json:"tick"`
	Generation     uint64           `json:"generation"` // bumped by every Restart
	SimTime        float64          `json:"sim_time_s"`
	Dt             float64          `json:"dt_s"`
	TimeScale      float64          `json:"time_scale"`
	Paused         bool             `json:"paused"`
	State          flight.State     `json:"state"`
	Landing        landing.Context  `json:"landing"`
	Path           trajectory.Path  `json:"path"`
	Effects        []landing.Effect `json:"effects,omitempty"`
	Exhaustion     flight.Resources `json:"exhaustion"`
	AutopilotBurn  bool             `json:"autopilot_burn"`
	GameOver       bool             `json:"game_over"`
	GameOverReason string           `json:"game_over_reason,omitempty"`
	Depleted       []string         `json:"depleted,omitempty"`
}

// Session owns the craft state for one flight. It is not safe for
// concurrent use; publish Frames through state.Manager instead.
type Session struct {
	cfg       Config
	catalog   *bodies.Catalog
	bodies    []bodies.Body
	ctrl      *landing.Controller
	predictor *trajectory.Predictor
	log       *logging.Logger

	initial flight.State
	state   flight.State

	generation uint64
	tick       uint64
	simTime    float64
	timeScale  float64
	paused     bool
	gameOver   string
	exhaustion flight.Resources
	last       Frame
}

// NewSession builds a session from cfg over catalog.
func NewSession(cfg Config, catalog *bodies.Catalog, log *logging.Logger) (*Session, error) {
	if catalog == nil {
		catalog = bodies.Default()
	}
	initial, err := cfg.Scenario.Build(catalog, cfg.Craft)
	if err != nil {
		return nil, err
	}
	initial.Autopilot = cfg.Autopilot
	return newSession(cfg, catalog, initial, log), nil
}

// ResumeSession starts a session from a saved craft state instead of the
// scenario. Restart returns to that state.
func ResumeSession(cfg Config, catalog *bodies.Catalog, saved flight.State, log *logging.Logger) (*Session, error) {
	if catalog == nil {
		catalog = bodies.Default()
	}
	if !saved.Position.IsFinite() || !saved.Velocity.IsFinite() {
		return nil, ErrBadState
	}
	if !(saved.Mass > 0) || saved.Fuel < 0 || saved.Fuel > saved.MaxFuel {
		return nil, ErrBadState
	}
	if saved.TargetBody != "" {
		if _, err := catalog.Get(saved.TargetBody); err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
	}
	cfg.Scenario.Target = saved.TargetBody
	return newSession(cfg, catalog, saved, log), nil
}

func newSession(cfg Config, catalog *bodies.Catalog, initial flight.State, log *logging.Logger) *Session {
	if log == nil {
		log = logging.Discard()
	}
	s := &Session{
		cfg:       cfg,
		catalog:   catalog,
		bodies:    catalog.Bodies(),
		ctrl:      landing.NewController(cfg.Hysteresis),
		predictor: trajectory.NewPredictor(cfg.Trajectory),
		log:       log,
		initial:   initial,
	}
	s.reset()
	s.log.Info("session ready: target=%s altitude=%.0fm live_gravity=%v",
		s.last.Landing.Target, s.last.Landing.Altitude, cfg.LiveGravity)
	return s
}

func (s *Session) reset() {
	s.state = s.initial
	s.ctrl.Reset()
	s.predictor.Invalidate()
	s.tick = 0
	s.simTime = 0
	s.timeScale = ClampTimeScale(s.cfg.TimeScale)
	s.paused = false
	s.gameOver = ""
	s.exhaustion = flight.Resources{}

	effects := s.ctrl.Update(s.state, s.bodies)
	s.last = s.frame(0, effects, false)
}

// Restart discards the flight and returns the initial frame.
func (s *Session) Restart() Frame {
	s.generation++
	s.reset()
	s.log.Info("session restarted")
	return s.last
}

// Catalog returns the bodies the session flies through.
func (s *Session) Catalog() *bodies.Catalog {
	return s.catalog
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// State returns the current craft state.
func (s *Session) State() flight.State {
	return s.state
}

// Frame returns the most recent frame without stepping.
func (s *Session) Frame() Frame {
	return s.last
}

// Paused reports whether stepping is suspended.
func (s *Session) Paused() bool {
	return s.paused
}

// SetPaused suspends or resumes stepping.
func (s *Session) SetPaused(p bool) {
	s.paused = p
	s.last.Paused = p
}

// TogglePause flips the pause state and returns the new value.
func (s *Session) TogglePause() bool {
	s.SetPaused(!s.paused)
	return s.paused
}

// TimeScale returns the current multiplier.
func (s *Session) TimeScale() float64 {
	return s.timeScale
}

// SetTimeScale sets the multiplier, clamped to [0, MaxTimeScale].
func (s *Session) SetTimeScale(f float64) float64 {
	s.timeScale = ClampTimeScale(f)
	s.last.TimeScale = s.timeScale
	return s.timeScale
}

// ToggleAutopilot flips the retro-thrust autopilot and returns the new value.
func (s *Session) ToggleAutopilot() bool {
	s.state.Autopilot = !s.state.Autopilot
	s.last.State.Autopilot = s.state.Autopilot
	return s.state.Autopilot
}

// GameOver returns the reason the flight ended, or "".
func (s *Session) GameOver() string {
	return s.gameOver
}

// Tick advances the session by frameDt of wall time scaled by the time
// scale. A paused or finished session returns Idle.
func (s *Session) Tick(frameDt time.Duration, in Input) Frame {
	if s.paused || s.gameOver != "" {
		return s.Idle()
	}
	dt := frameDt.Seconds() * s.timeScale
	if !(dt > 0) {
		return s.Idle()
	}
	return s.Step(dt, in)
}

// Idle returns the last frame with no step attached: zero dt and no effects.
func (s *Session) Idle() Frame {
	f := s.last
	f.Dt = 0
	f.Effects = nil
	return f
}

// Step advances the session by dt simulated seconds regardless of pause
// and time scale. It does nothing once the flight is over.
func (s *Session) Step(dt float64, in Input) Frame {
	if s.gameOver != "" || !(dt > 0) {
		return s.Idle()
	}

	st := s.state
	p := s.cfg.Params
	autoBurn := false

	if s.ctrl.Context().Landed() {
		// Resting on the surface: life support still runs.
		st = flight.UpdateConsumables(st, dt, p)
	} else {
		st = flight.Rotate(st, in.Command.Rotation, dt)
		if in.EmergencyStop {
			st = flight.EmergencyStop(st)
		}

		cmd := in.Command
		if cmd.Level <= 0 && st.Autopilot {
			var ok bool
			st, cmd, ok = s.autopilot(st)
			autoBurn = ok
		}
		st = flight.ApplyCommand(st, cmd, dt, p)

		if s.cfg.LiveGravity {
			st = flight.ApplyGravity(st, s.bodies, dt)
		}
		st = flight.UpdateConsumables(st, dt, p)
		st = flight.IntegratePosition(st, dt)
	}

	effects := s.ctrl.Update(st, s.bodies)
	lctx := s.ctrl.Context()
	st.TargetBody = lctx.Target
	if lctx.Landed() {
		// Touchdown brings the craft to rest on the surface.
		st = flight.EmergencyStop(st)
	}

	s.state = st
	s.tick++
	s.simTime += dt

	for _, e := range effects {
		s.logEffect(e)
	}
	s.checkGameOver(lctx)

	s.last = s.frame(dt, effects, autoBurn)
	return s.last
}

// autopilot points the craft away from the target and fires the main
// engine at the advised retro-thrust level.
func (s *Session) autopilot(st flight.State) (flight.State, flight.Command, bool) {
	lctx := s.ctrl.Context()
	if !lctx.AdvisoryActive() || lctx.RecommendedThrust <= 0 {
		return st, flight.Command{}, false
	}

	st = flight.PointAt(st, s.RadialUp())
	cmd := flight.Command{
		Direction: st.Forward(),
		Level:     lctx.RecommendedThrust,
		Engine:    flight.EngineMain,
	}
	return st, cmd, true
}

func (s *Session) checkGameOver(lctx landing.Context) {
	ex := flight.Exhaustion(s.state)
	if ex.Fuel && !s.exhaustion.Fuel {
		s.log.Warn("fuel exhausted at t=%.1fs", s.simTime)
	}
	s.exhaustion = ex

	switch {
	case ex.Oxygen:
		s.gameOver = "oxygen depleted"
	case ex.Power:
		s.gameOver = "power depleted"
	case lctx.Outcome != nil && !lctx.Outcome.Success:
		s.gameOver = lctx.Outcome.Message
	default:
		return
	}
	s.log.Warn("game over: %s", s.gameOver)
}

func (s *Session) logEffect(e landing.Effect) {
	switch e.Kind {
	case landing.EffectPhaseChanged:
		s.log.Info("phase %s -> %s over %s", e.From, e.To, e.Target)
	case landing.EffectGearDeployed:
		s.log.Info("landing gear deployed")
	case landing.EffectLanded:
		s.log.Info("touchdown on %s: %s (damage %.0f%%)", e.Target, e.Outcome.Message, e.Outcome.Damage)
	}
}

func (s *Session) frame(dt float64, effects []landing.Effect, autoBurn bool) Frame {
	path := s.predictor.Predict(s.state.Position, s.state.Velocity, s.bodies)
	return Frame{
		Tick:           s.tick,
		Generation:     s.generation,
		SimTime:        s.simTime,
		Dt:             dt,
		TimeScale:      s.timeScale,
		Paused:         s.paused,
		State:          s.state,
		Landing:        s.ctrl.Context(),
		Path:           path,
		Effects:        effects,
		Exhaustion:     s.exhaustion,
		AutopilotBurn:  autoBurn,
		GameOver:       s.gameOver != "",
		GameOverReason: s.gameOver,
		Depleted:       depleted(s.exhaustion),
	}
}

func depleted(r flight.Resources) []string {
	var out []string
	if r.Fuel {
		out = append(out, "fuel")
	}
	if r.Oxygen {
		out = append(out, "oxygen")
	}
	if r.Power {
		out = append(out, "power")
	}
	return out
}

// RadialUp returns the unit vector from the tracked target body to the craft,
// or Up when the target is unknown. The autopilot burns along it.
func (s *Session) RadialUp() astro.Vec3 {
	b, err := s.catalog.Get(s.state.TargetBody)
	if err != nil {
		return Up
	}
	up := s.state.Position.ToMeters().Sub(b.Position.ToMeters()).Normalized()
	if up.IsZero() {
		return Up
	}
	return up
}

// PredictorStats returns the trajectory cache hit and miss counts.
func (s *Session) PredictorStats() (hits, misses int) {
	return s.predictor.Stats()
}

// String summarizes the session for logs.
func (s *Session) String() string {
	l := s.ctrl.Context()
	return fmt.Sprintf("t=%.1fs phase=%s alt=%.1fm vs=%.2fm/s fuel=%.0fkg",
		s.simTime, l.Phase, l.Altitude, l.VerticalSpeed, s.state.Fuel)
}
