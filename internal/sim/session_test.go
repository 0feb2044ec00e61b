package sim

import (
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/flight"
	"github.com/litescript/ls-lander/internal/landing"
	"github.com/litescript/ls-lander/internal/trajectory"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Trajectory = trajectory.Config{Steps: 20, Dt: 5, PositionTolerance: 50, VelocityTolerance: 0.05}
	return cfg
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := NewSession(cfg, bodies.Default(), nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestScenarioBuild(t *testing.T) {
	c := bodies.Default()
	st, err := DefaultScenario().Build(c, flight.DefaultCraft())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, alt, ok := landing.Nearest(st.Position, c.Bodies())
	if !ok || !scalar.EqualWithinAbs(alt, 2000, 0.01) {
		t.Errorf("altitude = %v, want 2000", alt)
	}
	if !st.Forward().ApproxEqual(Up, 1e-12) {
		t.Errorf("Forward() = %v, want %v", st.Forward(), Up)
	}
	if st.TargetBody != "moon" {
		t.Errorf("TargetBody = %q, want moon", st.TargetBody)
	}
	if got := st.Velocity.Dot(Up); got != -20 {
		t.Errorf("vertical velocity = %v, want -20", got)
	}
}

func TestScenarioBuildErrors(t *testing.T) {
	c := bodies.Default()
	tests := []struct {
		name   string
		target string
		want   error
	}{
		{"unknown", "vulcan", bodies.ErrUnknownBody},
		{"star", "sun", ErrNotSolid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scenario{Target: tt.target, AltitudeM: 100}.Build(c, flight.DefaultCraft())
			if !errors.Is(err, tt.want) {
				t.Errorf("Build(%q) error = %v, want %v", tt.target, err, tt.want)
			}
		})
	}

	if _, err := NewSession(Config{Scenario: Scenario{Target: "vulcan"}}, c, nil); err == nil {
		t.Error("NewSession with unknown target should fail")
	}
}

func TestClampTimeScale(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{-3, 0},
		{0, 0},
		{250, MaxTimeScale},
		{100, 100},
		{0.25, 0.25},
	}
	for _, tt := range tests {
		if got := ClampTimeScale(tt.in); got != tt.want {
			t.Errorf("ClampTimeScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitialFrame(t *testing.T) {
	s := newTestSession(t, testConfig())
	f := s.Frame()

	if f.Tick != 0 || f.SimTime != 0 {
		t.Errorf("initial tick/time = %d/%v", f.Tick, f.SimTime)
	}
	if f.Landing.Phase != landing.PhaseDescent {
		t.Errorf("initial phase = %v, want DESCENT", f.Landing.Phase)
	}
	if f.Path.Len() != 20 {
		t.Errorf("path samples = %d, want 20", f.Path.Len())
	}
}

func TestPauseLeavesStateUntouched(t *testing.T) {
	s := newTestSession(t, testConfig())
	before := s.State()

	s.SetPaused(true)
	in := Input{Command: flight.Command{Direction: Up, Level: 1, Engine: flight.EngineMain}}
	for i := 0; i < 10; i++ {
		f := s.Tick(50*time.Millisecond, in)
		if !f.Paused {
			t.Fatal("frame should report paused")
		}
	}
	if s.State() != before {
		t.Error("state changed while paused")
	}

	if s.TogglePause() {
		t.Fatal("TogglePause should resume")
	}
	s.Tick(50*time.Millisecond, in)
	if s.State() == before {
		t.Error("state did not change after resuming")
	}
}

func TestZeroTimeScaleSkipsStep(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.SetTimeScale(0)
	f := s.Tick(time.Second, Input{})
	if f.Tick != 0 {
		t.Errorf("tick = %d, want 0 at time scale 0", f.Tick)
	}
}

func TestTickScalesDt(t *testing.T) {
	s := newTestSession(t, testConfig())
	if got := s.SetTimeScale(500); got != MaxTimeScale {
		t.Fatalf("SetTimeScale(500) = %v, want %v", got, MaxTimeScale)
	}
	s.SetTimeScale(10)

	f := s.Tick(100*time.Millisecond, Input{})
	if !scalar.EqualWithinAbs(f.Dt, 1, 1e-12) {
		t.Errorf("dt = %v, want 1", f.Dt)
	}
	if !scalar.EqualWithinAbs(f.Landing.Altitude, 1980, 0.01) {
		t.Errorf("altitude after 1 s at 20 m/s = %v, want 1980", f.Landing.Altitude)
	}
	if f.Tick != 1 || f.SimTime != f.Dt {
		t.Errorf("tick/time = %d/%v", f.Tick, f.SimTime)
	}
}

func TestThrustOnlyKeepsVelocity(t *testing.T) {
	s := newTestSession(t, testConfig())
	for i := 0; i < 20; i++ {
		s.Step(1, Input{})
	}
	if got := s.State().Velocity.Dot(Up); got != -20 {
		t.Errorf("coasting vertical velocity = %v, want -20 without live gravity", got)
	}
}

func TestLiveGravityAccelerates(t *testing.T) {
	cfg := testConfig()
	cfg.LiveGravity = true
	s := newTestSession(t, cfg)

	for i := 0; i < 10; i++ {
		s.Step(1, Input{})
	}
	vs := s.Frame().Landing.VerticalSpeed
	// Lunar surface gravity is about 1.62 m/s².
	if vs < 35 || vs > 37 {
		t.Errorf("vertical speed after 10 s of lunar gravity = %v, want ~36.2", vs)
	}
}

func TestAutopilotLandsGently(t *testing.T) {
	cfg := testConfig()
	cfg.Autopilot = true
	s := newTestSession(t, cfg)
	s.SetTimeScale(10)

	var f Frame
	sawBurn := false
	for i := 0; i < 5000 && !f.Landing.Landed(); i++ {
		f = s.Tick(100*time.Millisecond, Input{})
		sawBurn = sawBurn || f.AutopilotBurn
	}

	if !f.Landing.Landed() {
		t.Fatalf("did not land: %s", s)
	}
	if !sawBurn {
		t.Error("autopilot never fired")
	}
	o := f.Landing.Outcome
	if o == nil || !o.Success || o.Damage != 0 {
		t.Errorf("outcome = %+v, want a perfect landing", o)
	}
	if f.GameOver {
		t.Errorf("successful landing ended the game: %s", f.GameOverReason)
	}
	if f.State.Speed() != 0 {
		t.Errorf("craft should rest after touchdown, speed = %v", f.State.Speed())
	}
	if f.State.Fuel >= f.State.MaxFuel {
		t.Error("autopilot burned no fuel")
	}
}

func TestPilotOverridesAutopilot(t *testing.T) {
	cfg := testConfig()
	cfg.Autopilot = true
	cfg.Scenario.AltitudeM = 500
	s := newTestSession(t, cfg)

	// Pilot fires RCS sideways; autopilot stays out.
	in := Input{Command: flight.Command{Direction: astro.Vec3{X: 1}, Level: 1, Engine: flight.EngineRCS}}
	f := s.Step(1, in)
	if f.AutopilotBurn {
		t.Error("autopilot fired while the pilot was commanding thrust")
	}
	if f.State.ThrustVector != (astro.Vec3{X: 1}) {
		t.Errorf("ThrustVector = %v, want +X", f.State.ThrustVector)
	}
}

func TestHardLandingEndsGame(t *testing.T) {
	cfg := testConfig()
	cfg.Scenario.AltitudeM = 50
	cfg.Scenario.DescentRateMS = 25
	s := newTestSession(t, cfg)

	var f Frame
	var landed []landing.Effect
	for i := 0; i < 10 && !f.GameOver; i++ {
		f = s.Step(1, Input{})
		for _, e := range f.Effects {
			if e.Kind == landing.EffectLanded {
				landed = append(landed, e)
			}
		}
	}

	if !f.GameOver || f.GameOverReason != "Hard landing" {
		t.Fatalf("game over = %v (%q), want Hard landing", f.GameOver, f.GameOverReason)
	}
	if len(landed) != 1 {
		t.Errorf("landed effects = %d, want 1", len(landed))
	}

	// Further ticks are frozen.
	frozen := s.Step(1, Input{})
	if frozen.Tick != f.Tick {
		t.Error("session stepped after game over")
	}
	if len(frozen.Effects) != 0 || frozen.Dt != 0 {
		t.Errorf("frozen frame replayed the last step: dt=%v effects=%v", frozen.Dt, frozen.Effects)
	}
}

func TestIdleFrameCarriesNoStep(t *testing.T) {
	s := newTestSession(t, testConfig())
	if len(s.Frame().Effects) == 0 {
		t.Fatal("initial frame should carry the first phase change")
	}

	idle := s.Idle()
	if idle.Dt != 0 || len(idle.Effects) != 0 {
		t.Errorf("Idle() = dt %v, effects %v", idle.Dt, idle.Effects)
	}
	if len(s.Frame().Effects) == 0 {
		t.Error("Idle() must not clear the stored frame")
	}

	s.SetPaused(true)
	if f := s.Tick(time.Second, Input{}); len(f.Effects) != 0 {
		t.Errorf("paused tick returned effects %v", f.Effects)
	}
}

func TestOxygenDepletionEndsGame(t *testing.T) {
	cfg := testConfig()
	cfg.Craft.Oxygen = 0.001 // hours
	cfg.Scenario.DescentRateMS = 0
	s := newTestSession(t, cfg)

	f := s.Step(10, Input{})
	if f.GameOverReason != "oxygen depleted" {
		t.Errorf("reason = %q, want oxygen depleted", f.GameOverReason)
	}
	if f.State.Oxygen != 0 {
		t.Errorf("Oxygen = %v, want 0", f.State.Oxygen)
	}
}

func TestFuelExhaustionIsNotGameOver(t *testing.T) {
	cfg := testConfig()
	cfg.Craft.MaxFuel = 1
	cfg.Scenario.DescentRateMS = 0
	s := newTestSession(t, cfg)

	in := Input{Command: flight.Command{Direction: Up, Level: 1, Engine: flight.EngineMain}}
	var f Frame
	for i := 0; i < 5; i++ {
		f = s.Step(1, in)
	}
	if !f.Exhaustion.Fuel {
		t.Fatal("expected fuel exhaustion")
	}
	if f.GameOver {
		t.Errorf("fuel exhaustion ended the game: %q", f.GameOverReason)
	}
	if len(f.Depleted) != 1 || f.Depleted[0] != "fuel" {
		t.Errorf("Depleted = %v, want [fuel]", f.Depleted)
	}
}

func TestEmergencyStopInput(t *testing.T) {
	s := newTestSession(t, testConfig())
	f := s.Step(1, Input{EmergencyStop: true})
	if f.State.Speed() != 0 {
		t.Errorf("speed after emergency stop = %v, want 0", f.State.Speed())
	}
	if !scalar.EqualWithinAbs(f.Landing.Altitude, 2000, 0.01) {
		t.Errorf("altitude = %v, want 2000", f.Landing.Altitude)
	}
}

func TestRestart(t *testing.T) {
	s := newTestSession(t, testConfig())
	initial := s.State()

	s.SetTimeScale(50)
	s.ToggleAutopilot()
	for i := 0; i < 5; i++ {
		s.Step(2, Input{Command: flight.Command{Direction: Up, Level: 1, Engine: flight.EngineMain}})
	}
	if s.State() == initial {
		t.Fatal("state did not change")
	}

	gen := s.Frame().Generation
	f := s.Restart()
	if f.Generation != gen+1 {
		t.Errorf("Generation = %d, want %d", f.Generation, gen+1)
	}
	if s.State() != initial {
		t.Error("Restart did not restore the initial state")
	}
	if f.Tick != 0 || f.SimTime != 0 || s.TimeScale() != 1 || s.GameOver() != "" {
		t.Errorf("Restart frame = tick %d time %v scale %v", f.Tick, f.SimTime, s.TimeScale())
	}
}

func TestToggleAutopilot(t *testing.T) {
	s := newTestSession(t, testConfig())
	if !s.ToggleAutopilot() || !s.Frame().State.Autopilot {
		t.Error("autopilot should be on after the first toggle")
	}
	if s.ToggleAutopilot() {
		t.Error("autopilot should be off after the second toggle")
	}
}

func TestRadialUp(t *testing.T) {
	s := newTestSession(t, testConfig())
	if got := s.RadialUp(); !got.ApproxEqual(Up, 1e-9) {
		t.Errorf("RadialUp() = %v, want %v", got, Up)
	}
}

func TestAutopilotBurnsAlongRadialUp(t *testing.T) {
	cfg := testConfig()
	cfg.Autopilot = true
	cfg.Scenario.AltitudeM = 500
	s := newTestSession(t, cfg)

	// A rotation-only input tumbles the craft; the autopilot re-points it.
	f := s.Step(1, Input{Command: flight.Command{Rotation: astro.Vec3{X: 1}}})
	if !f.AutopilotBurn {
		t.Fatal("autopilot should fire inside the advisory ceiling")
	}
	if !f.State.ThrustVector.ApproxEqual(s.RadialUp(), 1e-9) {
		t.Errorf("ThrustVector = %v, want radial up %v", f.State.ThrustVector, s.RadialUp())
	}
}

func TestPredictorStats(t *testing.T) {
	s := newTestSession(t, testConfig())
	if hits, misses := s.PredictorStats(); hits != 0 || misses != 1 {
		t.Fatalf("PredictorStats() = %d/%d, want 0 hits, 1 miss", hits, misses)
	}

	s.Restart()
	if _, misses := s.PredictorStats(); misses != 2 {
		t.Errorf("misses after restart = %d, want 2", misses)
	}

	s.Step(0.01, Input{})
	if hits, misses := s.PredictorStats(); hits+misses != 3 {
		t.Errorf("PredictorStats() = %d/%d, want one more lookup", hits, misses)
	}
}
