// Command ls-lander is a terminal spacecraft descent and landing simulator.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/config"
	"github.com/litescript/ls-lander/internal/logging"
	"github.com/litescript/ls-lander/internal/sim"
	"github.com/litescript/ls-lander/internal/state"
	"github.com/litescript/ls-lander/internal/telemetry"
	"github.com/litescript/ls-lander/internal/ui"
	"github.com/litescript/ls-lander/internal/version"
)

// CLI flags
var (
	configPath    string
	logLevel      string
	logFile       string
	catalogPath   string
	target        string
	altitude      float64
	descentRate   float64
	timeScale     float64
	liveGravity   bool
	autopilot     bool
	listenAddr    string
	headlessMode  bool
	realtime      bool
	duration      time.Duration
	jsonOut       string
	stateOut      string
	stateIn       string
	listTargets   bool
	eventsMode    bool
	exportCatalog string
	showVersion   bool
)

func main() {
	flag.StringVar(&configPath, "config", "", "YAML config file")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "Write logs to file (TUI mode discards logs otherwise)")
	flag.StringVar(&catalogPath, "catalog", "", "YAML body catalog (default: built-in solar system)")
	flag.StringVar(&target, "target", "", "Body to land on (e.g. moon, mars, europa)")
	flag.Float64Var(&altitude, "altitude", 0, "Starting altitude in meters")
	flag.Float64Var(&descentRate, "descent-rate", 0, "Starting descent rate in m/s")
	flag.Float64Var(&timeScale, "time-scale", 0, "Simulation time multiplier (0-100)")
	flag.BoolVar(&liveGravity, "live-gravity", false, "Integrate gravity into the craft's velocity")
	flag.BoolVar(&autopilot, "autopilot", false, "Start with the retro-thrust autopilot engaged")
	flag.StringVar(&listenAddr, "listen", "", "Serve telemetry (websocket, metrics, JSON) on this address")
	flag.BoolVar(&headlessMode, "headless", false, "Run without the TUI and print a summary")
	flag.BoolVar(&realtime, "realtime", false, "Headless: pace steps to wall time")
	flag.DurationVar(&duration, "duration", 30*time.Minute, "Headless: maximum simulated time")
	flag.StringVar(&jsonOut, "json", "", "Headless: export the final frame as JSON (use - for stdout)")
	flag.StringVar(&stateOut, "state-out", "", "Headless: save the final craft state as JSON")
	flag.StringVar(&stateIn, "state-in", "", "Resume from a craft state saved with --state-out")
	flag.BoolVar(&listTargets, "list-targets", false, "List bodies that can be landed on and exit")
	flag.BoolVar(&eventsMode, "events", false, "Headless: print the event log")
	flag.StringVar(&exportCatalog, "export-catalog", "", "Write the body catalog as YAML and exit (use - for stdout)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("ls-lander v%s\n", version.Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Set up logging
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	logger.Debug("catalog: %d bodies at epoch %s", catalog.Len(), catalog.Epoch().Format(time.DateOnly))

	if exportCatalog != "" {
		return writeOut(exportCatalog, catalog.WriteYAML)
	}
	if listTargets {
		printTargets(os.Stdout, catalog)
		return nil
	}

	// Create context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := newSession(cfg, catalog, logger.With("sim"))
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	stateMgr := state.NewManager(cfg.State)

	var publish ui.PublishFunc
	srvErr := make(chan error, 1)
	if cfg.Telemetry.Listen != "" {
		srv, err := newTelemetry(cfg, stateMgr, catalog, logger)
		if err != nil {
			return err
		}
		publish = srv.Publish
		go func() { srvErr <- srv.ListenAndServe(ctx) }()
	}

	headless := headlessMode || !term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		err = runHeadless(ctx, cfg, session, stateMgr, publish, logger)
	} else {
		if logFile == "" {
			// Logs would corrupt the alternate screen.
			logger.SetOutput(io.Discard)
		}
		err = runTUI(cfg, session, stateMgr, publish, logger)
	}
	stop()

	if cfg.Telemetry.Listen != "" {
		if serr := <-srvErr; serr != nil && err == nil {
			err = fmt.Errorf("telemetry: %w", serr)
		}
	}
	return err
}

// applyFlags overrides config values with flags given on the command line.
func applyFlags(cfg *config.Config) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["log-level"] {
		cfg.LogLevel = logLevel
	}
	if set["catalog"] {
		cfg.Catalog.Path = catalogPath
	}
	if set["target"] {
		cfg.Sim.Scenario.Target = target
	}
	if set["altitude"] {
		cfg.Sim.Scenario.AltitudeM = altitude
	}
	if set["descent-rate"] {
		cfg.Sim.Scenario.DescentRateMS = descentRate
	}
	if set["time-scale"] {
		cfg.Sim.TimeScale = timeScale
	}
	if set["live-gravity"] {
		cfg.Sim.LiveGravity = liveGravity
	}
	if set["autopilot"] {
		cfg.Sim.Autopilot = autopilot
	}
	if set["listen"] {
		cfg.Telemetry.Listen = listenAddr
	}
}

func loadCatalog(cfg config.Config) (*bodies.Catalog, error) {
	if cfg.Catalog.Path != "" {
		c, err := bodies.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		return c, nil
	}
	epoch, err := cfg.Epoch()
	if err != nil {
		return nil, err
	}
	return bodies.Builtin(epoch), nil
}

// newSession starts from the configured scenario, or from --state-in.
func newSession(cfg config.Config, catalog *bodies.Catalog, logger *logging.Logger) (*sim.Session, error) {
	if stateIn == "" {
		return sim.NewSession(cfg.Sim, catalog, logger)
	}
	f, err := os.Open(stateIn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	saved, err := sim.ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stateIn, err)
	}
	return sim.ResumeSession(cfg.Sim, catalog, saved, logger)
}

func printTargets(w io.Writer, c *bodies.Catalog) {
	for _, b := range c.Solid() {
		fmt.Fprintf(w, "%-12s %-10s %-8s r=%s\n", b.ID, b.Name, b.Type, sim.FormatAltitude(b.RadiusMeters()))
	}
}

func newTelemetry(cfg config.Config, m *state.Manager, c *bodies.Catalog, logger *logging.Logger) (*telemetry.Server, error) {
	collector, err := telemetry.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	opts := telemetry.Options{
		Listen:        cfg.Telemetry.Listen,
		FrameInterval: cfg.Telemetry.FrameInterval,
		PathStride:    cfg.Telemetry.PathStride,
	}
	return telemetry.NewServer(opts, m, c, collector, logger.With("telemetry")), nil
}

func runTUI(cfg config.Config, session *sim.Session, stateMgr *state.Manager, publish ui.PublishFunc, logger *logging.Logger) error {
	craft := cfg.Sim.Craft
	model := ui.New(session, stateMgr, ui.Options{
		TickInterval: cfg.UI.TickInterval,
		EventLines:   cfg.UI.EventLines,
		Capacity:     ui.Capacity{Fuel: craft.MaxFuel, Oxygen: craft.Oxygen, Power: craft.Power},
		Publish:      publish,
		Log:          logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// runHeadless steps the session without pilot input until the flight ends,
// the simulated duration elapses or ctx is cancelled.
func runHeadless(ctx context.Context, cfg config.Config, session *sim.Session, stateMgr *state.Manager, publish ui.PublishFunc, logger *logging.Logger) error {
	frameDt := cfg.UI.TickInterval
	limit := duration.Seconds()

	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(frameDt)
		defer ticker.Stop()
	}

	record := func(f sim.Frame, d time.Duration) {
		events := stateMgr.Update(f, d)
		if publish != nil {
			publish(f, events, d)
		}
	}

	f := session.Frame()
	record(f, 0)
	// A zero time scale would never advance.
	if session.TimeScale() == 0 {
		session.SetTimeScale(1)
	}

loop:
	for !f.GameOver && f.SimTime < limit {
		if ticker != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break
		}

		start := time.Now()
		f = session.Tick(frameDt, sim.Input{})
		record(f, time.Since(start))

		if f.Landing.Landed() {
			break
		}
	}
	logger.Info("headless run finished at T+%s: %s", sim.FormatSimTime(f.SimTime), f.Landing.Phase)
	hits, misses := session.PredictorStats()
	logger.Debug("trajectory cache: %d hits, %d misses", hits, misses)

	sim.WriteSummary(os.Stdout, f)

	if eventsMode {
		fmt.Println()
		for _, e := range stateMgr.RecentEvents(cfg.State.MaxEvents) {
			fmt.Printf("T+%-10s %-18s %s\n", sim.FormatSimTime(e.SimTime), e.Type, e.Detail)
		}
	}

	if jsonOut != "" {
		export := sim.ExportFrame(f, time.Now())
		if err := writeOut(jsonOut, export.WriteJSON); err != nil {
			return err
		}
	}
	if stateOut != "" {
		if err := writeOut(stateOut, func(w io.Writer) error { return sim.WriteJSON(w, f.State) }); err != nil {
			return err
		}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Debug("interrupted")
	}
	return nil
}

// writeOut writes to path, or stdout for "-".
func writeOut(path string, write func(io.Writer) error) error {
	if path == "-" {
		if err := write(os.Stdout); err != nil {
			return fmt.Errorf("write to stdout: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
