package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/litescript/ls-lander/internal/bodies"
	"github.com/litescript/ls-lander/internal/logging"
	"github.com/litescript/ls-lander/internal/sim"
	"github.com/litescript/ls-lander/internal/state"
)

// Options configures a Server.
type Options struct {
	Listen        string
	FrameInterval time.Duration // minimum wall time between frame broadcasts
	PathStride    int           // keep every n-th predicted sample on the wire
}

// Server serves metrics, JSON snapshots and the websocket feed.
type Server struct {
	opts      Options
	manager   *state.Manager
	catalog   *bodies.Catalog
	hub       *Hub
	collector *Collector
	log       *logging.Logger

	mu        sync.Mutex
	lastFrame time.Time
	now       func() time.Time
}

// NewServer wires a server around the shared state manager.
func NewServer(opts Options, m *state.Manager, c *bodies.Catalog, col *Collector, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	if opts.PathStride < 1 {
		opts.PathStride = 1
	}
	return &Server{
		opts:      opts,
		manager:   m,
		catalog:   c,
		hub:       NewHub("ls-lander", log),
		collector: col,
		log:       log,
		now:       time.Now,
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.hub.ServeWS)
	if s.collector != nil {
		mux.Handle("GET /metrics", s.collector.Handler())
	}
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return mux
}

// Publish records metrics for f and forwards it to websocket clients.
// Events are always sent; frames are throttled to FrameInterval unless
// they carry effects or end the game.
func (s *Server) Publish(f sim.Frame, events []state.Event, tickDuration time.Duration) {
	s.collector.Record(f, tickDuration)

	for _, e := range events {
		s.hub.Publish(TypeEvent, e)
	}

	if !s.dueFrame(len(f.Effects) > 0 || f.GameOver) {
		return
	}
	wire := f
	wire.Path = f.Path.Stride(s.opts.PathStride)
	s.hub.Publish(TypeFrame, wire)
}

func (s *Server) dueFrame(force bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !force && !s.lastFrame.IsZero() && now.Sub(s.lastFrame) < s.opts.FrameInterval {
		return false
	}
	s.lastFrame = now
	return true
}

// ListenAndServe runs the hub and HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          s.log.StdLogger(logging.LevelError),
	}

	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("telemetry listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("telemetry shutdown: %v", err)
		}
		if n := s.hub.Dropped(); n > 0 {
			s.log.Warn("telemetry dropped %d messages for slow clients", n)
		}
		return nil
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if s.manager == nil || !s.manager.HasData() {
		http.Error(w, "no flight data yet", http.StatusServiceUnavailable)
		return
	}
	snap := s.manager.Snapshot()
	snap.Frame.Path = snap.Frame.Path.Stride(s.opts.PathStride)
	writeJSON(w, snap)
}

type catalogResponse struct {
	Epoch  time.Time     `json:"epoch"`
	Bodies []bodies.Body `json:"bodies"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, "no catalog loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, catalogResponse{Epoch: s.catalog.Epoch(), Bodies: s.catalog.Bodies()})
}

type healthResponse struct {
	HasData bool   `json:"has_data"`
	Tick    uint64 `json:"tick"`
	Clients int    `json:"clients"`
	Dropped uint64 `json:"dropped"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Clients: s.hub.Clients(), Dropped: s.hub.Dropped()}
	if s.manager != nil {
		if f, ok := s.manager.Frame(); ok {
			resp.HasData = true
			resp.Tick = f.Tick
		}
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
