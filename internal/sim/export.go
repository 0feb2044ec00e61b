package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-lander/internal/flight"
	"github.com/litescript/ls-lander/internal/landing"
)

// Export is the JSON-serializable record of a session at one instant.
type Export struct {
	ExportedAt time.Time       `json:"exported_at"`
	Tick       uint64          `json:"tick"`
	SimTime    float64         `json:"sim_time_s"`
	State      flight.State    `json:"state"`
	Landing    landing.Context `json:"landing"`
	GameOver   string          `json:"game_over,omitempty"`
	PathLen    int             `json:"path_samples"`
}

// ExportFrame converts a frame to its exportable form.
func ExportFrame(f Frame, at time.Time) *Export {
	return &Export{
		ExportedAt: at,
		Tick:       f.Tick,
		SimTime:    f.SimTime,
		State:      f.State,
		Landing:    f.Landing,
		GameOver:   f.GameOverReason,
		PathLen:    f.Path.Len(),
	}
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteJSON writes the craft state alone as indented JSON.
func WriteJSON(w io.Writer, s flight.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ReadJSON decodes a craft state written by WriteJSON.
func ReadJSON(r io.Reader) (flight.State, error) {
	var s flight.State
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return flight.State{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

// WriteSummary writes a short text report of the frame.
func WriteSummary(w io.Writer, f Frame) {
	l := f.Landing
	s := f.State

	target := l.Target
	if target == "" {
		target = "-"
	}

	fmt.Fprintf(w, "Flight @ T+%s (tick %d, x%.0f)\n", FormatSimTime(f.SimTime), f.Tick, f.TimeScale)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%-14s %s\n", "Target", target)
	fmt.Fprintf(w, "%-14s %s\n", "Phase", l.Phase)
	fmt.Fprintf(w, "%-14s %s\n", "Altitude", FormatAltitude(l.Altitude))
	fmt.Fprintf(w, "%-14s %.2f m/s\n", "Vertical", l.VerticalSpeed)
	fmt.Fprintf(w, "%-14s %.2f m/s\n", "Speed", l.Speed)
	fmt.Fprintf(w, "%-14s %.0f / %.0f kg\n", "Fuel", s.Fuel, s.MaxFuel)
	fmt.Fprintf(w, "%-14s %.2f h\n", "Oxygen", s.Oxygen)
	fmt.Fprintf(w, "%-14s %.2f kWh\n", "Power", s.Power)
	fmt.Fprintf(w, "%-14s %v\n", "Gear", l.GearDeployed)

	if l.Outcome != nil {
		fmt.Fprintf(w, "\n%s (damage %.0f%%)\n", l.Outcome.Message, l.Outcome.Damage)
	}
	if f.GameOver {
		fmt.Fprintf(w, "GAME OVER: %s\n", f.GameOverReason)
	}
}

// FormatAltitude renders meters with a unit that keeps the number short.
func FormatAltitude(m float64) string {
	switch {
	case m >= 1e9 || m <= -1e9:
		return fmt.Sprintf("%.2f Gm", m/1e9)
	case m >= 1e6 || m <= -1e6:
		return fmt.Sprintf("%.2f Mm", m/1e6)
	case m >= 1e4 || m <= -1e4:
		return fmt.Sprintf("%.1f km", m/1e3)
	default:
		return fmt.Sprintf("%.1f m", m)
	}
}

// FormatSimTime renders elapsed simulated seconds as a duration.
func FormatSimTime(sec float64) string {
	d := time.Duration(sec * float64(time.Second)).Round(100 * time.Millisecond)
	return d.String()
}
