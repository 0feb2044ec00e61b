// Package landing tracks altitude over the nearest solid body, resolves the
// descent phase and scores touchdowns.
package landing

import (
	"fmt"
	"math"
)

// Phase is a descent stage derived from altitude.
type Phase int

const (
	PhaseSpace Phase = iota
	PhaseApproach
	PhaseAtmosphericEntry
	PhaseDescent
	PhaseFinalApproach
	PhaseTouchdown
	PhaseLanded
)

// Lower altitude bounds in meters; each phase covers (floor, previous floor].
const (
	SpaceFloor     = 50_000_000.0
	ApproachFloor  = 100_000.0
	EntryFloor     = 50_000.0
	DescentFloor   = 1_000.0
	FinalFloor     = 100.0
	TouchdownFloor = 1.0

	// MaxTrackingAltitude skips phase resolution when out of landing range.
	MaxTrackingAltitude = 100_000_000.0
	// AdvisoryCeiling is the altitude below which retro-thrust advice is given.
	AdvisoryCeiling = 1_000.0
)

var phaseNames = [...]string{
	PhaseSpace:            "SPACE",
	PhaseApproach:         "APPROACH",
	PhaseAtmosphericEntry: "ATMOSPHERIC_ENTRY",
	PhaseDescent:          "DESCENT",
	PhaseFinalApproach:    "FINAL_APPROACH",
	PhaseTouchdown:        "TOUCHDOWN",
	PhaseLanded:           "LANDED",
}

// String returns the phase name.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "UNKNOWN"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase name for JSON and YAML.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(b))
}

// Phases lists every phase from highest to lowest.
func Phases() []Phase {
	out := make([]Phase, len(phaseNames))
	for i := range phaseNames {
		out[i] = Phase(i)
	}
	return out
}

// PhaseFor maps an altitude in meters to a phase. Anything at or below
// TouchdownFloor, including negative altitude inside a body, is LANDED.
// NaN is treated as out of range.
func PhaseFor(altitude float64) Phase {
	switch {
	case math.IsNaN(altitude):
		return PhaseSpace
	case altitude > SpaceFloor:
		return PhaseSpace
	case altitude > ApproachFloor:
		return PhaseApproach
	case altitude > EntryFloor:
		return PhaseAtmosphericEntry
	case altitude > DescentFloor:
		return PhaseDescent
	case altitude > FinalFloor:
		return PhaseFinalApproach
	case altitude > TouchdownFloor:
		return PhaseTouchdown
	default:
		return PhaseLanded
	}
}

// Outcome is the result of a touchdown.
type Outcome struct {
	Success bool    `json:"success"`
	Damage  float64 `json:"damage"`
	Message string  `json:"message"`
}

// Result returns a short label for metrics and logs.
func (o Outcome) Result() string {
	switch {
	case !o.Success && o.Damage >= 100:
		return "catastrophic"
	case !o.Success:
		return "hard"
	case o.Damage > 0:
		return "rough"
	default:
		return "perfect"
	}
}

// HandleLanding scores a touchdown by |vertical speed| in m/s.
func HandleLanding(verticalSpeed float64) Outcome {
	s := math.Abs(verticalSpeed)
	switch {
	case s < 5:
		return Outcome{Success: true, Damage: 0, Message: "Perfect landing"}
	case s < 15:
		return Outcome{Success: true, Damage: (s - 5) * 5, Message: "Rough landing"}
	case s < 30:
		return Outcome{Success: false, Damage: 50 + (s-15)*3, Message: "Hard landing"}
	default:
		// NaN lands here too.
		return Outcome{Success: false, Damage: 100, Message: "Catastrophic impact"}
	}
}

// RecommendedThrust is a proportional retro-thrust advisory in [0,1].
// It is zero above AdvisoryCeiling.
func RecommendedThrust(altitude, verticalSpeed float64) float64 {
	if !(altitude <= AdvisoryCeiling) {
		return 0
	}
	target := math.Max(2, altitude/200)
	errSpeed := verticalSpeed - target
	return clamp01(errSpeed * 0.1)
}

func clamp01(f float64) float64 {
	if !(f > 0) {
		return 0
	}
	return math.Min(f, 1)
}
