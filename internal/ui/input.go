package ui

import (
	"time"

	"github.com/litescript/ls-lander/internal/astro"
	"github.com/litescript/ls-lander/internal/flight"
	"github.com/litescript/ls-lander/internal/sim"
)

// Action is a flight control bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionMain
	ActionForward
	ActionBack
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionPitchUp
	ActionPitchDown
	ActionYawLeft
	ActionYawRight
	ActionEmergencyStop
)

// DefaultHoldWindow bridges the gap between terminal key repeats so a held
// key reads as continuous input.
const DefaultHoldWindow = 150 * time.Millisecond

// RotationRate is the angular speed of the attitude keys in rad/s.
const RotationRate = 0.5

var keyActions = map[string]Action{
	" ":     ActionMain,
	"space": ActionMain,
	"w":     ActionForward,
	"s":     ActionBack,
	"a":     ActionLeft,
	"d":     ActionRight,
	"r":     ActionUp,
	"f":     ActionDown,
	"up":    ActionPitchUp,
	"down":  ActionPitchDown,
	"left":  ActionYawLeft,
	"right": ActionYawRight,
	"x":     ActionEmergencyStop,
}

// rcsAxes are body-frame translation directions.
var rcsAxes = map[Action]astro.Vec3{
	ActionForward: {Z: 1},
	ActionBack:    {Z: -1},
	ActionLeft:    {X: -1},
	ActionRight:   {X: 1},
	ActionUp:      {Y: 1},
	ActionDown:    {Y: -1},
}

var rotationAxes = map[Action]astro.Vec3{
	ActionPitchUp:   {X: RotationRate},
	ActionPitchDown: {X: -RotationRate},
	ActionYawLeft:   {Y: RotationRate},
	ActionYawRight:  {Y: -RotationRate},
}

// ActionForKey maps a bubbletea key string to an Action.
func ActionForKey(key string) Action {
	return keyActions[key]
}

// InputMapper turns key presses into per-tick simulation input.
type InputMapper struct {
	hold     time.Duration
	pressed  map[Action]time.Time
	stopOnce bool
}

// NewInputMapper creates a mapper; hold <= 0 uses DefaultHoldWindow.
func NewInputMapper(hold time.Duration) *InputMapper {
	if hold <= 0 {
		hold = DefaultHoldWindow
	}
	return &InputMapper{hold: hold, pressed: make(map[Action]time.Time)}
}

// Press records a key press at now. It reports whether the key is a flight control.
func (im *InputMapper) Press(key string, now time.Time) bool {
	a := ActionForKey(key)
	switch a {
	case ActionNone:
		return false
	case ActionEmergencyStop:
		im.stopOnce = true
	default:
		im.pressed[a] = now
	}
	return true
}

// Reset forgets all held keys.
func (im *InputMapper) Reset() {
	clear(im.pressed)
	im.stopOnce = false
}

// Held reports whether a is within its hold window at now.
func (im *InputMapper) Held(a Action, now time.Time) bool {
	t, ok := im.pressed[a]
	return ok && now.Sub(t) <= im.hold
}

// Resolve builds the input for one tick. Body-frame RCS translation is
// rotated into the world frame with the craft's attitude. The main engine
// takes priority over RCS. The emergency stop is consumed.
func (im *InputMapper) Resolve(s flight.State, now time.Time) sim.Input {
	var in sim.Input
	in.EmergencyStop = im.stopOnce
	im.stopOnce = false

	var rot, local astro.Vec3
	for a, t := range im.pressed {
		if now.Sub(t) > im.hold {
			delete(im.pressed, a)
			continue
		}
		if axis, ok := rotationAxes[a]; ok {
			rot = rot.Add(axis)
		}
		if axis, ok := rcsAxes[a]; ok {
			local = local.Add(axis)
		}
	}
	in.Command.Rotation = rot

	switch {
	case im.Held(ActionMain, now):
		in.Command.Engine = flight.EngineMain
		in.Command.Direction = s.Forward()
		in.Command.Level = 1
	case !local.Degenerate():
		world := astro.FromMgl(s.Attitude().Rotate(local.Mgl()))
		in.Command.Engine = flight.EngineRCS
		in.Command.Direction = world
		in.Command.Level = 1
	}
	return in
}
