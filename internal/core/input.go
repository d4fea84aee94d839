package core

// Intent is the flat per-tick input snapshot consumed by the simulation.
// The platform layer decides how physical keys become intents.
type Intent struct {
	Left  bool
	Right bool
	Jump  bool
	Shoot bool
}

// Any reports whether any intent is set.
func (i Intent) Any() bool {
	return i.Left || i.Right || i.Jump || i.Shoot
}

// Action represents a semantic input action, abstracted from physical key presses.
type Action int

const (
	ActionNone     Action = iota
	ActionLeft            // A, Left arrow
	ActionRight           // D, Right arrow
	ActionJump            // Space, W, Up arrow
	ActionShoot           // F, X, Enter
	ActionPause           // P
	ActionTerminal        // ` - toggle the console overlay
	ActionRestart         // R - restart after game over
	ActionBack            // B, Esc - back to menu
	ActionQuit            // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionJump:
		return "Jump"
	case ActionShoot:
		return "Shoot"
	case ActionPause:
		return "Pause"
	case ActionTerminal:
		return "Terminal"
	case ActionRestart:
		return "Restart"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

