package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-platformer/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	case "a", "left", "h":
		return core.ActionLeft, false
	case "d", "right", "l":
		return core.ActionRight, false
	case " ", "w", "up", "k":
		return core.ActionJump, false
	case "f", "x":
		return core.ActionShoot, false
	case "p":
		return core.ActionPause, false
	case "`", "t":
		return core.ActionTerminal, false
	case "r":
		return core.ActionRestart, false
	case "b", "esc":
		return core.ActionBack, false
	}
	return core.ActionNone, false
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionRuns
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionRuns
	}
	return MenuActionNone
}

// HeldInput turns key presses into per-tick intents. Terminals report
// presses and auto-repeats but never releases, so a horizontal key counts
// as held for a window after its last press. Jump and shoot fire once per
// press.
type HeldInput struct {
	holdMs     float64
	leftUntil  float64
	rightUntil float64
	jump       bool
	shoot      bool
}

// NewHeldInput creates a HeldInput with the given hold window.
func NewHeldInput(holdMs int) *HeldInput {
	if holdMs <= 0 {
		holdMs = 150
	}
	return &HeldInput{holdMs: float64(holdMs)}
}

// Press records an action at nowMs. Pressing one direction releases the other.
func (h *HeldInput) Press(a core.Action, nowMs float64) {
	switch a {
	case core.ActionLeft:
		h.leftUntil = nowMs + h.holdMs
		h.rightUntil = 0
	case core.ActionRight:
		h.rightUntil = nowMs + h.holdMs
		h.leftUntil = 0
	case core.ActionJump:
		h.jump = true
	case core.ActionShoot:
		h.shoot = true
	}
}

// Intent returns the intent for a tick at nowMs and consumes edge-triggered actions.
func (h *HeldInput) Intent(nowMs float64) core.Intent {
	in := core.Intent{
		Left:  nowMs < h.leftUntil,
		Right: nowMs < h.rightUntil,
		Jump:  h.jump,
		Shoot: h.shoot,
	}
	h.jump, h.shoot = false, false
	return in
}

// Release drops every held and pending action.
func (h *HeldInput) Release() {
	h.leftUntil, h.rightUntil = 0, 0
	h.jump, h.shoot = false, false
}
