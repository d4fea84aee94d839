package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ConsoleHelp lists the console commands.
const ConsoleHelp = "heal N | ammo N | restart | help"

// CommandKind identifies a console command.
type CommandKind int

const (
	CommandHelp CommandKind = iota
	CommandHeal
	CommandAmmo
	CommandRestart
)

// Command is a parsed console line.
type Command struct {
	Kind   CommandKind
	Amount float64
}

// ErrUnknownCommand is returned for lines that name no known command.
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand parses one console line.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, ErrUnknownCommand
	}

	switch fields[0] {
	case "help", "?":
		return Command{Kind: CommandHelp}, nil
	case "restart":
		return Command{Kind: CommandRestart}, nil
	case "heal", "ammo":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: %s N", fields[0])
		}
		if fields[0] == "heal" {
			n, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return Command{}, fmt.Errorf("heal: invalid amount %q", fields[1])
			}
			return Command{Kind: CommandHeal, Amount: n}, nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("ammo: invalid amount %q", fields[1])
		}
		return Command{Kind: CommandAmmo, Amount: float64(n)}, nil
	}
	return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
}

// console is the in-game command overlay. While it is open the simulation
// only advances its clock.
type console struct {
	input textinput.Model
	open  bool
}

func newConsole() console {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = ConsoleHelp
	ti.CharLimit = 64
	return console{input: ti}
}

func (c *console) show() tea.Cmd {
	c.open = true
	c.input.SetValue("")
	return c.input.Focus()
}

func (c *console) hide() {
	c.open = false
	c.input.Blur()
}

// submit returns the entered line and clears the input.
func (c *console) submit() string {
	line := c.input.Value()
	c.input.SetValue("")
	return line
}

func (c *console) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c console) view() string {
	return c.input.View()
}
