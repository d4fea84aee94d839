package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/game"
	"github.com/vovakirdan/tui-platformer/internal/sim"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:      lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:        lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightCyan:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorBrown:        lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// HUD layout
const (
	hudHeight   = 2
	meterWidth  = 12
	labelStyleW = 5
)

var (
	hudLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(labelStyleW)
	hudValue = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	hudWarn  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// drawBanner boxes lines in the middle of the playfield.
func drawBanner(s *core.Screen, c core.Color, lines ...string) {
	w := 0
	for _, l := range lines {
		w = core.Max(w, utf8.RuneCountInString(l))
	}
	w += 4
	h := len(lines) + 2
	r := core.NewRect((s.Width()-w)/2, (s.Height()-h)/2, w, h)
	s.DrawRect(r, ' ')
	s.DrawBox(r)
	for i, l := range lines {
		x := r.X + (w-utf8.RuneCountInString(l))/2
		s.DrawTextColored(x, r.Y+1+i, l, c)
	}
}

// meters are the HUD progress bars.
type meters struct {
	health progress.Model
	oxygen progress.Model
	heat   progress.Model
}

func newMeters() meters {
	opts := func(color string) []progress.Option {
		return []progress.Option{
			progress.WithSolidFill(color),
			progress.WithWidth(meterWidth),
			progress.WithoutPercentage(),
		}
	}
	return meters{
		health: progress.New(opts("#e05050")...),
		oxygen: progress.New(opts("#4fa3e0")...),
		heat:   progress.New(opts("#e0a040")...),
	}
}

func ratio(v, maxV float64) float64 {
	if maxV <= 0 {
		return 0
	}
	return core.ClampF(v/maxV, 0, 1)
}

// renderHUD draws the two status lines above the playfield.
func renderHUD(mt meters, mapName string, snap sim.Snapshot, st game.Stats, width int) string {
	p := snap.Player

	health := fmt.Sprintf("%3.0f", p.Health)
	if p.Health <= p.MaxHealth/4 {
		health = hudWarn.Render(health)
	} else {
		health = hudValue.Render(health)
	}

	line1 := lipgloss.JoinHorizontal(lipgloss.Top,
		hudLabel.Render("HP"), mt.health.ViewAs(ratio(p.Health, p.MaxHealth)), " ", health,
		"   ", hudLabel.Render("O2"), mt.oxygen.ViewAs(ratio(p.Oxygen, p.OxygenMax)),
		"   ", hudLabel.Render("HEAT"), mt.heat.ViewAs(ratio(p.HeatResist, p.HeatResistMax)),
	)

	liquid := ""
	if p.InWater {
		liquid = "  in " + p.Liquid.String()
	}
	line2 := fmt.Sprintf("%s  ammo %s  score %s  time %s%s",
		hudValue.Render(mapName),
		hudValue.Render(fmt.Sprintf("%d", p.Ammo)),
		hudValue.Render(fmt.Sprintf("%d", st.Score())),
		hudValue.Render(formatDuration(st.DurationMs)),
		liquid,
	)

	return lipgloss.NewStyle().MaxWidth(width).Render(line1 + "\n" + line2)
}

// formatDuration renders milliseconds as m:ss.
func formatDuration(ms float64) string {
	secs := int(ms / 1000)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
