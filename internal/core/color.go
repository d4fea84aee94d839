package core

// Color is a foreground color for a screen cell.
// The platform maps these to ANSI 256-color codes.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorBrown
	ColorGray
)

var colorNames = map[string]Color{
	"default":       ColorDefault,
	"red":           ColorRed,
	"green":         ColorGreen,
	"yellow":        ColorYellow,
	"blue":          ColorBlue,
	"magenta":       ColorMagenta,
	"cyan":          ColorCyan,
	"white":         ColorWhite,
	"bright_red":    ColorBrightRed,
	"bright_green":  ColorBrightGreen,
	"bright_yellow": ColorBrightYellow,
	"bright_blue":   ColorBrightBlue,
	"bright_cyan":   ColorBrightCyan,
	"bright_white":  ColorBrightWhite,
	"orange":        ColorOrange,
	"brown":         ColorBrown,
	"gray":          ColorGray,
}

// ParseColor resolves a catalog color name. Unknown names return ColorDefault and false.
func ParseColor(name string) (Color, bool) {
	c, ok := colorNames[name]
	return c, ok
}
