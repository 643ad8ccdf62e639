package core

// Color is the foreground color of a screen cell. Surfaces translate it to
// whatever their output supports; the headless renderer ignores it.
type Color uint8

const (
	ColorDefault Color = iota
	ColorGray
	ColorWhite
	ColorGreen
	ColorBrightGreen
	ColorRed
	ColorYellow
	ColorCyan
)

// Colors lists every defined color, in declaration order.
func Colors() []Color {
	return []Color{
		ColorDefault, ColorGray, ColorWhite, ColorGreen,
		ColorBrightGreen, ColorRed, ColorYellow, ColorCyan,
	}
}
