// Package palette colors terminal text with fatih/color under an explicit
// on/off switch, independent of color's global terminal detection.
package palette

import (
	"os"

	"github.com/fatih/color"
)

// Palette paints strings when Enabled
type Palette struct {
	Enabled bool
}

// New returns a palette that is enabled unless NO_COLOR is set or noColor
// is true.
func New(noColor bool) Palette {
	return Palette{Enabled: !noColor && os.Getenv("NO_COLOR") == ""}
}

// Paint wraps s in the given attributes.
func (p Palette) Paint(s string, attrs ...color.Attribute) string {
	if !p.Enabled || s == "" {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Red paints s red
func (p Palette) Red(s string) string { return p.Paint(s, color.FgRed) }

// Green paints s green
func (p Palette) Green(s string) string { return p.Paint(s, color.FgGreen) }

// Yellow paints s yellow
func (p Palette) Yellow(s string) string { return p.Paint(s, color.FgYellow) }

// Blue paints s blue
func (p Palette) Blue(s string) string { return p.Paint(s, color.FgBlue) }

// Deleted marks text removed from the expected value
func (p Palette) Deleted(s string) string { return p.Paint(s, color.FgRed, color.BgRed) }

// Inserted marks text added in the actual value
func (p Palette) Inserted(s string) string { return p.Paint(s, color.FgGreen, color.BgGreen) }
