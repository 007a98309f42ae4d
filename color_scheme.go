package oursh

import (
	"fmt"
	"strings"
)

// PromptTheme defines the colors used by the decorated prompt styles.
type PromptTheme struct {
	Name   string `json:"name"`
	User   Color  `json:"user"`
	Host   Color  `json:"host"`
	Cwd    Color  `json:"cwd"`
	Accent Color  `json:"accent"`
}

// Color represents an RGB color with optional formatting.
type Color struct {
	R    uint8 `json:"r"`
	G    uint8 `json:"g"`
	B    uint8 `json:"b"`
	Bold bool  `json:"bold"`
}

// ThemeDefault uses the classic terminal red, blue and green.
var ThemeDefault = &PromptTheme{
	Name:   "default",
	User:   Color{R: 205, G: 49, B: 49, Bold: true},
	Host:   Color{R: 36, G: 114, B: 200, Bold: true},
	Cwd:    Color{R: 13, G: 188, B: 121},
	Accent: Color{R: 229, G: 229, B: 16},
}

// ThemeDark is a dark theme with light blue and off-white segments
var ThemeDark = &PromptTheme{
	Name:   "dark",
	User:   Color{R: 255, G: 121, B: 198, Bold: true},
	Host:   Color{R: 102, G: 217, B: 239, Bold: true},
	Cwd:    Color{R: 80, G: 250, B: 123},
	Accent: Color{R: 241, G: 250, B: 140},
}

// ThemeSolarizedDark is the Solarized Dark color scheme
var ThemeSolarizedDark = &PromptTheme{
	Name:   "solarized",
	User:   Color{R: 220, G: 50, B: 47, Bold: true},
	Host:   Color{R: 38, G: 139, B: 210, Bold: true},
	Cwd:    Color{R: 133, G: 153, B: 0},
	Accent: Color{R: 181, G: 137, B: 0},
}

var themes = []*PromptTheme{ThemeDefault, ThemeDark, ThemeSolarizedDark}

// ThemeByName looks a built-in theme up by its Name.
func ThemeByName(name string) (*PromptTheme, bool) {
	for _, th := range themes {
		if strings.EqualFold(th.Name, name) {
			return th, true
		}
	}
	return nil, false
}

// ToANSI converts a Color to an ANSI escape sequence.
func (c Color) ToANSI() string {
	var codes []string

	// Bold formatting comes first
	if c.Bold {
		codes = append(codes, "1")
	}

	// RGB color (true color support)
	codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", c.R, c.G, c.B))

	return fmt.Sprintf("\x1b[%sm", strings.Join(codes, ";"))
}

// Paint wraps s in the color and a reset.
func (c Color) Paint(s string) string {
	return c.ToANSI() + s + Reset()
}

// Reset returns the ANSI reset sequence.
func Reset() string {
	return "\x1b[0m"
}

// Invert returns the ANSI reverse video sequence.
func Invert() string {
	return "\x1b[7m"
}
