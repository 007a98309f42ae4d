package oursh

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Version is the shell version shown by the POSIX prompt style and --version.
const Version = "0.4.0"

// PromptStyle selects how the prompt is rendered.
type PromptStyle int

// Prompt styles.
const (
	// StylePlain is the most basic possible prompt: "$ ".
	StylePlain PromptStyle = iota
	// StylePOSIX mimics sh: "oursh-0.4.0$ ".
	StylePOSIX
	// StyleUser shows user@host:cwd.
	StyleUser
	// StyleLong is an inverted host banner.
	StyleLong
	// StyleShort is a compact inverted "our$h".
	StyleShort
)

var styleNames = map[PromptStyle]string{
	StylePlain: "plain",
	StylePOSIX: "sh",
	StyleUser:  "user",
	StyleLong:  "long",
	StyleShort: "short",
}

func (s PromptStyle) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("PromptStyle(%d)", int(s))
}

// ParsePromptStyle parses a style name as used in configuration files.
func ParsePromptStyle(name string) (PromptStyle, error) {
	for style, n := range styleNames {
		if strings.EqualFold(n, name) {
			return style, nil
		}
	}
	return StylePlain, fmt.Errorf("unknown prompt style %q", name)
}

// PromptInfo is the environment snapshot a prompt is rendered from.
type PromptInfo struct {
	User string
	Host string
	Cwd  string
	Home string
	Root bool
}

// CurrentPromptInfo reads the user, host and working directory of the
// running process. Lookups that fail leave their field empty.
func CurrentPromptInfo() PromptInfo {
	var info PromptInfo
	if u, err := user.Current(); err == nil {
		info.User = u.Username
		info.Home = u.HomeDir
		info.Root = u.Uid == "0"
	}
	if host, err := os.Hostname(); err == nil {
		info.Host = host
	}
	if wd, err := os.Getwd(); err == nil {
		info.Cwd = wd
	}
	if home, ok := os.LookupEnv("HOME"); ok {
		info.Home = home
	}
	return info
}

// Prompt is an immutable pre-rendered prompt string.
type Prompt struct {
	style PromptStyle
	text  string
}

// NewPrompt renders a prompt of the given style. A nil theme uses
// ThemeDefault.
func NewPrompt(style PromptStyle, theme *PromptTheme, info PromptInfo) Prompt {
	if theme == nil {
		theme = ThemeDefault
	}
	return Prompt{style: style, text: renderPrompt(style, theme, info)}
}

// String returns the prompt as written to the terminal.
func (p Prompt) String() string {
	return p.text
}

// Style returns the style the prompt was rendered with.
func (p Prompt) Style() PromptStyle {
	return p.style
}

// Dynamic reports whether the prompt shows state that commands can change,
// such as the working directory.
func (p Prompt) Dynamic() bool {
	return p.style == StyleUser
}

func renderPrompt(style PromptStyle, theme *PromptTheme, info PromptInfo) string {
	switch style {
	case StylePOSIX:
		return fmt.Sprintf("oursh-%s%s ", Version, sigil(info))
	case StyleUser:
		return fmt.Sprintf("%s@%s:%s%s ",
			theme.User.Paint(info.User),
			theme.Host.Paint(info.Host),
			theme.Cwd.Paint(abbreviateHome(info.Cwd, info.Home)),
			sigil(info))
	case StyleLong:
		return Invert() + theme.Host.ToANSI() + " " + info.Host + " " +
			theme.Accent.ToANSI() + sigil(info) + " " + Reset() + " "
	case StyleShort:
		return theme.User.ToANSI() + Invert() + "our$h" + Reset() + " "
	default:
		return sigil(info) + " "
	}
}

func sigil(info PromptInfo) string {
	if info.Root {
		return "#"
	}
	return "$"
}

// abbreviateHome replaces a leading home directory with "~".
func abbreviateHome(path, home string) string {
	if home == "" || home == "/" {
		return path
	}
	home = filepath.Clean(home)
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}
