package oursh

import (
	"os"
	"sync"

	"github.com/mattn/go-tty"
	"golang.org/x/term"
)

// terminalInterface abstracts terminal operations for testability and cross-platform compatibility.
//
// Implementations:
//   - realTerminal: Uses go-tty for key input and golang.org/x/term for mode switching
//   - mockTerminal: Provides deterministic behavior for testing
type terminalInterface interface {
	SetRaw() error                        // Enter raw mode for immediate key processing
	Restore() error                       // Restore the cooked settings captured at open
	Size() (width, height int, err error) // Get terminal dimensions with safe fallbacks
	ReadRune() (rune, int, error)         // Read a single Unicode character from input
	Close() error                         // Clean up resources and prevent fd leaks
}

// realTerminal implements terminalInterface for the controlling terminal.
//
// The cooked state is captured from stdin before go-tty opens the device,
// because go-tty adjusts the line discipline on open. Restore always returns
// to that captured state, so children started while the shell is suspended
// see the same terminal the shell was started from.
type realTerminal struct {
	tty         *tty.TTY    // TTY handle from go-tty for cross-platform terminal operations
	closed      bool        // Track if terminal is already closed to prevent double-close panic on Windows
	stdinFd     int         // File descriptor for stdin for raw mode management
	cookedState *term.State // Terminal state to restore whenever the shell leaves raw mode
}

// newRealTerminal opens the controlling terminal.
func newRealTerminal() (*realTerminal, error) {
	stdinFd := int(os.Stdin.Fd())

	var cooked *term.State
	if term.IsTerminal(stdinFd) {
		state, err := term.GetState(stdinFd)
		if err != nil {
			return nil, err
		}
		cooked = state
	}

	t, err := tty.Open()
	if err != nil {
		return nil, err
	}

	return &realTerminal{
		tty:         t,
		stdinFd:     stdinFd,
		cookedState: cooked,
	}, nil
}

func (t *realTerminal) SetRaw() error {
	if t.cookedState == nil {
		return nil
	}
	_, err := term.MakeRaw(t.stdinFd)
	return err
}

func (t *realTerminal) Restore() error {
	if t.cookedState == nil {
		return nil
	}
	return term.Restore(t.stdinFd, t.cookedState)
}

func (t *realTerminal) Size() (width, height int, err error) {
	w, h, err := t.tty.Size()
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24, err
	}
	return w, h, nil
}

func (t *realTerminal) ReadRune() (rune, int, error) {
	r, err := t.tty.ReadRune()
	if err != nil {
		return 0, 0, err
	}
	return r, 1, nil
}

func (t *realTerminal) Close() error {
	// Prevent double-close which causes panic on Windows
	if t.closed {
		return nil
	}
	if t.tty != nil {
		err := t.tty.Close()
		t.closed = true
		return err
	}
	return nil
}

// rawGuard owns the raw/cooked state of a terminal for one interactive
// session. Suspend and Resume bracket command execution, Release puts the
// terminal back to cooked mode for good and is safe to call more than once
// and from the signal watcher goroutine.
type rawGuard struct {
	mu       sync.Mutex
	terminal terminalInterface
	raw      bool
	released bool
}

// acquireRaw switches the terminal to raw mode and returns its guard.
func acquireRaw(t terminalInterface) (*rawGuard, error) {
	if err := t.SetRaw(); err != nil {
		return nil, err
	}
	return &rawGuard{terminal: t, raw: true}, nil
}

// Suspend returns to cooked mode until Resume is called.
func (g *rawGuard) Suspend() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.raw {
		return nil
	}
	g.raw = false
	return g.terminal.Restore()
}

// Resume re-enters raw mode after Suspend. It does nothing once released.
func (g *rawGuard) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.raw || g.released {
		return nil
	}
	if err := g.terminal.SetRaw(); err != nil {
		return err
	}
	g.raw = true
	return nil
}

// Release restores cooked mode permanently.
func (g *rawGuard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return nil
	}
	g.released = true
	if !g.raw {
		return nil
	}
	g.raw = false
	return g.terminal.Restore()
}

// Raw reports whether the terminal is currently in raw mode.
func (g *rawGuard) Raw() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.raw
}
