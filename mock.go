package oursh

import (
	"errors"
	"io"
)

// mockTerminal implements terminalInterface for testing.
//
// Input is a pre-configured rune sequence; once it is consumed ReadRune
// returns readErr (io.EOF unless set otherwise). Every mode switch is
// appended to modes so tests can check the terminal never stays raw.
type mockTerminal struct {
	input        []rune // Pre-configured input sequence for testing
	inputPos     int    // Current position in the input sequence
	rawMode      bool   // Track raw mode state for test verification
	modes        []bool // Every raw (true) / cooked (false) transition in order
	terminalSize [2]int // Fixed terminal dimensions [width, height]
	readErr      error  // Error returned once input is exhausted
	setRawErr    error  // Error returned by SetRaw when set
	closed       bool
}

func newMockTerminal(input string) *mockTerminal {
	return &mockTerminal{
		input:        []rune(input),
		terminalSize: [2]int{80, 24},
		readErr:      io.EOF,
	}
}

func (m *mockTerminal) SetRaw() error {
	if m.setRawErr != nil {
		return m.setRawErr
	}
	m.rawMode = true
	m.modes = append(m.modes, true)
	return nil
}

func (m *mockTerminal) Restore() error {
	m.rawMode = false
	m.modes = append(m.modes, false)
	return nil
}

func (m *mockTerminal) Size() (width, height int, err error) {
	return m.terminalSize[0], m.terminalSize[1], nil
}

func (m *mockTerminal) ReadRune() (rune, int, error) {
	if m.inputPos >= len(m.input) {
		if m.readErr == nil {
			return 0, 0, errors.New("mock terminal: no input")
		}
		return 0, 0, m.readErr
	}
	r := m.input[m.inputPos]
	m.inputPos++
	return r, 1, nil
}

func (m *mockTerminal) Close() error {
	m.closed = true
	return nil
}
