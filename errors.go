package oursh

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInterrupted is returned when a key read is cancelled by Ctrl+C
	ErrInterrupted = errors.New("interrupted")
	// ErrTooManyArgs is reported by builtins called with surplus operands
	ErrTooManyArgs = errors.New("too many arguments")
	// ErrHomeUnset is returned by cd without operands when $HOME is not set
	ErrHomeUnset = errors.New("HOME not set")
	// ErrCommandNotFound is returned when no executable matches a command name
	ErrCommandNotFound = errors.New("command not found")
)

// ErrorKind classifies failures by what the shell does about them.
type ErrorKind int

// Error kinds. Parse and runtime errors are reported and the shell keeps
// going, read and terminal errors end the interactive session.
const (
	KindRuntime ErrorKind = iota
	KindRead
	KindParse
	KindTerminal
)

func (k ErrorKind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindParse:
		return "parse"
	case KindTerminal:
		return "terminal"
	default:
		return "runtime"
	}
}

// Error is a classified shell error.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the operation that failed.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err. Unclassified errors are runtime errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRuntime
}

// ExitCode maps an error to the process exit status used by the CLI:
// 1 for read and terminal failures, 2 for parse failures and 127 for
// anything else. A nil error maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindRead, KindTerminal:
		return 1
	case KindParse:
		return 2
	default:
		return 127
	}
}
