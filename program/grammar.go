// Package program parses command lines and runs them as processes.
//
// Two grammars are available. Primary understands quoting, comments,
// pipelines, background jobs and ; && || lists. Alternate is a minimal
// blank separated grammar with | and & only, kept for comparison and for
// scripts that must not be subject to quoting.
package program

import (
	"fmt"
	"strings"
)

// Grammar selects the syntax a program is parsed with.
type Grammar int

// Grammars.
const (
	Primary Grammar = iota
	Alternate
)

func (g Grammar) String() string {
	switch g {
	case Primary:
		return "primary"
	case Alternate:
		return "alternate"
	default:
		return fmt.Sprintf("Grammar(%d)", int(g))
	}
}

// ParseGrammar parses a grammar name as used in configuration files.
func ParseGrammar(name string) (Grammar, error) {
	switch strings.ToLower(name) {
	case "", "primary", "posix":
		return Primary, nil
	case "alternate":
		return Alternate, nil
	default:
		return Primary, fmt.Errorf("unknown grammar %q", name)
	}
}
