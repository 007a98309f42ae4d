package program

import (
	"fmt"
	"strings"
)

// Op is how a pipeline is joined to the one before it.
type Op int

// List operators.
const (
	OpSeq Op = iota // ; or a line break: always run
	OpAnd           // &&: run when the previous pipeline succeeded
	OpOr            // ||: run when the previous pipeline failed
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return ";"
	}
}

// Command is a simple command: a name and its arguments.
type Command struct {
	Args []string
}

// Name returns argv[0].
func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// Pipeline is one or more commands connected by pipes.
type Pipeline struct {
	Commands   []Command
	Background bool
	Op         Op
	Text       string // source text, used as the job name
}

// Program is a list of pipelines.
type Program struct {
	Pipelines []Pipeline
}

// Empty reports whether the program has nothing to run.
func (p Program) Empty() bool {
	return len(p.Pipelines) == 0
}

// String renders the syntax tree, one node per line.
func (p Program) String() string {
	var sb strings.Builder
	sb.WriteString("Program\n")
	for i, pl := range p.Pipelines {
		fmt.Fprintf(&sb, "  Pipeline %q", pl.Text)
		if i > 0 {
			fmt.Fprintf(&sb, " after %s", pl.Op)
		}
		if pl.Background {
			sb.WriteString(" &")
		}
		sb.WriteByte('\n')
		for _, c := range pl.Commands {
			fmt.Fprintf(&sb, "    Command %q\n", c.Args)
		}
	}
	return sb.String()
}
