package program

import (
	"context"
	"fmt"
	"io"

	"github.com/nao1215/oursh"
)

// Evaluator parses and runs submitted text. It implements oursh.Evaluator.
type Evaluator struct {
	grammar  Grammar
	builtins *oursh.Builtins
	ast      io.Writer
}

// NewEvaluator creates an evaluator for grammar g dispatching builtins to
// b. A nil b gets a Builtins bound to the os package.
func NewEvaluator(g Grammar, b *oursh.Builtins) *Evaluator {
	if b == nil {
		b = &oursh.Builtins{}
	}
	return &Evaluator{grammar: g, builtins: b}
}

// PrintAST makes the evaluator write the syntax tree of every program to
// w before running it. A nil w turns it off.
func (e *Evaluator) PrintAST(w io.Writer) {
	e.ast = w
}

// Grammar returns the grammar text is parsed with.
func (e *Evaluator) Grammar() Grammar {
	return e.grammar
}

// Eval parses text and runs it.
func (e *Evaluator) Eval(ctx context.Context, text string, stdio oursh.IO, jobs *oursh.JobTable) (oursh.Status, error) {
	prog, err := Parse(e.grammar, []byte(text))
	if err != nil {
		return 2, err
	}
	if e.ast != nil {
		fmt.Fprint(e.ast, prog.String())
	}
	return prog.Run(ctx, stdio, jobs, e.builtins)
}

var _ oursh.Evaluator = (*Evaluator)(nil)
