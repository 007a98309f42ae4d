// Package main is a minimal shell built from the library pieces: the
// Primary grammar, a user@host:cwd prompt and job notices.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nao1215/oursh"
	"github.com/nao1215/oursh/program"
)

func main() {
	builtins := &oursh.Builtins{}
	evaluator := program.NewEvaluator(program.Primary, builtins)

	repl, err := oursh.New(evaluator,
		oursh.WithBuiltins(builtins),
		oursh.WithPromptStyle(oursh.StyleUser),
		oursh.WithTheme(oursh.ThemeDark),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(oursh.ExitCode(err))
	}
	defer repl.Close()

	fmt.Println("Try: ls | wc -l, sleep 2 &, cd /tmp, jobs, exit 3")
	if err := repl.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "oursh: %v\n", err)
		os.Exit(oursh.ExitCode(err))
	}
}
