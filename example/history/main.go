// Package main demonstrates history persistence and the history builtin.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nao1215/oursh"
	"github.com/nao1215/oursh/program"
)

func main() {
	file := filepath.Join(os.TempDir(), "oursh_example_history")

	builtins := &oursh.Builtins{}
	repl, err := oursh.New(program.NewEvaluator(program.Primary, builtins),
		oursh.WithBuiltins(builtins),
		oursh.WithPromptStyle(oursh.StylePOSIX),
		oursh.WithHistory(&oursh.HistoryConfig{File: file, MaxEntries: 50}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer repl.Close()

	fmt.Println("History Example")
	fmt.Printf("History is stored in %s\n", file)
	fmt.Println("  Up/Down      - walk history")
	fmt.Println("  history      - list entries with their counts")
	fmt.Println("  history -s q - fuzzy search")
	fmt.Println("  history -c   - clear")
	fmt.Println()

	if err := repl.Run(context.Background()); err != nil {
		os.Exit(oursh.ExitCode(err))
	}
}
