// Package main demonstrates the line editor with an evaluator that echoes
// every line back.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/nao1215/oursh"
)

func main() {
	echo := oursh.EvalFunc(func(_ context.Context, text string, stdio oursh.IO, _ *oursh.JobTable) (oursh.Status, error) {
		fmt.Fprintf(stdio.Out, "You typed: %s\n", text)
		return 0, nil
	})

	// Memory only history, plain "$ " prompt
	repl, err := oursh.New(echo, oursh.WithHistory(&oursh.HistoryConfig{MaxEntries: 100}))
	if err != nil {
		log.Fatal(err)
	}
	defer repl.Close()

	fmt.Println("Basic Line Editor Example")
	fmt.Println("Press Ctrl+D on an empty line to exit")
	fmt.Println()

	if err := repl.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Goodbye!")
}
