// Package main prints what Tab would do for each token given on the
// command line, without opening the terminal.
//
//	go run ./example/autocomplete l gr ./exa
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/oursh"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: autocomplete token...")
		os.Exit(2)
	}

	completer := oursh.NewCompleter(nil, nil)
	for _, token := range os.Args[1:] {
		result := completer.Complete(token)
		switch result.Kind {
		case oursh.Single:
			fmt.Printf("%-10s -> %s\n", token, result.Prefix)
		case oursh.Multiple:
			fmt.Printf("%-10s -> %s (%d candidates: %s)\n", token, result.Prefix,
				len(result.Candidates), strings.Join(first(result.Candidates, 8), " "))
		default:
			fmt.Printf("%-10s -> no match\n", token)
		}
	}
}

func first(list []string, n int) []string {
	if len(list) > n {
		return append(list[:n:n], "...")
	}
	return list
}
