// Package oursh is the interactive front end of the oursh shell.
//
// It provides a raw mode line editor with a persistent history store,
// executable and path completion, a background job monitor and the
// builtins that must run inside the shell process. The command language
// itself lives in the program package; the editor hands every submitted
// line to an Evaluator.
//
// # Quick Start
//
//	builtins := &oursh.Builtins{}
//	repl, err := oursh.New(program.NewEvaluator(program.Primary, builtins),
//		oursh.WithBuiltins(builtins),
//		oursh.WithPromptStyle(oursh.StyleUser),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer repl.Close()
//
//	if err := repl.Run(context.Background()); err != nil {
//		os.Exit(oursh.ExitCode(err))
//	}
//
// # Key Bindings
//
// The default key map:
//   - Enter: run the line (an empty line just draws a new prompt)
//   - Ctrl+C: discard the line
//   - Ctrl+D: quit on an empty line
//   - Left/Right, Ctrl+Left/Right: move by character or word
//   - Ctrl+A/Home, Ctrl+E/End: move to beginning or end of the line
//   - Backspace, Delete: delete backwards or forwards
//   - Ctrl+K, Ctrl+U, Ctrl+W: delete to end, the whole line, the word back
//   - Up/Down: walk history
//   - Tab: complete, twice to list the candidates
//   - Ctrl+L: clear the screen
//
// Bindings can be changed through a KeyMap passed with WithKeyMap.
//
// # Terminal Modes
//
// The terminal is raw while keys are read and cooked while a command runs,
// so foreground programs see a normal terminal. Run always returns with
// the terminal cooked, also when the evaluator panics, and an interactive
// session started with New restores it before dying of SIGTERM or SIGHUP.
//
// # History
//
// History entries are unique: submitting a line that is already in the
// history moves it to the front and counts it. The history file holds one
// line per entry, most recent first.
//
// # Jobs
//
// Commands started in the background are registered in the session's
// JobTable. Before each prompt the table is polled without blocking and a
// notice is printed for every job that finished.
package oursh
