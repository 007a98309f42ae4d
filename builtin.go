package oursh

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/pborman/getopt/v2"
)

// IO is the set of standard streams a command runs with.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdIO returns the process standard streams.
func StdIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Status is the exit status of a command, 0 for success.
type Status int

// Success reports whether the status is 0.
func (s Status) Success() bool {
	return s == 0
}

// BuiltinFunc implements a builtin. argv[0] is the name it was invoked as.
type BuiltinFunc func(b *Builtins, argv []string, stdio IO) (Status, error)

var builtinTable = map[string]BuiltinFunc{
	"exit":    builtinExit,
	"cd":      builtinCd,
	":":       builtinTrue,
	"true":    builtinTrue,
	"history": builtinHistory,
	"jobs":    builtinJobs,
	"help":    builtinHelp,
}

// Builtins runs the in-process commands. The process primitives are
// fields so tests can observe them; nil fields fall back to the os
// package.
type Builtins struct {
	Exit      func(code int)
	Chdir     func(dir string) error
	LookupEnv func(key string) (string, bool)

	History *History
	Jobs    *JobTable
}

// IsBuiltin reports whether name is handled in-process.
func IsBuiltin(name string) bool {
	_, ok := builtinTable[name]
	return ok
}

// Names returns the builtin names in sorted order.
func (b *Builtins) Names() []string {
	names := make([]string, 0, len(builtinTable))
	for name := range builtinTable {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the builtin called name.
func (b *Builtins) Lookup(name string) (BuiltinFunc, bool) {
	fn, ok := builtinTable[name]
	return fn, ok
}

// Run executes argv as a builtin. It returns ErrCommandNotFound when
// argv[0] is not a builtin.
func (b *Builtins) Run(argv []string, stdio IO) (Status, error) {
	if len(argv) == 0 {
		return 0, nil
	}
	fn, ok := b.Lookup(argv[0])
	if !ok {
		return 127, NewError(KindRuntime, argv[0], ErrCommandNotFound)
	}
	return fn(b, argv, stdio)
}

func (b *Builtins) exit(code int) {
	if b.Exit != nil {
		b.Exit(code)
		return
	}
	os.Exit(code)
}

func (b *Builtins) chdir(dir string) error {
	if b.Chdir != nil {
		return b.Chdir(dir)
	}
	return os.Chdir(dir)
}

func (b *Builtins) lookupEnv(key string) (string, bool) {
	if b.LookupEnv != nil {
		return b.LookupEnv(key)
	}
	return os.LookupEnv(key)
}

func usageError(stdio IO, name string) (Status, error) {
	fmt.Fprintf(stdio.Err, "%s: %v\n", name, ErrTooManyArgs)
	return 1, nil
}

// builtinExit quits the shell: exit [code]
func builtinExit(b *Builtins, argv []string, stdio IO) (Status, error) {
	switch len(argv) {
	case 1:
		b.exit(0)
		return 0, nil
	case 2:
		code, err := strconv.Atoi(argv[1])
		if err != nil {
			fmt.Fprintf(stdio.Err, "%s: %s: numeric argument required\n", argv[0], argv[1])
			b.exit(2)
			return 2, nil
		}
		b.exit(code)
		return Status(code), nil
	default:
		return usageError(stdio, argv[0])
	}
}

// builtinCd changes the working directory: cd [dir]
func builtinCd(b *Builtins, argv []string, stdio IO) (Status, error) {
	var dir string
	switch len(argv) {
	case 1:
		home, ok := b.lookupEnv("HOME")
		if !ok || home == "" {
			return 1, NewError(KindRuntime, argv[0], ErrHomeUnset)
		}
		dir = home
	case 2:
		dir = argv[1]
	default:
		return usageError(stdio, argv[0])
	}
	if err := b.chdir(dir); err != nil {
		return 1, NewError(KindRuntime, argv[0], err)
	}
	return 0, nil
}

func builtinTrue(*Builtins, []string, IO) (Status, error) {
	return 0, nil
}

// builtinHistory lists, searches or clears the history:
// history [-c] [-s query]
func builtinHistory(b *Builtins, argv []string, stdio IO) (Status, error) {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	query := opts.String('s', "", "list the entries matching query, best first", "query")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(argv, nil); err != nil || *helpOpt || opts.NArgs() > 0 {
		w := stdio.Err
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: history [-c] [-s query]")
		fmt.Fprintln(w, "Display or manipulate the history list.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil || opts.NArgs() > 0 {
			return 2, nil
		}
		return 0, nil
	}
	if b.History == nil {
		return 0, nil
	}

	switch {
	case *clear:
		b.History.Clear()
	case opts.IsSet('s'):
		for _, text := range b.History.Search(*query) {
			fmt.Fprintln(stdio.Out, text)
		}
	default:
		// oldest first, like every other shell
		entries := b.History.Entries()
		for i := len(entries) - 1; i >= 0; i-- {
			fmt.Fprintf(stdio.Out, "% 5d  %s (%d)\n", len(entries)-i, entries[i].Text, entries[i].Count)
		}
	}
	return 0, nil
}

// builtinJobs lists the background jobs that are still tracked.
func builtinJobs(b *Builtins, argv []string, stdio IO) (Status, error) {
	if len(argv) > 1 {
		return usageError(stdio, argv[0])
	}
	if b.Jobs == nil {
		return 0, nil
	}
	for _, job := range b.Jobs.List() {
		fmt.Fprintf(stdio.Out, "[%d] %s pid %d  %s\n", job.ID, job.Status, job.Pid, job.Command)
	}
	return 0, nil
}

func builtinHelp(b *Builtins, _ []string, stdio IO) (Status, error) {
	fmt.Fprintf(stdio.Out, "oursh %s\n", Version)
	fmt.Fprintln(stdio.Out, "These shell commands are defined internally:")
	fmt.Fprintln(stdio.Out)
	for _, name := range b.Names() {
		fmt.Fprintln(stdio.Out, "  "+name)
	}
	return 0, nil
}
