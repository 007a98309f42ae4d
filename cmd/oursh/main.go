package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nao1215/oursh"
	"github.com/nao1215/oursh/internal/config"
	"github.com/nao1215/oursh/program"
	"pkt.systems/pslog"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], oursh.StdIO()))
}

// exitStatus carries a command's exit status out of cobra.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

var errColor = color.New(color.FgRed)

func run(ctx context.Context, args []string, stdio oursh.IO) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(stdio.Err),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)

	root := newRootCmd(stdio)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	var status exitStatus
	switch {
	case err == nil:
		return 0
	case errors.As(err, &status):
		return int(status)
	case errors.As(err, new(*oursh.Error)):
		errColor.Fprintf(stdio.Err, "oursh: %v\n", err)
		return oursh.ExitCode(err)
	default:
		pslog.Ctx(ctx).With("err", err).Error("oursh command failed")
		return 2
	}
}

type rootOptions struct {
	command     string
	interactive bool
	alternate   bool
	ast         bool
	configPath  string
	prompt      string
	historyFile string
}

func newRootCmd(stdio oursh.IO) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "oursh [flags] [file]",
		Short:         "Our shell, for the greater good",
		Version:       oursh.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), cmd, opts, args, stdio)
		},
	}
	root.SetOut(stdio.Out)
	root.SetErr(stdio.Err)

	flags := root.Flags()
	flags.StringVarP(&opts.command, "command", "c", "", "read commands from `command_string`")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "force an interactive shell")
	flags.BoolVar(&opts.alternate, "alternate", false, "use the alternate program syntax")
	flags.BoolVar(&opts.ast, "ast", false, "print program syntax trees to stderr")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/oursh/config.yaml)")
	flags.StringVar(&opts.prompt, "prompt", "", "prompt style: plain, sh, user, long or short")
	flags.StringVar(&opts.historyFile, "history-file", "", "history file")

	root.AddCommand(newConfigCmd(opts))
	return root
}

func runShell(ctx context.Context, cmd *cobra.Command, opts *rootOptions, args []string, stdio oursh.IO) error {
	logger := pslog.Ctx(ctx)
	cfg, err := config.Load(nil, opts.configPath)
	if err != nil {
		return err
	}
	if opts.prompt != "" {
		cfg.Prompt.Style = opts.prompt
	}
	if opts.historyFile != "" {
		cfg.History.File = opts.historyFile
	}

	grammar, err := program.ParseGrammar(cfg.Grammar)
	if err != nil {
		return err
	}
	if opts.alternate {
		grammar = program.Alternate
	}
	builtins := &oursh.Builtins{}
	evaluator := program.NewEvaluator(grammar, builtins)
	if opts.ast {
		evaluator.PrintAST(stdio.Err)
	}
	logger.Debug("shell starting", "grammar", grammar.String(), "prompt", cfg.Prompt.Style)

	switch {
	case cmd.Flags().Changed("command"):
		return runText(ctx, evaluator, opts.command, stdio)
	case len(args) == 1:
		text, err := os.ReadFile(args[0])
		if err != nil {
			return oursh.NewError(oursh.KindRead, "read script", err)
		}
		return runText(ctx, evaluator, string(text), stdio)
	case opts.interactive || (isTerminal(os.Stdin) && isTerminal(os.Stderr)):
		return runInteractive(ctx, cfg, evaluator, builtins, stdio, logger)
	default:
		text, err := io.ReadAll(stdio.In)
		if err != nil {
			return oursh.NewError(oursh.KindRead, "read stdin", err)
		}
		return runText(ctx, evaluator, string(text), stdio)
	}
}

// runText runs a whole script once and exits with its status.
func runText(ctx context.Context, evaluator *program.Evaluator, text string, stdio oursh.IO) error {
	status, err := evaluator.Eval(ctx, text, stdio, oursh.NewJobTable(nil))
	if err != nil {
		return err
	}
	if status != 0 {
		return exitStatus(status)
	}
	return nil
}

func runInteractive(ctx context.Context, cfg config.Config, evaluator oursh.Evaluator, builtins *oursh.Builtins, stdio oursh.IO, logger pslog.Logger) error {
	style, err := oursh.ParsePromptStyle(cfg.Prompt.Style)
	if err != nil {
		return err
	}
	theme, ok := oursh.ThemeByName(cfg.Prompt.Theme)
	if !ok {
		theme = oursh.ThemeDefault
	}

	repl, err := oursh.New(evaluator,
		oursh.WithBuiltins(builtins),
		oursh.WithPromptStyle(style),
		oursh.WithTheme(theme),
		oursh.WithHistory(&oursh.HistoryConfig{
			File:       cfg.History.File,
			MaxEntries: cfg.History.MaxEntries,
		}),
		oursh.WithSaveOnSubmit(cfg.History.SaveOnSubmit),
		oursh.WithSearchPath(searchPath(cfg.Completion.Path)),
		oursh.WithLogger(logger),
		oursh.WithIO(stdio),
	)
	if err != nil {
		return err
	}
	defer repl.Close()

	return repl.Run(ctx)
}

// searchPath returns nil for an empty configured path so completion
// follows $PATH.
func searchPath(dirs []string) []string {
	if len(dirs) == 0 {
		return nil
	}
	return dirs
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
