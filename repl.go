package oursh

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/afero"
	"pkt.systems/pslog"
)

// Evaluator runs one submitted line. It is called with the terminal in
// cooked mode and may register background jobs in jobs. Returned errors
// should be *Error values so the loop can tell parse and runtime failures,
// which are reported, from read failures, which end the session.
type Evaluator interface {
	Eval(ctx context.Context, text string, stdio IO, jobs *JobTable) (Status, error)
}

// EvalFunc adapts a function to Evaluator.
type EvalFunc func(ctx context.Context, text string, stdio IO, jobs *JobTable) (Status, error)

// Eval calls f.
func (f EvalFunc) Eval(ctx context.Context, text string, stdio IO, jobs *JobTable) (Status, error) {
	return f(ctx, text, stdio, jobs)
}

// Config holds the configuration of an interactive session.
type Config struct {
	PromptStyle  PromptStyle       // Prompt style (default: StylePlain)
	Theme        *PromptTheme      // Colors of the decorated prompts (nil for ThemeDefault)
	PromptInfo   func() PromptInfo // Source of user, host and cwd (nil for CurrentPromptInfo)
	History      *HistoryConfig    // History file and size (nil for DefaultHistoryConfig)
	HistoryStore *History          // Use this store instead of loading one from History
	SaveOnSubmit bool              // Persist history after every submitted line
	SearchPath   []string          // Completion directories (nil reads $PATH per request)
	KeyMap       *KeyMap           // Key bindings (nil for default)
	Builtins     *Builtins         // Builtins to bind to this session's history and jobs
	Querier      StatusQuerier     // Job status query (nil for WaitStatusQuerier)
	Fs           afero.Fs          // Filesystem for history and completion (nil for OS)
	Logger       pslog.Logger      // Diagnostic logger (nil discards)
	IO           IO                // Streams for the terminal and for commands
}

// Option represents a configuration option for the session
type Option func(*Config)

// WithPromptStyle sets the prompt style.
func WithPromptStyle(style PromptStyle) Option {
	return func(c *Config) {
		c.PromptStyle = style
	}
}

// WithTheme sets the prompt colors.
func WithTheme(theme *PromptTheme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithPromptInfo sets the function the user style prompt is rendered from.
func WithPromptInfo(info func() PromptInfo) Option {
	return func(c *Config) {
		c.PromptInfo = info
	}
}

// WithHistory configures history persistence.
//
// Example:
//
//	oursh.New(eval, oursh.WithHistory(&oursh.HistoryConfig{
//		File:       "~/.oursh_history",
//		MaxEntries: 500,
//	}))
func WithHistory(historyConfig *HistoryConfig) Option {
	return func(c *Config) {
		c.History = historyConfig
	}
}

// WithHistoryStore uses an already loaded history store.
func WithHistoryStore(h *History) Option {
	return func(c *Config) {
		c.HistoryStore = h
	}
}

// WithSaveOnSubmit controls whether history is written after every line
// in addition to on quit.
func WithSaveOnSubmit(save bool) Option {
	return func(c *Config) {
		c.SaveOnSubmit = save
	}
}

// WithSearchPath sets the directories executables are completed from.
func WithSearchPath(dirs []string) Option {
	return func(c *Config) {
		c.SearchPath = dirs
	}
}

// WithKeyMap sets the key bindings
func WithKeyMap(keyMap *KeyMap) Option {
	return func(c *Config) {
		c.KeyMap = keyMap
	}
}

// WithBuiltins binds b to the session: its History and Jobs are set to
// the session's, and exit saves history before the process ends.
func WithBuiltins(b *Builtins) Option {
	return func(c *Config) {
		c.Builtins = b
	}
}

// WithStatusQuerier sets how background job status is queried.
func WithStatusQuerier(q StatusQuerier) Option {
	return func(c *Config) {
		c.Querier = q
	}
}

// WithFs sets the filesystem used for history and completion.
func WithFs(fs afero.Fs) Option {
	return func(c *Config) {
		c.Fs = fs
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger pslog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithIO sets the streams used by the terminal and by commands.
func WithIO(stdio IO) Option {
	return func(c *Config) {
		c.IO = stdio
	}
}

// Session is the state one interactive session mutates: the line being
// edited, history with its navigation cursor, and the job table.
type Session struct {
	Buffer  Buffer
	History *History
	Jobs    *JobTable

	lastAction KeyAction
}

// Repl is the interactive read-eval-print loop.
type Repl struct {
	config    Config
	evaluator Evaluator
	terminal  terminalInterface
	renderer  *renderer
	session   *Session
	completer *Completer
	prompt    Prompt
	logger    pslog.Logger
	guard     *rawGuard
	exit      func(code int)
	watch     bool // release raw mode on SIGTERM/SIGHUP
}

var diagColor = color.New(color.FgRed)

// New creates an interactive session on the controlling terminal. History
// is loaded before New returns. Run must be called to start reading keys.
//
// Example:
//
//	repl, err := oursh.New(evaluator, oursh.WithPromptStyle(oursh.StyleUser))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer repl.Close()
//	if err := repl.Run(ctx); err != nil {
//		os.Exit(oursh.ExitCode(err))
//	}
func New(evaluator Evaluator, options ...Option) (*Repl, error) {
	config := Config{SaveOnSubmit: true}
	for _, option := range options {
		option(&config)
	}

	terminal, err := newRealTerminal()
	if err != nil {
		return nil, NewError(KindTerminal, "open terminal", err)
	}
	r := newFromConfig(evaluator, config, terminal)
	r.watch = true
	return r, nil
}

func newFromConfig(evaluator Evaluator, config Config, terminal terminalInterface) *Repl {
	if config.IO.In == nil {
		config.IO.In = os.Stdin
	}
	if config.IO.Out == nil {
		config.IO.Out = colorable.NewColorableStdout()
	}
	if config.IO.Err == nil {
		config.IO.Err = colorable.NewColorableStderr()
	}
	if config.KeyMap == nil {
		config.KeyMap = NewDefaultKeyMap()
	}
	if config.Theme == nil {
		config.Theme = ThemeDefault
	}
	if config.PromptInfo == nil {
		config.PromptInfo = CurrentPromptInfo
	}
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}
	logger := config.Logger
	if logger == nil {
		logger = discardLogger()
	}

	history := config.HistoryStore
	if history == nil {
		history = NewHistory(config.Fs, config.History)
		if err := history.Load(); err != nil {
			logger.With("err", err).Warn("history load failed", "file", history.File())
			diagColor.Fprintf(config.IO.Err, "oursh: %v\n", err)
		}
	}
	jobs := NewJobTable(config.Querier)
	jobs.SetLogger(logger)

	r := &Repl{
		config:    config,
		evaluator: evaluator,
		terminal:  terminal,
		renderer:  newRenderer(config.IO.Out),
		session:   &Session{History: history, Jobs: jobs},
		completer: NewCompleter(config.Fs, config.SearchPath),
		logger:    logger,
		exit:      os.Exit,
	}
	r.renderPrompt()

	if b := config.Builtins; b != nil {
		b.History = history
		b.Jobs = jobs
		next := b.Exit
		if next == nil {
			next = func(code int) { r.exit(code) }
		}
		b.Exit = func(code int) {
			r.saveHistory()
			next(code)
		}
	}
	return r
}

// Session returns the session state.
func (r *Repl) Session() *Session {
	return r.session
}

// Prompt returns the prompt currently displayed.
func (r *Repl) Prompt() Prompt {
	return r.prompt
}

// SetPromptStyle replaces the prompt with one of the given style.
func (r *Repl) SetPromptStyle(style PromptStyle) {
	r.config.PromptStyle = style
	r.renderPrompt()
}

func (r *Repl) renderPrompt() {
	r.prompt = NewPrompt(r.config.PromptStyle, r.config.Theme, r.config.PromptInfo())
}

// Close releases the terminal.
func (r *Repl) Close() error {
	if r.guard != nil {
		_ = r.guard.Release()
	}
	return r.terminal.Close()
}

// Run reads and evaluates lines until Ctrl+D on an empty line, end of
// input, or cancellation of ctx. History is saved on the way out. The
// terminal is back in cooked mode when Run returns, including when the
// evaluator panics.
func (r *Repl) Run(ctx context.Context) (err error) {
	guard, err := acquireRaw(r.terminal)
	if err != nil {
		return NewError(KindTerminal, "enter raw mode", err)
	}
	r.guard = guard
	defer func() {
		if rerr := guard.Release(); rerr != nil {
			r.logger.With("err", rerr).Error("terminal restore failed")
			if err == nil {
				err = NewError(KindTerminal, "restore terminal", rerr)
			}
		}
	}()
	stop := r.watchSignals()
	defer stop()

	r.pollJobs()
	if err := r.renderer.prompt(r.prompt); err != nil {
		return NewError(KindTerminal, "write prompt", err)
	}

	for {
		if ctx.Err() != nil {
			return r.quit()
		}
		ch, _, err := r.terminal.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				_ = r.renderer.newline()
				return r.quit()
			}
			return NewError(KindRead, "read key", err)
		}
		done, err := r.handleKey(ctx, ch)
		if err != nil {
			return err
		}
		if done {
			_ = r.renderer.newline()
			return r.quit()
		}
	}
}

func (r *Repl) quit() error {
	r.saveHistory()
	return nil
}

func (r *Repl) saveHistory() {
	if err := r.session.History.Save(); err != nil {
		r.logger.With("err", err).Warn("history save failed", "file", r.session.History.File())
		diagColor.Fprintf(crlfWriter{r.config.IO.Err}, "oursh: %v\n", err)
	}
}

// handleKey dispatches one key. It reports true when the session should
// end.
func (r *Repl) handleKey(ctx context.Context, ch rune) (bool, error) {
	var action KeyAction
	if ch == '\x1b' {
		seq, err := r.readSequence()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, nil
			}
			return false, NewError(KindRead, "read key", err)
		}
		action = r.config.KeyMap.GetSequenceAction(seq)
	} else {
		action = r.config.KeyMap.GetAction(ch)
	}

	s := r.session
	defer func() { s.lastAction = action }()

	var err error
	switch action {
	case ActionSubmit:
		err = r.submit(ctx)
	case ActionCancel:
		err = r.cancel()
	case ActionQuit:
		if s.Buffer.Empty() {
			return true, nil
		}
	case ActionMoveLeft:
		if passed, ok := s.Buffer.MoveLeft(); ok {
			err = r.renderer.moved(passed, -1)
		}
	case ActionMoveRight:
		if passed, ok := s.Buffer.MoveRight(); ok {
			err = r.renderer.moved(passed, 1)
		}
	case ActionMoveHome:
		s.Buffer.MoveTo(0)
		err = r.redraw()
	case ActionMoveEnd:
		s.Buffer.MoveTo(s.Buffer.Len())
		err = r.redraw()
	case ActionMoveWordLeft:
		s.Buffer.MoveTo(s.Buffer.WordBoundary(-1))
		err = r.redraw()
	case ActionMoveWordRight:
		s.Buffer.MoveTo(s.Buffer.WordBoundary(1))
		err = r.redraw()
	case ActionBackspace:
		if removed, ok := s.Buffer.Backspace(); ok {
			err = r.renderer.erased(&s.Buffer, removed)
		}
	case ActionDeleteChar:
		if s.Buffer.Delete() {
			err = r.renderer.tail(&s.Buffer)
		}
	case ActionDeleteLine:
		s.Buffer.Reset()
		err = r.redraw()
	case ActionDeleteToEnd:
		s.Buffer.KillToEnd()
		err = r.renderer.tail(&s.Buffer)
	case ActionDeleteWordBack:
		if s.Buffer.DeleteWordBack() {
			err = r.redraw()
		}
	case ActionHistoryUp:
		err = r.historyUp()
	case ActionHistoryDown:
		err = r.historyDown()
	case ActionComplete:
		err = r.complete()
	case ActionClearScreen:
		if err = r.renderer.clearScreen(); err == nil {
			err = r.redraw()
		}
	default:
		if ch != '\x1b' && unicode.IsPrint(ch) {
			s.Buffer.Insert(ch)
			s.History.ResetNavigation()
			err = r.renderer.inserted(&s.Buffer)
		}
	}
	if err != nil {
		var shellErr *Error
		if errors.As(err, &shellErr) {
			return false, err
		}
		return false, NewError(KindTerminal, "write terminal", err)
	}
	return false, nil
}

// readSequence reads the rest of an escape sequence after ESC.
func (r *Repl) readSequence() (string, error) {
	var seq []rune
	for !sequenceComplete(seq) {
		ch, _, err := r.terminal.ReadRune()
		if err != nil {
			return "", err
		}
		seq = append(seq, ch)
	}
	return string(seq), nil
}

func (r *Repl) redraw() error {
	return r.renderer.redraw(r.prompt, &r.session.Buffer)
}

func (r *Repl) historyUp() error {
	text, ok := r.session.History.Up()
	if !ok {
		return nil
	}
	r.session.Buffer.Set(text)
	return r.redraw()
}

func (r *Repl) historyDown() error {
	if _, navigating := r.session.History.Index(); !navigating {
		return nil
	}
	if text, ok := r.session.History.Down(); ok {
		r.session.Buffer.Set(text)
	} else {
		r.session.Buffer.Reset()
	}
	return r.redraw()
}

func (r *Repl) complete() error {
	b := &r.session.Buffer
	start, token := b.Token()
	result := r.completer.Complete(token)
	switch result.Kind {
	case Single:
		b.ReplaceRange(start, b.Cursor(), result.Prefix)
		return r.redraw()
	case Multiple:
		if len(result.Prefix) > len(token) {
			b.ReplaceRange(start, b.Cursor(), result.Prefix)
			return r.redraw()
		}
		if r.session.lastAction != ActionComplete {
			return nil
		}
		width, _, _ := r.terminal.Size()
		if err := r.renderer.candidates(result.Candidates, width); err != nil {
			return err
		}
		return r.redraw()
	default:
		return nil
	}
}

func (r *Repl) cancel() error {
	r.session.Buffer.Reset()
	r.session.History.ResetNavigation()
	if err := r.renderer.interrupted(); err != nil {
		return err
	}
	r.pollJobs()
	return r.renderer.prompt(r.prompt)
}

func (r *Repl) submit(ctx context.Context) error {
	s := r.session
	text := s.Buffer.String()
	if err := r.renderer.newline(); err != nil {
		return err
	}
	if strings.TrimSpace(text) != "" {
		if err := r.execute(ctx, text); err != nil {
			return err
		}
		s.History.Add(text)
		if r.config.SaveOnSubmit {
			r.saveHistory()
		}
		if r.prompt.Dynamic() {
			r.renderPrompt()
		}
	}
	s.History.ResetNavigation()
	s.Buffer.Reset()
	r.pollJobs()
	return r.renderer.prompt(r.prompt)
}

// execute runs text with the terminal in cooked mode. Raw mode is
// resumed on every way out, including a panicking evaluator.
func (r *Repl) execute(ctx context.Context, text string) (err error) {
	if err := r.guard.Suspend(); err != nil {
		return NewError(KindTerminal, "leave raw mode", err)
	}
	defer func() {
		if rerr := r.guard.Resume(); rerr != nil && err == nil {
			err = NewError(KindTerminal, "enter raw mode", rerr)
		}
	}()
	stop := ignoreInterrupts()
	defer stop()

	status, evalErr := r.evaluator.Eval(ctx, text, r.config.IO, r.session.Jobs)
	r.logger.Debug("line evaluated", "status", int(status), "err", evalErr)
	if evalErr == nil {
		return nil
	}
	switch KindOf(evalErr) {
	case KindRead, KindTerminal:
		return evalErr
	default:
		diagColor.Fprintf(r.config.IO.Err, "oursh: %v\n", evalErr)
		return nil
	}
}

func (r *Repl) pollJobs() {
	r.session.Jobs.Poll(crlfWriter{r.config.IO.Out})
}

func discardLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.InfoLevel,
	})
}
