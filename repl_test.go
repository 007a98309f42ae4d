package oursh

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEvaluator remembers every line it was asked to run.
type recordingEvaluator struct {
	lines []string
	run   func(text string, stdio IO, jobs *JobTable) (Status, error)
}

func (e *recordingEvaluator) Eval(_ context.Context, text string, stdio IO, jobs *JobTable) (Status, error) {
	e.lines = append(e.lines, text)
	if e.run != nil {
		return e.run(text, stdio, jobs)
	}
	return 0, nil
}

type replHarness struct {
	repl     *Repl
	terminal *mockTerminal
	eval     *recordingEvaluator
	querier  *fakeQuerier
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	exits    []int
}

func newReplHarness(t *testing.T, input string, options ...Option) *replHarness {
	t.Helper()

	h := &replHarness{
		terminal: newMockTerminal(input),
		eval:     &recordingEvaluator{},
		querier:  newFakeQuerier(),
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
	}
	config := Config{
		PromptStyle:  StylePlain,
		PromptInfo:   func() PromptInfo { return gopherInfo },
		HistoryStore: memoryHistory(100),
		SearchPath:   []string{"/bin"},
		Querier:      h.querier,
		Fs:           afero.NewMemMapFs(),
		IO:           IO{In: bytes.NewReader(nil), Out: h.out, Err: h.errOut},
	}
	for _, option := range options {
		option(&config)
	}
	h.repl = newFromConfig(h.eval, config, h.terminal)
	h.repl.exit = func(code int) { h.exits = append(h.exits, code) }
	return h
}

func (h *replHarness) run(t *testing.T) {
	t.Helper()
	require.NoError(t, h.repl.Run(context.Background()))
	assert.False(t, h.terminal.rawMode, "terminal left in raw mode")
}

func TestReplSubmit(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "echo hello world\r")
	h.run(t)

	assert.Equal(t, []string{"echo hello world"}, h.eval.lines)
	assert.Equal(t, []HistoryEntry{{Text: "echo hello world", Count: 1}}, h.repl.Session().History.Entries())
	assert.True(t, h.repl.Session().Buffer.Empty())
	assert.Equal(t, "$ echo hello world\r\n$ \r\n", h.out.String())
	assert.Equal(t, []bool{true, false, true, false}, h.terminal.modes, "cooked while the command runs")
}

func TestReplEditing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantText   string
		wantCursor int
	}{
		{"backspace", "cd\x7f", "c", 1},
		{"insert after move left", "ac\x1b[Db", "abc", 2},
		{"home then delete", "xls\x01\x1b[3~", "ls", 0},
		{"kill to end", "echo hi\x1b[D\x1b[D\x0b", "echo ", 5},
		{"delete line", "rm -rf /\x15", "", 0},
		{"delete word", "git commit\x17", "git ", 4},
		{"ctrl-d on a non-empty line", "ab\x04", "ab", 2},
		{"unbound control keys are ignored", "a\x1b[5~\x02", "a", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newReplHarness(t, tt.input)
			h.run(t)
			assert.Equal(t, tt.wantText, h.repl.Session().Buffer.String())
			assert.Equal(t, tt.wantCursor, h.repl.Session().Buffer.Cursor())
			assert.Empty(t, h.eval.lines)
		})
	}
}

func TestReplBackspaceOutput(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "cd\x7f")
	h.run(t)
	assert.Equal(t, "$ cd\x1b[1D\x1b[K\r\n", h.out.String())
}

func TestReplHistoryNavigation(t *testing.T) {
	t.Parallel()

	store := func() Option {
		h := memoryHistory(100)
		h.Add("ls")
		h.Add("pwd")
		return WithHistoryStore(h)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"up once", "\x1b[A", "pwd"},
		{"up twice", "\x1b[A\x1b[A", "ls"},
		{"up clamps", "\x1b[A\x1b[A\x1b[A", "ls"},
		{"back down", "\x1b[A\x1b[A\x1b[B", "pwd"},
		{"down to the live line", "\x1b[A\x1b[B", ""},
		{"down without navigating", "abc\x1b[B", "abc"},
		{"application mode keys", "\x1bOA", "pwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newReplHarness(t, tt.input, store())
			h.run(t)
			assert.Equal(t, tt.want, h.repl.Session().Buffer.String())
		})
	}
}

func TestReplHistoryUpEmpty(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "\x1b[A")
	h.run(t)
	assert.True(t, h.repl.Session().Buffer.Empty())
	assert.Equal(t, "$ \r\n", h.out.String())
}

func TestReplRecalledLineIsSubmitted(t *testing.T) {
	t.Parallel()

	store := memoryHistory(100)
	store.Add("make")
	h := newReplHarness(t, "\x1b[A\r", WithHistoryStore(store))
	h.run(t)

	assert.Equal(t, []string{"make"}, h.eval.lines)
	assert.Equal(t, []HistoryEntry{{Text: "make", Count: 2}}, store.Entries())
	_, navigating := store.Index()
	assert.False(t, navigating)
}

func TestReplCancel(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "ab\x03")
	h.run(t)

	assert.Empty(t, h.eval.lines)
	assert.True(t, h.repl.Session().Buffer.Empty())
	assert.Equal(t, "$ ab^C\r\n$ \r\n", h.out.String())
}

func TestReplBlankLines(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "\r   \r")
	h.run(t)

	assert.Empty(t, h.eval.lines)
	assert.Equal(t, 0, h.repl.Session().History.Len())
	assert.True(t, h.repl.Session().Buffer.Empty())
}

func TestReplCompletion(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	for _, name := range []string{"/bin/grep", "/bin/ls", "/bin/ln"} {
		require.NoError(t, afero.WriteFile(fs, name, []byte("x"), 0o755))
	}

	t.Run("single candidate", func(t *testing.T) {
		h := newReplHarness(t, "gr\t", WithFs(fs))
		h.run(t)
		assert.Equal(t, "grep", h.repl.Session().Buffer.String())
		assert.Equal(t, 4, h.repl.Session().Buffer.Cursor())
	})

	t.Run("argument position", func(t *testing.T) {
		h := newReplHarness(t, "sudo gr\t", WithFs(fs))
		h.run(t)
		assert.Equal(t, "sudo grep", h.repl.Session().Buffer.String())
	})

	t.Run("first tab is silent", func(t *testing.T) {
		h := newReplHarness(t, "l\t", WithFs(fs))
		h.run(t)
		assert.Equal(t, "l", h.repl.Session().Buffer.String())
		assert.Equal(t, "$ l\r\n", h.out.String())
	})

	t.Run("second tab lists", func(t *testing.T) {
		h := newReplHarness(t, "l\t\t", WithFs(fs))
		h.run(t)
		assert.Equal(t, "l", h.repl.Session().Buffer.String())
		assert.Contains(t, h.out.String(), "\r\nln  ls\r\n\r\x1b[K$ l")
	})

	t.Run("no match", func(t *testing.T) {
		h := newReplHarness(t, "zz\t\t", WithFs(fs))
		h.run(t)
		assert.Equal(t, "zz", h.repl.Session().Buffer.String())
		assert.Equal(t, "$ zz\r\n", h.out.String())
	})
}

func TestReplEvaluatorErrors(t *testing.T) {
	t.Parallel()

	t.Run("runtime errors are reported", func(t *testing.T) {
		h := newReplHarness(t, "nope\rls\r")
		h.eval.run = func(text string, _ IO, _ *JobTable) (Status, error) {
			if text == "nope" {
				return 127, NewError(KindRuntime, "nope", ErrCommandNotFound)
			}
			return 0, nil
		}
		h.run(t)
		assert.Equal(t, []string{"nope", "ls"}, h.eval.lines)
		assert.Contains(t, h.errOut.String(), "oursh: nope: command not found")
		assert.Equal(t, 2, h.repl.Session().History.Len())
	})

	t.Run("read errors end the session", func(t *testing.T) {
		h := newReplHarness(t, "cat\rls\r")
		readErr := NewError(KindRead, "read stdin", errors.New("input/output error"))
		h.eval.run = func(string, IO, *JobTable) (Status, error) { return 1, readErr }

		err := h.repl.Run(context.Background())
		assert.ErrorIs(t, err, readErr)
		assert.Equal(t, []string{"cat"}, h.eval.lines)
		assert.False(t, h.terminal.rawMode)
	})
}

func TestReplEvaluatorPanicRestoresTerminal(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "boom\r")
	h.eval.run = func(string, IO, *JobTable) (Status, error) { panic("evaluator bug") }

	assert.Panics(t, func() { _ = h.repl.Run(context.Background()) })
	assert.False(t, h.terminal.rawMode)
}

func TestReplBackgroundJobNotice(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "sleep 1 &\r\r")
	h.eval.run = func(text string, _ IO, jobs *JobTable) (Status, error) {
		jobs.Register(4242, strings.TrimSuffix(text, " &"))
		return 0, nil
	}
	h.querier.status[4242] = JobStatus{State: JobExited}
	h.run(t)

	assert.Contains(t, h.out.String(), "[1] Done (exit 0) pid 4242  sleep 1")
	assert.Equal(t, 1, strings.Count(h.out.String(), "pid 4242"), "reported exactly once")
	assert.Equal(t, 0, h.repl.Session().Jobs.Len())
}

func TestReplQuitSavesHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		saveOnSubmit bool
		wantUnread   bool
	}{
		{"ctrl-d", "ls\r\x04pwd\r", false, true},
		{"end of input", "ls\r", false, false},
		{"save on submit", "ls\r\x04", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			h := newReplHarness(t, tt.input,
				WithHistoryStore(nil),
				WithFs(fs),
				WithHistory(&HistoryConfig{File: "/home/gopher/.oursh_history"}),
				WithSaveOnSubmit(tt.saveOnSubmit),
			)
			h.run(t)

			data, err := afero.ReadFile(fs, "/home/gopher/.oursh_history")
			require.NoError(t, err)
			assert.Equal(t, "ls\n", string(data))
			assert.Equal(t, []string{"ls"}, h.eval.lines)
			if tt.wantUnread {
				assert.Less(t, h.terminal.inputPos, len(h.terminal.input), "keys after ctrl-d are not read")
			}
		})
	}
}

func TestReplLoadsHistory(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/h", []byte("make\nls\n"), 0600))
	h := newReplHarness(t, "\x1b[A",
		WithHistoryStore(nil),
		WithFs(fs),
		WithHistory(&HistoryConfig{File: "/h"}),
	)
	h.run(t)
	assert.Equal(t, "make", h.repl.Session().Buffer.String())
}

func TestReplExitBuiltinSavesHistory(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	builtins := &Builtins{}
	h := newReplHarness(t, "ls\rexit 3\r",
		WithHistoryStore(nil),
		WithFs(fs),
		WithHistory(&HistoryConfig{File: "/h"}),
		WithBuiltins(builtins),
	)
	h.eval.run = func(text string, stdio IO, _ *JobTable) (Status, error) {
		argv := strings.Fields(text)
		if IsBuiltin(argv[0]) {
			return builtins.Run(argv, stdio)
		}
		return 0, nil
	}

	var saved []byte
	h.repl.exit = func(code int) {
		h.exits = append(h.exits, code)
		saved, _ = afero.ReadFile(fs, "/h")
	}
	h.run(t)

	assert.Equal(t, []int{3}, h.exits)
	assert.Equal(t, "ls\n", string(saved), "history is written before the process exits")
	assert.Same(t, h.repl.Session().History, builtins.History)
	assert.Same(t, h.repl.Session().Jobs, builtins.Jobs)
}

func TestReplDynamicPrompt(t *testing.T) {
	t.Parallel()

	cwd := "/home/gopher"
	info := func() PromptInfo {
		i := gopherInfo
		i.Cwd = cwd
		return i
	}
	h := newReplHarness(t, "cd src\r", WithPromptStyle(StyleUser), WithPromptInfo(info))
	h.eval.run = func(string, IO, *JobTable) (Status, error) {
		cwd = "/home/gopher/src"
		return 0, nil
	}
	assert.Contains(t, h.repl.Prompt().String(), ":"+ThemeDefault.Cwd.Paint("~")+"$ ")
	h.run(t)
	assert.Contains(t, h.repl.Prompt().String(), ThemeDefault.Cwd.Paint("~/src"))
}

func TestReplSetPromptStyle(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "")
	assert.Equal(t, "$ ", h.repl.Prompt().String())
	h.repl.SetPromptStyle(StylePOSIX)
	assert.Equal(t, "oursh-"+Version+"$ ", h.repl.Prompt().String())
}

func TestReplTerminalFailures(t *testing.T) {
	t.Parallel()

	t.Run("raw mode unavailable", func(t *testing.T) {
		h := newReplHarness(t, "ls\r")
		h.terminal.setRawErr = errors.New("not a terminal")
		err := h.repl.Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, KindTerminal, KindOf(err))
		assert.Empty(t, h.eval.lines)
	})

	t.Run("read failure", func(t *testing.T) {
		h := newReplHarness(t, "ls")
		h.terminal.readErr = errors.New("input/output error")
		err := h.repl.Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, KindRead, KindOf(err))
		assert.Equal(t, 1, ExitCode(err))
		assert.False(t, h.terminal.rawMode)
	})

	t.Run("escape at end of input", func(t *testing.T) {
		h := newReplHarness(t, "ls\x1b")
		h.run(t)
		assert.Equal(t, "ls", h.repl.Session().Buffer.String())
	})
}

func TestReplContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newReplHarness(t, "ls\r")
	require.NoError(t, h.repl.Run(ctx))
	assert.Empty(t, h.eval.lines)
	assert.Equal(t, "$ ", h.out.String())
}

func TestReplClose(t *testing.T) {
	t.Parallel()

	h := newReplHarness(t, "")
	h.run(t)
	require.NoError(t, h.repl.Close())
	assert.True(t, h.terminal.closed)
}
