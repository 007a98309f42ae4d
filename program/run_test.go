package program

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/oursh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCommands(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

type runResult struct {
	status oursh.Status
	err    error
	out    string
	errOut string
}

func runProgram(t *testing.T, src string, in string, jobs *oursh.JobTable, builtins *oursh.Builtins) runResult {
	t.Helper()

	prog, err := Parse(Primary, []byte(src))
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	stdio := oursh.IO{In: strings.NewReader(in), Out: &out, Err: &errOut}
	status, err := prog.Run(context.Background(), stdio, jobs, builtins)
	return runResult{status: status, err: err, out: out.String(), errOut: errOut.String()}
}

func TestRunCommands(t *testing.T) {
	t.Parallel()
	requireCommands(t, "echo", "cat", "tr", "true", "false", "sh")

	tests := []struct {
		name       string
		src        string
		in         string
		wantOut    string
		wantStatus oursh.Status
	}{
		{name: "echo", src: "echo hello world", wantOut: "hello world\n"},
		{name: "pipeline", src: "echo hello | tr a-z A-Z", wantOut: "HELLO\n"},
		{name: "three stages", src: "echo one two | cat | tr ' ' '\\n'", wantOut: "one\ntwo\n"},
		{name: "stdin", src: "cat", in: "from stdin", wantOut: "from stdin"},
		{name: "sequence", src: "echo a; echo b", wantOut: "a\nb\n"},
		{name: "and skips after failure", src: "false && echo no", wantStatus: 1},
		{name: "or runs after failure", src: "false || echo yes", wantOut: "yes\n"},
		{name: "or skips after success", src: "true || echo no"},
		{name: "and or chain", src: "false && echo a || echo b", wantOut: "b\n"},
		{name: "exit status", src: "sh -c 'exit 3'", wantStatus: 3},
		{name: "status of the last member", src: "false | true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runProgram(t, tt.src, tt.in, nil, nil)
			require.NoError(t, got.err)
			assert.Equal(t, tt.wantStatus, got.status)
			assert.Equal(t, tt.wantOut, got.out)
		})
	}
}

func TestRunBuiltinInPipeline(t *testing.T) {
	t.Parallel()
	requireCommands(t, "tr")

	got := runProgram(t, "help | tr a-z A-Z", "", nil, nil)
	require.NoError(t, got.err)
	assert.Contains(t, got.out, "OURSH "+oursh.Version)
	assert.Contains(t, got.out, "HISTORY")
}

func TestRunBuiltinChangesShellState(t *testing.T) {
	t.Parallel()
	requireCommands(t, "echo")

	var dirs []string
	builtins := &oursh.Builtins{
		Chdir: func(dir string) error {
			dirs = append(dirs, dir)
			return nil
		},
	}
	got := runProgram(t, "cd /tmp && echo ok", "", nil, builtins)
	require.NoError(t, got.err)
	assert.Equal(t, []string{"/tmp"}, dirs)
	assert.Equal(t, "ok\n", got.out)
}

func TestRunCommandNotFound(t *testing.T) {
	t.Parallel()
	requireCommands(t, "echo")

	got := runProgram(t, "no-such-command-oursh", "", nil, nil)
	assert.Equal(t, oursh.Status(127), got.status)
	assert.ErrorIs(t, got.err, oursh.ErrCommandNotFound)
	assert.Equal(t, oursh.KindRuntime, oursh.KindOf(got.err))

	got = runProgram(t, "no-such-command-oursh; echo after", "", nil, nil)
	require.NoError(t, got.err, "the last pipeline decides the result")
	assert.Equal(t, "after\n", got.out)
	assert.Contains(t, got.errOut, "oursh: no-such-command-oursh: command not found")

	got = runProgram(t, "echo x | no-such-command-oursh", "", nil, nil)
	assert.Equal(t, oursh.Status(127), got.status)
	assert.ErrorIs(t, got.err, oursh.ErrCommandNotFound)
}

func TestRunBackground(t *testing.T) {
	t.Parallel()
	requireCommands(t, "sleep")

	jobs := oursh.NewJobTable(nil)
	got := runProgram(t, "sleep 0 &", "", jobs, nil)
	require.NoError(t, got.err)
	assert.Equal(t, oursh.Status(0), got.status)

	list := jobs.List()
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].ID)
	assert.Equal(t, "sleep 0", list[0].Command)
	assert.Contains(t, got.errOut, "[1] ")

	var notices bytes.Buffer
	require.Eventually(t, func() bool {
		jobs.Poll(&notices)
		return jobs.Len() == 0
	}, 10*time.Second, 20*time.Millisecond)
	assert.Contains(t, notices.String(), "Done (exit 0)")
	assert.Contains(t, notices.String(), "sleep 0")
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	prog, err := Parse(Primary, []byte("true"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	_, err = prog.Run(ctx, oursh.IO{Out: &out, Err: &out}, nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}
