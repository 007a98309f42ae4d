package program

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/nao1215/oursh"
)

// Run executes every pipeline in order, honoring && and ||. Errors of
// pipelines followed by another pipeline are printed to stdio.Err, the
// error of the last pipeline that ran is returned.
func (p Program) Run(ctx context.Context, stdio oursh.IO, jobs *oursh.JobTable, builtins *oursh.Builtins) (oursh.Status, error) {
	var (
		status oursh.Status
		last   error
	)
	for _, pl := range p.Pipelines {
		if (pl.Op == OpAnd && !status.Success()) || (pl.Op == OpOr && status.Success()) {
			continue
		}
		if last != nil {
			fmt.Fprintf(stdio.Err, "oursh: %v\n", last)
		}
		if err := ctx.Err(); err != nil {
			return status, oursh.NewError(oursh.KindRuntime, "run", err)
		}
		status, last = pl.Run(stdio, jobs, builtins)
	}
	return status, last
}

// member is one started pipeline command.
type member struct {
	cmd  *exec.Cmd
	done chan result // set for builtins running in a goroutine
}

type result struct {
	status oursh.Status
	err    error
}

// Run starts the pipeline. A foreground pipeline is waited for and
// reports the status of its last command. A background pipeline is
// registered in jobs under the pid of its last command and reports 0.
//
// A pipeline made of a single builtin runs in-process so it can change
// the shell's state; builtins inside longer pipelines run in goroutines
// connected by pipes.
func (pl Pipeline) Run(stdio oursh.IO, jobs *oursh.JobTable, builtins *oursh.Builtins) (oursh.Status, error) {
	if builtins == nil {
		builtins = &oursh.Builtins{}
	}
	if len(pl.Commands) == 1 && oursh.IsBuiltin(pl.Commands[0].Name()) {
		return builtins.Run(pl.Commands[0].Args, stdio)
	}

	members := make([]member, 0, len(pl.Commands))
	var stdin io.Reader = stdio.In
	if pl.Background {
		stdin = nil // /dev/null
	}
	var prevRead *os.File
	closePrev := func() {
		if prevRead != nil {
			prevRead.Close()
			prevRead = nil
		}
	}

	for i, c := range pl.Commands {
		var (
			stdout         io.Writer = stdio.Out
			pipeR, pipeW   *os.File
			err            error
			lastInPipeline = i == len(pl.Commands)-1
		)
		if !lastInPipeline {
			pipeR, pipeW, err = os.Pipe()
			if err != nil {
				closePrev()
				waitAll(members)
				return 1, oursh.NewError(oursh.KindRuntime, "pipe", err)
			}
			stdout = pipeW
		}

		m, err := start(c, oursh.IO{In: stdin, Out: stdout, Err: stdio.Err}, pl.Background, builtins, pipeW, prevRead)
		if err != nil {
			if pipeW != nil {
				pipeW.Close()
				pipeR.Close()
			}
			closePrev()
			waitAll(members)
			return 127, err
		}
		members = append(members, m)
		if m.cmd != nil {
			// the child holds its own copies now
			if pipeW != nil {
				pipeW.Close()
			}
			closePrev()
		} else {
			prevRead = nil // the builtin goroutine closes it
		}
		prevRead = pipeR
		if pipeR != nil {
			stdin = pipeR
		}
	}

	if pl.Background {
		lastCmd := members[len(members)-1].cmd
		if lastCmd == nil || jobs == nil {
			return waitAll(members)
		}
		for _, m := range members[:len(members)-1] {
			go waitMember(m)
		}
		job := jobs.Register(lastCmd.Process.Pid, pl.Text)
		fmt.Fprintf(stdio.Err, "[%d] %d\n", job.ID, job.Pid)
		return 0, nil
	}
	return waitAll(members)
}

// start launches one pipeline member. A builtin gets a goroutine that
// closes pipeW and prevRead once it returns.
func start(c Command, stdio oursh.IO, background bool, builtins *oursh.Builtins, pipeW, prevRead *os.File) (member, error) {
	if oursh.IsBuiltin(c.Name()) {
		done := make(chan result, 1)
		if stdio.In == nil {
			stdio.In = eofReader{}
		}
		go func() {
			status, err := builtins.Run(c.Args, stdio)
			if pipeW != nil {
				pipeW.Close()
			}
			if prevRead != nil {
				prevRead.Close()
			}
			done <- result{status: status, err: err}
		}()
		return member{done: done}, nil
	}

	path, err := exec.LookPath(c.Name())
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = oursh.ErrCommandNotFound
		}
		return member{}, oursh.NewError(oursh.KindRuntime, c.Name(), err)
	}
	cmd := exec.Command(path, c.Args[1:]...)
	cmd.Args[0] = c.Name()
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	if background {
		cmd.SysProcAttr = backgroundAttr()
	}
	if err := cmd.Start(); err != nil {
		return member{}, oursh.NewError(oursh.KindRuntime, c.Name(), err)
	}
	return member{cmd: cmd}, nil
}

func waitMember(m member) result {
	if m.done != nil {
		return <-m.done
	}
	err := m.cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result{}
	case errors.As(err, &exitErr):
		return result{status: oursh.Status(exitStatus(exitErr.ProcessState))}
	default:
		return result{status: 1, err: oursh.NewError(oursh.KindRuntime, m.cmd.Args[0], err)}
	}
}

// waitAll waits for every member and returns the result of the last one.
func waitAll(members []member) (oursh.Status, error) {
	var last result
	for _, m := range members {
		last = waitMember(m)
	}
	return last.status, last.err
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}
