package oursh

import (
	"os"
	"os/signal"
	"syscall"
)

// ignoreInterrupts keeps SIGINT from killing the shell while a foreground
// command runs in cooked mode. The signal is caught rather than ignored:
// an ignored disposition would be inherited by the commands we exec.
func ignoreInterrupts() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return func() {
		signal.Stop(ch)
	}
}

// watchSignals puts the terminal back to cooked mode before the process
// dies of SIGTERM or SIGHUP. The returned func stops watching.
func (r *Repl) watchSignals() func() {
	if !r.watch {
		return func() {}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			if err := r.guard.Release(); err != nil {
				r.logger.With("err", err).Error("terminal restore failed", "signal", sig.String())
			}
			r.logger.Warn("terminated by signal", "signal", sig.String())
			code := 1
			if s, ok := sig.(syscall.Signal); ok {
				code = 128 + int(s)
			}
			r.exit(code)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
