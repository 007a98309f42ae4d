//go:build unix

package program

import (
	"os"
	"syscall"
)

// backgroundAttr puts background jobs in their own process group so a
// Ctrl+C at the terminal does not reach them.
func backgroundAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// exitStatus maps a process state to a shell status: the exit code, or
// 128 plus the signal number for a process killed by a signal.
func exitStatus(ps *os.ProcessState) int {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ps.ExitCode()
}
