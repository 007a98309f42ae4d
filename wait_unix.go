//go:build unix

package oursh

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

func waitStatus(pid int) (JobStatus, error) {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return JobStatus{}, err
		}
		if wpid == 0 {
			return JobStatus{State: JobRunning}, nil
		}
		break
	}
	switch {
	case ws.Exited():
		return JobStatus{State: JobExited, Code: ws.ExitStatus()}, nil
	case ws.Signaled():
		return JobStatus{State: JobSignaled, Signal: int(ws.Signal())}, nil
	default:
		// stopped or continued
		return JobStatus{State: JobRunning}, nil
	}
}

func signalName(sig int) string {
	if name := unix.SignalName(syscall.Signal(sig)); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", sig)
}
