//go:build !unix

package program

import (
	"os"
	"syscall"
)

func backgroundAttr() *syscall.SysProcAttr {
	return nil
}

func exitStatus(ps *os.ProcessState) int {
	return ps.ExitCode()
}
