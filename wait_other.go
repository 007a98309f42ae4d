//go:build !unix

package oursh

import (
	"errors"
	"fmt"
)

func waitStatus(int) (JobStatus, error) {
	return JobStatus{}, errors.ErrUnsupported
}

func signalName(sig int) string {
	return fmt.Sprintf("signal %d", sig)
}
