package oursh

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindAndExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantCode int
	}{
		{"nil", nil, KindRuntime, 0},
		{"unclassified", io.ErrUnexpectedEOF, KindRuntime, 127},
		{"runtime", NewError(KindRuntime, "cd", ErrHomeUnset), KindRuntime, 127},
		{"read", NewError(KindRead, "read key", io.ErrClosedPipe), KindRead, 1},
		{"terminal", NewError(KindTerminal, "enter raw mode", io.ErrClosedPipe), KindTerminal, 1},
		{"parse", NewError(KindParse, "parse", errors.New("syntax error")), KindParse, 2},
		{"wrapped", fmt.Errorf("line 3: %w", NewError(KindParse, "parse", errors.New("x"))), KindParse, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantKind, KindOf(tt.err))
			assert.Equal(t, tt.wantCode, ExitCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewError(KindRuntime, "cd", ErrHomeUnset)
	assert.Equal(t, "cd: HOME not set", err.Error())
	assert.ErrorIs(t, err, ErrHomeUnset)

	assert.Equal(t, "read error: EOF", NewError(KindRead, "", io.EOF).Error())
	assert.Equal(t, "terminal", KindTerminal.String())
}
