package oursh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	t.Parallel()

	km := NewDefaultKeyMap()
	keys := map[rune]KeyAction{
		'\r':   ActionSubmit,
		'\n':   ActionSubmit,
		'\x03': ActionCancel,
		'\x04': ActionQuit,
		'\x01': ActionMoveHome,
		'\x05': ActionMoveEnd,
		'\x0B': ActionDeleteToEnd,
		'\x15': ActionDeleteLine,
		'\x17': ActionDeleteWordBack,
		'\x0C': ActionClearScreen,
		'\t':   ActionComplete,
		'\x7f': ActionBackspace,
		'\b':   ActionBackspace,
		'a':    ActionNone,
	}
	for key, want := range keys {
		assert.Equal(t, want, km.GetAction(key), "key %q", key)
	}

	sequences := map[string]KeyAction{
		"[A":    ActionHistoryUp,
		"OA":    ActionHistoryUp,
		"[B":    ActionHistoryDown,
		"[C":    ActionMoveRight,
		"[D":    ActionMoveLeft,
		"[H":    ActionMoveHome,
		"OF":    ActionMoveEnd,
		"[3~":   ActionDeleteChar,
		"[1;5C": ActionMoveWordRight,
		"[1;5D": ActionMoveWordLeft,
		"[5~":   ActionNone,
	}
	for seq, want := range sequences {
		assert.Equal(t, want, km.GetSequenceAction(seq), "sequence %q", seq)
	}
}

func TestKeyMapBind(t *testing.T) {
	t.Parallel()

	km := NewDefaultKeyMap()
	km.Bind('\x07', ActionCancel)
	km.BindSequence("[5~", ActionHistoryUp)
	assert.Equal(t, ActionCancel, km.GetAction('\x07'))
	assert.Equal(t, ActionHistoryUp, km.GetSequenceAction("[5~"))

	var nilMap *KeyMap
	assert.Equal(t, ActionNone, nilMap.GetAction('\r'))
	assert.Equal(t, ActionNone, nilMap.GetSequenceAction("[A"))
}

func TestSequenceComplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seq  string
		want bool
	}{
		{"", false},
		{"[", false},
		{"O", false},
		{"[A", true},
		{"OA", true},
		{"[3", false},
		{"[3~", true},
		{"[1;5", false},
		{"[1;5C", true},
		{"x", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sequenceComplete([]rune(tt.seq)), "sequence %q", tt.seq)
	}
}
