package oursh

// KeyAction represents the action to perform when a key is pressed
type KeyAction int

// Key action constants define the actions that can be performed when keys are pressed
const (
	ActionNone KeyAction = iota
	ActionSubmit
	ActionCancel
	ActionQuit
	ActionMoveLeft
	ActionMoveRight
	ActionMoveHome
	ActionMoveEnd
	ActionMoveWordLeft
	ActionMoveWordRight
	ActionBackspace
	ActionDeleteChar
	ActionDeleteLine
	ActionDeleteToEnd
	ActionDeleteWordBack
	ActionComplete
	ActionHistoryUp
	ActionHistoryDown
	ActionClearScreen
)

// KeyMap holds the key binding configuration
type KeyMap struct {
	bindings  map[rune]KeyAction
	sequences map[string]KeyAction
}

// NewDefaultKeyMap creates the default key bindings for the shell.
//
// Default key bindings:
//   - Enter/Return: Run the line
//   - Ctrl+C: Discard the line
//   - Ctrl+D: Quit when the line is empty
//   - Ctrl+A/Home, Ctrl+E/End: Move to beginning/end of line
//   - Ctrl+K: Delete from cursor to end of line
//   - Ctrl+U: Delete entire line
//   - Ctrl+W: Delete word backwards
//   - Ctrl+L: Clear the screen
//   - Tab: Completion
//   - Backspace: Delete character backwards
//   - Delete: Delete character forwards
//   - Up/Down: History recall
//   - Left/Right: Move cursor, Ctrl+Left/Right move by word
func NewDefaultKeyMap() *KeyMap {
	km := &KeyMap{
		bindings:  make(map[rune]KeyAction),
		sequences: make(map[string]KeyAction),
	}

	km.bindings['\r'] = ActionSubmit
	km.bindings['\n'] = ActionSubmit
	km.bindings['\x03'] = ActionCancel         // Ctrl+C
	km.bindings['\x04'] = ActionQuit           // Ctrl+D
	km.bindings['\x01'] = ActionMoveHome       // Ctrl+A
	km.bindings['\x05'] = ActionMoveEnd        // Ctrl+E
	km.bindings['\x0B'] = ActionDeleteToEnd    // Ctrl+K
	km.bindings['\x15'] = ActionDeleteLine     // Ctrl+U
	km.bindings['\x17'] = ActionDeleteWordBack // Ctrl+W
	km.bindings['\x0C'] = ActionClearScreen    // Ctrl+L
	km.bindings['\t'] = ActionComplete
	km.bindings['\x7f'] = ActionBackspace
	km.bindings['\b'] = ActionBackspace

	for _, prefix := range []string{"[", "O"} {
		km.sequences[prefix+"A"] = ActionHistoryUp
		km.sequences[prefix+"B"] = ActionHistoryDown
		km.sequences[prefix+"C"] = ActionMoveRight
		km.sequences[prefix+"D"] = ActionMoveLeft
		km.sequences[prefix+"H"] = ActionMoveHome
		km.sequences[prefix+"F"] = ActionMoveEnd
	}
	km.sequences["[1~"] = ActionMoveHome
	km.sequences["[4~"] = ActionMoveEnd
	km.sequences["[1;5C"] = ActionMoveWordRight // Ctrl+Right
	km.sequences["[1;5D"] = ActionMoveWordLeft  // Ctrl+Left
	km.sequences["[3~"] = ActionDeleteChar      // Delete

	return km
}

// Bind adds or updates a key binding for a single character.
//
// Example:
//
//	keyMap := oursh.NewDefaultKeyMap()
//	// Make Ctrl+G discard the line like Ctrl+C
//	keyMap.Bind('\x07', oursh.ActionCancel)
func (km *KeyMap) Bind(key rune, action KeyAction) {
	km.bindings[key] = action
}

// BindSequence adds or updates an escape sequence binding.
// The sequence should not include the initial ESC character.
//
// Example:
//
//	keyMap := oursh.NewDefaultKeyMap()
//	// Page Up (ESC + [5~) recalls history
//	keyMap.BindSequence("[5~", oursh.ActionHistoryUp)
func (km *KeyMap) BindSequence(seq string, action KeyAction) {
	km.sequences[seq] = action
}

// GetAction returns the action for a key, or ActionNone if not bound
func (km *KeyMap) GetAction(key rune) KeyAction {
	if km == nil || km.bindings == nil {
		return ActionNone
	}
	if action, exists := km.bindings[key]; exists {
		return action
	}
	return ActionNone
}

// GetSequenceAction returns the action for an escape sequence, or ActionNone if not bound
func (km *KeyMap) GetSequenceAction(seq string) KeyAction {
	if km == nil || km.sequences == nil {
		return ActionNone
	}
	if action, exists := km.sequences[seq]; exists {
		return action
	}
	return ActionNone
}

// sequenceComplete reports whether seq, the runes read after ESC, form a
// whole CSI or SS3 sequence.
func sequenceComplete(seq []rune) bool {
	if len(seq) == 0 {
		return false
	}
	if seq[0] != '[' && seq[0] != 'O' {
		// ESC followed by a plain key (Alt+key); nothing more to read.
		return true
	}
	if len(seq) < 2 {
		return false
	}
	last := seq[len(seq)-1]
	if seq[0] == 'O' {
		return true
	}
	return last == '~' || (last >= 'A' && last <= 'Z') || (last >= 'a' && last <= 'z')
}
