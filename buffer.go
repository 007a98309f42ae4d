package oursh

import "unicode"

// Buffer is the line being composed: a rune slice and a cursor offset that
// always satisfies 0 <= cursor <= len.
type Buffer struct {
	runes  []rune
	cursor int
}

// String returns the buffer text.
func (b *Buffer) String() string {
	return string(b.runes)
}

// Len returns the number of runes in the buffer.
func (b *Buffer) Len() int {
	return len(b.runes)
}

// Cursor returns the cursor offset in runes.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Empty reports whether the buffer holds no text.
func (b *Buffer) Empty() bool {
	return len(b.runes) == 0
}

// BeforeCursor returns the runes left of the cursor.
func (b *Buffer) BeforeCursor() []rune {
	return b.runes[:b.cursor]
}

// AfterCursor returns the runes from the cursor to the end of the line.
func (b *Buffer) AfterCursor() []rune {
	return b.runes[b.cursor:]
}

// Insert puts r at the cursor and advances the cursor.
func (b *Buffer) Insert(r rune) {
	b.InsertText(string(r))
}

// InsertText puts text at the cursor and moves the cursor past it.
func (b *Buffer) InsertText(text string) {
	runes := []rune(text)
	b.runes = append(b.runes[:b.cursor], append(runes, b.runes[b.cursor:]...)...)
	b.cursor += len(runes)
}

// Backspace removes the rune before the cursor. It returns the removed rune
// and false when the cursor is already at the start of the line.
func (b *Buffer) Backspace() (rune, bool) {
	if b.cursor == 0 {
		return 0, false
	}
	removed := b.runes[b.cursor-1]
	b.runes = append(b.runes[:b.cursor-1], b.runes[b.cursor:]...)
	b.cursor--
	return removed, true
}

// Delete removes the rune under the cursor.
func (b *Buffer) Delete() bool {
	if b.cursor >= len(b.runes) {
		return false
	}
	b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
	return true
}

// MoveLeft moves the cursor one rune left. It returns the rune stepped over.
func (b *Buffer) MoveLeft() (rune, bool) {
	if b.cursor == 0 {
		return 0, false
	}
	b.cursor--
	return b.runes[b.cursor], true
}

// MoveRight moves the cursor one rune right. It returns the rune stepped over.
func (b *Buffer) MoveRight() (rune, bool) {
	if b.cursor >= len(b.runes) {
		return 0, false
	}
	b.cursor++
	return b.runes[b.cursor-1], true
}

// MoveTo places the cursor at pos, clamped to the line.
func (b *Buffer) MoveTo(pos int) {
	b.cursor = clamp(pos, 0, len(b.runes))
}

// Set replaces the whole line and puts the cursor at its end.
func (b *Buffer) Set(text string) {
	b.runes = []rune(text)
	b.cursor = len(b.runes)
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.runes = b.runes[:0]
	b.cursor = 0
}

// KillToEnd removes everything from the cursor to the end of the line.
func (b *Buffer) KillToEnd() {
	b.runes = b.runes[:b.cursor]
}

// DeleteWordBack removes the word before the cursor.
func (b *Buffer) DeleteWordBack() bool {
	if b.cursor == 0 {
		return false
	}
	start := b.WordBoundary(-1)
	b.runes = append(b.runes[:start], b.runes[b.cursor:]...)
	b.cursor = start
	return true
}

// ReplaceRange replaces runes [start, end) with text and leaves the cursor
// right after the inserted text.
func (b *Buffer) ReplaceRange(start, end int, text string) {
	start = clamp(start, 0, len(b.runes))
	end = clamp(end, start, len(b.runes))
	runes := []rune(text)
	tail := append([]rune{}, b.runes[end:]...)
	b.runes = append(append(b.runes[:start], runes...), tail...)
	b.cursor = start + len(runes)
}

// Token returns the token ending at the cursor, that is the text between the
// last blank before the cursor and the cursor, and the offset it starts at.
func (b *Buffer) Token() (start int, token string) {
	start = b.cursor
	for start > 0 && !unicode.IsSpace(b.runes[start-1]) {
		start--
	}
	return start, string(b.runes[start:b.cursor])
}

// WordBoundary finds the next word boundary in the given direction.
//
// direction > 0 skips separators then the following word and returns the
// offset right after it. direction < 0 steps back over separators then over
// the previous word and returns the offset of its first rune.
func (b *Buffer) WordBoundary(direction int) int {
	if direction > 0 {
		pos := b.cursor
		for pos < len(b.runes) && !isWordChar(b.runes[pos]) {
			pos++
		}
		for pos < len(b.runes) && isWordChar(b.runes[pos]) {
			pos++
		}
		return pos
	}
	pos := b.cursor
	if pos > 0 {
		pos--
	}
	for pos > 0 && !isWordChar(b.runes[pos]) {
		pos--
	}
	for pos > 0 && isWordChar(b.runes[pos-1]) {
		pos--
	}
	return pos
}

// isWordChar reports whether r belongs to a word for word motion and Ctrl+W:
// ASCII letters, digits and underscore.
func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
