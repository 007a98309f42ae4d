package oursh

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// renderer paints the edited line with the minimum of ANSI control:
// relative cursor motion (CSI n C / CSI n D), erase to end of line
// (CSI K) and carriage return. Widths are measured in terminal cells so
// wide runes move the cursor by two columns.
type renderer struct {
	output io.Writer
}

// newRenderer creates a new renderer writing to output.
func newRenderer(output io.Writer) *renderer {
	return &renderer{output: output}
}

// prompt writes the pre-rendered prompt verbatim.
func (r *renderer) prompt(p Prompt) error {
	_, err := fmt.Fprint(r.output, p.String())
	return err
}

// inserted repaints after a rune was inserted just before the cursor: the
// inserted rune and everything after it is written, then the cursor is
// walked back over the tail.
func (r *renderer) inserted(b *Buffer) error {
	before := b.BeforeCursor()
	tail := b.AfterCursor()
	if _, err := fmt.Fprint(r.output, string(before[len(before)-1:])+string(tail)); err != nil {
		return err
	}
	return r.left(width(tail))
}

// moved moves the terminal cursor over one rune in the given direction.
func (r *renderer) moved(passed rune, direction int) error {
	n := runewidth.RuneWidth(passed)
	if direction < 0 {
		return r.left(n)
	}
	return r.right(n)
}

// erased repaints after Backspace removed a rune: step back over it,
// rewrite the tail, clear the stale cells and return to the edit point.
func (r *renderer) erased(b *Buffer, removed rune) error {
	if err := r.left(runewidth.RuneWidth(removed)); err != nil {
		return err
	}
	return r.tail(b)
}

// tail rewrites the text from the cursor to the end of line and erases
// whatever was displayed beyond it.
func (r *renderer) tail(b *Buffer) error {
	tail := b.AfterCursor()
	if _, err := fmt.Fprint(r.output, string(tail)+"\x1b[K"); err != nil {
		return err
	}
	return r.left(width(tail))
}

// redraw repaints the whole line: prompt, text, cursor position.
func (r *renderer) redraw(p Prompt, b *Buffer) error {
	if _, err := fmt.Fprint(r.output, "\r\x1b[K"+p.String()+b.String()); err != nil {
		return err
	}
	return r.left(width(b.AfterCursor()))
}

// newline performs a raw mode line break.
func (r *renderer) newline() error {
	_, err := fmt.Fprint(r.output, "\r\n")
	return err
}

// interrupted echoes Ctrl+C the way cooked terminals do.
func (r *renderer) interrupted() error {
	_, err := fmt.Fprint(r.output, "^C\r\n")
	return err
}

// clearScreen homes the cursor and erases the display.
func (r *renderer) clearScreen() error {
	_, err := fmt.Fprint(r.output, "\x1b[H\x1b[2J")
	return err
}

// candidates lists completion candidates below the line, packed into
// columns that fit in termWidth.
func (r *renderer) candidates(list []string, termWidth int) error {
	if len(list) == 0 {
		return nil
	}
	colWidth := 0
	for _, c := range list {
		colWidth = max(colWidth, runewidth.StringWidth(c))
	}
	colWidth += 2
	perRow := max(1, termWidth/colWidth)

	var sb strings.Builder
	sb.WriteString("\r\n")
	for i, c := range list {
		if i > 0 && i%perRow == 0 {
			sb.WriteString("\r\n")
		}
		if (i+1)%perRow == 0 || i == len(list)-1 {
			sb.WriteString(c)
		} else {
			sb.WriteString(runewidth.FillRight(c, colWidth))
		}
	}
	sb.WriteString("\r\n")
	_, err := fmt.Fprint(r.output, sb.String())
	return err
}

func (r *renderer) left(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := fmt.Fprintf(r.output, "\x1b[%dD", n)
	return err
}

func (r *renderer) right(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := fmt.Fprintf(r.output, "\x1b[%dC", n)
	return err
}

func width(runes []rune) int {
	return runewidth.StringWidth(string(runes))
}

// crlfWriter turns bare line feeds into CR LF so text printed while the
// terminal is raw starts at column zero.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if !bytes.Contains(p, []byte("\n")) {
		return c.w.Write(p)
	}
	converted := bytes.ReplaceAll(bytes.ReplaceAll(p, []byte("\r\n"), []byte("\n")), []byte("\n"), []byte("\r\n"))
	if _, err := c.w.Write(converted); err != nil {
		return 0, err
	}
	return len(p), nil
}
