package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"diskconsole/internal/completion"
	"diskconsole/internal/grammar"
	ctheme "diskconsole/internal/theme"
)

// editor is the editable input surface: a line buffer with a byte-offset
// cursor. It only knows text; the console state is updated by the model.
type editor struct {
	lines []string
	row   int
	col   int
	top   int
}

func newEditor(text string) editor {
	e := editor{}
	e.SetValue(text)
	return e
}

func (e editor) Value() string {
	return strings.Join(e.lines, "\n")
}

// SetValue replaces the buffer and puts the cursor at the end.
func (e *editor) SetValue(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	e.lines = strings.Split(text, "\n")
	e.row = len(e.lines) - 1
	e.col = len(e.lines[e.row])
	e.top = 0
}

func (e editor) line() string {
	return e.lines[e.row]
}

// InsertText inserts s at the cursor; newlines split the current line.
func (e *editor) InsertText(s string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	parts := strings.Split(s, "\n")
	cur := e.line()
	before, after := cur[:e.col], cur[e.col:]
	if len(parts) == 1 {
		e.lines[e.row] = before + s + after
		e.col += len(s)
		return
	}
	inserted := make([]string, 0, len(parts))
	inserted = append(inserted, before+parts[0])
	inserted = append(inserted, parts[1:len(parts)-1]...)
	last := parts[len(parts)-1]
	inserted = append(inserted, last+after)

	lines := make([]string, 0, len(e.lines)+len(parts)-1)
	lines = append(lines, e.lines[:e.row]...)
	lines = append(lines, inserted...)
	lines = append(lines, e.lines[e.row+1:]...)
	e.lines = lines
	e.row += len(parts) - 1
	e.col = len(last)
}

func (e *editor) Newline() {
	e.InsertText("\n")
}

func (e *editor) Backspace() {
	if e.col > 0 {
		cur := e.line()
		_, size := utf8.DecodeLastRuneInString(cur[:e.col])
		e.lines[e.row] = cur[:e.col-size] + cur[e.col:]
		e.col -= size
		return
	}
	if e.row == 0 {
		return
	}
	prev := e.lines[e.row-1]
	e.lines[e.row-1] = prev + e.line()
	e.lines = append(e.lines[:e.row], e.lines[e.row+1:]...)
	e.row--
	e.col = len(prev)
}

func (e *editor) Delete() {
	cur := e.line()
	if e.col < len(cur) {
		_, size := utf8.DecodeRuneInString(cur[e.col:])
		e.lines[e.row] = cur[:e.col] + cur[e.col+size:]
		return
	}
	if e.row == len(e.lines)-1 {
		return
	}
	e.lines[e.row] = cur + e.lines[e.row+1]
	e.lines = append(e.lines[:e.row+1], e.lines[e.row+2:]...)
}

func (e *editor) Left() {
	if e.col > 0 {
		_, size := utf8.DecodeLastRuneInString(e.line()[:e.col])
		e.col -= size
		return
	}
	if e.row > 0 {
		e.row--
		e.col = len(e.line())
	}
}

func (e *editor) Right() {
	cur := e.line()
	if e.col < len(cur) {
		_, size := utf8.DecodeRuneInString(cur[e.col:])
		e.col += size
		return
	}
	if e.row < len(e.lines)-1 {
		e.row++
		e.col = 0
	}
}

func (e *editor) Up() {
	if e.row == 0 {
		e.col = 0
		return
	}
	e.moveRow(e.row - 1)
}

func (e *editor) Down() {
	if e.row == len(e.lines)-1 {
		e.col = len(e.line())
		return
	}
	e.moveRow(e.row + 1)
}

// moveRow keeps the visual column where possible.
func (e *editor) moveRow(row int) {
	runes := utf8.RuneCountInString(e.line()[:e.col])
	e.row = row
	e.col = byteOffset(e.line(), runes)
}

func (e *editor) Home() { e.col = 0 }

func (e *editor) End() { e.col = len(e.line()) }

// Position is the 1-indexed cursor position in editor columns (runes).
func (e editor) Position() completion.Position {
	return completion.Position{
		Line:   e.row + 1,
		Column: utf8.RuneCountInString(e.line()[:e.col]) + 1,
	}
}

// WordBeforeCursor is the partial token used to filter completions.
func (e editor) WordBeforeCursor() string {
	return completion.WordBefore(e.line(), e.col)
}

func (e *editor) scrollTo(height int) {
	if height <= 0 {
		return
	}
	if e.row < e.top {
		e.top = e.row
	}
	if e.row >= e.top+height {
		e.top = e.row - height + 1
	}
}

// View renders the visible rows with line numbers, token styling and, when
// focused, the cursor cell.
func (e *editor) View(th theme, width, height int, focused bool) string {
	e.scrollTo(height)
	gutterW := len(fmt.Sprint(len(e.lines))) + 1
	if gutterW < 3 {
		gutterW = 3
	}
	textW := width - gutterW - 1
	if textW < 1 {
		textW = 1
	}
	out := make([]string, 0, height)
	for i := e.top; i < len(e.lines) && len(out) < height; i++ {
		line := e.lines[i]
		segs := grammar.ClassifyLine(line)
		var body string
		if focused && i == e.row {
			body = renderWithCursor(th, line, segs, e.col)
		} else {
			body = ctheme.RenderLine(line, segs, false, 0)
		}
		num := th.LineNumber.Render(fmt.Sprintf("%*d", gutterW, i+1))
		out = append(out, num+" "+ansi.Truncate(body, textW, ""))
	}
	for len(out) < height {
		out = append(out, strings.Repeat(" ", gutterW))
	}
	return strings.Join(out, "\n")
}

type piece struct {
	text  string
	cat   grammar.Category
	start int
}

// renderWithCursor styles line like RenderLine but draws the cell at byte
// offset col in reverse video.
func renderWithCursor(th theme, line string, segs []grammar.Segment, col int) string {
	var pieces []piece
	pos := 0
	for _, s := range segs {
		if s.Start > pos {
			pieces = append(pieces, piece{line[pos:s.Start], grammar.PlainText, pos})
		}
		pieces = append(pieces, piece{s.Text, s.Category, s.Start})
		pos = s.End
	}
	if pos < len(line) {
		pieces = append(pieces, piece{line[pos:], grammar.PlainText, pos})
	}

	var b strings.Builder
	drawn := false
	for _, p := range pieces {
		style := ctheme.Lipgloss(p.cat, false)
		end := p.start + len(p.text)
		if drawn || col < p.start || col >= end {
			b.WriteString(style.Render(p.text))
			continue
		}
		at := col - p.start
		_, size := utf8.DecodeRuneInString(p.text[at:])
		b.WriteString(style.Render(p.text[:at]))
		b.WriteString(th.Cursor.Inherit(style).Render(p.text[at : at+size]))
		b.WriteString(style.Render(p.text[at+size:]))
		drawn = true
	}
	if !drawn {
		b.WriteString(th.Cursor.Render(" "))
	}
	return b.String()
}

func byteOffset(s string, runes int) int {
	i := 0
	for n := 0; n < runes && i < len(s); n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
