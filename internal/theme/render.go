package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"diskconsole/internal/grammar"
)

// RenderLine styles one line from its segments. Gaps between segments render
// as plain text. When errorLine is set every piece also gets the error
// background and the line is padded to width with it.
func RenderLine(line string, segs []grammar.Segment, errorLine bool, width int) string {
	var b strings.Builder
	plain := Lipgloss(grammar.PlainText, errorLine)
	pos := 0
	for _, s := range segs {
		if s.Start > pos {
			b.WriteString(plain.Render(line[pos:s.Start]))
		}
		b.WriteString(Lipgloss(s.Category, errorLine).Render(s.Text))
		pos = s.End
	}
	if pos < len(line) {
		b.WriteString(plain.Render(line[pos:]))
	}
	if errorLine {
		// measure what was rendered: tabs are expanded by then
		if pad := width - lipgloss.Width(b.String()); pad > 0 {
			b.WriteString(errorBg.Render(strings.Repeat(" ", pad)))
		}
	}
	return b.String()
}

// RenderText classifies and styles every line of text. errorLines holds the
// 1-indexed lines that carry an error annotation.
func RenderText(text string, errorLines map[int]bool, width int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		out[i] = RenderLine(line, grammar.ClassifyLine(line), errorLines[i+1], width)
	}
	return strings.Join(out, "\n")
}

// GlyphMargin is the one-cell gutter drawn in front of a line.
func GlyphMargin(annotated bool) string {
	if annotated {
		return glyph.Render("▌")
	}
	return " "
}
