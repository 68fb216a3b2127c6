package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"diskconsole/internal/grammar"
	ctheme "diskconsole/internal/theme"
)

// outputView is the read-only surface. The viewport owns scrolling; text and
// annotations come from the console on every replacement.
type outputView struct {
	vp         viewport.Model
	text       string
	errorLines map[int]bool
}

func newOutputView(width, height int) outputView {
	return outputView{vp: viewport.New(width, height)}
}

// SetText replaces the content and scrolls back to the top.
func (o *outputView) SetText(text string, errorLines map[int]bool) {
	o.text = text
	o.errorLines = errorLines
	o.refresh()
	o.vp.GotoTop()
}

func (o *outputView) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if o.vp.Width == width && o.vp.Height == height {
		return
	}
	o.vp.Width = width
	o.vp.Height = height
	o.refresh()
}

func (o *outputView) refresh() {
	o.vp.SetContent(renderOutput(o.text, o.errorLines, o.vp.Width))
}

// renderOutput draws the glyph margin, line numbers and styled text. Error
// lines are padded so the background spans the surface.
func renderOutput(text string, errorLines map[int]bool, width int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	gutterW := len(fmt.Sprint(len(lines)))
	textW := width - gutterW - 2
	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		annotated := errorLines[i+1]
		num := fmt.Sprintf("%*d", gutterW, i+1)
		body := ctheme.RenderLine(line, grammar.ClassifyLine(line), annotated, textW)
		out[i] = ctheme.GlyphMargin(annotated) + num + " " + body
	}
	return strings.Join(out, "\n")
}

func (o outputView) View() string {
	return o.vp.View()
}
