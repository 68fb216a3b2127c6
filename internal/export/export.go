// Package export renders console text through chroma formatters so scripts
// and captured output can be shared as HTML or re-printed with ANSI colors.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/formatters/html"

	"diskconsole/internal/annotate"
	"diskconsole/internal/grammar"
	"diskconsole/internal/theme"
)

// Formats lists the accepted format names.
var Formats = []string{"html", "terminal", "terminal256", "terminal16m", "text"}

// Tokens converts text into chroma tokens. Gaps between grammar segments
// become Text tokens so the concatenated values equal the input.
func Tokens(text string) []chroma.Token {
	lines := strings.Split(text, "\n")
	var out []chroma.Token
	for i, line := range lines {
		pos := 0
		for _, s := range grammar.ClassifyLine(line) {
			if s.Start > pos {
				out = append(out, chroma.Token{Type: chroma.Text, Value: line[pos:s.Start]})
			}
			out = append(out, chroma.Token{Type: theme.TokenType(s.Category), Value: s.Text})
			pos = s.End
		}
		tail := line[pos:]
		if i < len(lines)-1 {
			tail += "\n"
		}
		if tail != "" {
			out = append(out, chroma.Token{Type: chroma.Text, Value: tail})
		}
	}
	return out
}

// Options controls Write.
type Options struct {
	Format      string
	LineNumbers bool
	Standalone  bool
}

// Write formats text into w. For HTML, annotated error lines are emitted as
// highlighted lines.
func Write(w io.Writer, text string, opts Options) error {
	f, err := formatter(opts, annotate.Scan(text))
	if err != nil {
		return err
	}
	if err := f.Format(w, theme.Chroma(), chroma.Literator(Tokens(text)...)); err != nil {
		return fmt.Errorf("format %s: %w", opts.Format, err)
	}
	return nil
}

func formatter(opts Options, anns []annotate.Annotation) (chroma.Formatter, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Format))
	switch name {
	case "", "html":
		var ranges [][2]int
		for _, a := range anns {
			ranges = append(ranges, [2]int{a.StartLine, a.EndLine})
		}
		hopts := []html.Option{
			html.WithClasses(false),
			html.Standalone(opts.Standalone),
			html.WithLineNumbers(opts.LineNumbers),
		}
		if len(ranges) > 0 {
			hopts = append(hopts, html.HighlightLines(ranges))
		}
		return html.New(hopts...), nil
	case "terminal", "terminal256", "terminal16m", "text":
		if name == "text" {
			name = "noop"
		}
		if f := formatters.Get(name); f != nil {
			return f, nil
		}
	}
	known := append([]string(nil), Formats...)
	sort.Strings(known)
	return nil, fmt.Errorf("unknown format %q (want one of %s)", opts.Format, strings.Join(known, ", "))
}
