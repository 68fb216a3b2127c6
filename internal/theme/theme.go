// Package theme maps token categories to display styles. The table is a
// chroma style so the terminal renderer and the export formatters share one
// set of colors.
package theme

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/lipgloss"

	"diskconsole/internal/grammar"
)

const (
	ColorError      = "#FF6B6B"
	ColorComment    = "#6A9955"
	ColorFlag       = "#CE9178"
	ColorKeyword    = "#569CD6"
	ColorText       = "#D4D4D4"
	ColorBackground = "#1E1E1E"
	ColorLineActive = "#2A2A2A"
	// rgba(255,0,0,0.1) over the editor background
	ColorErrorLine = "#3A1F1F"
	// rgba(255,0,0,0.3) over the editor background
	ColorErrorGlyph = "#6B1D1D"
)

// StyleEntry is the display style of one token category.
type StyleEntry struct {
	Foreground string
	Bold       bool
	Italic     bool
}

// Default is used for any category without an explicit entry.
var Default = StyleEntry{Foreground: ColorText}

var tokenTypes = map[grammar.Category]chroma.TokenType{
	grammar.PlainText:  chroma.Text,
	grammar.Keyword:    chroma.Keyword,
	grammar.Flag:       chroma.NameAttribute,
	grammar.FlagPrefix: chroma.Punctuation,
	grammar.Comment:    chroma.Comment,
	grammar.ErrorLine:  chroma.GenericError,
}

var consoleStyle = chroma.MustNewStyle("diskconsole", chroma.StyleEntries{
	chroma.Background:    "bg:" + ColorBackground + " " + ColorText,
	chroma.LineHighlight: "bg:" + ColorErrorLine,
	chroma.Text:          ColorText,
	chroma.Keyword:       ColorKeyword,
	chroma.NameAttribute: ColorFlag,
	chroma.Punctuation:   ColorFlag,
	chroma.Comment:       "italic " + ColorComment,
	chroma.GenericError:  "bold " + ColorError,
})

var (
	entries   = map[grammar.Category]StyleEntry{}
	lipgloves = map[grammar.Category]lipgloss.Style{}
	errorBg   = lipgloss.NewStyle().Background(lipgloss.Color(ColorErrorLine))
	glyph     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Background(lipgloss.Color(ColorErrorGlyph))
)

func init() {
	for cat, tt := range tokenTypes {
		e := consoleStyle.Get(tt)
		se := Default
		if e.Colour.IsSet() {
			se.Foreground = strings.ToUpper(e.Colour.String())
		}
		se.Bold = e.Bold == chroma.Yes
		se.Italic = e.Italic == chroma.Yes
		entries[cat] = se
		lipgloves[cat] = toLipgloss(se)
	}
}

func toLipgloss(e StyleEntry) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(e.Foreground)).
		Bold(e.Bold).
		Italic(e.Italic)
}

// StyleFor returns the entry for c, or Default when c has none.
func StyleFor(c grammar.Category) StyleEntry {
	if e, ok := entries[c]; ok {
		return e
	}
	return Default
}

// LineStyleForError is the whole-line background of an annotated error line.
// It only sets a background so it can be layered over token styles.
func LineStyleForError() lipgloss.Style {
	return errorBg
}

// Lipgloss returns the terminal style for c. On error lines the error
// background is inherited on top of the token style, which keeps the token
// foreground.
func Lipgloss(c grammar.Category, errorLine bool) lipgloss.Style {
	s, ok := lipgloves[c]
	if !ok {
		s = toLipgloss(Default)
	}
	if errorLine {
		s = s.Inherit(errorBg)
	}
	return s
}

// Chroma exposes the style table for chroma formatters.
func Chroma() *chroma.Style {
	return consoleStyle
}

// TokenType maps a category onto the chroma token type carrying its style.
func TokenType(c grammar.Category) chroma.TokenType {
	if tt, ok := tokenTypes[c]; ok {
		return tt
	}
	return chroma.Text
}
