package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensRoundTripText(t *testing.T) {
	text := "mkdisk -size=10 -unit=M\n# comment\nError: boom\n\nls"
	var b strings.Builder
	for _, tok := range Tokens(text) {
		b.WriteString(tok.Value)
	}
	assert.Equal(t, text, b.String())
}

func TestTokensTypes(t *testing.T) {
	toks := Tokens("mkdisk -size")
	require.Len(t, toks, 4)
	assert.Equal(t, chroma.Keyword, toks[0].Type)
	assert.Equal(t, chroma.Text, toks[1].Type)
	assert.Equal(t, chroma.Punctuation, toks[2].Type)
	assert.Equal(t, chroma.NameAttribute, toks[3].Type)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "ls -path=/\nError: x", Options{Format: "text"}))
	assert.Equal(t, "ls -path=/\nError: x", buf.String())
}

func TestWriteHTMLHighlightsErrors(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "Disk created\nError: disk not found\nDone", Options{Format: "html", Standalone: true})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "disk not found")
	// LineHighlight background from the console style
	assert.Contains(t, strings.ToLower(out), "#3a1f1f")
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "ls", Options{Format: "pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
