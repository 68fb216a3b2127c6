package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"diskconsole/internal/completion"
)

func TestEditorInsertMultiline(t *testing.T) {
	e := newEditor("")
	e.InsertText("ls\n-path=/a")
	assert.Equal(t, "ls\n-path=/a", e.Value())
	assert.Equal(t, completion.Position{Line: 2, Column: 9}, e.Position())
}

func TestEditorInsertInMiddle(t *testing.T) {
	e := newEditor("mkdisk -size=10")
	e.Home()
	for i := 0; i < len("mkdisk"); i++ {
		e.Right()
	}
	e.InsertText("\n")
	assert.Equal(t, "mkdisk\n -size=10", e.Value())
	assert.Equal(t, completion.Position{Line: 2, Column: 1}, e.Position())
}

func TestEditorBackspaceJoinsLines(t *testing.T) {
	e := newEditor("ab\ncd")
	e.Home()
	e.Backspace()
	assert.Equal(t, "abcd", e.Value())
	assert.Equal(t, completion.Position{Line: 1, Column: 3}, e.Position())

	e = newEditor("")
	e.Backspace()
	assert.Equal(t, "", e.Value())
}

func TestEditorDeleteJoinsLines(t *testing.T) {
	e := newEditor("ab\ncd")
	e.Up()
	e.End()
	e.Delete()
	assert.Equal(t, "abcd", e.Value())

	e.End()
	e.Delete()
	assert.Equal(t, "abcd", e.Value())
}

func TestEditorRuneAwareCursor(t *testing.T) {
	e := newEditor("ñandú")
	assert.Equal(t, completion.Position{Line: 1, Column: 6}, e.Position())
	e.Backspace()
	assert.Equal(t, "ñand", e.Value())
	e.Home()
	e.Right()
	assert.Equal(t, completion.Position{Line: 1, Column: 2}, e.Position())
}

func TestEditorVerticalMovementKeepsColumn(t *testing.T) {
	e := newEditor("mkdisk\nls")
	assert.Equal(t, completion.Position{Line: 2, Column: 3}, e.Position())
	e.Up()
	assert.Equal(t, completion.Position{Line: 1, Column: 3}, e.Position())
	e.End()
	e.Down()
	assert.Equal(t, completion.Position{Line: 2, Column: 3}, e.Position())
	e.Down()
	assert.Equal(t, completion.Position{Line: 2, Column: 3}, e.Position())
	e.Up()
	e.Up()
	assert.Equal(t, completion.Position{Line: 1, Column: 1}, e.Position())
}

func TestEditorWordBeforeCursor(t *testing.T) {
	assert.Equal(t, "-si", newEditor("mkdisk -si").WordBeforeCursor())
	assert.Equal(t, "mkd", newEditor("mkd").WordBeforeCursor())
	assert.Equal(t, "", newEditor("mkdisk ").WordBeforeCursor())
}

func TestEditorSetValueNormalizesCRLF(t *testing.T) {
	e := newEditor("")
	e.SetValue("ls\r\ncat")
	assert.Equal(t, "ls\ncat", e.Value())
}

func TestEditorViewShowsNumberedText(t *testing.T) {
	e := newEditor("mkdisk -size=10\n# note")
	out := ansi.Strip(e.View(defaultTheme(), 40, 3, true))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "1 mkdisk -size=10")
	assert.Contains(t, lines[1], "2 # note")
}

func TestEditorViewScrollsToCursor(t *testing.T) {
	e := newEditor("a\nb\nc\nd\ne")
	out := ansi.Strip(e.View(defaultTheme(), 20, 2, false))
	assert.NotContains(t, out, "1 a")
	assert.Contains(t, out, "5 e")
}

func TestRenderWithCursorKeepsText(t *testing.T) {
	e := newEditor("mkdisk -path=/a")
	e.Home()
	e.Right()
	out := ansi.Strip(e.View(defaultTheme(), 40, 1, true))
	assert.Contains(t, out, "mkdisk -path=/a")
}
