package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	cat  Category
	text string
}

func toks(segs []Segment) []tok {
	out := make([]tok, 0, len(segs))
	for _, s := range segs {
		out = append(out, tok{s.Category, s.Text})
	}
	return out
}

func TestClassifyLineMkdisk(t *testing.T) {
	got := toks(ClassifyLine("mkdisk -size=10 -unit=M"))
	want := []tok{
		{Keyword, "mkdisk"},
		{FlagPrefix, "-"},
		{Flag, "size"},
		{PlainText, "=10"},
		{FlagPrefix, "-"},
		{Flag, "unit"},
		{PlainText, "=M"},
	}
	assert.Equal(t, want, got)
}

func TestClassifyLineOffsets(t *testing.T) {
	line := "mkdisk -size=10 -unit=M"
	for _, s := range ClassifyLine(line) {
		assert.Equal(t, s.Text, line[s.Start:s.End], "segment %q", s.Text)
	}
}

func TestClassifyLineErrorWins(t *testing.T) {
	lines := []string{
		"Error: mkdisk failed",
		"error mount -id=1",
		"   Error: ls path not found",
		"\tERROR rmdisk",
	}
	for _, line := range lines {
		segs := ClassifyLine(line)
		require.Len(t, segs, 1, line)
		assert.Equal(t, ErrorLine, segs[0].Category, line)
		assert.Equal(t, line, segs[0].Text)
		assert.True(t, IsErrorLine(line))
	}
}

func TestClassifyLineComment(t *testing.T) {
	segs := ClassifyLine("# mkdisk -size=5")
	require.Len(t, segs, 1)
	assert.Equal(t, Comment, segs[0].Category)

	segs = ClassifyLine("  #indented")
	require.Len(t, segs, 1)
	assert.Equal(t, Comment, segs[0].Category)
}

func TestClassifyLineErrorBeforeComment(t *testing.T) {
	assert.False(t, IsErrorLine("# Error in comment"))
	segs := ClassifyLine("# Error in comment")
	require.Len(t, segs, 1)
	assert.Equal(t, Comment, segs[0].Category)
}

func TestClassifyLineEveryKeyword(t *testing.T) {
	for _, kw := range Default.Keywords() {
		got := toks(ClassifyLine(kw))
		assert.Equal(t, []tok{{Keyword, kw}}, got, kw)

		got = toks(ClassifyLine("x " + kw + " y"))
		assert.Equal(t, []tok{{PlainText, "x"}, {Keyword, kw}, {PlainText, "y"}}, got, kw)
	}
}

func TestClassifyLineEveryFlag(t *testing.T) {
	for _, f := range Default.Flags() {
		got := toks(ClassifyLine("mount -" + f + "=v"))
		want := []tok{{Keyword, "mount"}, {FlagPrefix, "-"}, {Flag, f}, {PlainText, "=v"}}
		assert.Equal(t, want, got, f)
	}
}

func TestClassifyLineWordBoundary(t *testing.T) {
	tests := []struct {
		line string
		want []tok
	}{
		{"mkdiskX", []tok{{PlainText, "mkdiskX"}}},
		{"xls", []tok{{PlainText, "xls"}}},
		{"mounted", []tok{{Keyword, "mounted"}}},
		{"Mkdisk", []tok{{PlainText, "Mkdisk"}}},
		{"/home/ls/a", []tok{{PlainText, "/home/"}, {Keyword, "ls"}, {PlainText, "/a"}}},
		{"--size", []tok{{PlainText, "-"}, {FlagPrefix, "-"}, {Flag, "size"}}},
		{"a-b", []tok{{PlainText, "a"}, {FlagPrefix, "-"}, {Flag, "b"}}},
		{"- alone", []tok{{PlainText, "-"}, {PlainText, "alone"}}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, toks(ClassifyLine(tt.line)))
		})
	}
}

func TestClassifyLineUnknownFlagStillFlag(t *testing.T) {
	got := toks(ClassifyLine("rep -bogus"))
	assert.Equal(t, []tok{{Keyword, "rep"}, {FlagPrefix, "-"}, {Flag, "bogus"}}, got)
	assert.False(t, Default.IsFlag("bogus"))
	assert.True(t, Default.IsFlag("-ls_path"))
}

func TestClassifyLineEmpty(t *testing.T) {
	assert.Empty(t, ClassifyLine(""))
	assert.Empty(t, ClassifyLine("   \t"))
}

func TestClassifyLineNonASCII(t *testing.T) {
	got := toks(ClassifyLine("mkdir -path=/año"))
	assert.Equal(t, []tok{{Keyword, "mkdir"}, {FlagPrefix, "-"}, {Flag, "path"}, {PlainText, "=/año"}}, got)
}

func TestVocabularyDedupes(t *testing.T) {
	v := NewVocabulary([]string{"a", "b", "a", " "}, []string{"-x", "x", "y"})
	assert.Equal(t, []string{"a", "b"}, v.Keywords())
	assert.Equal(t, []string{"x", "y"}, v.Flags())
	assert.Equal(t, 4, v.Len())
}

func TestEmptyVocabularyClassifiesPlain(t *testing.T) {
	v := NewVocabulary(nil, nil)
	got := toks(v.Classify("mkdisk -size=1"))
	assert.Equal(t, []tok{{PlainText, "mkdisk"}, {FlagPrefix, "-"}, {Flag, "size"}, {PlainText, "=1"}}, got)

	var zero Vocabulary
	assert.Equal(t, got, toks(zero.Classify("mkdisk -size=1")))
}

func TestRulesOrder(t *testing.T) {
	names := make([]string, 0)
	for _, r := range Default.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, "error,comment,flag,keyword,text", strings.Join(names, ","))
}

func TestDefaultVocabularySize(t *testing.T) {
	assert.Len(t, Default.Keywords(), 30)
	assert.Len(t, Default.Flags(), 9)
}

func TestCategoryString(t *testing.T) {
	want := []string{"plainText", "keyword", "flag", "flagPrefix", "comment", "errorLine"}
	for i, c := range Categories {
		assert.Equal(t, want[i], c.String())
	}
	assert.Equal(t, "unknown", Category(99).String())
}
