package completion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskconsole/internal/grammar"
)

func TestCompleteListsWholeVocabulary(t *testing.T) {
	positions := []Position{{1, 1}, {3, 17}, {40, 2}}
	for _, pos := range positions {
		cands := Default.Complete(pos)
		require.Len(t, cands, len(grammar.Default.Keywords())+len(grammar.Default.Flags()))

		seen := map[string]bool{}
		for _, c := range cands {
			assert.False(t, seen[c.Label], "duplicate %q", c.Label)
			seen[c.Label] = true
			assert.True(t, c.Range.Empty())
			assert.Equal(t, pos, c.Range.Start)
			assert.Equal(t, c.Label, c.InsertText)
		}
		for _, k := range grammar.Default.Keywords() {
			assert.True(t, seen[k], "keyword %q", k)
		}
		for _, f := range grammar.Default.Flags() {
			assert.True(t, seen["-"+f], "flag %q", f)
		}
	}
}

func TestCompleteOrderKeywordsThenFlags(t *testing.T) {
	cands := Default.Complete(Position{1, 1})
	assert.Equal(t, "mkdisk", cands[0].Label)
	assert.Equal(t, KindKeyword, cands[0].Kind)
	last := cands[len(cands)-1]
	assert.Equal(t, "-fs", last.Label)
	assert.Equal(t, KindFlag, last.Kind)
}

func TestCompleteEmptyVocabulary(t *testing.T) {
	p := New(grammar.NewVocabulary(nil, nil))
	assert.Empty(t, p.Complete(Position{1, 1}))
}

func TestFilterPrefersPrefix(t *testing.T) {
	cands := Default.Complete(Position{1, 1})
	got := Filter(cands, "mk")
	require.NotEmpty(t, got)
	for _, c := range got[:5] {
		assert.Contains(t, []string{"mkdisk", "mkfile", "mkdir", "mkuser", "mkgrp", "mkfs"}, c.Label)
	}
	assert.Len(t, Filter(cands, ""), len(cands))
	assert.Empty(t, Filter(cands, "zzz"))
}

func TestExtendingDropsFuzzyOnlyMatches(t *testing.T) {
	cands := Filter(Default.Complete(Position{1, 1}), "mdk")
	require.NotEmpty(t, cands, "fuzzy still finds mkdisk")
	assert.Empty(t, Extending(cands, "mdk"))

	got := Extending(Filter(Default.Complete(Position{1, 1}), "rm"), "rm")
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.True(t, strings.HasPrefix(c.Label, "rm"), c.Label)
	}
	all := Default.Complete(Position{1, 1})
	assert.Len(t, Extending(all, ""), len(all))
}

func TestWordBefore(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want string
	}{
		{"mkd", 3, "mkd"},
		{"mkdisk -si", 10, "-si"},
		{"mkdisk ", 7, ""},
		{"mkdisk -size=1", 6, "mkdisk"},
		{"ab", 99, "ab"},
		{"ab", -1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WordBefore(tt.line, tt.col), "%q@%d", tt.line, tt.col)
	}
}

func TestRemainderNeverDeletes(t *testing.T) {
	c := Candidate{Label: "mkdisk", InsertText: "mkdisk"}
	assert.Equal(t, "disk", Remainder(c, "mk"))
	assert.Equal(t, "mkdisk", Remainder(c, ""))
	assert.Equal(t, "mkdisk", Remainder(c, "dk"))

	f := Candidate{Label: "-size", InsertText: "-size"}
	assert.Equal(t, "ze", Remainder(f, "-si"))
}
