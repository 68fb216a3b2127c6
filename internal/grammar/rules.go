package grammar

import (
	"regexp"
	"sort"
	"strings"
)

// Scope says whether a rule claims a whole line or a single token.
type Scope int

const (
	LineScope Scope = iota
	TokenScope
)

// Rule is one (pattern, category) entry. Rules are evaluated top to bottom
// and the first match wins. Line rules are tried once against the whole
// line; token rules are tried at every token start left to right.
//
// When Groups is set, each capture group of Pattern becomes its own segment
// with the matching category, otherwise the whole match gets Category.
type Rule struct {
	Name      string
	Scope     Scope
	Pattern   *regexp.Regexp
	Category  Category
	Groups    []Category
	WordStart bool
}

var (
	errorLinePattern = regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(ErrorMarker))
	commentPattern   = regexp.MustCompile(`^\s*` + regexp.QuoteMeta(CommentMarker))
	flagPattern      = regexp.MustCompile(`^(` + regexp.QuoteMeta(FlagMarker) + `)([A-Za-z0-9_]+)`)
	plainPattern     = regexp.MustCompile(`^(?:[A-Za-z0-9_]+|[^\sA-Za-z0-9_])`)
)

// compileRules builds the table. The error and comment rules come first so
// that keywords inside those lines are never tagged on their own.
func compileRules(keywords []string) []Rule {
	rules := []Rule{
		{Name: "error", Scope: LineScope, Pattern: errorLinePattern, Category: ErrorLine},
		{Name: "comment", Scope: LineScope, Pattern: commentPattern, Category: Comment},
		{Name: "flag", Scope: TokenScope, Pattern: flagPattern, Groups: []Category{FlagPrefix, Flag}},
	}
	if kw := keywordPattern(keywords); kw != nil {
		rules = append(rules, Rule{Name: "keyword", Scope: TokenScope, Pattern: kw, Category: Keyword, WordStart: true})
	}
	rules = append(rules, Rule{Name: "text", Scope: TokenScope, Pattern: plainPattern, Category: PlainText})
	return rules
}

func keywordPattern(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		return nil
	}
	alts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		alts = append(alts, regexp.QuoteMeta(k))
	}
	// longest first so "mounted" is never cut to "mount"
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return regexp.MustCompile(`^(?:` + strings.Join(alts, "|") + `)\b`)
}

// match applies a token rule at pos and returns the produced segments and the
// number of bytes consumed.
func (r Rule) match(line string, pos int) ([]Segment, int) {
	if r.WordStart && pos > 0 && isWordByte(line[pos-1]) {
		return nil, 0
	}
	loc := r.Pattern.FindStringSubmatchIndex(line[pos:])
	if loc == nil || loc[1] == 0 {
		return nil, 0
	}
	if len(r.Groups) == 0 {
		return []Segment{{
			Text:     line[pos : pos+loc[1]],
			Category: r.Category,
			Start:    pos,
			End:      pos + loc[1],
		}}, loc[1]
	}
	segs := make([]Segment, 0, len(r.Groups))
	for i, cat := range r.Groups {
		s, e := loc[2+2*i], loc[3+2*i]
		if s < 0 || s == e {
			continue
		}
		segs = append(segs, Segment{Text: line[pos+s : pos+e], Category: cat, Start: pos + s, End: pos + e})
	}
	return segs, loc[1]
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
