package grammar

import "strings"

// FlagMarker prefixes every flag on the command line.
const FlagMarker = "-"

// ErrorMarker starts a line the backend reports as failed. Matched
// case-insensitively against the trimmed line.
const ErrorMarker = "Error"

// CommentMarker starts a comment line.
const CommentMarker = "#"

var defaultKeywords = []string{
	"mkdisk",
	"rmdisk",
	"ls",
	"touch",
	"rm",
	"mv",
	"cp",
	"cat",
	"find",
	"grep",
	"chmod",
	"chown",
	"chgrp",
	"mkfile",
	"rep",
	"mkdir",
	"rmdir",
	"login",
	"logout",
	"mkuser",
	"rmuser",
	"mkgrp",
	"mount",
	"mounted",
	"fdisk",
	"loss",
	"unmount",
	"mkfs",
	"recovery",
	"journaling",
}

var defaultFlags = []string{
	"path",
	"size",
	"fit",
	"ls_path",
	"unit",
	"type",
	"name",
	"id",
	"fs",
}

// Default is the simulator vocabulary. It is built once at init and never
// mutated.
var Default = NewVocabulary(defaultKeywords, defaultFlags)

// Vocabulary is an immutable pair of ordered keyword and flag sets together
// with the rule table compiled from them.
type Vocabulary struct {
	keywords   []string
	flags      []string
	keywordSet map[string]struct{}
	flagSet    map[string]struct{}
	rules      []Rule
}

// NewVocabulary copies keywords and flags, dropping blanks and duplicates
// while keeping first-seen order. Flags are given without the marker.
func NewVocabulary(keywords, flags []string) Vocabulary {
	v := Vocabulary{
		keywordSet: map[string]struct{}{},
		flagSet:    map[string]struct{}{},
	}
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := v.keywordSet[k]; dup {
			continue
		}
		v.keywordSet[k] = struct{}{}
		v.keywords = append(v.keywords, k)
	}
	for _, f := range flags {
		f = strings.TrimPrefix(strings.TrimSpace(f), FlagMarker)
		if f == "" {
			continue
		}
		if _, dup := v.flagSet[f]; dup {
			continue
		}
		v.flagSet[f] = struct{}{}
		v.flags = append(v.flags, f)
	}
	v.rules = compileRules(v.keywords)
	return v
}

// Keywords returns the command names in declaration order.
func (v Vocabulary) Keywords() []string {
	return append([]string(nil), v.keywords...)
}

// Flags returns the option names, without marker, in declaration order.
func (v Vocabulary) Flags() []string {
	return append([]string(nil), v.flags...)
}

func (v Vocabulary) IsKeyword(word string) bool {
	_, ok := v.keywordSet[word]
	return ok
}

// IsFlag reports whether name is a known option. A leading marker is accepted.
func (v Vocabulary) IsFlag(name string) bool {
	_, ok := v.flagSet[strings.TrimPrefix(name, FlagMarker)]
	return ok
}

// Len is the number of distinct keywords plus flags.
func (v Vocabulary) Len() int {
	return len(v.keywords) + len(v.flags)
}

// Rules returns the ordered rule table.
func (v Vocabulary) Rules() []Rule {
	return append([]Rule(nil), v.rules...)
}
