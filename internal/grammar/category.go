// Package grammar holds the command language vocabulary and the ordered rule
// table used to classify console lines into token categories.
package grammar

// Category is the token class applied to a run of characters.
type Category int

const (
	PlainText Category = iota
	Keyword
	Flag
	FlagPrefix
	Comment
	ErrorLine
)

// Categories lists every category in declaration order.
var Categories = []Category{PlainText, Keyword, Flag, FlagPrefix, Comment, ErrorLine}

func (c Category) String() string {
	switch c {
	case PlainText:
		return "plainText"
	case Keyword:
		return "keyword"
	case Flag:
		return "flag"
	case FlagPrefix:
		return "flagPrefix"
	case Comment:
		return "comment"
	case ErrorLine:
		return "errorLine"
	default:
		return "unknown"
	}
}

// Segment is a classified substring of a single line. Start and End are byte
// offsets into the line (End exclusive). Whitespace between segments is not
// emitted; renderers treat gaps as plain text.
type Segment struct {
	Text     string
	Category Category
	Start    int
	End      int
}
