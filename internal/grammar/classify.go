package grammar

// ClassifyLine classifies line with the Default vocabulary.
func ClassifyLine(line string) []Segment {
	return Default.Classify(line)
}

// IsErrorLine reports whether the trimmed line starts with the error marker,
// ignoring case.
func IsErrorLine(line string) bool {
	return errorLinePattern.MatchString(line)
}

// Classify splits line into ordered segments. A line rule that matches tags
// the entire line and stops evaluation. Otherwise token rules run at each
// non-space position; adjacent plain text pieces are merged so "=10" is one
// segment.
func (v Vocabulary) Classify(line string) []Segment {
	if line == "" {
		return nil
	}
	rules := v.rules
	if rules == nil {
		rules = compileRules(nil)
	}
	for _, r := range rules {
		if r.Scope == LineScope && r.Pattern.MatchString(line) {
			return []Segment{{Text: line, Category: r.Category, Start: 0, End: len(line)}}
		}
	}

	var out []Segment
	pos := 0
	for pos < len(line) {
		if isSpaceByte(line[pos]) {
			pos++
			continue
		}
		matched := false
		for _, r := range rules {
			if r.Scope != TokenScope {
				continue
			}
			segs, n := r.match(line, pos)
			if n == 0 {
				continue
			}
			for _, s := range segs {
				out = appendSegment(out, s)
			}
			pos += n
			matched = true
			break
		}
		if !matched {
			// the text rule consumes any non-space byte, so this only
			// guards against a custom table without one
			out = appendSegment(out, Segment{Text: line[pos : pos+1], Category: PlainText, Start: pos, End: pos + 1})
			pos++
		}
	}
	return out
}

func appendSegment(out []Segment, s Segment) []Segment {
	if n := len(out); n > 0 && s.Category == PlainText {
		last := &out[n-1]
		if last.Category == PlainText && last.End == s.Start {
			last.Text += s.Text
			last.End = s.End
			return out
		}
	}
	return append(out, s)
}
