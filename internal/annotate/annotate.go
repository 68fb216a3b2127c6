// Package annotate flags error lines in console text.
//
// Scan is a pure function over a text snapshot. Annotator keeps the last
// result for one surface and replaces it wholesale on every update.
package annotate

import (
	"strings"
	"sync"

	"diskconsole/internal/grammar"
)

// ClassErrorLine is the style class carried by error annotations.
const ClassErrorLine = "errorLine"

// Annotation covers lines StartLine..EndLine, 1-indexed and inclusive.
type Annotation struct {
	StartLine int
	EndLine   int
	Class     string
}

// Scan returns one annotation per line the grammar classifies as an error
// line, in line order. Scanning the same text twice yields equal results.
func Scan(text string) []Annotation {
	if text == "" {
		return nil
	}
	var out []Annotation
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		segs := grammar.ClassifyLine(line)
		if len(segs) > 0 && segs[0].Category == grammar.ErrorLine {
			out = append(out, Annotation{StartLine: i + 1, EndLine: i + 1, Class: ClassErrorLine})
		}
	}
	return out
}

// State is the annotator lifecycle.
type State int

const (
	Idle State = iota
	Scanning
	Annotated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Annotated:
		return "annotated"
	default:
		return "unknown"
	}
}

// Annotator holds the current annotation set of one surface. Safe for
// concurrent use.
type Annotator struct {
	mu          sync.RWMutex
	state       State
	annotations []Annotation
	errorLines  map[int]bool
	generation  uint64
}

func New() *Annotator {
	return &Annotator{}
}

// Update rescans text and replaces the previous set. Text is only ever
// scanned as a whole; nothing is merged from earlier results.
func (a *Annotator) Update(text string) []Annotation {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Scanning
	anns := Scan(text)
	lines := make(map[int]bool, len(anns))
	for _, an := range anns {
		for l := an.StartLine; l <= an.EndLine; l++ {
			lines[l] = true
		}
	}
	a.annotations = anns
	a.errorLines = lines
	a.generation++
	a.state = Annotated
	return append([]Annotation(nil), anns...)
}

func (a *Annotator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Annotations returns a copy of the current set.
func (a *Annotator) Annotations() []Annotation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Annotation(nil), a.annotations...)
}

// ErrorLines returns the annotated line numbers as a lookup set.
func (a *Annotator) ErrorLines() map[int]bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[int]bool, len(a.errorLines))
	for l := range a.errorLines {
		out[l] = true
	}
	return out
}

// Generation counts completed scans.
func (a *Annotator) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generation
}
