package annotate

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFlagsSecondLine(t *testing.T) {
	got := Scan("Disk created\nError: disk not found\nDone")
	assert.Equal(t, []Annotation{{StartLine: 2, EndLine: 2, Class: ClassErrorLine}}, got)
}

func TestScanIdempotent(t *testing.T) {
	texts := []string{
		"",
		"ok",
		"error one\nfine\n  ERROR two\r\n# Error not flagged\nError",
		strings.Repeat("Error: x\nok\n", 50),
	}
	for _, text := range texts {
		assert.Equal(t, Scan(text), Scan(text))
	}
}

func TestScanCases(t *testing.T) {
	got := Scan("error one\nfine\n  ERROR two\r\n# Error not flagged\nError")
	lines := []int{}
	for _, a := range got {
		lines = append(lines, a.StartLine)
		assert.Equal(t, a.StartLine, a.EndLine)
	}
	assert.Equal(t, []int{1, 3, 5}, lines)
}

func TestScanNoErrors(t *testing.T) {
	assert.Empty(t, Scan("Disk created\nmkdisk error later in line\n"))
	assert.Empty(t, Scan(""))
}

func TestAnnotatorLifecycle(t *testing.T) {
	a := New()
	assert.Equal(t, Idle, a.State())
	assert.Empty(t, a.Annotations())

	a.Update("Error: first")
	assert.Equal(t, Annotated, a.State())
	assert.Equal(t, []Annotation{{1, 1, ClassErrorLine}}, a.Annotations())
	assert.Equal(t, map[int]bool{1: true}, a.ErrorLines())

	// a later update replaces, never merges
	a.Update("ok\nok\nerror: third")
	assert.Equal(t, []Annotation{{3, 3, ClassErrorLine}}, a.Annotations())
	assert.Equal(t, map[int]bool{3: true}, a.ErrorLines())
	assert.Equal(t, uint64(2), a.Generation())

	a.Update("all good")
	assert.Empty(t, a.Annotations())
	assert.Equal(t, Annotated, a.State())
}

func TestAnnotatorCopies(t *testing.T) {
	a := New()
	a.Update("Error")
	got := a.Annotations()
	got[0].StartLine = 99
	assert.Equal(t, 1, a.Annotations()[0].StartLine)
}

func TestAnnotatorConcurrentUpdates(t *testing.T) {
	a := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Update("x\nError y")
			_ = a.Annotations()
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(16), a.Generation())
	assert.Equal(t, []Annotation{{2, 2, ClassErrorLine}}, a.Annotations())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "scanning", Scanning.String())
	assert.Equal(t, "annotated", Annotated.String())
}
