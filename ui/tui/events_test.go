package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLoggerWritesNumberedJournal(t *testing.T) {
	dir := t.TempDir()
	l := newEventLogger(dir, "sess_a")
	l.Append("tui", "console.execute", map[string]any{"seq": 1}, "")
	l.Append("system", "console.reply", map[string]any{"seq": 1}, "cid-1")
	require.NoError(t, l.Close())
	// Appends after close are dropped.
	l.Append("tui", "late", nil, "")

	f, err := os.Open(filepath.Join(dir, "sess_a", "events.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var recs []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		recs = append(recs, rec)
	}
	require.Len(t, recs, 2)
	assert.Equal(t, "console.execute", recs[0]["type"])
	assert.Equal(t, float64(1), recs[0]["seq"])
	assert.Equal(t, "tui", recs[0]["source"])
	assert.NotContains(t, recs[0], "correlation_id")
	assert.Equal(t, float64(2), recs[1]["seq"])
	assert.Equal(t, "cid-1", recs[1]["correlation_id"])
	assert.Contains(t, recs[1], "timestamp")
}

func TestNilEventLoggerIsSafe(t *testing.T) {
	var l *eventLogger
	l.Append("tui", "x", nil, "")
	assert.NoError(t, l.Close())
}
