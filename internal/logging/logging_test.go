package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, l)

	l, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewEmptyPathIsNop(t *testing.T) {
	l, err := New("", "info", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "console.log")
	l, err := New(path, "warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "verbose forces debug")
	l.Debug("hello", zap.String("k", "v"))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"hello"`)
}

func TestJournalAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	j, closeFn, err := NewJournal(path)
	require.NoError(t, err)
	j.Info("execute.requested", zap.Uint64("seq", 1))
	j.Info("execute.completed", zap.Uint64("seq", 1))
	require.NoError(t, closeFn())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var types []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		types = append(types, rec["type"].(string))
		assert.NotEmpty(t, rec["timestamp"])
	}
	assert.Equal(t, []string{"execute.requested", "execute.completed"}, types)
}
