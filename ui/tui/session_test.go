package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSessionOverride(t *testing.T) {
	dir := t.TempDir()
	id, err := resolveSession(dir, "sess_dev", false)
	require.NoError(t, err)
	assert.Equal(t, "sess_dev", id)
	assert.Equal(t, "sess_dev", readPointer(currentPath(dir)).SessionID)
	assert.DirExists(t, filepath.Join(dir, "sess_dev"))
}

func TestResolveSessionNewEachRun(t *testing.T) {
	dir := t.TempDir()
	a, err := resolveSession(dir, "", false)
	require.NoError(t, err)
	b, err := resolveSession(dir, "", false)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "sess_"))
	assert.DirExists(t, filepath.Join(dir, a))
	assert.Equal(t, b, readPointer(currentPath(dir)).SessionID)
}

func TestResolveSessionResume(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, setCurrentSessionID(dir, "sess_keep"))
	id, err := resolveSession(dir, "", true)
	require.NoError(t, err)
	assert.Equal(t, "sess_keep", id)
}

func TestResumeWithoutPointerCreatesOne(t *testing.T) {
	dir := t.TempDir()
	id, err := getOrCreateSessionID(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, readPointer(currentPath(dir)).SessionID)

	again, err := getOrCreateSessionID(dir)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestPointerFileIsJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, setCurrentSessionID(dir, "sess_x"))
	raw, err := os.ReadFile(currentPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sessionId": "sess_x"`)
	assert.Contains(t, string(raw), `"schemaVersion": 1`)
}
