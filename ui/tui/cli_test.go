package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskconsole/internal/config"
)

func TestSendBusCommandAppendsToSessionBus(t *testing.T) {
	state := t.TempDir()

	path, err := sendBusCommand(state, "sess_a", "exec", []string{"mkdisk", "-size=10"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(state, "sess_a", "commands.jsonl"), path)

	_, err = sendBusCommand(state, "sess_a", "KEY", []string{"ctrl+p", "enter"})
	require.NoError(t, err)
	_, err = sendBusCommand(state, "sess_a", "stop", nil)
	require.NoError(t, err)

	cmds, _ := readBusCommands(path, 0)
	require.Len(t, cmds, 3)
	assert.Equal(t, "exec", cmds[0].Type)
	assert.Equal(t, "mkdisk -size=10", cmds[0].Text)
	assert.Equal(t, "cli", cmds[0].Source)
	assert.Equal(t, "key", cmds[1].Type)
	assert.Equal(t, []string{"ctrl+p", "enter"}, splitKeys(cmds[1].Keys))
	assert.Equal(t, "stop", cmds[2].Type)
}

func TestSendBusCommandLoadMakesPathAbsolute(t *testing.T) {
	state := t.TempDir()
	path, err := sendBusCommand(state, "s", "load", []string{"setup.dsk"})
	require.NoError(t, err)
	cmds, _ := readBusCommands(path, 0)
	require.Len(t, cmds, 1)
	assert.True(t, filepath.IsAbs(cmds[0].Path), cmds[0].Path)
	assert.Equal(t, "setup.dsk", filepath.Base(cmds[0].Path))
}

func TestSendBusCommandRejectsBadArgs(t *testing.T) {
	state := t.TempDir()
	for name, args := range map[string][]string{
		"dance": nil,
		"key":   nil,
		"stop":  {"now"},
		"load":  {"a", "b"},
	} {
		_, err := sendBusCommand(state, "s", name, args)
		assert.Error(t, err, name)
	}
	_, err := os.Stat(filepath.Join(state, "s", "commands.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitConfigFileWritesDefaults(t *testing.T) {
	for _, k := range []string{"DISKCONSOLE_STATE_DIR", "DISKCONSOLE_BASE_URL", "DISKCONSOLE_TIMEOUT",
		"DISKCONSOLE_LOG_LEVEL", "DISKCONSOLE_DISABLE_NETWORK", "DISKCONSOLE_HISTORY_LIMIT"} {
		t.Setenv(k, "")
	}
	state := t.TempDir()

	path, err := initConfigFile("", state, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(state, "config.yaml"), path)

	cfg, err := config.Load("", state)
	require.NoError(t, err)
	want := config.DefaultConfig()
	want.StateDir = state
	assert.Equal(t, want, cfg)

	_, err = initConfigFile("", state, false)
	assert.Error(t, err, "existing file is kept")
	_, err = initConfigFile("", state, true)
	assert.NoError(t, err)
}
