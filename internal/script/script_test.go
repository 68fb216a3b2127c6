package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoadNormalizesLineEndings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.smia")
	require.NoError(t, os.WriteFile(path, []byte("mkdisk -size=5\r\nmounted\r\n"), 0o644))

	text, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mkdisk -size=5\nmounted\n", text)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(dir)
	assert.Error(t, err)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.smia")
	require.NoError(t, os.WriteFile(path, []byte("ls"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 10*time.Millisecond, zaptest.NewLogger(t), func(s string) { got <- s })
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("mounted"), 0o644))

	select {
	case text := <-got:
		assert.Equal(t, "mounted", text)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
