// Package script reads command scripts from disk into the console input and
// optionally follows later edits of the file.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// MaxSize bounds a script file. The console is meant for short scripts.
const MaxSize = 4 << 20

var ErrTooLarge = errors.New("script too large")

// Load reads path and normalizes line endings to \n.
func Load(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat script: %w", err)
	}
	if st.IsDir() {
		return "", fmt.Errorf("load script %s: is a directory", path)
	}
	if st.Size() > MaxSize {
		return "", fmt.Errorf("load script %s: %w (%d bytes)", path, ErrTooLarge, st.Size())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n"), nil
}

// Watch calls fn with the new content every time path is written, created
// or renamed into place. The parent directory is watched so editors that
// save through a temporary file are picked up. Bursts of events are
// coalesced with debounce. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *zap.Logger, fn func(string)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			text, err := Load(abs)
			if err != nil {
				logger.Debug("script reload skipped", zap.String("path", abs), zap.Error(err))
				continue
			}
			fn(text)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("script watcher error", zap.String("path", abs), zap.Error(err))
		}
	}
}
