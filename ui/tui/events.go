package main

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"diskconsole/internal/logging"
)

// eventLogger appends the session journal: one JSON object per UI or
// console event, numbered per session.
type eventLogger struct {
	path  string
	mu    sync.Mutex
	seq   uint64
	log   *zap.Logger
	close func() error
}

func newEventLogger(stateDir string, sessionID string) *eventLogger {
	if sessionID == "" {
		sessionID = "sess_unknown"
	}
	path := filepath.Join(stateDir, sessionID, "events.jsonl")
	l := &eventLogger{path: path, log: zap.NewNop()}
	if stateDir == "" {
		return l
	}
	if jl, closeFn, err := logging.NewJournal(path); err == nil {
		l.log = jl
		l.close = closeFn
	}
	return l
}

func (l *eventLogger) Append(source string, eventType string, payload any, correlationID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	fields := []zap.Field{
		zap.Uint64("seq", l.seq),
		zap.String("source", source),
		zap.Any("payload", payload),
	}
	if correlationID != "" {
		fields = append(fields, zap.String("correlation_id", correlationID))
	}
	l.log.Info(eventType, fields...)
}

func (l *eventLogger) Close() error {
	if l == nil || l.close == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.close()
	l.close = nil
	l.log = zap.NewNop()
	return err
}

type alertSeverity string

const (
	alertInfo  alertSeverity = "INFO"
	alertWarn  alertSeverity = "WARN"
	alertError alertSeverity = "ERROR"
)

type systemAlert struct {
	At            string         `json:"at"`
	Severity      alertSeverity  `json:"severity"`
	Code          string         `json:"code"`
	Message       string         `json:"message"`
	Context       map[string]any `json:"context,omitempty"`
	CorrelationID string         `json:"correlation_id"`
}

func newCorrelationID() string {
	return uuid.NewString()
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
