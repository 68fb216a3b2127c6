package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

func writeSessionSummary(m appModel) {
	if m.cfg.stateDir == "" || m.sessionID == "" {
		return
	}
	dir := filepath.Join(m.cfg.stateDir, m.sessionID)
	_ = os.MkdirAll(dir, 0o755)

	alerts := m.alerts
	if len(alerts) > 10 {
		alerts = alerts[len(alerts)-10:]
	}
	cmds := m.console.History()
	if len(cmds) > 10 {
		cmds = cmds[len(cmds)-10:]
	}
	st := m.console.State()

	out := map[string]any{
		"version":        1,
		"updatedAt":      time.Now().UTC().Format(time.RFC3339Nano),
		"sessionId":      m.sessionID,
		"baseUrl":        m.cfg.baseURL,
		"offline":        m.cfg.offline,
		"focus":          m.focus.String(),
		"overlay":        m.currentOverlay().String(),
		"executions":     m.executions,
		"seq":            st.Seq,
		"applied":        st.Applied,
		"errorLines":     len(m.console.Annotations()),
		"recentAlerts":   alerts,
		"recentCommands": cmds,
		"eventsPath":     filepath.Join(dir, "events.jsonl"),
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(dir, "summary.json"), append(b, '\n'), 0o644)
}
