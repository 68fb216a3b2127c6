package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

const busVersion = 1

// busCommand is one line of <state>/<session>/commands.jsonl.
type busCommand struct {
	Version int    `json:"version"`
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Keys    string `json:"keys,omitempty"`
	Path    string `json:"path,omitempty"`
	Source  string `json:"source,omitempty"`
}

// initCommandBus makes sure the bus file exists. The returned offset is
// always zero so commands queued before startup run once the console is up.
func initCommandBus(path string) int64 {
	if path == "" {
		return 0
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			_ = f.Close()
		}
	}
	return 0
}

func (m appModel) consumeCommandBus() (appModel, tea.Cmd) {
	if m.commandBusPath == "" {
		return m, nil
	}
	pending, off := readBusCommands(m.commandBusPath, m.commandBusOffset)
	m.commandBusOffset = off
	return m.sequence(len(pending), func(m appModel, i int) (appModel, tea.Cmd) {
		return m.applyBusCommand(pending[i])
	})
}

// sequence runs n steps in order and stops early once a step quits.
func (m appModel) sequence(n int, step func(appModel, int) (appModel, tea.Cmd)) (appModel, tea.Cmd) {
	var cmds []tea.Cmd
	for i := 0; i < n && !m.quitRequested; i++ {
		var cmd tea.Cmd
		m, cmd = step(m, i)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// readBusCommands returns the complete lines after offset and the offset
// past the last complete line. A trailing partial line is left for the next
// read.
func readBusCommands(path string, offset int64) ([]busCommand, int64) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && offset > st.Size() {
		offset = st.Size()
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, offset
	}
	complete := bytes.LastIndexByte(data, '\n') + 1
	if complete == 0 {
		return nil, offset
	}

	var out []busCommand
	for _, line := range bytes.Split(data[:complete-1], []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var c busCommand
		if err := json.Unmarshal(line, &c); err != nil {
			continue
		}
		if c.Version == busVersion && strings.TrimSpace(c.Type) != "" {
			out = append(out, c)
		}
	}
	return out, offset + int64(complete)
}

func appendBusCommand(path string, c busCommand) error {
	if c.Version == 0 {
		c.Version = busVersion
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (m appModel) applyBusCommand(c busCommand) (appModel, tea.Cmd) {
	src := strings.TrimSpace(c.Source)
	if src == "" {
		src = "cli"
	}
	prevSource := m.actionSource
	m.actionSource = src
	m, cmd := m.dispatchBusCommand(c, src)
	m.actionSource = prevSource
	return m, cmd
}

func (m appModel) dispatchBusCommand(c busCommand, src string) (appModel, tea.Cmd) {
	switch strings.TrimSpace(strings.ToLower(c.Type)) {
	case "stop":
		m.systemAlert(alertInfo, "session.stop", "Stop requested", map[string]any{"source": src})
		m = m.closeAllOverlays()
		next, cmd := m.quit("bus.stop")
		am, _ := next.(appModel)
		return am, cmd
	case "input":
		m = m.setInput(c.Text)
		return m, nil
	case "append":
		m.editor.End()
		m.editor.InsertText(c.Text)
		m.console.OnInputChanged(m.editor.Value())
		return m, nil
	case "exec":
		if c.Text != "" {
			m = m.setInput(c.Text)
		}
		return m.execute()
	case "load":
		path := strings.TrimSpace(c.Path)
		if path == "" {
			path = m.cfg.scriptPath
		}
		if path == "" {
			m.systemAlert(alertWarn, "script.none", "No script file configured", nil)
			return m, nil
		}
		return m, loadScriptCmd(path)
	case "palette":
		item, ok := findPaletteItem(c.Text)
		if !ok {
			m.systemAlert(alertWarn, "palette.unknown", "Unknown palette command", map[string]any{"cmd": c.Text})
			return m, nil
		}
		return m.applyPalette(item)
	case "key":
		keys := splitKeys(c.Keys)
		return m.sequence(len(keys), func(m appModel, i int) (appModel, tea.Cmd) {
			return m.applySyntheticKey(keys[i])
		})
	default:
		m.systemAlert(alertWarn, "command.unknown", "Unknown bus command type", map[string]any{"type": c.Type})
		return m, nil
	}
}

func (m appModel) setInput(text string) appModel {
	m.editor.SetValue(text)
	m.editor.scrollTo(m.layout().inputH)
	m.console.OnInputChanged(m.editor.Value())
	return m
}

// splitKeys splits a key script on commas and whitespace.
func splitKeys(keys string) []string {
	return strings.FieldsFunc(keys, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

var syntheticKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEscape,
	"escape":    tea.KeyEscape,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"home":      tea.KeyHome,
	"end":       tea.KeyEnd,
	"tab":       tea.KeyTab,
	"space":     tea.KeySpace,
	"backspace": tea.KeyBackspace,
	"delete":    tea.KeyDelete,
	"pgup":      tea.KeyPgUp,
	"pgdown":    tea.KeyPgDown,
	"f1":        tea.KeyF1,
	"f5":        tea.KeyF5,
	"ctrl+e":    tea.KeyCtrlE,
	"ctrl+k":    tea.KeyCtrlK,
	"ctrl+l":    tea.KeyCtrlL,
	"ctrl+p":    tea.KeyCtrlP,
	"ctrl+t":    tea.KeyCtrlT,
}

// applySyntheticKey feeds one named key, or literal runes, through Update.
func (m appModel) applySyntheticKey(token string) (appModel, tea.Cmd) {
	if token == "" {
		return m, nil
	}
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(token)}
	if kt, ok := syntheticKeys[strings.ToLower(token)]; ok {
		msg = tea.KeyMsg{Type: kt}
	}
	next, cmd := m.Update(msg)
	if am, ok := next.(appModel); ok {
		m = am
	}
	return m, cmd
}
