package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"diskconsole/internal/completion"
	"diskconsole/internal/console"
	"diskconsole/internal/export"
	"diskconsole/internal/grammar"
	"diskconsole/internal/script"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusOutput
)

func (f focusArea) String() string {
	if f == focusOutput {
		return "output"
	}
	return "input"
}

type overlay int

const (
	overlayNone overlay = iota
	overlayCompletion
	overlayPalette
	overlayHelp
	overlayQuitConfirm
)

func (o overlay) String() string {
	switch o {
	case overlayNone:
		return "none"
	case overlayCompletion:
		return "completion"
	case overlayPalette:
		return "command_palette"
	case overlayHelp:
		return "help"
	case overlayQuitConfirm:
		return "quit_confirm"
	default:
		return "unknown"
	}
}

type appConfig struct {
	stateDir       string
	sessionID      string
	version        string
	baseURL        string
	offline        bool
	commandsPath   string
	scriptPath     string
	autoComplete   bool
	historyLimit   int
	requestTimeout time.Duration
}

type appModel struct {
	cfg  appConfig
	th   theme
	keys keyMap
	help help.Model

	width  int
	height int

	sessionID string

	console *console.Console
	exec    console.Executor
	logger  *zap.Logger

	editor  editor
	output  outputView
	spinner spinner.Model
	focus   focusArea

	overlays         []overlay
	completions      []completion.Candidate
	completionIndex  int
	completionPrefix string
	paletteQuery     string
	paletteIndex     int

	alerts []systemAlert
	events *eventLogger

	// inflight holds the cancel func of every outstanding execute request.
	inflight   map[uint64]context.CancelFunc
	executions int
	lastTook   time.Duration

	scriptUpdates <-chan string

	now              time.Time
	commandBusPath   string
	commandBusOffset int64
	actionSource     string // tui|cli
	quitRequested    bool
}

type executeResultMsg struct {
	Result        console.Result
	CorrelationID string
}

type scriptLoadedMsg struct {
	Path   string
	Text   string
	Err    error
	Source string // load|watch
}

func newAppModel(cfg appConfig, exec console.Executor, logger *zap.Logger) appModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	th := defaultTheme()
	m := appModel{
		cfg:            cfg,
		th:             th,
		keys:           defaultKeyMap(),
		help:           help.New(),
		sessionID:      cfg.sessionID,
		console:        console.New(console.WithHistoryLimit(cfg.historyLimit)),
		exec:           exec,
		logger:         logger,
		editor:         newEditor(""),
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(th.Accent)),
		alerts:         []systemAlert{},
		events:         newEventLogger(cfg.stateDir, cfg.sessionID),
		inflight:       map[uint64]context.CancelFunc{},
		commandBusPath: cfg.commandsPath,
		actionSource:   "tui",
	}
	l := m.layout()
	m.output = newOutputView(l.outputW, l.outputH)
	m.commandBusOffset = initCommandBus(cfg.commandsPath)
	m.systemAlert(alertInfo, "console.started", "Console started", map[string]any{
		"base_url": cfg.baseURL,
		"offline":  cfg.offline,
	})
	return m
}

// withScriptUpdates feeds watched script contents into the input surface.
func (m appModel) withScriptUpdates(ch <-chan string) appModel {
	m.scriptUpdates = ch
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.cfg.scriptPath != "" {
		cmds = append(cmds, loadScriptCmd(m.cfg.scriptPath))
	}
	if m.scriptUpdates != nil {
		cmds = append(cmds, waitForScript(m.scriptUpdates, m.cfg.scriptPath))
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return t })
}

func loadScriptCmd(path string) tea.Cmd {
	return func() tea.Msg {
		text, err := script.Load(path)
		return scriptLoadedMsg{Path: path, Text: text, Err: err, Source: "load"}
	}
}

func waitForScript(ch <-chan string, path string) tea.Cmd {
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return nil
		}
		return scriptLoadedMsg{Path: path, Text: text, Source: "watch"}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch t := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = t.Width
		m.height = t.Height
		m = m.resize()
		return m, nil
	case executeResultMsg:
		return m.onExecuteResult(t)
	case scriptLoadedMsg:
		m = m.onScriptLoaded(t)
		if t.Source == "watch" && m.scriptUpdates != nil {
			return m, waitForScript(m.scriptUpdates, m.cfg.scriptPath)
		}
		return m, nil
	case spinner.TickMsg:
		if !m.console.State().Executing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(t)
		return m, cmd
	case time.Time:
		return m.onTick(t)
	case tea.KeyMsg:
		if key.Matches(t, m.keys.Quit) {
			return m.quit("ctrl+c")
		}
		if key.Matches(t, m.keys.Back) {
			return m.handleEsc()
		}
		switch m.currentOverlay() {
		case overlayCompletion:
			return m.updateCompletion(t)
		case overlayPalette:
			return m.updatePalette(t)
		case overlayHelp:
			if key.Matches(t, m.keys.Help) {
				m = m.closeOverlay()
			}
			return m, nil
		case overlayQuitConfirm:
			return m.updateQuitConfirm(t)
		}
		return m.updateSurface(t)
	}
	return m, nil
}

func (m appModel) onTick(now time.Time) (appModel, tea.Cmd) {
	m.now = now
	var busCmd tea.Cmd
	m, busCmd = m.consumeCommandBus()
	if m.quitRequested {
		return m, tea.Quit
	}
	if busCmd != nil {
		return m, tea.Batch(tickCmd(), busCmd)
	}
	return m, tickCmd()
}

// updateSurface handles keys with no overlay open.
func (m appModel) updateSurface(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Execute):
		return m.execute()
	case key.Matches(k, m.keys.Focus):
		m = m.toggleFocus()
		return m, nil
	case key.Matches(k, m.keys.Palette):
		m.paletteQuery = ""
		m.paletteIndex = 0
		m = m.openOverlay(overlayPalette)
		return m, nil
	case key.Matches(k, m.keys.Help):
		m = m.openOverlay(overlayHelp)
		return m, nil
	case key.Matches(k, m.keys.Reload):
		return m.reloadScript()
	case key.Matches(k, m.keys.Clear):
		m = m.clearOutput()
		return m, nil
	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		var cmd tea.Cmd
		m.output.vp, cmd = m.output.vp.Update(k)
		return m, cmd
	}

	if m.focus == focusOutput {
		var cmd tea.Cmd
		m.output.vp, cmd = m.output.vp.Update(k)
		return m, cmd
	}
	if key.Matches(k, m.keys.Complete) {
		m = m.openCompletion(true)
		return m, nil
	}
	return m.updateEditor(k)
}

// updateEditor applies an editing key to the input surface and mirrors the
// new text into the console.
func (m appModel) updateEditor(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.editor.Value()
	typed := false
	switch k.Type {
	case tea.KeyRunes:
		m.editor.InsertText(string(k.Runes))
		typed = !k.Paste
	case tea.KeySpace:
		m.editor.InsertText(" ")
	case tea.KeyEnter:
		m.editor.Newline()
	case tea.KeyBackspace:
		m.editor.Backspace()
	case tea.KeyDelete:
		m.editor.Delete()
	case tea.KeyLeft:
		m.editor.Left()
	case tea.KeyRight:
		m.editor.Right()
	case tea.KeyUp:
		m.editor.Up()
	case tea.KeyDown:
		m.editor.Down()
	case tea.KeyHome, tea.KeyCtrlA:
		m.editor.Home()
	case tea.KeyEnd:
		m.editor.End()
	default:
		return m, nil
	}
	m.editor.scrollTo(m.layout().inputH)
	if after := m.editor.Value(); after != before {
		m.console.OnInputChanged(after)
	}
	if typed && m.cfg.autoComplete && m.editor.WordBeforeCursor() != "" {
		m = m.openCompletion(false)
	}
	return m, nil
}

// openCompletion shows the candidates that extend the word before the
// cursor. Without explicit, a word that is already a whole keyword or the
// only candidate does not open the popup.
func (m appModel) openCompletion(explicit bool) appModel {
	prefix := m.editor.WordBeforeCursor()
	cands := completion.Filter(completion.Default.Complete(m.editor.Position()), prefix)
	cands = completion.Extending(cands, prefix)
	done := grammar.Default.IsKeyword(prefix) || (len(cands) == 1 && cands[0].InsertText == prefix)
	if len(cands) == 0 || (!explicit && done) {
		if m.currentOverlay() == overlayCompletion {
			m = m.closeOverlay()
		}
		return m
	}
	m.completions = cands
	m.completionPrefix = prefix
	m.completionIndex = 0
	if m.currentOverlay() != overlayCompletion {
		m = m.openOverlay(overlayCompletion)
	}
	return m
}

func (m appModel) updateCompletion(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyUp:
		if m.completionIndex > 0 {
			m.completionIndex--
		}
		return m, nil
	case tea.KeyDown:
		if m.completionIndex < len(m.completions)-1 {
			m.completionIndex++
		}
		return m, nil
	case tea.KeyEnter, tea.KeyTab:
		return m.acceptCompletion(), nil
	}
	// Any other key closes the popup and edits as usual.
	m = m.closeOverlay()
	return m.updateSurface(k)
}

func (m appModel) acceptCompletion() appModel {
	if m.completionIndex >= len(m.completions) {
		return m.closeOverlay()
	}
	c := m.completions[m.completionIndex]
	m.editor.InsertText(completion.Remainder(c, m.completionPrefix))
	m.console.OnInputChanged(m.editor.Value())
	m.emitEvent("completion.accepted", m.actionSource, map[string]any{
		"label":  c.Label,
		"kind":   c.Kind.String(),
		"prefix": m.completionPrefix,
	}, "")
	m.completions = nil
	m.completionPrefix = ""
	return m.closeOverlay()
}

// execute snapshots the input and issues a request. The reply arrives as an
// executeResultMsg.
func (m appModel) execute() (appModel, tea.Cmd) {
	m.console.OnInputChanged(m.editor.Value())
	req := m.console.OnExecuteRequested()
	cid := newCorrelationID()

	var ctx context.Context
	var cancel context.CancelFunc
	if m.cfg.requestTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.cfg.requestTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.inflight[req.Seq] = cancel
	m.executions++
	m.emitEvent("console.execute", m.actionSource, map[string]any{
		"seq":     req.Seq,
		"command": req.Command,
	}, cid)
	m.logger.Debug("execute requested", zap.Uint64("seq", req.Seq), zap.Int("bytes", len(req.Command)))

	exec := m.exec
	run := func() tea.Msg {
		return executeResultMsg{Result: console.Run(ctx, exec, req), CorrelationID: cid}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m appModel) onExecuteResult(t executeResultMsg) (tea.Model, tea.Cmd) {
	res := t.Result
	if cancel, ok := m.inflight[res.Seq]; ok {
		cancel()
		delete(m.inflight, res.Seq)
	}
	if !m.console.Resolve(res) {
		m.emitEvent("console.reply.dropped", "system", map[string]any{"seq": res.Seq}, t.CorrelationID)
		m.logger.Debug("stale reply dropped", zap.Uint64("seq", res.Seq))
		return m, nil
	}
	m.lastTook = res.Took
	m = m.syncOutput()
	if res.Err != nil {
		m.systemAlert(alertError, "execute.failed", "Execute failed", map[string]any{
			"seq":   res.Seq,
			"error": res.Err.Error(),
		})
		m.logger.Warn("execute failed", zap.Uint64("seq", res.Seq), zap.Error(res.Err))
	}
	m.emitEvent("console.reply", "system", map[string]any{
		"seq":         res.Seq,
		"took_ms":     res.Took.Milliseconds(),
		"annotations": len(m.console.Annotations()),
	}, t.CorrelationID)
	return m, nil
}

func (m appModel) syncOutput() appModel {
	m.output.SetText(m.console.Output(), m.console.OutputAnnotator().ErrorLines())
	return m
}

func (m appModel) clearOutput() appModel {
	m.console.OnOutputReplaced("")
	m.emitEvent("console.output.cleared", m.actionSource, nil, "")
	return m.syncOutput()
}

func (m appModel) reloadScript() (appModel, tea.Cmd) {
	if m.cfg.scriptPath == "" {
		m.systemAlert(alertWarn, "script.none", "No script file configured", nil)
		return m, nil
	}
	return m, loadScriptCmd(m.cfg.scriptPath)
}

func (m appModel) onScriptLoaded(t scriptLoadedMsg) appModel {
	if t.Err != nil {
		m.systemAlert(alertError, "script.load_failed", "Script could not be loaded", map[string]any{
			"path":  t.Path,
			"error": t.Err.Error(),
		})
		return m
	}
	m.editor.SetValue(t.Text)
	m.editor.scrollTo(m.layout().inputH)
	m.console.OnInputChanged(t.Text)
	if m.currentOverlay() == overlayCompletion {
		m = m.closeOverlay()
	}
	m.systemAlert(alertInfo, "script.loaded", "Script loaded", map[string]any{
		"path":   t.Path,
		"source": t.Source,
		"bytes":  len(t.Text),
	})
	return m
}

func (m appModel) toggleFocus() appModel {
	if m.focus == focusInput {
		m.focus = focusOutput
	} else {
		m.focus = focusInput
	}
	m.emitEvent("ui.focus", m.actionSource, map[string]any{"focus": m.focus.String()}, "")
	return m
}

func (m appModel) quit(by string) (tea.Model, tea.Cmd) {
	for seq, cancel := range m.inflight {
		cancel()
		delete(m.inflight, seq)
	}
	m.emitEvent("session.quit", m.actionSource, map[string]any{"by": by}, "")
	m.quitRequested = true
	return m, tea.Quit
}

func (m appModel) currentOverlay() overlay {
	if len(m.overlays) == 0 {
		return overlayNone
	}
	return m.overlays[len(m.overlays)-1]
}

func (m appModel) openOverlay(o overlay) appModel {
	m.overlays = append(m.overlays, o)
	m.emitEvent("ui.overlay.open", m.actionSource, map[string]any{"overlay": o.String(), "depth": len(m.overlays)}, "")
	return m
}

func (m appModel) closeOverlay() appModel {
	if len(m.overlays) == 0 {
		return m
	}
	popped := m.overlays[len(m.overlays)-1]
	m.overlays = m.overlays[:len(m.overlays)-1]
	m.emitEvent("ui.overlay.close", m.actionSource, map[string]any{"overlay": popped.String(), "depth": len(m.overlays)}, "")
	return m
}

func (m appModel) closeAllOverlays() appModel {
	for len(m.overlays) > 0 {
		m = m.closeOverlay()
	}
	return m
}

func (m appModel) handleEsc() (tea.Model, tea.Cmd) {
	// Priority:
	// 1) Close top overlay
	// 2) Output focus -> input focus
	// 3) Quit confirmation
	if m.currentOverlay() != overlayNone {
		m = m.closeOverlay()
		return m, nil
	}
	if m.focus == focusOutput {
		m = m.toggleFocus()
		return m, nil
	}
	m = m.openOverlay(overlayQuitConfirm)
	return m, nil
}

func (m appModel) updateQuitConfirm(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyEnter:
		return m.quit("quit.confirm")
	case tea.KeyRunes:
		switch string(k.Runes) {
		case "y", "Y":
			return m.quit("quit.y")
		case "n", "N":
			m = m.closeOverlay()
			return m, nil
		}
	}
	return m, nil
}

// Command palette: console actions reachable by name.

type paletteItem struct {
	cmd    string
	desc   string
	action string
}

func paletteItems() []paletteItem {
	return []paletteItem{
		{cmd: "execute", desc: "Send the input to the simulator", action: "execute"},
		{cmd: "clear", desc: "Clear the output surface", action: "clear"},
		{cmd: "reload", desc: "Reload the script file into the input", action: "reload"},
		{cmd: "focus", desc: "Switch between input and output", action: "focus"},
		{cmd: "export", desc: "Write the output as HTML to the session dir", action: "export"},
		{cmd: "help", desc: "Show key bindings", action: "help"},
		{cmd: "exit", desc: "Close the console", action: "exit"},
	}
}

func filteredPaletteItems(query string) []paletteItem {
	items := paletteItems()
	q := strings.TrimSpace(strings.ToLower(query))
	if q == "" {
		return items
	}
	var prefix, contains, inDesc []paletteItem
	for _, it := range items {
		switch {
		case strings.HasPrefix(it.cmd, q):
			prefix = append(prefix, it)
		case strings.Contains(it.cmd, q):
			contains = append(contains, it)
		case strings.Contains(strings.ToLower(it.desc), q):
			inDesc = append(inDesc, it)
		}
	}
	out := append(prefix, contains...)
	return append(out, inDesc...)
}

func findPaletteItem(cmd string) (paletteItem, bool) {
	name := strings.ToLower(strings.TrimSpace(cmd))
	for _, it := range paletteItems() {
		if it.cmd == name {
			return it, true
		}
	}
	return paletteItem{}, false
}

func (m appModel) updatePalette(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyBackspace:
		if m.paletteQuery == "" {
			m = m.closeOverlay()
			return m, nil
		}
		_, size := utf8.DecodeLastRuneInString(m.paletteQuery)
		m.paletteQuery = m.paletteQuery[:len(m.paletteQuery)-size]
		m.paletteIndex = 0
		return m, nil
	case tea.KeyRunes:
		m.paletteQuery += string(k.Runes)
		m.paletteIndex = 0
		return m, nil
	case tea.KeySpace:
		m.paletteQuery += " "
		m.paletteIndex = 0
		return m, nil
	}

	items := filteredPaletteItems(m.paletteQuery)
	if len(items) == 0 {
		if k.Type == tea.KeyEnter {
			m = m.closeOverlay()
		}
		return m, nil
	}
	switch k.Type {
	case tea.KeyUp:
		if m.paletteIndex > 0 {
			m.paletteIndex--
		}
	case tea.KeyDown:
		if m.paletteIndex < len(items)-1 {
			m.paletteIndex++
		}
	case tea.KeyEnter:
		m = m.closeOverlay()
		return m.applyPalette(items[clamp(m.paletteIndex, 0, len(items)-1)])
	}
	return m, nil
}

func (m appModel) applyPalette(item paletteItem) (appModel, tea.Cmd) {
	m.emitEvent("command.submitted", m.actionSource, map[string]any{"cmd": item.cmd}, "")
	switch item.action {
	case "execute":
		return m.execute()
	case "clear":
		return m.clearOutput(), nil
	case "reload":
		return m.reloadScript()
	case "focus":
		return m.toggleFocus(), nil
	case "export":
		return m.exportOutput(), nil
	case "help":
		return m.openOverlay(overlayHelp), nil
	case "exit":
		next, cmd := m.quit("palette")
		am, _ := next.(appModel)
		return am, cmd
	}
	return m, nil
}

func (m appModel) exportPath() string {
	return filepath.Join(m.cfg.stateDir, m.sessionID, "output.html")
}

func (m appModel) exportOutput() appModel {
	if m.cfg.stateDir == "" {
		m.systemAlert(alertWarn, "export.unavailable", "No state directory for export", nil)
		return m
	}
	path := m.exportPath()
	err := writeExport(path, m.console.Output())
	if err != nil {
		m.systemAlert(alertError, "export.failed", "Export failed", map[string]any{"path": path, "error": err.Error()})
		return m
	}
	m.systemAlert(alertInfo, "export.written", "Output exported", map[string]any{"path": path})
	return m
}

func writeExport(path string, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, text, export.Options{Format: "html", Standalone: true, LineNumbers: true}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (m appModel) emitEvent(eventType string, source string, payload any, correlationID string) {
	if m.events == nil {
		return
	}
	m.events.Append(source, eventType, payload, correlationID)
}

func (m *appModel) systemAlert(sev alertSeverity, code string, message string, context map[string]any) {
	cid := newCorrelationID()
	a := systemAlert{
		At:            timestamp(time.Now()),
		Severity:      sev,
		Code:          code,
		Message:       message,
		Context:       context,
		CorrelationID: cid,
	}
	m.alerts = append(m.alerts, a)
	if len(m.alerts) > 50 {
		m.alerts = m.alerts[len(m.alerts)-50:]
	}
	m.emitEvent("system.alert", "system", map[string]any{
		"severity":       string(sev),
		"code":           code,
		"message":        message,
		"context":        context,
		"correlation_id": cid,
	}, cid)
}

// Layout

// layout holds outer panel sizes and the content sizes inside border and
// title.
type layout struct {
	stacked bool

	inputPanelW, inputPanelH   int
	outputPanelW, outputPanelH int

	inputW, inputH   int
	outputW, outputH int
}

const chromeLines = 4 // header (2), status, help

func (m appModel) layout() layout {
	w, h := m.effectiveSize()
	bodyH := max(h-chromeLines, 6)
	var l layout
	if w < 70 {
		l.stacked = true
		l.inputPanelW, l.outputPanelW = w, w
		l.inputPanelH = bodyH / 2
		l.outputPanelH = bodyH - l.inputPanelH
	} else {
		l.inputPanelW = w / 2
		l.outputPanelW = w - l.inputPanelW
		l.inputPanelH, l.outputPanelH = bodyH, bodyH
	}
	// 2 border cells each way, 1 title row
	l.inputW, l.inputH = max(l.inputPanelW-2, 1), max(l.inputPanelH-3, 1)
	l.outputW, l.outputH = max(l.outputPanelW-2, 1), max(l.outputPanelH-3, 1)
	return l
}

func (m appModel) resize() appModel {
	l := m.layout()
	m.output.Resize(l.outputW, l.outputH)
	m.editor.scrollTo(l.inputH)
	m.help.Width = max(m.width, 0)
	return m
}

func (m appModel) View() string {
	w, h := m.effectiveSize()
	// If the terminal is extremely small, render a stable hint instead of a broken layout.
	if w < 35 || h < 10 {
		return m.viewTooSmall(w, h)
	}

	l := m.layout()
	header := renderHeader(m.th, m.cfg.version, m.cfg.baseURL, m.cfg.offline, m.sessionID)
	input := m.viewInputPanel(l)
	output := m.viewOutputPanel(l)
	var body string
	if l.stacked {
		body = lipgloss.JoinVertical(lipgloss.Left, input, output)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, input, output)
	}

	switch m.currentOverlay() {
	case overlayCompletion:
		return lipgloss.JoinVertical(lipgloss.Left, header, body, m.viewCompletion(), m.viewStatus(w))
	case overlayPalette:
		return renderOverlay(m.th, lipgloss.JoinVertical(lipgloss.Left, header, body), m.viewPalette())
	case overlayHelp:
		return renderOverlay(m.th, lipgloss.JoinVertical(lipgloss.Left, header, body), m.viewHelp())
	case overlayQuitConfirm:
		return renderOverlay(m.th, lipgloss.JoinVertical(lipgloss.Left, header, body), m.viewQuitConfirm())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.viewStatus(w), m.help.View(m.keys))
}

func (m appModel) panelStyle(focused bool, w, h int) lipgloss.Style {
	st := m.th.Panel
	if focused {
		st = m.th.PanelFocus
	}
	return st.Width(max(w-2, 1)).Height(max(h-2, 1))
}

func (m appModel) viewInputPanel(l layout) string {
	focused := m.focus == focusInput
	pos := m.editor.Position()
	title := m.th.Title.Render("INPUT") + m.th.Muted.Render(fmt.Sprintf("  Ln %d, Col %d", pos.Line, pos.Column))
	ed := m.editor
	content := ed.View(m.th, l.inputW, l.inputH, focused)
	return m.panelStyle(focused, l.inputPanelW, l.inputPanelH).Render(title + "\n" + content)
}

func (m appModel) viewOutputPanel(l layout) string {
	focused := m.focus == focusOutput
	title := m.th.Title.Render("OUTPUT")
	st := m.console.State()
	if st.Executing {
		title += "  " + m.spinner.View() + m.th.Muted.Render(" executing")
	}
	if n := len(m.console.Annotations()); n > 0 {
		title += "  " + m.th.Danger.Render(fmt.Sprintf("%d error line(s)", n))
	}
	content := m.output.View()
	return m.panelStyle(focused, l.outputPanelW, l.outputPanelH).Render(title + "\n" + content)
}

func (m appModel) viewStatus(width int) string {
	st := m.console.State()
	parts := []string{
		fmt.Sprintf("seq %d", st.Seq),
		fmt.Sprintf("applied %d", st.Applied),
	}
	if st.Pending > 0 {
		parts = append(parts, fmt.Sprintf("pending %d", st.Pending))
	}
	if m.lastTook > 0 {
		parts = append(parts, fmt.Sprintf("last %s", m.lastTook.Round(time.Millisecond)))
	}
	parts = append(parts, "focus "+m.focus.String())
	line := m.th.Muted.Render(strings.Join(parts, "  "))
	if len(m.alerts) > 0 {
		a := m.alerts[len(m.alerts)-1]
		style := m.th.Success
		switch a.Severity {
		case alertWarn:
			style = m.th.Alert
		case alertError:
			style = m.th.Danger
		}
		line += "  " + style.Render(a.Message)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func (m appModel) viewCompletion() string {
	const shown = 8
	start := 0
	if m.completionIndex >= shown {
		start = m.completionIndex - shown + 1
	}
	end := min(start+shown, len(m.completions))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := m.completions[i]
		row := fmt.Sprintf("%-12s %s", c.Label, c.Kind.String())
		if i == m.completionIndex {
			lines = append(lines, m.th.PopupActive.Render(row))
		} else {
			lines = append(lines, m.th.PopupItem.Render(row))
		}
	}
	return m.th.Popup.Render(strings.Join(lines, "\n"))
}

func (m appModel) viewPalette() string {
	items := filteredPaletteItems(m.paletteQuery)
	lines := []string{
		m.th.Accent.Render("COMMAND PALETTE"),
		m.th.Muted.Render("> " + m.paletteQuery),
	}
	for i, it := range items {
		prefix := "  "
		row := fmt.Sprintf("%-10s %s", it.cmd, it.desc)
		if i == m.paletteIndex {
			prefix = m.th.Accent.Render("> ")
			row = m.th.Accent.Render(row)
		}
		lines = append(lines, prefix+row)
	}
	return m.th.OverlayBox.Render(strings.Join(lines, "\n"))
}

func (m appModel) viewHelp() string {
	lines := []string{
		m.th.Accent.Render("KEYS"),
		m.help.FullHelpView(m.keys.FullHelp()),
	}
	return m.th.OverlayBox.Render(strings.Join(lines, "\n"))
}

func (m appModel) viewQuitConfirm() string {
	lines := []string{
		m.th.Danger.Render("QUIT CONSOLE?"),
		m.th.Muted.Render("Enter/y: quit    Esc/n: cancel"),
	}
	return m.th.OverlayBox.Render(strings.Join(lines, "\n"))
}

func renderHeader(th theme, version string, baseURL string, offline bool, sessionID string) string {
	left := fmt.Sprintf("DISK CONSOLE %s", version)
	right := fmt.Sprintf("[ %s ]", nonEmpty(baseURL, "no simulator"))
	if offline {
		right = "[ OFFLINE ]"
	}
	line := fmt.Sprintf("%s %s", left, right)
	return th.Header.Render(line) + "\n" + th.Muted.Render(fmt.Sprintf("Session: %s", sessionID))
}

func renderOverlay(th theme, base string, overlay string) string {
	dim := th.Overlay.Render(base)
	return dim + "\n\n" + overlay
}

func (m appModel) effectiveSize() (int, int) {
	w := m.width
	h := m.height
	// Smoke runs and headless sessions may not deliver a WindowSizeMsg; assume a sane default.
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	return w, h
}

func (m appModel) viewTooSmall(w, h int) string {
	lines := []string{
		m.th.Header.Render("DISK CONSOLE"),
		m.th.Alert.Render("Terminal too small"),
		m.th.Muted.Render(fmt.Sprintf("Minimum: 35x10. Current: %dx%d", w, h)),
		m.th.Muted.Render("Tip: resize the terminal window."),
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonEmpty(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
