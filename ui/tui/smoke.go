package main

import (
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
)

type smokeReport struct {
	ok    bool
	view  string
	json  string
	final appModel
}

// drain runs cmd synchronously and feeds console replies back into model.
// Timers and spinner frames are skipped so the run stays deterministic.
func drain(model tea.Model, cmd tea.Cmd) tea.Model {
	if cmd == nil {
		return model
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			model = drain(model, c)
		}
	case executeResultMsg, scriptLoadedMsg:
		next, follow := model.Update(msg)
		model = drain(next, follow)
	}
	return model
}

func press(model tea.Model, msg tea.KeyMsg) tea.Model {
	next, cmd := model.Update(msg)
	return drain(next, cmd)
}

func typeRunes(model tea.Model, s string) tea.Model {
	for _, r := range s {
		model = press(model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return model
}

func runSmoke(m appModel) smokeReport {
	var model tea.Model = m
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	completionOpened := false
	completionAccepted := false
	executed := false
	errorAnnotated := false
	helpOpened := false
	outputCleared := false
	focusToggled := false
	quitConfirmOpened := false

	// Typing a keyword prefix pops up the completion list.
	model = typeRunes(model, "mkdis")
	if am, ok := model.(appModel); ok {
		completionOpened = am.currentOverlay() == overlayCompletion &&
			len(am.completions) > 0 && am.completions[0].Label == "mkdisk"
	}
	model = press(model, tea.KeyMsg{Type: tea.KeyTab})
	if am, ok := model.(appModel); ok {
		completionAccepted = am.console.Input() == "mkdisk" && am.currentOverlay() == overlayNone
	}

	// Pasted text does not trigger completion.
	model = press(model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" -size=10 -path=/home/disk.dsk"), Paste: true})

	model = press(model, tea.KeyMsg{Type: tea.KeyCtrlE})
	if am, ok := model.(appModel); ok {
		st := am.console.State()
		executed = st.Applied == 1 && !st.Executing
		// An offline executor replies with an error, which must be flagged.
		errorAnnotated = len(am.console.Annotations()) == 1 || (!am.cfg.offline && st.Applied == 1)
	}

	model = press(model, tea.KeyMsg{Type: tea.KeyF1})
	if am, ok := model.(appModel); ok {
		helpOpened = am.currentOverlay() == overlayHelp
	}
	model = press(model, tea.KeyMsg{Type: tea.KeyF1})

	model = press(model, tea.KeyMsg{Type: tea.KeyCtrlP})
	model = typeRunes(model, "clear")
	model = press(model, tea.KeyMsg{Type: tea.KeyEnter})
	if am, ok := model.(appModel); ok {
		outputCleared = am.console.Output() == "" && am.currentOverlay() == overlayNone
	}

	model = press(model, tea.KeyMsg{Type: tea.KeyCtrlT})
	if am, ok := model.(appModel); ok {
		focusToggled = am.focus == focusOutput
	}
	// Esc: output focus -> input focus, then quit confirmation.
	model = press(model, tea.KeyMsg{Type: tea.KeyEscape})
	model = press(model, tea.KeyMsg{Type: tea.KeyEscape})
	if am, ok := model.(appModel); ok {
		quitConfirmOpened = am.currentOverlay() == overlayQuitConfirm && am.focus == focusInput
	}
	model = press(model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	am, _ := model.(appModel)
	view := am.View()
	ok := completionOpened && completionAccepted && executed && errorAnnotated &&
		helpOpened && outputCleared && focusToggled && quitConfirmOpened
	summary := map[string]any{
		"version":            1,
		"ok":                 ok,
		"sessionId":          am.sessionID,
		"offline":            am.cfg.offline,
		"overlay":            am.currentOverlay().String(),
		"input":              am.console.Input(),
		"history":            am.console.History(),
		"completionOpened":   completionOpened,
		"completionAccepted": completionAccepted,
		"executed":           executed,
		"errorAnnotated":     errorAnnotated,
		"helpOpened":         helpOpened,
		"outputCleared":      outputCleared,
		"focusToggled":       focusToggled,
		"quitConfirmOpened":  quitConfirmOpened,
	}
	b, _ := json.Marshal(summary)

	return smokeReport{ok: ok, view: view, json: string(b), final: am}
}
