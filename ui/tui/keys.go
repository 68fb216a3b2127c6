package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Execute  key.Binding
	Complete key.Binding
	Focus    key.Binding
	Palette  key.Binding
	Reload   key.Binding
	Clear    key.Binding
	Help     key.Binding
	Back     key.Binding
	Quit     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Execute: key.NewBinding(
			key.WithKeys("ctrl+e", "f5"),
			key.WithHelp("ctrl+e", "execute"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab", "ctrl+@"),
			key.WithHelp("tab", "complete"),
		),
		Focus: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "switch surface"),
		),
		Palette: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "commands"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "reload script"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "clear output"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Execute, k.Complete, k.Focus, k.Palette, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Execute, k.Complete, k.Focus},
		{k.Palette, k.Reload, k.Clear},
		{k.PageUp, k.PageDown},
		{k.Help, k.Back, k.Quit},
	}
}
