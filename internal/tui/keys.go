package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Show      key.Binding
	Hint      key.Binding
	Correct   key.Binding
	Incorrect key.Binding
	Restart   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("n", "right", "enter"),
			key.WithHelp("n", "next card"),
		),
		Show: key.NewBinding(
			key.WithKeys(" ", "s"),
			key.WithHelp("space", "show answer"),
		),
		Hint: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hint"),
		),
		Correct: key.NewBinding(
			key.WithKeys("c", "y"),
			key.WithHelp("c", "correct"),
		),
		Incorrect: key.NewBinding(
			key.WithKeys("x", "w"),
			key.WithHelp("x", "incorrect"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Show, k.Correct, k.Incorrect, k.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Show, k.Hint, k.Next, k.Restart},
		{k.Correct, k.Incorrect},
		{k.Help, k.Quit},
	}
}
