package quizui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Options  []key.Binding
	Continue key.Binding
	Restart  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Options: []key.Binding{
			key.NewBinding(key.WithKeys("a", "A", "1"), key.WithHelp("a/1", "option A")),
			key.NewBinding(key.WithKeys("b", "B", "2"), key.WithHelp("b/2", "option B")),
			key.NewBinding(key.WithKeys("c", "C", "3"), key.WithHelp("c/3", "option C")),
			key.NewBinding(key.WithKeys("d", "D", "4"), key.WithHelp("d/4", "option D")),
		},
		Continue: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "continue")),
		Restart:  key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "restart")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// optionFor returns the option index bound to the key, or -1.
func (k keyMap) optionFor(msg tea.KeyMsg) int {
	for i, b := range k.Options {
		if key.Matches(msg, b) {
			return i
		}
	}
	return -1
}
