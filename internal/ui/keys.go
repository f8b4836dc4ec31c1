package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Expand    key.Binding
	Collapse  key.Binding
	Open      key.Binding
	Next      key.Binding
	Editor    key.Binding
	Refresh   key.Binding
	RunTask   key.Binding
	PickTask  key.Binding
	EditTasks key.Binding
	Output    key.Binding
	Focus     key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Expand:    key.NewBinding(key.WithKeys("right", "l", " "), key.WithHelp("→", "expand")),
		Collapse:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "collapse")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show")),
		Next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next location")),
		Editor:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "editor")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		RunTask:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "run task")),
		PickTask:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select task")),
		EditTasks: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit tasks.json")),
		Output:    key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "task output")),
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// shortHelp is the status-bar hint line.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Expand, k.Open, k.Next, k.Editor, k.Refresh, k.RunTask, k.PickTask, k.Quit}
}
