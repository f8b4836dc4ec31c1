package ui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/dkoosis/sarifview/internal/tasks"
)

// taskItem is one label in the task picker.
type taskItem struct {
	label string
	roots []string
}

func (i taskItem) Title() string       { return i.label }
func (i taskItem) FilterValue() string { return i.label }
func (i taskItem) Description() string {
	names := lo.Map(i.roots, func(r string, _ int) string { return filepath.Base(r) })
	return "defined in " + strings.Join(names, ", ")
}

func taskItems(set *tasks.Set) []list.Item {
	byLabel := lo.GroupBy(set.Entries, func(e tasks.Entry) string { return e.Label })
	return lo.Map(set.Labels(), func(label string, _ int) list.Item {
		roots := lo.Uniq(lo.Map(byLabel[label], func(e tasks.Entry, _ int) string { return e.Root }))
		return taskItem{label: label, roots: roots}
	})
}

func (m *Model) setPickerItems() tea.Cmd {
	return m.picker.SetItems(taskItems(m.taskSet))
}

// openPicker shows the task list. With run set, choosing a task also starts it.
func (m *Model) openPicker(run bool) error {
	if len(m.taskSet.Entries) == 0 {
		return tasks.ErrNoTasksConfigured
	}
	m.pendingRun = run
	m.focus = panePicker
	m.picker.ResetFilter()
	m.selectInPicker(m.opts.Selection.Current())
	return nil
}

func (m *Model) selectInPicker(label string) {
	for i, it := range m.picker.Items() {
		if ti, ok := it.(taskItem); ok && ti.label == label {
			m.picker.Select(i)
			return
		}
	}
}

func (m *Model) closePicker() {
	m.pendingRun = false
	m.focus = paneTree
}
