package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dkoosis/sarifview/internal/tree"
	"github.com/dkoosis/sarifview/internal/watch"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.focus == panePicker {
			return m, m.updatePicker(msg)
		}
		m.flash = ""
		return m, m.handleKey(msg)

	case scanDoneMsg:
		m.scanning = max(m.scanning-1, 0)
		m.forest = msg.forest
		m.tree.setRoots(msg.roots)
		m.syncTreeOffset()
		if n := len(msg.forest.Warnings.WrappedErrors()); n > 0 {
			m.flash = fmt.Sprintf("%d problem(s) while scanning, see log", n)
		}
		if msg.focus && len(msg.roots) > 0 {
			m.focus = paneTree
			m.tree.focusFirst()
			m.syncTreeOffset()
		}
		return m, nil

	case watchMsg:
		change := watch.Change(msg)
		cmds := []tea.Cmd{m.listenWatch()}
		if change.Has(watch.ChangeSarif) {
			m.opts.Provider.Refresh()
			cmds = append(cmds, m.drain())
		}
		if change.Has(watch.ChangeTasks) {
			cmds = append(cmds, m.loadTasks())
		}
		return m, tea.Batch(cmds...)

	case watchClosedMsg:
		return m, nil

	case tasksLoadedMsg:
		m.taskSet = msg.set
		m.opts.Selection.Sync(msg.set.Labels())
		return m, m.setPickerItems()

	case taskUpdateMsg:
		return m, m.handleTaskUpdate(msg)

	case taskClosedMsg:
		m.taskUpdates = nil
		return m, nil

	case editorDoneMsg:
		if msg.err != nil {
			m.warn("editor", msg.err)
		}
		m.opts.Provider.Refresh()
		return m, tea.Batch(m.drain(), m.loadTasks())

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == panePicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) busy() bool {
	return m.scanning > 0 || m.running != ""
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return tea.Quit

	case key.Matches(msg, k.Focus):
		if m.focus == paneTree {
			m.focus = panePreview
		} else {
			m.focus = paneTree
		}
		return nil

	case key.Matches(msg, k.Refresh):
		return m.execute(CmdRefresh)

	case key.Matches(msg, k.RunTask):
		return m.execute(CmdRunTask)

	case key.Matches(msg, k.PickTask):
		return m.execute(CmdSelectTask)

	case key.Matches(msg, k.EditTasks):
		return m.execute(CmdOpenTasksJSON)

	case key.Matches(msg, k.Output):
		if m.mode == modeOutput && m.doc != nil {
			m.mode = modeDocument
		} else {
			m.mode = modeOutput
		}
		m.syncPreview()
		return nil

	case key.Matches(msg, k.Editor):
		target, err := m.editorTarget()
		if err == nil {
			err = m.launchEditor(m.ctx, target)
		}
		if err != nil {
			m.warn("editor", err)
		}
		return m.drain()
	}

	if m.focus == panePreview {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return m.handleTreeKey(msg)
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		m.tree.move(-1)
	case key.Matches(msg, k.Down):
		m.tree.move(1)
	case key.Matches(msg, k.Expand):
		m.tree.expand()
	case key.Matches(msg, k.Collapse):
		m.tree.collapse()
	case key.Matches(msg, k.Open):
		r, ok := m.tree.selected()
		if !ok {
			return nil
		}
		if r.item.Command != nil {
			m.syncTreeOffset()
			return m.execute(r.item.Command.Name, r.item.Command.Arguments...)
		}
		if !m.tree.expand() && r.expanded {
			m.tree.collapse()
		}
	case key.Matches(msg, k.Next):
		r, ok := m.tree.selected()
		if !ok {
			return nil
		}
		if _, isResult := r.node.(*tree.ResultNode); !isResult {
			return nil
		}
		it := m.tree.rematerialize(r.node)
		if it.Command == nil {
			return nil
		}
		return m.execute(it.Command.Name, it.Command.Arguments...)
	}
	m.syncTreeOffset()
	return nil
}

func (m *Model) handleTaskUpdate(u taskUpdateMsg) tea.Cmd {
	if u.Completion == nil {
		m.output = append(m.output, u.Line)
		if over := len(m.output) - outputBufferLines; over > 0 {
			m.output = m.output[over:]
		}
		if m.mode == modeOutput {
			m.syncPreview()
		}
		return m.listenTask()
	}

	c := *u.Completion
	m.lastRun = &c
	m.running = ""
	if c.Failed() {
		m.flash = fmt.Sprintf("task %s failed (exit %d)", c.Label, c.ExitCode)
		if c.Err != nil {
			m.opts.Logger.Warn("task failed", zap.String("task", c.Label), zap.Error(c.Err))
		}
	} else {
		m.flash = fmt.Sprintf("task %s finished in %s", c.Label, c.Duration().Round(time.Millisecond))
	}
	if m.mode == modeOutput {
		m.syncPreview()
	}

	cmds := []tea.Cmd{m.listenTask()}
	if m.opts.Policy.ShouldRefresh(c) {
		cmds = append(cmds, m.scan(m.opts.FocusAfterRefresh))
	}
	return tea.Batch(cmds...)
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	filtering := m.picker.FilterState() == list.Filtering
	if !filtering {
		switch msg.String() {
		case "esc", "q":
			m.closePicker()
			return nil
		case "e":
			m.closePicker()
			return m.execute(CmdOpenTasksJSON)
		case "enter":
			item, ok := m.picker.SelectedItem().(taskItem)
			run := m.pendingRun
			m.closePicker()
			if !ok {
				return nil
			}
			m.opts.Selection.Select(item.label)
			if !run {
				return nil
			}
			if err := m.startTask(item.label); err != nil {
				m.warn(CmdRunTask, err)
			}
			return m.drain()
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = true

	// title and status bar take a line each, panel borders two more
	m.paneHeight = max(height-4, 3)
	m.treeWidth = max(width*2/5, 24)
	previewWidth := max(width-m.treeWidth-4, 10)

	m.viewport.Width = previewWidth - 2
	m.viewport.Height = max(m.paneHeight-2, 1)
	m.picker.SetSize(previewWidth-2, m.paneHeight)
	m.syncTreeOffset()
	m.syncPreview()
}

// syncTreeOffset scrolls the tree pane so the cursor stays visible.
func (m *Model) syncTreeOffset() {
	h := m.treeRows()
	if m.tree.cursor < m.treeOffset {
		m.treeOffset = m.tree.cursor
	}
	if m.tree.cursor >= m.treeOffset+h {
		m.treeOffset = m.tree.cursor - h + 1
	}
	m.treeOffset = max(min(m.treeOffset, len(m.tree.rows)-h), 0)
}

func (m *Model) treeRows() int {
	return max(m.paneHeight, 1)
}
