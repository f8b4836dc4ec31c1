package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/sarifview/internal/tree"
)

func (m *Model) View() string {
	if !m.ready {
		return "Loading sarif results..."
	}

	title := m.th.TitleStyle.Width(m.width).Render(m.titleText())

	treePanel := m.th.PanelStyle
	previewPanel := m.th.PanelStyle
	if m.focus == paneTree {
		treePanel = m.th.FocusedPanelStyle
	} else {
		previewPanel = m.th.FocusedPanelStyle
	}

	left := treePanel.Width(m.treeWidth).Render(fitHeight(m.renderTree(), m.paneHeight))
	var right string
	if m.focus == panePicker {
		right = m.picker.View()
	} else {
		right = m.previewHeader() + "\n\n" + m.viewport.View()
	}
	rightPanel := previewPanel.Width(m.previewWidth()).Render(fitHeight(right, m.paneHeight))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, rightPanel)
	return lipgloss.JoinVertical(lipgloss.Left, title, panels, m.statusBar())
}

func (m *Model) previewWidth() int {
	return max(m.width-m.treeWidth-4, 10)
}

func (m *Model) titleText() string {
	text := "sarifview · " + tree.Summarize(m.forest).String() + " · " + m.opts.Selection.Description()
	if m.busy() {
		text += " " + m.spinner.View()
	}
	return text
}

func (m *Model) statusBar() string {
	if m.flash != "" {
		return m.th.WarningStyle.Render(m.flash)
	}
	help := helpLine(m.keys.shortHelp()...)
	if m.focus == panePicker {
		help = "enter choose • / filter • e edit tasks.json • esc cancel"
	}
	line := runewidth.Truncate(help, m.width, "…")
	return m.th.StatusBarStyle.Render(line)
}

func (m *Model) renderTree() string {
	width := max(m.treeWidth-2, 8)
	if len(m.tree.rows) == 0 {
		if m.scanning > 0 {
			return m.th.DescriptionStyle.Render("scanning…")
		}
		return m.th.DescriptionStyle.Render("no sarif results")
	}

	end := min(m.treeOffset+m.treeRows(), len(m.tree.rows))
	lines := make([]string, 0, end-m.treeOffset)
	for i := m.treeOffset; i < end; i++ {
		lines = append(lines, m.renderRow(m.tree.rows[i], i == m.tree.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(r row, selected bool, width int) string {
	toggle := " "
	if r.item.Collapsible == tree.CollapsibleCollapsed {
		toggle = m.th.Collapsed
		if r.expanded {
			toggle = m.th.Expanded
		}
	}
	prefix := strings.Repeat("  ", r.depth) + toggle + " "
	room := width - runewidth.StringWidth(prefix) - runewidth.StringWidth(m.th.Glyph(r.item.Icon)) - 1
	label := runewidth.Truncate(r.item.Label, max(room, 1), "…")
	desc := ""
	if rest := room - runewidth.StringWidth(label) - 2; r.item.Description != "" && rest > 0 {
		desc = runewidth.Truncate(r.item.Description, rest, "…")
	}

	if selected {
		content := prefix + m.th.Glyph(r.item.Icon) + " " + label
		if desc != "" {
			content += "  " + desc
		}
		return m.th.SelectedStyle.Width(width).Render(content)
	}
	line := prefix + m.th.RenderIcon(r.item.Icon) + " " + m.th.UnselectedStyle.Render(label)
	if desc != "" {
		line += "  " + m.th.DescriptionStyle.Render(desc)
	}
	return line
}

func (m *Model) previewHeader() string {
	switch {
	case m.mode == modeOutput && m.running != "":
		return m.th.HeaderStyle.Render("task " + m.running + " running")
	case m.mode == modeOutput && m.lastRun != nil:
		return m.th.HeaderStyle.Render(fmt.Sprintf("task %s · exit %d", m.lastRun.Label, m.lastRun.ExitCode))
	case m.mode == modeOutput:
		return m.th.HeaderStyle.Render("task output")
	case m.doc != nil:
		return m.th.HeaderStyle.Render(m.doc.Title())
	}
	return m.th.HeaderStyle.Render("preview")
}

// syncPreview refills the viewport from the current document or task output.
func (m *Model) syncPreview() {
	width := max(m.viewport.Width, 1)
	switch {
	case m.mode == modeOutput:
		lines := make([]string, len(m.output))
		for i, l := range m.output {
			lines[i] = runewidth.Truncate(expandTabs(l), width, "…")
		}
		if len(lines) == 0 {
			lines = []string{m.th.DescriptionStyle.Render("no output")}
		}
		m.viewport.SetContent(strings.Join(lines, "\n"))
		m.viewport.GotoBottom()

	case m.doc != nil:
		sel := m.doc.Selection()
		numWidth := len(fmt.Sprint(len(m.doc.Lines)))
		lines := make([]string, len(m.doc.Lines))
		for i, l := range m.doc.Lines {
			num := m.th.LineNumberStyle.Render(fmt.Sprintf("%*d │ ", numWidth, i+1))
			text := runewidth.Truncate(expandTabs(l), max(width-numWidth-3, 1), "…")
			if i >= sel.Start.Line && i <= sel.End.Line {
				text = m.th.SelectionLineStyle.Render(text)
			}
			lines[i] = num + text
		}
		m.viewport.SetContent(strings.Join(lines, "\n"))
		first, _ := m.doc.Window(m.viewport.Height)
		m.viewport.SetYOffset(first)
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// fitHeight pads or truncates s to exactly n lines.
func fitHeight(s string, n int) string {
	lines := strings.Split(s, "\n")
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines[:n], "\n")
}

// helpLine renders bindings the way the status bar does.
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
