package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/sarifview/internal/config"
	"github.com/dkoosis/sarifview/internal/tree"
)

// Theme holds pre-built lipgloss styles compiled from config.Theme.
type Theme struct {
	colorPrimary   lipgloss.Color
	colorMuted     lipgloss.Color
	colorBorder    lipgloss.Color
	colorHighlight lipgloss.Color

	TitleStyle         lipgloss.Style
	PanelStyle         lipgloss.Style
	FocusedPanelStyle  lipgloss.Style
	SelectedStyle      lipgloss.Style
	UnselectedStyle    lipgloss.Style
	DescriptionStyle   lipgloss.Style
	HeaderStyle        lipgloss.Style
	LineNumberStyle    lipgloss.Style
	SelectionLineStyle lipgloss.Style
	StatusBarStyle     lipgloss.Style
	WarningStyle       lipgloss.Style

	iconStyles map[tree.Icon]lipgloss.Style
	icons      map[tree.Icon]string

	Expanded  string
	Collapsed string
}

// Compile builds lipgloss styles from the theme configuration.
func Compile(t config.Theme) *Theme {
	th := &Theme{
		colorPrimary:   lipgloss.Color(t.Colors.Primary),
		colorMuted:     lipgloss.Color(t.Colors.Muted),
		colorBorder:    lipgloss.Color(t.Colors.Border),
		colorHighlight: lipgloss.Color(t.Colors.Highlight),
		Expanded:       t.Icons.Expanded,
		Collapsed:      t.Icons.Collapsed,
	}
	text := lipgloss.Color(t.Colors.Text)

	th.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(th.colorPrimary).
		Padding(0, 1)

	th.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.colorBorder).
		Padding(0, 1)

	th.FocusedPanelStyle = th.PanelStyle.
		BorderForeground(th.colorPrimary)

	th.SelectedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(th.colorHighlight)

	th.UnselectedStyle = lipgloss.NewStyle().Foreground(text)
	th.DescriptionStyle = lipgloss.NewStyle().Foreground(th.colorMuted).Italic(true)

	th.HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(th.colorHighlight).
		Padding(0, 1)

	th.LineNumberStyle = lipgloss.NewStyle().Foreground(th.colorMuted)
	th.SelectionLineStyle = lipgloss.NewStyle().Foreground(text).Background(th.colorBorder)
	th.StatusBarStyle = lipgloss.NewStyle().Foreground(th.colorMuted)
	th.WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Warning)).Bold(true)

	th.iconStyles = map[tree.Icon]lipgloss.Style{
		tree.IconError:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Error)).Bold(true),
		tree.IconWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Warning)).Bold(true),
		tree.IconNote:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Note)),
		tree.IconFile:    lipgloss.NewStyle().Foreground(th.colorPrimary),
		tree.IconDefault: lipgloss.NewStyle().Foreground(th.colorMuted),
	}
	th.icons = map[tree.Icon]string{
		tree.IconError:   t.Icons.Error,
		tree.IconWarning: t.Icons.Warning,
		tree.IconNote:    t.Icons.Note,
		tree.IconFile:    t.Icons.File,
		tree.IconDefault: t.Icons.Default,
	}
	return th
}

// Glyph returns the raw character for an icon.
func (th *Theme) Glyph(icon tree.Icon) string {
	if g, ok := th.icons[icon]; ok {
		return g
	}
	return th.icons[tree.IconDefault]
}

// RenderIcon returns the styled character for an icon.
func (th *Theme) RenderIcon(icon tree.Icon) string {
	style, ok := th.iconStyles[icon]
	if !ok {
		style = th.iconStyles[tree.IconDefault]
	}
	return style.Render(th.Glyph(icon))
}

// MutedColor returns the muted color for external use.
func (th *Theme) MutedColor() lipgloss.Color {
	return th.colorMuted
}
