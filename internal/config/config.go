package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up locally and under the XDG config dir.
const FileName = ".sarifview.yaml"

// AppConfig mirrors .sarifview.yaml. Pointer fields distinguish "unset" from
// the zero value so defaults survive a partial file.
type AppConfig struct {
	SarifDirectory    string    `yaml:"sarif_directory,omitempty"`
	RefreshOnTaskEnd  string    `yaml:"refresh_on_task_end,omitempty"`
	FocusAfterRefresh *bool     `yaml:"focus_after_refresh,omitempty"`
	Editor            string    `yaml:"editor,omitempty"`
	Log               LogConfig `yaml:"log,omitempty"`
	Theme             Theme     `yaml:"theme,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `yaml:"level,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// Theme holds the colour palette and glyphs of the tree view.
type Theme struct {
	Colors ThemeColors `yaml:"colors,omitempty"`
	Icons  ThemeIcons  `yaml:"icons,omitempty"`
}

// ThemeColors are lipgloss colour strings (hex or ANSI index).
type ThemeColors struct {
	Primary   string `yaml:"primary,omitempty"`
	Error     string `yaml:"error,omitempty"`
	Warning   string `yaml:"warning,omitempty"`
	Note      string `yaml:"note,omitempty"`
	Muted     string `yaml:"muted,omitempty"`
	Text      string `yaml:"text,omitempty"`
	Border    string `yaml:"border,omitempty"`
	Highlight string `yaml:"highlight,omitempty"`
}

// ThemeIcons are the glyphs drawn before tree rows.
type ThemeIcons struct {
	Error     string `yaml:"error,omitempty"`
	Warning   string `yaml:"warning,omitempty"`
	Note      string `yaml:"note,omitempty"`
	File      string `yaml:"file,omitempty"`
	Default   string `yaml:"default,omitempty"`
	Expanded  string `yaml:"expanded,omitempty"`
	Collapsed string `yaml:"collapsed,omitempty"`
}

// Defaults.
const (
	DefaultSarifDirectory   = "."
	DefaultRefreshOnTaskEnd = "always"
	DefaultLogLevel         = "info"
	DefaultLogMaxSizeMB     = 10
	DefaultLogMaxBackups    = 3
	DefaultEditor           = "vi"
)

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		Colors: ThemeColors{
			Primary:   "#7D56F4", // Purple
			Error:     "#FF5F56", // Red
			Warning:   "#FFBD2E", // Yellow/Orange
			Note:      "#5FAFFF", // Blue
			Muted:     "#626262", // Gray
			Text:      "#CCCCCC", // Light gray
			Border:    "#444444", // Dark gray
			Highlight: "#7D56F4", // Purple (same as primary)
		},
		Icons: ThemeIcons{
			Error:     "\u2717", // ✗
			Warning:   "\u26a0", // ⚠
			Note:      "\u00b7", // ·
			File:      "\u25a1", // □
			Default:   "\u2022", // •
			Expanded:  "\u25be", // ▾
			Collapsed: "\u25b8", // ▸
		},
	}
}

// LoadFile parses a config file. A missing path yields an empty config.
func LoadFile(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if path == "" {
		return cfg, nil
	}
	// #nosec G304 -- path is from findConfigPath or an explicit --config flag
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// findConfigPath checks the working directory first, then the XDG config dir.
// It returns "" when neither has a config file.
func findConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		dir, err := os.UserConfigDir()
		if err != nil || dir == "" || dir == "/" {
			return ""
		}
		configHome = dir
	}
	xdgPath := filepath.Join(configHome, "sarifview", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}

// mergeTheme fills unset fields of t from the defaults.
func mergeTheme(t Theme) Theme {
	d := DefaultTheme()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Theme{
		Colors: ThemeColors{
			Primary:   pick(t.Colors.Primary, d.Colors.Primary),
			Error:     pick(t.Colors.Error, d.Colors.Error),
			Warning:   pick(t.Colors.Warning, d.Colors.Warning),
			Note:      pick(t.Colors.Note, d.Colors.Note),
			Muted:     pick(t.Colors.Muted, d.Colors.Muted),
			Text:      pick(t.Colors.Text, d.Colors.Text),
			Border:    pick(t.Colors.Border, d.Colors.Border),
			Highlight: pick(t.Colors.Highlight, d.Colors.Highlight),
		},
		Icons: ThemeIcons{
			Error:     pick(t.Icons.Error, d.Icons.Error),
			Warning:   pick(t.Icons.Warning, d.Icons.Warning),
			Note:      pick(t.Icons.Note, d.Icons.Note),
			File:      pick(t.Icons.File, d.Icons.File),
			Default:   pick(t.Icons.Default, d.Icons.Default),
			Expanded:  pick(t.Icons.Expanded, d.Icons.Expanded),
			Collapsed: pick(t.Icons.Collapsed, d.Icons.Collapsed),
		},
	}
}
