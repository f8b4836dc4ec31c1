package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dkoosis/sarifview/internal/tasks"
)

// Sources recorded on every resolved value.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// CliFlags holds the values of command-line flags. The *Set fields record
// whether the user passed the flag explicitly.
type CliFlags struct {
	ConfigPath        string
	Roots             []string
	SarifDirectory    string
	RefreshOnTaskEnd  string
	FocusAfterRefresh bool
	Editor            string
	LogLevel          string
	LogFile           string

	SarifDirectorySet    bool
	RefreshOnTaskEndSet  bool
	FocusAfterRefreshSet bool
	EditorSet            bool
	LogLevelSet          bool
	LogFileSet           bool
}

// ResolvedConfig holds the final configuration after applying all priority rules.
type ResolvedConfig struct {
	Roots             []string
	SarifDirectory    string
	RefreshOnTaskEnd  tasks.RefreshPolicy
	FocusAfterRefresh bool
	Editor            string
	Log               LogConfig
	Theme             Theme

	// Where each value came from: "cli", "env", "file" or "default".
	ConfigFile              string
	SarifDirectorySource    string
	RefreshOnTaskEndSource  string
	FocusAfterRefreshSource string
	EditorSource            string
	LogLevelSource          string
	LogFileSource           string
}

// ResolveConfig resolves configuration from all sources with explicit priority
// order: CLI > env > file > default. Invalid values are an error.
func ResolveConfig(cli CliFlags) (*ResolvedConfig, error) {
	path := cli.ConfigPath
	if path == "" {
		path = findConfigPath()
	}
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return resolve(cli, file, path)
}

func resolve(cli CliFlags, file *AppConfig, path string) (*ResolvedConfig, error) {
	r := &ResolvedConfig{
		ConfigFile: path,
		Roots:      cli.Roots,
		Theme:      mergeTheme(file.Theme),
		Log: LogConfig{
			MaxSizeMB:  orInt(file.Log.MaxSizeMB, DefaultLogMaxSizeMB),
			MaxBackups: orInt(file.Log.MaxBackups, DefaultLogMaxBackups),
		},
	}
	if len(r.Roots) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		r.Roots = []string{wd}
	}

	r.SarifDirectory, r.SarifDirectorySource = resolveString(
		cli.SarifDirectory, cli.SarifDirectorySet, "SARIFVIEW_SARIF_DIRECTORY", file.SarifDirectory, DefaultSarifDirectory)

	var policy string
	policy, r.RefreshOnTaskEndSource = resolveString(
		cli.RefreshOnTaskEnd, cli.RefreshOnTaskEndSet, "SARIFVIEW_REFRESH_ON_TASK_END", file.RefreshOnTaskEnd, DefaultRefreshOnTaskEnd)

	r.Editor, r.EditorSource = resolveString(cli.Editor, cli.EditorSet, "EDITOR", file.Editor, DefaultEditor)
	r.Log.Level, r.LogLevelSource = resolveString(cli.LogLevel, cli.LogLevelSet, "SARIFVIEW_LOG_LEVEL", file.Log.Level, DefaultLogLevel)
	r.Log.File, r.LogFileSource = resolveString(cli.LogFile, cli.LogFileSet, "SARIFVIEW_LOG_FILE", file.Log.File, "")

	focus, focusSource, err := resolveBool(
		cli.FocusAfterRefresh, cli.FocusAfterRefreshSet, "SARIFVIEW_FOCUS_AFTER_REFRESH", file.FocusAfterRefresh, true)
	if err != nil {
		return nil, err
	}
	r.FocusAfterRefresh, r.FocusAfterRefreshSource = focus, focusSource

	if err := validate(r, policy); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return r, nil
}

func validate(r *ResolvedConfig, policy string) error {
	p, err := tasks.ParseRefreshPolicy(policy)
	if err != nil {
		return fmt.Errorf("refresh_on_task_end (%s): %w", r.RefreshOnTaskEndSource, err)
	}
	r.RefreshOnTaskEnd = p

	switch strings.ToLower(r.Log.Level) {
	case "debug", "info", "warn", "error":
		r.Log.Level = strings.ToLower(r.Log.Level)
	default:
		return fmt.Errorf("invalid log level %q (%s): must be debug, info, warn or error", r.Log.Level, r.LogLevelSource)
	}

	if strings.TrimSpace(r.SarifDirectory) == "" {
		return fmt.Errorf("sarif_directory (%s) cannot be empty", r.SarifDirectorySource)
	}
	if r.Log.MaxSizeMB < 0 || r.Log.MaxBackups < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

func resolveString(cliVal string, cliSet bool, envKey, fileVal, def string) (string, string) {
	if cliSet {
		return cliVal, SourceCLI
	}
	if v := os.Getenv(envKey); v != "" {
		return v, SourceEnv
	}
	if fileVal != "" {
		return fileVal, SourceFile
	}
	return def, SourceDefault
}

func resolveBool(cliVal, cliSet bool, envKey string, fileVal *bool, def bool) (bool, string, error) {
	if cliSet {
		return cliVal, SourceCLI, nil
	}
	if v := os.Getenv(envKey); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, "", fmt.Errorf("config validation failed: %s=%q is not a boolean", envKey, v)
		}
		return b, SourceEnv, nil
	}
	if fileVal != nil {
		return *fileVal, SourceFile, nil
	}
	return def, SourceDefault, nil
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
