// sarifview browses SARIF static-analysis results as a navigable tree.
//
// Usage:
//
//	sarifview                      # interactive tree when stdout is a terminal
//	sarifview list --json          # one-shot scan for scripts
//	go vet ./... 2>&1 | sarifview wrap sarif --tool govet > .sarif/vet.sarif
//	sarifview run lint             # run a workspace task, then print the refreshed tree
//
// Every command scans <root>/<sarif_directory> for *.sarif files under each
// workspace root (--root, default the working directory).
//
// Exit codes: 0 clean, 1 error-level findings or a failed task, 2 usage,
// configuration or I/O failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/dkoosis/sarifview/internal/config"
	"github.com/dkoosis/sarifview/internal/logging"
	"github.com/dkoosis/sarifview/internal/tree"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitError carries a specific exit code. A nil err exits quietly.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, fs: afero.NewOsFs()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "sarifview: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "sarifview: %v\n", err)
	return 2
}

// app is the state shared by all subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	fs     afero.Fs

	flags  config.CliFlags
	cfg    *config.ResolvedConfig
	logger *zap.Logger
	logs   io.Closer
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sarifview",
		Short:         "Browse SARIF results as a navigable tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isTTY(a.stdout) {
				return a.runView(cmd)
			}
			return a.runList(cmd, false)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigPath, "config", "", "config file (default ./"+config.FileName+", then the user config dir)")
	pf.StringArrayVar(&a.flags.Roots, "root", nil, "workspace root; repeatable (default: working directory)")
	pf.StringVar(&a.flags.SarifDirectory, "sarif-dir", "", "directory under each root scanned for *.sarif files")
	pf.StringVar(&a.flags.RefreshOnTaskEnd, "refresh-on-task-end", "", "refresh after a task: always, on-failure or never")
	pf.BoolVar(&a.flags.FocusAfterRefresh, "focus-after-refresh", true, "focus the tree after a task-triggered refresh")
	pf.StringVar(&a.flags.Editor, "editor", "", "external editor command")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.LogFile, "log-file", "", "also write JSON logs to this file")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: 2, err: err}
	})

	root.AddCommand(a.viewCmd(), a.listCmd(), a.wrapCmd(), a.tasksCmd(), a.runCmd(), a.versionCmd())
	return root
}

// setup resolves configuration and builds the logger. Console logging goes to
// stderr unless the interactive view owns the terminal.
func (a *app) setup(cmd *cobra.Command, console bool) error {
	f := cmd.Flags()
	a.flags.SarifDirectorySet = f.Changed("sarif-dir")
	a.flags.RefreshOnTaskEndSet = f.Changed("refresh-on-task-end")
	a.flags.FocusAfterRefreshSet = f.Changed("focus-after-refresh")
	a.flags.EditorSet = f.Changed("editor")
	a.flags.LogLevelSet = f.Changed("log-level")
	a.flags.LogFileSet = f.Changed("log-file")

	cfg, err := config.ResolveConfig(a.flags)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	for i, r := range cfg.Roots {
		if abs, err := filepath.Abs(r); err == nil {
			cfg.Roots[i] = abs
		}
	}
	a.cfg = cfg

	var sink zapcore.WriteSyncer
	if console {
		sink = zapcore.AddSync(a.stderr)
	}
	logger, closer, err := logging.New(logging.FromConfig(cfg.Log, sink, isTTY(a.stderr) && os.Getenv("NO_COLOR") == ""))
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	a.logger, a.logs = logger, closer
	a.logger.Debug("configuration resolved",
		zap.String("config_file", cfg.ConfigFile),
		zap.Strings("roots", cfg.Roots),
		zap.String("sarif_directory", cfg.SarifDirectory),
		zap.String("sarif_directory_source", cfg.SarifDirectorySource),
		zap.String("refresh_on_task_end", string(cfg.RefreshOnTaskEnd)),
		zap.String("refresh_on_task_end_source", cfg.RefreshOnTaskEndSource),
		zap.String("editor", cfg.Editor),
		zap.String("editor_source", cfg.EditorSource),
	)
	return nil
}

func (a *app) close() {
	if a.logs != nil {
		_ = a.logs.Close()
	}
}

func (a *app) provider() (*tree.Provider, *tree.Scanner) {
	scanner := tree.NewScanner(a.fs, a.cfg.SarifDirectory, a.logger)
	return tree.NewProvider(scanner, func() []string { return a.cfg.Roots }), scanner
}

// isTTY reports whether w is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width of w, or 0 when it is not a terminal.
func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil {
		return width
	}
	return 0
}
