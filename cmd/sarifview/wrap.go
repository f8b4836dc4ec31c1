package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

type wrapOptions struct {
	tool    string
	version string
	rule    string
	level   string
}

func (a *app) wrapCmd() *cobra.Command {
	wrap := &cobra.Command{
		Use:   "wrap",
		Short: "Convert other tool output to SARIF",
	}

	var opts wrapOptions
	sarifCmd := &cobra.Command{
		Use:   "sarif",
		Short: "Read file:line:col: message diagnostics on stdin, write SARIF to stdout",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runWrapSarif(opts)
		},
	}
	f := sarifCmd.Flags()
	f.StringVar(&opts.tool, "tool", "", "tool name for driver.name (required)")
	f.StringVar(&opts.version, "version", "", "tool version")
	f.StringVar(&opts.rule, "rule", "finding", "rule id for every result")
	f.StringVar(&opts.level, "level", sarif.LevelWarning, "default level: error, warning, note or none")
	_ = sarifCmd.MarkFlagRequired("tool")

	wrap.AddCommand(sarifCmd)
	return wrap
}

func (a *app) runWrapSarif(opts wrapOptions) error {
	switch opts.level {
	case sarif.LevelError, sarif.LevelWarning, sarif.LevelNote, sarif.LevelNone:
	default:
		return &exitError{code: 2, err: fmt.Errorf("invalid level %q (want error, warning, note or none)", opts.level)}
	}
	if opts.tool == "" {
		return &exitError{code: 2, err: errors.New("--tool is required")}
	}

	b := sarif.NewBuilder(opts.tool, opts.version)
	scanner := bufio.NewScanner(a.stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		d, ok := parseDiagnostic(scanner.Text())
		if !ok {
			continue
		}
		level := opts.level
		if d.level != "" {
			level = d.level
		}
		b.AddResult(opts.rule, level, d.message, d.file, d.line, d.col)
	}
	if err := scanner.Err(); err != nil {
		return &exitError{code: 2, err: fmt.Errorf("read stdin: %w", err)}
	}
	if _, err := b.WriteTo(a.stdout); err != nil {
		return &exitError{code: 2, err: fmt.Errorf("write sarif: %w", err)}
	}
	return nil
}

type diagnostic struct {
	file    string
	line    int
	col     int
	level   string
	message string
}

// parseDiagnostic accepts "file:line:col: msg" and "file:line: msg". A
// leading "error:", "warning:" or "note:" in msg sets the level. Windows drive
// letters are kept with the file. Anything else is not a diagnostic.
func parseDiagnostic(line string) (diagnostic, bool) {
	line = strings.TrimRight(line, "\r")
	drive := ""
	if len(line) >= 3 && line[1] == ':' && (line[2] == '\\' || line[2] == '/') {
		drive, line = line[:2], line[2:]
	}

	file, rest, ok := strings.Cut(line, ":")
	if !ok || strings.TrimSpace(file) == "" {
		return diagnostic{}, false
	}
	lnText, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return diagnostic{}, false
	}
	ln, err := strconv.Atoi(lnText)
	if err != nil || ln < 1 {
		return diagnostic{}, false
	}

	d := diagnostic{file: drive + file, line: ln}
	if colText, after, found := strings.Cut(rest, ":"); found {
		if col, err := strconv.Atoi(colText); err == nil && col >= 1 {
			d.col, rest = col, after
		}
	}

	msg := strings.TrimSpace(rest)
	for _, level := range []string{sarif.LevelError, sarif.LevelWarning, sarif.LevelNote} {
		if after, found := strings.CutPrefix(msg, level+":"); found {
			d.level, msg = level, strings.TrimSpace(after)
			break
		}
	}
	d.message = msg
	return d, true
}
