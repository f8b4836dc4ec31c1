package navigate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

// Editor launches an external editor at a location.
type Editor struct {
	editorCmd string // e.g. "vim", "code --wait"
}

// NewEditor creates an Editor. An empty editor falls back to $EDITOR, then vi.
func NewEditor(editor string) *Editor {
	if editor == "" {
		editor = os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
	}
	return &Editor{editorCmd: editor}
}

// Command returns the configured editor command line.
func (e *Editor) Command() string {
	return e.editorCmd
}

// Args returns the editor argv for opening path at a 1-based line and column.
// The goto syntax depends on the editor binary.
func (e *Editor) Args(path string, line, col int) []string {
	parts := strings.Fields(e.editorCmd)
	if len(parts) == 0 {
		return nil
	}
	args := append([]string{}, parts...)

	switch filepath.Base(parts[0]) {
	case "code", "code-insiders", "codium":
		return append(args, "--reuse-window", "--goto", fmt.Sprintf("%s:%d:%d", path, line, col))
	case "vim", "nvim", "vi", "nano", "emacs", "micro", "kak":
		return append(args, fmt.Sprintf("+%d", line), path)
	case "hx", "helix", "subl", "zed":
		return append(args, fmt.Sprintf("%s:%d:%d", path, line, col))
	default:
		return append(args, path)
	}
}

// Cmd builds the command that opens target. Stdio is inherited so terminal
// editors can take over.
func (e *Editor) Cmd(ctx context.Context, target sarif.Target) (*exec.Cmd, error) {
	path := target.Path()
	if path == "" {
		return nil, &sarif.LocationError{URI: uriString(target), Err: errors.New("not a local file")}
	}
	args := e.Args(path, target.Range.Start.Line+1, target.Range.Start.Character+1)
	if len(args) == 0 {
		return nil, errors.New("no editor configured")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}
