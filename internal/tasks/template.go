package tasks

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Template is written by EnsureTasksFile.
const Template = `{
    "version": "2.0.0",
    "tasks": []
}
`

// EnsureTasksFile creates root/.vscode/tasks.json from Template when it does
// not exist yet, and returns its path. An existing file is left untouched.
func EnsureTasksFile(fsys afero.Fs, root string) (string, error) {
	path := Path(root)
	_, err := fsys.Stat(path)
	if err == nil {
		return path, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat tasks file: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create .vscode directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, []byte(Template), 0o644); err != nil {
		return "", fmt.Errorf("write tasks file: %w", err)
	}
	return path, nil
}
