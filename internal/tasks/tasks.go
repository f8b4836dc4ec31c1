// Package tasks discovers workspace build tasks from .vscode/tasks.json, keeps
// the session's selected task, and runs tasks as child processes.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/tailscale/hujson"
	"go.uber.org/zap"
)

// ErrNoTasksConfigured means no workspace root defines any task.
var ErrNoTasksConfigured = errors.New("no runnable tasks in tasks.json")

// ErrTaskNotFound is matched by every *NotFoundError.
var ErrTaskNotFound = errors.New("task not found")

// NotFoundError reports a label that no loaded task carries.
type NotFoundError struct {
	Label string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.Label)
}

// Is makes errors.Is(err, ErrTaskNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrTaskNotFound }

// File is the subset of tasks.json that sarifview understands.
type File struct {
	Version string `json:"version"`
	Tasks   []Task `json:"tasks"`
}

// Task is one tasks.json entry.
type Task struct {
	Label   string   `json:"label"`
	Type    string   `json:"type"` // "shell" (default) or "process"
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Options Options  `json:"options,omitempty"`
}

// Options holds the execution options of a task.
type Options struct {
	Cwd string            `json:"cwd,omitempty"`
	Env map[string]string `json:"env,omitempty"`
}

// Entry is a task together with the workspace root that defines it.
type Entry struct {
	Task
	Root string
}

// Set is every task loaded from the workspace roots, in root order then file order.
type Set struct {
	Entries []Entry
}

// Path returns the tasks.json location for root.
func Path(root string) string {
	return filepath.Join(root, ".vscode", "tasks.json")
}

// Load reads tasks.json under every root. A missing file contributes nothing;
// a malformed one is logged and skipped.
func Load(fsys afero.Fs, roots []string, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := &Set{}
	for _, root := range roots {
		path := Path(root)
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("reading tasks file failed", zap.String("file", path), zap.Error(err))
			}
			continue
		}
		f, err := Parse(data)
		if err != nil {
			logger.Warn("parsing tasks file failed", zap.String("file", path), zap.Error(err))
			continue
		}
		for _, t := range f.Tasks {
			if t.Label == "" {
				continue
			}
			set.Entries = append(set.Entries, Entry{Task: t, Root: root})
		}
	}
	return set
}

// Parse decodes tasks.json content. Comments and trailing commas are accepted.
func Parse(data []byte) (*File, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse tasks.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(std, &f); err != nil {
		return nil, fmt.Errorf("decode tasks.json: %w", err)
	}
	return &f, nil
}

// Labels returns the distinct task labels in discovery order.
func (s *Set) Labels() []string {
	if s == nil {
		return nil
	}
	return lo.Uniq(lo.Map(s.Entries, func(e Entry, _ int) string { return e.Label }))
}

// Find returns the first task carrying label.
func (s *Set) Find(label string) (Entry, error) {
	if s == nil || len(s.Entries) == 0 {
		return Entry{}, ErrNoTasksConfigured
	}
	e, ok := lo.Find(s.Entries, func(e Entry) bool { return e.Label == label })
	if !ok {
		return Entry{}, &NotFoundError{Label: label}
	}
	return e, nil
}
