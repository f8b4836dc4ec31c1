// Package watch reports changes to SARIF output and task configuration in the
// workspace so the tree and task selection can be refreshed.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Change is a bit set of what changed during one debounce window.
type Change uint8

const (
	ChangeSarif Change = 1 << iota
	ChangeTasks
)

// Has reports whether c includes k.
func (c Change) Has(k Change) bool { return c&k != 0 }

// DefaultDebounce coalesces bursts of writes, e.g. a tool rewriting a report.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches the SARIF directory of each root recursively, plus each
// root's .vscode directory for tasks.json.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	sarifDirs []string
	roots     []string

	changes chan Change
	once    sync.Once
}

// Options configures a Watcher.
type Options struct {
	Roots     []string
	SarifDirs []string // one per root, already joined
	Debounce  time.Duration
	Logger    *zap.Logger
}

// New creates a Watcher. Directories that do not exist yet are skipped; a
// root is still watched so that creating them is noticed.
func New(opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		fsw:       fsw,
		logger:    logger,
		debounce:  debounce,
		sarifDirs: cleanAll(opts.SarifDirs),
		roots:     cleanAll(opts.Roots),
		changes:   make(chan Change, 1),
	}

	for _, root := range w.roots {
		w.add(root)
		w.add(filepath.Join(root, ".vscode"))
	}
	for _, dir := range w.sarifDirs {
		w.addTree(dir)
	}
	return w, nil
}

// Changes delivers coalesced change sets. It is closed when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run forwards filesystem events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.changes)

	var pending Change
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			c := w.classify(ev)
			if c == 0 {
				continue
			}
			if pending == 0 {
				timer.Reset(w.debounce)
			}
			pending |= c
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error", zap.Error(err))
		case <-timer.C:
			select {
			case w.changes <- pending:
			case <-ctx.Done():
				return
			}
			pending = 0
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() { err = w.fsw.Close() })
	return err
}

func (w *Watcher) classify(ev fsnotify.Event) Change {
	name := filepath.Clean(ev.Name)
	var c Change

	if ev.Has(fsnotify.Create) && w.tracked(name) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			w.addTree(name)
			if w.underSarifDir(name) {
				c |= ChangeSarif
			}
		}
	}

	if filepath.Base(name) == "tasks.json" && filepath.Base(filepath.Dir(name)) == ".vscode" {
		c |= ChangeTasks
	}
	if w.underSarifDir(name) && strings.HasSuffix(name, ".sarif") {
		c |= ChangeSarif
	}
	// A removed directory shows up without an extension.
	if (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) && w.underSarifDir(name) && filepath.Ext(name) == "" {
		c |= ChangeSarif
	}
	return c
}

func (w *Watcher) underSarifDir(path string) bool {
	for _, dir := range w.sarifDirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// tracked reports whether a new directory at path needs watching: it is inside
// a SARIF directory, on the way to one, or a root's .vscode directory.
func (w *Watcher) tracked(path string) bool {
	if w.underSarifDir(path) {
		return true
	}
	for _, dir := range w.sarifDirs {
		if strings.HasPrefix(dir, path+string(filepath.Separator)) {
			return true
		}
	}
	for _, root := range w.roots {
		if path == filepath.Join(root, ".vscode") {
			return true
		}
	}
	return false
}

func (w *Watcher) add(dir string) {
	if err := w.fsw.Add(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("watching directory failed", zap.String("directory", dir), zap.Error(err))
	}
}

func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			w.add(path)
		}
		return nil
	})
}

func cleanAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}
