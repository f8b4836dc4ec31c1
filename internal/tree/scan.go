package tree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

// SarifExt is the suffix that marks a file for scanning.
const SarifExt = ".sarif"

// ErrDirectoryUnavailable is matched by every *DirectoryError.
var ErrDirectoryUnavailable = errors.New("sarif directory unavailable")

// DirectoryError reports a configured directory that is missing or unreadable
// under one workspace root.
type DirectoryError struct {
	Dir string
	Err error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("reading sarif directory %s: %v", e.Dir, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDirectoryUnavailable) hold for any DirectoryError.
func (e *DirectoryError) Is(target error) bool { return target == ErrDirectoryUnavailable }

// Forest is the result of one scan. Warnings lists every contained problem;
// Files is valid regardless.
type Forest struct {
	Files    []*FileNode
	Warnings *multierror.Error
}

// Err returns the accumulated warnings, or nil.
func (f *Forest) Err() error {
	if f == nil {
		return nil
	}
	return f.Warnings.ErrorOrNil()
}

// Nodes returns the top-level files as tree nodes.
func (f *Forest) Nodes() []Node {
	if f == nil {
		return nil
	}
	nodes := make([]Node, len(f.Files))
	for i, file := range f.Files {
		nodes[i] = file
	}
	return nodes
}

// Scanner walks a directory under each workspace root and parses every .sarif file.
type Scanner struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// NewScanner creates a scanner for dir, relative to each workspace root.
// An empty dir means the root itself.
func NewScanner(fsys afero.Fs, dir string, logger *zap.Logger) *Scanner {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{fs: fsys, dir: dir, logger: logger}
}

// Dir returns the configured directory for a root.
func (s *Scanner) Dir(root string) string {
	return filepath.Join(root, s.dir)
}

// Scan builds a fresh forest across roots, in root order then discovery order.
// Failures are contained per file and per root. Files with no results are left out.
func (s *Scanner) Scan(ctx context.Context, roots []string) *Forest {
	forest := &Forest{}
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			forest.Warnings = multierror.Append(forest.Warnings, err)
			break
		}
		dir := s.Dir(root)
		if err := s.scanDir(ctx, dir, forest); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				forest.Warnings = multierror.Append(forest.Warnings, err)
				break
			}
			s.logger.Warn("reading sarif directory failed", zap.String("directory", dir), zap.Error(err))
			forest.Warnings = multierror.Append(forest.Warnings, err)
		}
	}
	return forest
}

func (s *Scanner) scanDir(ctx context.Context, dir string, forest *Forest) error {
	info, err := s.fs.Stat(dir)
	if err != nil {
		return &DirectoryError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return &DirectoryError{Dir: dir, Err: errors.New("not a directory")}
	}

	return afero.Walk(s.fs, dir, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == dir {
				return &DirectoryError{Dir: dir, Err: err}
			}
			// An unreadable subdirectory only loses its own files.
			s.logger.Warn("reading sarif directory failed", zap.String("directory", path), zap.Error(err))
			forest.Warnings = multierror.Append(forest.Warnings, &DirectoryError{Dir: path, Err: err})
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), SarifExt) {
			return nil
		}

		file, readErr := ReadFileNode(s.fs, dir, path)
		if readErr != nil {
			s.logger.Warn("reading sarif file failed", zap.String("file", path), zap.Error(readErr))
			forest.Warnings = multierror.Append(forest.Warnings, readErr)
			return nil
		}
		if len(file.Results) >= 1 {
			forest.Files = append(forest.Files, file)
		}
		return nil
	})
}

// ReadFileNode parses path and labels it relative to dir. Parse failures are
// *sarif.ParseError.
func ReadFileNode(fsys afero.Fs, dir, path string) (*FileNode, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := sarif.ReadBytes(data)
	if err != nil {
		var pe *sarif.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return NewFileNode(path, fileLabel(dir, path), doc), nil
}

func fileLabel(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), SarifExt)
}
