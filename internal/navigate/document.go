// Package navigate turns a resolved SARIF location into something a user can
// look at: an in-app preview of the target file, or an external editor
// positioned on the selection.
package navigate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

// Document is an opened navigation target with its selection.
type Document struct {
	Target sarif.Target
	Path   string
	Lines  []string
}

// Open reads the file behind target. Only file URIs and scheme-less references
// can be opened; anything else, and any read failure, is a *sarif.LocationError.
func Open(fsys afero.Fs, target sarif.Target) (*Document, error) {
	path := target.Path()
	if path == "" {
		return nil, &sarif.LocationError{URI: uriString(target), Err: errors.New("not a local file")}
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, &sarif.LocationError{URI: uriString(target), Err: err}
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return &Document{
		Target: target,
		Path:   path,
		Lines:  strings.Split(strings.TrimSuffix(text, "\n"), "\n"),
	}, nil
}

// Selection returns the selected range clamped to the document.
func (d *Document) Selection() sarif.Range {
	r := d.Target.Range
	last := max(len(d.Lines)-1, 0)
	r.Start.Line = min(r.Start.Line, last)
	r.End.Line = min(max(r.End.Line, r.Start.Line), last)
	return r
}

// Window returns up to height lines with the selection start roughly centred,
// and the 0-based index of the first returned line.
func (d *Document) Window(height int) (int, []string) {
	if height <= 0 || len(d.Lines) == 0 {
		return 0, nil
	}
	if height >= len(d.Lines) {
		return 0, d.Lines
	}
	first := d.Selection().Start.Line - height/2
	first = max(first, 0)
	first = min(first, len(d.Lines)-height)
	return first, d.Lines[first : first+height]
}

// Title is "path:line:col" with 1-based coordinates.
func (d *Document) Title() string {
	sel := d.Selection()
	return fmt.Sprintf("%s:%d:%d", d.Path, sel.Start.Line+1, sel.Start.Character+1)
}

// Shower resolves and opens locations handed to the show-location command.
type Shower struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewShower creates a Shower reading from fsys.
func NewShower(fsys afero.Fs, logger *zap.Logger) *Shower {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shower{fs: fsys, logger: logger}
}

// Show resolves loc against baseIDs and opens it. The error is always a
// *sarif.LocationError when non-nil.
func (s *Shower) Show(loc sarif.PhysicalLocation, baseIDs sarif.BaseIDs) (*Document, error) {
	target, err := sarif.Resolve(loc, baseIDs)
	if err != nil {
		s.logger.Debug("resolving location failed", zap.String("uri", loc.ArtifactLocation.URI), zap.Error(err))
		return nil, err
	}
	doc, err := Open(s.fs, target)
	if err != nil {
		s.logger.Debug("opening location failed", zap.Stringer("target", target), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func uriString(t sarif.Target) string {
	if t.URI == nil {
		return ""
	}
	return t.URI.String()
}
