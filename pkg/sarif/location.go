package sarif

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
)

// ErrLocationUnavailable is matched by every *LocationError.
var ErrLocationUnavailable = errors.New("location unavailable")

// LocationError reports a navigation target that cannot be resolved or opened.
type LocationError struct {
	URI string
	Err error
}

func (e *LocationError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("location unavailable: %v", e.Err)
	}
	return fmt.Sprintf("location unavailable (%s): %v", e.URI, e.Err)
}

func (e *LocationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLocationUnavailable) hold for any LocationError.
func (e *LocationError) Is(target error) bool { return target == ErrLocationUnavailable }

// Position is a 0-based line/character pair.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a 0-based selection; Start is inclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Target is a resolved navigation destination.
type Target struct {
	URI   *url.URL
	Range Range
}

// String renders the target as uri:line:col using 1-based coordinates.
func (t Target) String() string {
	return fmt.Sprintf("%s:%d:%d", t.URI, t.Range.Start.Line+1, t.Range.Start.Character+1)
}

// Path returns the local filesystem path for file URIs and scheme-less references.
// It returns "" for any other scheme.
func (t Target) Path() string {
	if t.URI == nil {
		return ""
	}
	switch t.URI.Scheme {
	case "", "file":
		return filepath.FromSlash(t.URI.Path)
	default:
		return ""
	}
}

// Resolve converts a physical location and its run's base-id table into a concrete URI
// and a 0-based range. It is a pure function of its inputs.
//
// With a uriBaseId the artifact URI is joined onto the base URI; without one it is
// parsed as-is. An absent endLine defaults to startLine; an absent endColumn gives an
// empty selection at the start column.
func Resolve(loc PhysicalLocation, baseIDs BaseIDs) (Target, error) {
	uri, err := resolveURI(loc.ArtifactLocation, baseIDs)
	if err != nil {
		return Target{}, err
	}
	return Target{URI: uri, Range: RegionRange(loc.Region)}, nil
}

// RegionRange converts a 1-based SARIF region into a 0-based Range.
func RegionRange(r Region) Range {
	start := Position{
		Line:      clampZero(r.StartLine - 1),
		Character: clampZero(r.StartColumn - 1),
	}

	endLine := r.EndLine
	if endLine == 0 {
		endLine = r.StartLine
	}
	end := Position{Line: clampZero(endLine - 1), Character: start.Character}
	if r.EndColumn > 0 {
		end.Character = r.EndColumn - 1
	}
	return Range{Start: start, End: end}
}

func resolveURI(a ArtifactLocation, baseIDs BaseIDs) (*url.URL, error) {
	if a.URI == "" {
		return nil, &LocationError{Err: errors.New("empty artifact uri")}
	}

	if a.URIBaseID == "" {
		u, err := url.Parse(a.URI)
		if err != nil {
			return nil, &LocationError{URI: a.URI, Err: err}
		}
		return u, nil
	}

	base, ok := baseIDs[a.URIBaseID]
	if !ok || base.URI == "" {
		return nil, &LocationError{URI: a.URI, Err: fmt.Errorf("unknown uriBaseId %q", a.URIBaseID)}
	}
	bu, err := url.Parse(base.URI)
	if err != nil {
		return nil, &LocationError{URI: base.URI, Err: err}
	}
	return bu.JoinPath(a.URI), nil
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
