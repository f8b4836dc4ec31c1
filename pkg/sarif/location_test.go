package sarif

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolve_ConvertsRegionToZeroBasedRange(t *testing.T) {
	loc := PhysicalLocation{
		ArtifactLocation: ArtifactLocation{URI: "file:///src/main.c"},
		Region:           Region{StartLine: 10, StartColumn: 3, EndLine: 10, EndColumn: 7},
	}
	target, err := Resolve(loc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Range{Start: Position{Line: 9, Character: 2}, End: Position{Line: 9, Character: 6}}
	if target.Range != want {
		t.Errorf("range = %+v, want %+v", target.Range, want)
	}
	if target.URI.String() != "file:///src/main.c" {
		t.Errorf("uri = %s", target.URI)
	}
}

func TestRegionRange_DefaultsOmittedEnd(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		want   Range
	}{
		{
			name:   "omitted end line uses start line",
			region: Region{StartLine: 5, StartColumn: 2, EndColumn: 9},
			want:   Range{Start: Position{4, 1}, End: Position{4, 8}},
		},
		{
			name:   "omitted end column is an empty selection",
			region: Region{StartLine: 5, StartColumn: 2},
			want:   Range{Start: Position{4, 1}, End: Position{4, 1}},
		},
		{
			name:   "multi-line",
			region: Region{StartLine: 1, StartColumn: 1, EndLine: 3, EndColumn: 4},
			want:   Range{Start: Position{0, 0}, End: Position{2, 3}},
		},
		{
			name:   "missing region clamps to origin",
			region: Region{},
			want:   Range{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RegionRange(tt.region); got != tt.want {
				t.Errorf("RegionRange(%+v) = %+v, want %+v", tt.region, got, tt.want)
			}
		})
	}
}

func TestResolve_JoinsBaseID(t *testing.T) {
	base := BaseIDs{"SRCROOT": {URI: "file:///home/dev/project/"}}
	loc := PhysicalLocation{
		ArtifactLocation: ArtifactLocation{URI: "src/my%20file.c", URIBaseID: "SRCROOT"},
		Region:           Region{StartLine: 1, StartColumn: 1},
	}
	target, err := Resolve(loc, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := target.URI.String(); got != "file:///home/dev/project/src/my%20file.c" {
		t.Errorf("uri = %s", got)
	}
	if got, want := target.Path(), filepath.FromSlash("/home/dev/project/src/my file.c"); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestResolve_IsIdempotent(t *testing.T) {
	base := BaseIDs{"ROOT": {URI: "file:///r/"}}
	loc := PhysicalLocation{
		ArtifactLocation: ArtifactLocation{URI: "a/b.go", URIBaseID: "ROOT"},
		Region:           Region{StartLine: 2, StartColumn: 4, EndColumn: 8},
	}
	first, err := Resolve(loc, base)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Resolve(loc, base)
	if err != nil {
		t.Fatal(err)
	}
	if first.URI.String() != second.URI.String() || first.Range != second.Range {
		t.Errorf("resolve not idempotent: %v vs %v", first, second)
	}
	if base["ROOT"].URI != "file:///r/" {
		t.Errorf("base table mutated: %+v", base)
	}
}

func TestResolve_FailsWithLocationUnavailable(t *testing.T) {
	tests := []struct {
		name string
		loc  PhysicalLocation
		base BaseIDs
	}{
		{"empty uri", PhysicalLocation{}, nil},
		{"unknown base id", PhysicalLocation{ArtifactLocation: ArtifactLocation{URI: "a.c", URIBaseID: "NOPE"}}, BaseIDs{}},
		{"unparseable uri", PhysicalLocation{ArtifactLocation: ArtifactLocation{URI: "%zz"}}, nil},
		{"unparseable base", PhysicalLocation{ArtifactLocation: ArtifactLocation{URI: "a.c", URIBaseID: "B"}}, BaseIDs{"B": {URI: "::%zz"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.loc, tt.base)
			if !errors.Is(err, ErrLocationUnavailable) {
				t.Errorf("expected ErrLocationUnavailable, got %v", err)
			}
		})
	}
}

func TestTarget_PathOnlyForLocalSchemes(t *testing.T) {
	relative, err := Resolve(PhysicalLocation{ArtifactLocation: ArtifactLocation{URI: "pkg/a.go"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if relative.Path() != filepath.FromSlash("pkg/a.go") {
		t.Errorf("relative path = %q", relative.Path())
	}

	remote, err := Resolve(PhysicalLocation{ArtifactLocation: ArtifactLocation{URI: "https://example.com/a.go"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if remote.Path() != "" {
		t.Errorf("remote path = %q, want empty", remote.Path())
	}
}
