package navigate

import (
	"context"
	"net/url"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

func tenLines() string {
	return "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\n"
}

func TestShow_OpensResolvedFile_When_BaseIDKnown(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/repo/src/a.go", []byte(tenLines()), 0o644))
	s := NewShower(fsys, nil)
	loc := sarif.PhysicalLocation{
		ArtifactLocation: sarif.ArtifactLocation{URI: "src/a.go", URIBaseID: "ROOT"},
		Region:           sarif.Region{StartLine: 4, StartColumn: 2, EndColumn: 5},
	}

	doc, err := s.Show(loc, sarif.BaseIDs{"ROOT": {URI: "file:///repo/"}})

	require.NoError(t, err)
	assert.Equal(t, "/repo/src/a.go", doc.Path)
	assert.Len(t, doc.Lines, 10)
	sel := doc.Selection()
	assert.Equal(t, sarif.Position{Line: 3, Character: 1}, sel.Start)
	assert.Equal(t, sarif.Position{Line: 3, Character: 4}, sel.End)
	assert.Equal(t, "/repo/src/a.go:4:2", doc.Title())
}

func TestShow_ReturnsLocationUnavailable_When_FileMissing(t *testing.T) {
	t.Parallel()

	s := NewShower(afero.NewMemMapFs(), nil)
	loc := sarif.PhysicalLocation{ArtifactLocation: sarif.ArtifactLocation{URI: "file:///nope.go"}}

	_, err := s.Show(loc, nil)

	assert.ErrorIs(t, err, sarif.ErrLocationUnavailable)
}

func TestShow_ReturnsLocationUnavailable_When_BaseIDUnknown(t *testing.T) {
	t.Parallel()

	s := NewShower(afero.NewMemMapFs(), nil)
	loc := sarif.PhysicalLocation{ArtifactLocation: sarif.ArtifactLocation{URI: "a.go", URIBaseID: "MISSING"}}

	_, err := s.Show(loc, sarif.BaseIDs{})

	assert.ErrorIs(t, err, sarif.ErrLocationUnavailable)
}

func TestOpen_Rejects_When_SchemeIsRemote(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://example.com/a.go")
	require.NoError(t, err)

	_, err = Open(afero.NewMemMapFs(), sarif.Target{URI: u})

	assert.ErrorIs(t, err, sarif.ErrLocationUnavailable)
}

func TestDocument_Window_CentresSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		line      int
		height    int
		wantFirst int
		wantLen   int
	}{
		{name: "middle", line: 5, height: 4, wantFirst: 3, wantLen: 4},
		{name: "clamped at top", line: 0, height: 4, wantFirst: 0, wantLen: 4},
		{name: "clamped at bottom", line: 9, height: 4, wantFirst: 6, wantLen: 4},
		{name: "selection past end", line: 50, height: 3, wantFirst: 7, wantLen: 3},
		{name: "taller than document", line: 2, height: 20, wantFirst: 0, wantLen: 10},
		{name: "zero height", line: 2, height: 0, wantFirst: 0, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := &Document{
				Lines:  []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
				Target: sarif.Target{Range: sarif.Range{Start: sarif.Position{Line: tt.line}}},
			}
			first, lines := doc.Window(tt.height)
			assert.Equal(t, tt.wantFirst, first)
			assert.Len(t, lines, tt.wantLen)
		})
	}
}

func TestEditor_Args_UsesGotoSyntaxPerEditor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		editor string
		want   []string
	}{
		{editor: "code", want: []string{"code", "--reuse-window", "--goto", "a.go:3:7"}},
		{editor: "/usr/bin/nvim", want: []string{"/usr/bin/nvim", "+3", "a.go"}},
		{editor: "hx", want: []string{"hx", "a.go:3:7"}},
		{editor: "emacs -nw", want: []string{"emacs", "-nw", "+3", "a.go"}},
		{editor: "ed", want: []string{"ed", "a.go"}},
	}

	for _, tt := range tests {
		t.Run(tt.editor, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewEditor(tt.editor).Args("a.go", 3, 7))
		})
	}
}

func TestNewEditor_FallsBack_When_EditorEmpty(t *testing.T) {
	t.Setenv("EDITOR", "nano")
	assert.Equal(t, "nano", NewEditor("").Command())

	t.Setenv("EDITOR", "")
	assert.Equal(t, "vi", NewEditor("").Command())
}

func TestEditor_Cmd_BuildsArgv(t *testing.T) {
	t.Parallel()

	target := sarif.Target{
		URI:   &url.URL{Scheme: "file", Path: "/src/main.go"},
		Range: sarif.Range{Start: sarif.Position{Line: 9, Character: 0}},
	}

	cmd, err := NewEditor("vim").Cmd(context.Background(), target)

	require.NoError(t, err)
	assert.Equal(t, []string{"vim", "+10", "/src/main.go"}, cmd.Args)
}

func TestEditor_Cmd_Rejects_When_TargetNotLocal(t *testing.T) {
	t.Parallel()

	target := sarif.Target{URI: &url.URL{Scheme: "https", Host: "example.com", Path: "/a.go"}}

	_, err := NewEditor("vim").Cmd(context.Background(), target)

	assert.ErrorIs(t, err, sarif.ErrLocationUnavailable)
}
