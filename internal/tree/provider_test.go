package tree

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

func physical(uri string, line int) sarif.PhysicalLocation {
	return sarif.PhysicalLocation{
		ArtifactLocation: sarif.ArtifactLocation{URI: uri},
		Region:           sarif.Region{StartLine: line},
	}
}

func newTestProvider(fsys afero.Fs, roots ...string) *Provider {
	return NewProvider(NewScanner(fsys, "", nil), func() []string { return roots })
}

func TestIconFor_ReturnsDefault_When_NameUnknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, IconError, IconFor("error"))
	assert.Equal(t, IconWarning, IconFor("warning"))
	assert.Equal(t, IconNote, IconFor("note"))
	assert.Equal(t, IconFile, IconFor("file"))
	assert.Equal(t, IconDefault, IconFor("bogus-level"))
	assert.Equal(t, IconDefault, IconFor(""))
}

func TestCursors_CyclesThroughLocations(t *testing.T) {
	t.Parallel()

	r := &ResultNode{Locations: []sarif.PhysicalLocation{
		physical("a.go", 1), physical("b.go", 2), physical("c.go", 3),
	}}
	c := NewCursors()

	var got []string
	for range 4 {
		loc, ok := c.Next(r)
		require.True(t, ok)
		got = append(got, loc.ArtifactLocation.URI)
	}
	assert.Equal(t, []string{"a.go", "b.go", "c.go", "a.go"}, got)
}

func TestCursors_ReportsFalse_When_NoLocations(t *testing.T) {
	t.Parallel()

	_, ok := NewCursors().Next(&ResultNode{})
	assert.False(t, ok)
}

func TestGetTreeItem_RotatesResultCommand_When_CalledRepeatedly(t *testing.T) {
	t.Parallel()

	p := newTestProvider(afero.NewMemMapFs())
	r := &ResultNode{Message: "m", Level: "error", Locations: []sarif.PhysicalLocation{
		physical("a.go", 1), physical("b.go", 2),
	}}

	var uris []string
	for range 3 {
		item := p.GetTreeItem(r)
		require.NotNil(t, item.Command)
		assert.Equal(t, ShowLocationCommand, item.Command.Name)
		loc, _ := CommandLocation(item.Command)
		uris = append(uris, loc.ArtifactLocation.URI)
	}
	assert.Equal(t, []string{"a.go", "b.go", "a.go"}, uris)
}

func TestGetTreeItem_OmitsCommand_When_ResultHasNoLocations(t *testing.T) {
	t.Parallel()

	p := newTestProvider(afero.NewMemMapFs())

	item := p.GetTreeItem(&ResultNode{Message: "orphan", Level: "note"})

	assert.Nil(t, item.Command)
	assert.Equal(t, "orphan", item.Label)
	assert.Equal(t, IconNote, item.Icon)
	assert.Equal(t, CollapsibleNone, item.Collapsible)
}

func TestGetTreeItem_DerivesCollapsibleFromChildren(t *testing.T) {
	t.Parallel()

	p := newTestProvider(afero.NewMemMapFs())
	leaf := &RelatedNode{Message: "leaf"}
	parent := &RelatedNode{Message: "parent", Nested: []*RelatedNode{leaf}}
	result := &ResultNode{Message: "r", Related: []*RelatedNode{parent}}
	file := &FileNode{Label: "f", Results: []*ResultNode{result}}

	assert.Equal(t, CollapsibleCollapsed, p.GetTreeItem(file).Collapsible)
	assert.Equal(t, CollapsibleCollapsed, p.GetTreeItem(result).Collapsible)
	assert.Equal(t, CollapsibleCollapsed, p.GetTreeItem(parent).Collapsible)
	assert.Equal(t, CollapsibleNone, p.GetTreeItem(leaf).Collapsible)
}

func TestGetTreeItem_DescribesFileAndRelated(t *testing.T) {
	t.Parallel()

	p := newTestProvider(afero.NewMemMapFs())
	base := sarif.BaseIDs{"SRC": {URI: "file:///repo/"}}
	loc := physical("pkg/x.go", 12)
	rel := &RelatedNode{Message: "defined here", Location: &loc, BaseIDs: base}
	file := &FileNode{Label: "lint", Results: []*ResultNode{{}, {}}}

	fileItem := p.GetTreeItem(file)
	assert.Equal(t, "lint", fileItem.Label)
	assert.Equal(t, "2 results", fileItem.Description)
	assert.Equal(t, IconFile, fileItem.Icon)
	assert.Nil(t, fileItem.Command)

	relItem := p.GetTreeItem(rel)
	assert.Equal(t, IconNote, relItem.Icon)
	assert.Equal(t, "x.go:12", relItem.Description)
	require.NotNil(t, relItem.Command)
	gotLoc, gotBase := CommandLocation(relItem.Command)
	assert.Equal(t, loc, gotLoc)
	assert.Equal(t, base, gotBase)

	assert.Nil(t, p.GetTreeItem(&RelatedNode{Message: "no location"}).Command)
}

func TestGetChildren_Rescans_When_RootsRequested(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/ws/a.sarif", oneResult)
	p := newTestProvider(fsys, "/ws")

	roots := p.GetChildren(context.Background(), nil)
	require.Len(t, roots, 1)

	writeFile(t, fsys, "/ws/b.sarif", oneResult)
	roots = p.GetChildren(context.Background(), nil)
	assert.Len(t, roots, 2)
	assert.Len(t, p.Forest().Files, 2)

	children := p.GetChildren(context.Background(), roots[0])
	require.Len(t, children, 1)
	assert.Equal(t, KindResult, children[0].Kind())
}

func TestGetChildren_ResetsCursors_When_Rescanned(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/ws/a.sarif", oneResult)
	p := newTestProvider(fsys, "/ws")
	r := &ResultNode{Locations: []sarif.PhysicalLocation{physical("a.go", 1), physical("b.go", 1)}}

	p.GetTreeItem(r)
	p.GetChildren(context.Background(), nil)
	loc, _ := CommandLocation(p.GetTreeItem(r).Command)

	assert.Equal(t, "a.go", loc.ArtifactLocation.URI)
}

func TestRefresh_NotifiesSubscribers_Until_Unsubscribed(t *testing.T) {
	t.Parallel()

	p := newTestProvider(afero.NewMemMapFs())
	var calls atomic.Int32
	unsubscribe := p.OnDidChange(func() { calls.Add(1) })

	p.Refresh()
	p.Refresh()
	unsubscribe()
	p.Refresh()

	assert.Equal(t, int32(2), calls.Load())
}
