package tree

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

// ShowLocationCommand is the registry name of the navigation command. Its
// arguments are always [sarif.PhysicalLocation, sarif.BaseIDs].
const ShowLocationCommand = "sarifview.showPhysicalLocation"

// Command is an action attached to a tree item.
type Command struct {
	Name      string
	Title     string
	Arguments []any
}

// CollapsibleState is derived from whether a node has children.
// Items are never reported as already expanded.
type CollapsibleState int

const (
	CollapsibleNone CollapsibleState = iota
	CollapsibleCollapsed
)

// TreeItem is the displayable form of a node.
type TreeItem struct {
	Label       string
	Description string
	Icon        Icon
	Command     *Command
	Collapsible CollapsibleState
}

// Provider adapts the scanned forest to a lazy tree-view contract.
//
// Concurrent root requests each run a full scan; whichever finishes last
// replaces the cached forest.
type Provider struct {
	scanner *Scanner
	roots   func() []string

	mu        sync.Mutex
	forest    *Forest
	cursors   *Cursors
	listeners map[int]func()
	nextID    int
}

// NewProvider creates a provider that scans the roots returned by roots on every
// root request.
func NewProvider(scanner *Scanner, roots func() []string) *Provider {
	return &Provider{
		scanner:   scanner,
		roots:     roots,
		forest:    &Forest{},
		cursors:   NewCursors(),
		listeners: make(map[int]func()),
	}
}

// GetChildren returns a node's children. A nil node requests the roots, which
// triggers a fresh scan replacing the cached forest and its cursors.
func (p *Provider) GetChildren(ctx context.Context, n Node) []Node {
	if n != nil {
		return n.Children()
	}

	forest := p.scanner.Scan(ctx, p.roots())

	p.mu.Lock()
	p.forest = forest
	p.cursors = NewCursors()
	p.mu.Unlock()

	return forest.Nodes()
}

// Forest returns the most recently completed scan.
func (p *Provider) Forest() *Forest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.forest
}

// GetTreeItem derives the display for n. For a result with several locations,
// each call advances that result's cursor, so repeated requests visit every
// candidate in turn.
func (p *Provider) GetTreeItem(n Node) TreeItem {
	var item TreeItem
	switch v := n.(type) {
	case *FileNode:
		item = TreeItem{
			Label:       v.Label,
			Description: plural(len(v.Results), "result"),
			Icon:        IconFor("file"),
		}
	case *ResultNode:
		item = TreeItem{Label: v.Message, Icon: IconFor(v.Level)}
		if loc, ok := p.cursorsNow().Next(v); ok {
			item.Command = showLocation(loc, v.BaseIDs)
			item.Description = describe(loc)
		}
	case *RelatedNode:
		item = TreeItem{Label: v.Message, Icon: IconFor("note")}
		if v.Location != nil {
			item.Command = showLocation(*v.Location, v.BaseIDs)
			item.Description = describe(*v.Location)
		}
	default:
		return TreeItem{}
	}

	if len(n.Children()) >= 1 {
		item.Collapsible = CollapsibleCollapsed
	}
	return item
}

// Refresh tells subscribers that the whole tree may have changed. Their next
// root request rescans.
func (p *Provider) Refresh() {
	p.mu.Lock()
	fns := make([]func(), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// OnDidChange subscribes fn to Refresh. The returned func unsubscribes.
func (p *Provider) OnDidChange(fn func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Provider) cursorsNow() *Cursors {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursors
}

func showLocation(loc sarif.PhysicalLocation, baseIDs sarif.BaseIDs) *Command {
	return &Command{
		Name:      ShowLocationCommand,
		Title:     "Show location",
		Arguments: []any{loc, baseIDs},
	}
}

func describe(loc sarif.PhysicalLocation) string {
	name := path.Base(loc.ArtifactLocation.URI)
	if loc.Region.StartLine == 0 {
		return name
	}
	return fmt.Sprintf("%s:%d", name, loc.Region.StartLine)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
