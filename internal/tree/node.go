// Package tree materialises scanned SARIF documents into a strictly nested,
// displayable forest and adapts it to a lazy tree-view contract.
//
// The node types are a read-only projection of the parsed documents. Presentation
// state, such as which candidate location a result currently points at, is owned
// by the Provider.
package tree

import (
	"github.com/dkoosis/sarifview/pkg/sarif"
)

// Kind tags the three node variants.
type Kind int

const (
	KindFile Kind = iota
	KindResult
	KindRelated
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindResult:
		return "result"
	case KindRelated:
		return "related"
	default:
		return "unknown"
	}
}

// Node is implemented by *FileNode, *ResultNode and *RelatedNode.
type Node interface {
	Kind() Kind
	Children() []Node
}

// FileNode is one parsed .sarif file.
type FileNode struct {
	Path    string // path on the scanned filesystem
	Label   string // path relative to the scan directory, .sarif stripped
	Results []*ResultNode
}

// NewFileNode projects every result of every run, in document order.
func NewFileNode(path, label string, doc *sarif.Document) *FileNode {
	f := &FileNode{Path: path, Label: label}
	for i := range doc.Runs {
		run := &doc.Runs[i]
		for _, r := range run.Results {
			f.Results = append(f.Results, NewResultNode(r, run))
		}
	}
	return f
}

func (f *FileNode) Kind() Kind { return KindFile }

func (f *FileNode) Children() []Node {
	nodes := make([]Node, len(f.Results))
	for i, r := range f.Results {
		nodes[i] = r
	}
	return nodes
}

// ResultNode is one finding.
type ResultNode struct {
	Message string
	Level   string
	RuleID  string

	// Locations are the candidate jump targets. Location entries without a
	// physicalLocation are not navigable and are left out.
	Locations []sarif.PhysicalLocation

	// BaseIDs is the owning run's uriBaseId table, used to resolve Locations.
	BaseIDs sarif.BaseIDs

	Related []*RelatedNode
}

// NewResultNode projects a SARIF result and builds its related-location tree.
func NewResultNode(r sarif.Result, run *sarif.Run) *ResultNode {
	n := &ResultNode{
		Message: r.Message.Text,
		Level:   r.Level,
		RuleID:  r.RuleID,
		BaseIDs: run.OriginalURIBaseIDs,
	}
	for _, loc := range r.Locations {
		if loc.PhysicalLocation != nil {
			n.Locations = append(n.Locations, *loc.PhysicalLocation)
		}
	}
	buildRelated(n, r.RelatedLocations, run.OriginalURIBaseIDs)
	return n
}

func (r *ResultNode) Kind() Kind { return KindResult }

func (r *ResultNode) Children() []Node {
	return relatedNodes(r.Related)
}

func (r *ResultNode) adopt(child *RelatedNode) {
	r.Related = append(r.Related, child)
}

// RelatedNode is a note explaining a finding, possibly with its own location
// and further nested notes.
type RelatedNode struct {
	Message      string
	NestingLevel int
	Location     *sarif.PhysicalLocation
	BaseIDs      sarif.BaseIDs
	Nested       []*RelatedNode
}

func (n *RelatedNode) Kind() Kind { return KindRelated }

func (n *RelatedNode) Children() []Node {
	return relatedNodes(n.Nested)
}

func (n *RelatedNode) adopt(child *RelatedNode) {
	n.Nested = append(n.Nested, child)
}

func relatedNodes(related []*RelatedNode) []Node {
	nodes := make([]Node, len(related))
	for i, r := range related {
		nodes[i] = r
	}
	return nodes
}
