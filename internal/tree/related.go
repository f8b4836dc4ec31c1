package tree

import (
	"github.com/dkoosis/sarifview/pkg/sarif"
)

// mount is anything a related node can be attached under.
type mount interface {
	adopt(*RelatedNode)
}

// buildRelated reconstructs the nesting hierarchy of a flat related-location list.
//
// Each entry attaches under the most recently built node at nestingLevel-1, or
// under the owning result when no such node has been built yet. Array order is
// kept as sibling order. Entries without a message are dropped.
func buildRelated(owner *ResultNode, related []sarif.Location, baseIDs sarif.BaseIDs) {
	if len(related) == 0 {
		return
	}

	mountable := map[int]mount{-1: owner, 0: owner}
	for _, rel := range related {
		if rel.Message == nil {
			continue
		}

		node := &RelatedNode{
			Message:      rel.Message.Text,
			NestingLevel: max(rel.Properties.NestingLevel, 0),
			BaseIDs:      baseIDs,
		}
		if rel.PhysicalLocation != nil {
			loc := *rel.PhysicalLocation
			node.Location = &loc
		}

		parent, ok := mountable[node.NestingLevel-1]
		if !ok {
			parent = owner
		}
		parent.adopt(node)
		mountable[node.NestingLevel] = node
	}
}
