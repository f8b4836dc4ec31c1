package tree

import (
	"sync"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

// Cursors holds the per-result rotating pointer into its candidate locations.
// It is view-session state: a new scan starts a new set.
type Cursors struct {
	mu  sync.Mutex
	pos map[*ResultNode]int
}

// NewCursors returns an empty cursor set.
func NewCursors() *Cursors {
	return &Cursors{pos: make(map[*ResultNode]int)}
}

// Next returns locations[count % len] for r and advances its count.
// It reports false when r has no locations.
func (c *Cursors) Next(r *ResultNode) (sarif.PhysicalLocation, bool) {
	if len(r.Locations) == 0 {
		return sarif.PhysicalLocation{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.pos[r]
	c.pos[r] = i + 1
	return r.Locations[i%len(r.Locations)], true
}

