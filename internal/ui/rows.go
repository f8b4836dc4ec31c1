package ui

import (
	"strconv"

	"github.com/dkoosis/sarifview/internal/tree"
)

// row is one visible line of the tree pane.
type row struct {
	node     tree.Node
	key      string
	depth    int
	item     tree.TreeItem
	expanded bool
}

// treeState flattens the provider's forest into visible rows.
//
// Tree items are materialised once per node and cached, so a result's
// location cursor only advances when its row is (re)created: on refresh, on
// re-expanding its parent, or on an explicit next-location request.
type treeState struct {
	provider *tree.Provider
	roots    []tree.Node
	items    map[tree.Node]tree.TreeItem
	expanded map[string]bool
	rows     []row
	cursor   int
}

func newTreeState(p *tree.Provider) *treeState {
	return &treeState{
		provider: p,
		items:    make(map[tree.Node]tree.TreeItem),
		expanded: make(map[string]bool),
	}
}

// setRoots installs a freshly scanned forest. Expansion survives by position.
func (s *treeState) setRoots(roots []tree.Node) {
	prev := s.selectedKey()
	s.roots = roots
	s.items = make(map[tree.Node]tree.TreeItem)
	s.rebuild()
	s.selectKey(prev)
}

func (s *treeState) item(n tree.Node) tree.TreeItem {
	if it, ok := s.items[n]; ok {
		return it
	}
	it := s.provider.GetTreeItem(n)
	s.items[n] = it
	return it
}

// rematerialize drops the cached item for n and asks the provider again.
func (s *treeState) rematerialize(n tree.Node) tree.TreeItem {
	delete(s.items, n)
	it := s.item(n)
	for i := range s.rows {
		if s.rows[i].node == n {
			s.rows[i].item = it
		}
	}
	return it
}

func (s *treeState) rebuild() {
	s.rows = s.rows[:0]
	for i, n := range s.roots {
		key := strconv.Itoa(i)
		if f, ok := n.(*tree.FileNode); ok {
			key = f.Path
		}
		s.appendRows(n, key, 0)
	}
	s.clamp()
}

func (s *treeState) appendRows(n tree.Node, key string, depth int) {
	it := s.item(n)
	open := it.Collapsible == tree.CollapsibleCollapsed && s.expanded[key]
	s.rows = append(s.rows, row{node: n, key: key, depth: depth, item: it, expanded: open})
	if !open {
		return
	}
	for i, child := range n.Children() {
		s.appendRows(child, key+"/"+strconv.Itoa(i), depth+1)
	}
}

func (s *treeState) clamp() {
	s.cursor = min(s.cursor, len(s.rows)-1)
	s.cursor = max(s.cursor, 0)
}

func (s *treeState) selected() (row, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return row{}, false
	}
	return s.rows[s.cursor], true
}

func (s *treeState) selectedKey() string {
	if r, ok := s.selected(); ok {
		return r.key
	}
	return ""
}

func (s *treeState) selectKey(key string) {
	for i, r := range s.rows {
		if r.key == key {
			s.cursor = i
			return
		}
	}
	s.clamp()
}

func (s *treeState) move(delta int) {
	s.cursor += delta
	s.clamp()
}

// expand opens the selected row. It reports false when the row has no children
// or is already open.
func (s *treeState) expand() bool {
	r, ok := s.selected()
	if !ok || r.item.Collapsible != tree.CollapsibleCollapsed || r.expanded {
		return false
	}
	s.expanded[r.key] = true
	s.rebuild()
	s.selectKey(r.key)
	return true
}

// collapse closes the selected row, or moves to its parent when it is not open.
// Cached items below a closed row are dropped so re-expanding rebuilds them.
func (s *treeState) collapse() {
	r, ok := s.selected()
	if !ok {
		return
	}
	if r.expanded {
		delete(s.expanded, r.key)
		s.forget(r.node)
		s.rebuild()
		s.selectKey(r.key)
		return
	}
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].depth == r.depth-1 {
			s.cursor = i
			return
		}
	}
}

func (s *treeState) forget(n tree.Node) {
	for _, child := range n.Children() {
		delete(s.items, child)
		s.forget(child)
	}
}

// focusFirst selects the first row.
func (s *treeState) focusFirst() {
	s.cursor = 0
	s.clamp()
}
