package tree

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/sarifview/pkg/sarif"
)

// textGlyphs are the plain-output icons.
var textGlyphs = map[Icon]string{
	IconError:   "✗",
	IconWarning: "⚠",
	IconNote:    "·",
	IconFile:    "▸",
	IconDefault: "•",
}

// Write prints roots and all their descendants as an indented tree, one item
// per line. Lines wider than width display columns are truncated; width <= 0
// disables truncation.
func Write(w io.Writer, p *Provider, roots []Node, width int) error {
	for _, n := range roots {
		if err := writeNode(w, p, n, 0, width); err != nil {
			return err
		}
	}
	return nil
}

func writeNode(w io.Writer, p *Provider, n Node, depth, width int) error {
	item := p.GetTreeItem(n)
	line := strings.Repeat("  ", depth) + textGlyphs[item.Icon] + " " + item.Label
	if item.Description != "" {
		line += "  (" + item.Description + ")"
	}
	if width > 0 {
		line = runewidth.Truncate(line, width, "…")
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, child := range n.Children() {
		if err := writeNode(w, p, child, depth+1, width); err != nil {
			return err
		}
	}
	return nil
}

// jsonItem is the machine-readable form of a tree item.
type jsonItem struct {
	Kind        string     `json:"kind"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Icon        Icon       `json:"icon"`
	Target      string     `json:"target,omitempty"`
	Children    []jsonItem `json:"children,omitempty"`
}

// WriteJSON prints roots as a JSON array of nested items. Navigable items carry
// their resolved target as uri:line:col.
func WriteJSON(w io.Writer, p *Provider, roots []Node) error {
	items := make([]jsonItem, 0, len(roots))
	for _, n := range roots {
		items = append(items, toJSON(p, n))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func toJSON(p *Provider, n Node) jsonItem {
	item := p.GetTreeItem(n)
	out := jsonItem{
		Kind:        n.Kind().String(),
		Label:       item.Label,
		Description: item.Description,
		Icon:        item.Icon,
	}
	if item.Command != nil {
		loc, baseIDs := CommandLocation(item.Command)
		if target, err := sarif.Resolve(loc, baseIDs); err == nil {
			out.Target = target.String()
		}
	}
	for _, child := range n.Children() {
		out.Children = append(out.Children, toJSON(p, child))
	}
	return out
}

// CommandLocation unpacks the arguments of a ShowLocationCommand.
func CommandLocation(c *Command) (sarif.PhysicalLocation, sarif.BaseIDs) {
	var loc sarif.PhysicalLocation
	var baseIDs sarif.BaseIDs
	if len(c.Arguments) > 0 {
		loc, _ = c.Arguments[0].(sarif.PhysicalLocation)
	}
	if len(c.Arguments) > 1 {
		baseIDs, _ = c.Arguments[1].(sarif.BaseIDs)
	}
	return loc, baseIDs
}

// Summary counts results by level across a forest.
type Summary struct {
	Files   int
	ByLevel map[string]int
}

// Summarize counts the results in f.
func Summarize(f *Forest) Summary {
	s := Summary{ByLevel: make(map[string]int)}
	if f == nil {
		return s
	}
	s.Files = len(f.Files)
	for _, file := range f.Files {
		for _, r := range file.Results {
			s.ByLevel[r.Level]++
		}
	}
	return s
}

// HasErrors reports whether any result has level error.
func (s Summary) HasErrors() bool {
	return s.ByLevel[sarif.LevelError] > 0
}

// String renders e.g. "2 files · Error: 3 · Warning: 1". Known levels come
// first, then the rest alphabetically.
func (s Summary) String() string {
	title := cases.Title(language.English)
	parts := []string{plural(s.Files, "file")}

	known := []string{sarif.LevelError, sarif.LevelWarning, sarif.LevelNote}
	seen := make(map[string]bool, len(known))
	for _, level := range known {
		seen[level] = true
		if n := s.ByLevel[level]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", title.String(level), n))
		}
	}

	var others []string
	for level := range s.ByLevel {
		if !seen[level] {
			others = append(others, level)
		}
	}
	sort.Strings(others)
	for _, level := range others {
		name := level
		if name == "" {
			name = "unspecified"
		}
		parts = append(parts, fmt.Sprintf("%s: %d", title.String(name), s.ByLevel[level]))
	}
	return strings.Join(parts, " · ")
}
