package sarif

import (
	"encoding/json"
	"io"
)

// Builder constructs SARIF 2.1.0 documents with a single run.
// Used by `sarifview wrap sarif` and by tests that need fixtures.
type Builder struct {
	doc *Document
}

// NewBuilder creates a SARIF builder for the given tool.
func NewBuilder(toolName, toolVersion string) *Builder {
	return &Builder{
		doc: &Document{
			Version: "2.1.0",
			Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
			Runs: []Run{{
				Tool: Tool{
					Driver: Driver{
						Name:    toolName,
						Version: toolVersion,
					},
				},
				Results: []Result{},
			}},
		},
	}
}

func (b *Builder) run() *Run {
	return &b.doc.Runs[0]
}

// BaseID registers a uriBaseId for the run.
func (b *Builder) BaseID(id, uri string) *Builder {
	r := b.run()
	if r.OriginalURIBaseIDs == nil {
		r.OriginalURIBaseIDs = make(BaseIDs)
	}
	r.OriginalURIBaseIDs[id] = ArtifactLocation{URI: uri}
	return b
}

// AddResult adds a diagnostic result to the run. An empty file adds a result
// without locations.
func (b *Builder) AddResult(ruleID, level, message, file string, line, col int) *Builder {
	r := Result{
		RuleID:  ruleID,
		Level:   level,
		Message: Message{Text: message},
	}
	if file != "" {
		r.Locations = []Location{{PhysicalLocation: physical(file, line, col)}}
	}
	b.run().Results = append(b.run().Results, r)
	return b
}

// AddLocation appends another candidate location to the most recent result.
func (b *Builder) AddLocation(file string, line, col int) *Builder {
	if last := b.last(); last != nil {
		last.Locations = append(last.Locations, Location{PhysicalLocation: physical(file, line, col)})
	}
	return b
}

// AddRelated appends a related location at the given nesting level to the most
// recent result. An empty file adds a message-only note.
func (b *Builder) AddRelated(message, file string, line, col, nestingLevel int) *Builder {
	last := b.last()
	if last == nil {
		return b
	}
	rel := Location{
		Message:    &Message{Text: message},
		Properties: Properties{NestingLevel: nestingLevel},
	}
	if file != "" {
		rel.PhysicalLocation = physical(file, line, col)
	}
	last.RelatedLocations = append(last.RelatedLocations, rel)
	return b
}

func (b *Builder) last() *Result {
	results := b.run().Results
	if len(results) == 0 {
		return nil
	}
	return &results[len(results)-1]
}

func physical(file string, line, col int) *PhysicalLocation {
	return &PhysicalLocation{
		ArtifactLocation: ArtifactLocation{URI: file},
		Region: Region{
			StartLine:   line,
			StartColumn: col,
		},
	}
}

// Document returns the constructed SARIF document.
func (b *Builder) Document() *Document {
	return b.doc
}

// WriteTo writes the SARIF document as JSON to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(b.doc, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}
