// Package sarif provides SARIF (Static Analysis Results Interchange Format) parsing,
// location resolution and document building.
//
// Only the subset needed to display findings and jump to their source is modelled.
// Unknown fields are dropped on decode.
package sarif

// Document represents a SARIF 2.1.0 document.
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html
type Document struct {
	Version string `json:"version,omitempty"`
	Schema  string `json:"$schema,omitempty"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single analysis run.
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`

	// OriginalURIBaseIDs maps a uriBaseId to the absolute location it stood for
	// on the machine where the tool ran.
	OriginalURIBaseIDs BaseIDs `json:"originalUriBaseIds,omitempty"`
}

// BaseIDs is the per-run uriBaseId table.
type BaseIDs map[string]ArtifactLocation

// Tool identifies the analysis tool that produced the results.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver describes the tool's identity.
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Level values with a dedicated presentation. Anything else is displayed
// with the default icon.
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelNote    = "note"
	LevelNone    = "none"
)

// Result represents a single issue found by the tool.
type Result struct {
	RuleID           string     `json:"ruleId,omitempty"`
	Level            string     `json:"level,omitempty"`
	Message          Message    `json:"message"`
	Locations        []Location `json:"locations,omitempty"`
	RelatedLocations []Location `json:"relatedLocations,omitempty"`
}

// Message contains the issue description.
type Message struct {
	Text string `json:"text"`
}

// Location identifies where the issue was found. Related locations carry their own
// message and a nesting level in their property bag.
type Location struct {
	PhysicalLocation *PhysicalLocation `json:"physicalLocation,omitempty"`
	Message          *Message          `json:"message,omitempty"`
	Properties       Properties        `json:"properties,omitempty"`
}

// Properties is the recognised part of a location's property bag.
type Properties struct {
	NestingLevel int `json:"nestingLevel,omitempty"`
}

// PhysicalLocation pinpoints the file and region.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region,omitempty"`
}

// ArtifactLocation identifies the file.
type ArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
	Index     int    `json:"index,omitempty"`
}

// Region identifies the specific location within the file.
// Lines and columns are 1-based; zero means the property was absent.
type Region struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}
