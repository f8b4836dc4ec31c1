package sarif

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const wantVersion = "2.1.0"

// minimalSARIF is the smallest document the tree accepts.
const minimalSARIF = `{"version":"` + wantVersion + `","runs":[{"tool":{"driver":{"name":"test"}},"results":[]}]}`

func TestRead_ValidDocument(t *testing.T) {
	doc, err := Read(strings.NewReader(minimalSARIF))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Version != wantVersion {
		t.Errorf("expected version %s, got %s", wantVersion, doc.Version)
	}
}

func TestRead_ValidWithTrailingWhitespace(t *testing.T) {
	input := minimalSARIF + "   \n\t\n  "
	if _, err := Read(strings.NewReader(input)); err != nil {
		t.Fatalf("trailing whitespace should be accepted, got error: %v", err)
	}
}

func TestRead_TrailingJSONObject(t *testing.T) {
	input := minimalSARIF + `{"extra":"object"}`
	_, err := Read(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for trailing JSON object, got nil")
	}
	if !strings.Contains(err.Error(), "trailing data") {
		t.Errorf("expected trailing data error, got: %v", err)
	}
}

func TestRead_VersionIsOptional(t *testing.T) {
	doc, err := Read(strings.NewReader(`{"runs":[{"results":[]}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(doc.Runs))
	}
}

func TestRead_RejectsMalformedShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `not json`},
		{"truncated", `{"runs":[{"results":[`},
		{"missing runs", `{"version":"2.1.0"}`},
		{"null document", `null`},
		{"runs not array", `{"runs":{}}`},
		{"missing results", `{"runs":[{"tool":{"driver":{"name":"x"}}}]}`},
		{"results not array", `{"runs":[{"results":"nope"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestRead_DropsUnknownFieldsAndKeepsRecognisedOnes(t *testing.T) {
	input := `{"runs":[{
		"originalUriBaseIds":{"SRCROOT":{"uri":"file:///src/"}},
		"invocations":[{"executionSuccessful":true}],
		"results":[{
			"level":"warning",
			"message":{"text":"unused"},
			"fingerprints":{"a":"b"},
			"locations":[{"physicalLocation":{"artifactLocation":{"uri":"a.c","uriBaseId":"SRCROOT"},"region":{"startLine":3,"startColumn":1}}}],
			"relatedLocations":[{"message":{"text":"declared here"},"properties":{"nestingLevel":1,"other":true}}]
		}]
	}]}`
	doc, err := ReadBytes([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	run := doc.Runs[0]
	if got := run.OriginalURIBaseIDs["SRCROOT"].URI; got != "file:///src/" {
		t.Errorf("base id = %q", got)
	}
	r := run.Results[0]
	if r.Locations[0].PhysicalLocation.ArtifactLocation.URIBaseID != "SRCROOT" {
		t.Errorf("uriBaseId not decoded: %+v", r.Locations[0])
	}
	if r.RelatedLocations[0].Properties.NestingLevel != 1 {
		t.Errorf("nesting level = %d, want 1", r.RelatedLocations[0].Properties.NestingLevel)
	}
	if r.RelatedLocations[0].PhysicalLocation != nil {
		t.Errorf("expected nil physical location on message-only note")
	}
}

func TestReadFile_ParseErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.sarif")
	if err := os.WriteFile(path, []byte(`{"runs":`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := ReadFile(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T %v", err, err)
	}
	if pe.Path != path {
		t.Errorf("path = %q, want %q", pe.Path, path)
	}
	if !strings.Contains(err.Error(), "bad.sarif") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestReadFile_MissingFileIsNotParseError(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.sarif"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrParse) {
		t.Errorf("open failure should not be a parse error: %v", err)
	}
}
