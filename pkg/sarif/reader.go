package sarif

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("sarif parse error")

// ParseError reports a document that is not valid JSON or lacks the
// runs[].results[] shape.
type ParseError struct {
	Path string // empty when reading from a stream
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParse) hold for any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ReadFile parses a SARIF file from disk.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sarif file: %w", err)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// ReadBytes parses SARIF from an in-memory buffer.
func ReadBytes(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// Read parses SARIF from an io.Reader. Exactly one JSON document is accepted;
// trailing whitespace is fine, trailing data is not.
func Read(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decode sarif: %w", err)}
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errors.New("decode sarif: trailing data after document")}
	}

	if err := validate(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &doc, nil
}

// validate checks the minimal shape the tree depends on.
func validate(doc *Document) error {
	if doc.Runs == nil {
		return errors.New("missing runs")
	}
	for i, run := range doc.Runs {
		if run.Results == nil {
			return fmt.Errorf("run %d: missing results", i)
		}
	}
	return nil
}
