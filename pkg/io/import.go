package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/blockpad/pkg/document"
)

// ReadJSON decodes a JSON document from r and validates its structure.
//
// The input must be a JSON object with a "blocks" array of block nodes:
//
//	{
//	  "blocks": [
//	    {"type": "math_number", "fields": [{"name": "NUM", "value": "42"}]}
//	  ]
//	}
//
// ReadJSON returns an error if:
//   - The JSON is malformed or invalid
//   - A node has no type, or an ID appears twice in the document
//   - A child entry lacks an input name, a nested block, or a valid kind
//
// Errors are wrapped with the path of the offending node, e.g.
// "blocks[1].children[0]". Use errors.Is to check for specific document
// errors. Type existence and connection compatibility are checked later,
// during [document.Decode], since they depend on the block registry.
//
// The returned document is independent of r and can be modified safely
// after ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*document.Document, error) {
	d, err := document.Read(r)
	if err != nil {
		return nil, err
	}
	if err := document.Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// ImportFile reads a JSON document file at path.
//
// ImportFile opens the file, decodes it using [ReadJSON], and closes the
// file. If the file cannot be opened, or if decoding fails, ImportFile
// returns an error describing the failure. The error wraps the underlying
// cause with the file path for context.
//
// ImportFile returns the same validation errors as [ReadJSON] for
// malformed documents.
func ImportFile(path string) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	d, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
