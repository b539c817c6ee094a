// Package io provides validated JSON import and export for block documents.
//
// # Overview
//
// This package is the file-facing layer over [document]: it reads and writes
// the same JSON format but always validates structure at the boundary, so a
// corrupt file is rejected with a path-qualified error before it reaches a
// workspace. The format is designed for:
//
//   - Saving and loading editor workspaces
//   - Integration with external tools that produce or consume block trees
//   - Caching of decoded documents for faster re-rendering
//   - Round-trip preservation: import, edit, export, and re-import identically
//
// # JSON Format
//
// The format has one required top-level array:
//
//	{
//	  "blocks": [
//	    {
//	      "type": "controls_repeat_ext",
//	      "id": "loop",
//	      "children": [
//	        {"input": "TIMES", "kind": "value",
//	         "block": {"type": "math_number", "fields": [{"name": "NUM", "value": "10"}]}}
//	      ],
//	      "x": 0,
//	      "y": 0
//	    }
//	  ]
//	}
//
// Each entry in "blocks" is a top-level stack; nested blocks hang off their
// parent through "children" entries and "next" chains. See [document.Node]
// for the full field reference and the omission rules for optional flags.
//
// # Import
//
// Use [ImportFile] to read a document from a file path, or [ReadJSON] to
// read from any io.Reader:
//
//	d, err := io.ImportFile("program.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions validate the JSON structure (every node has a type, IDs are
// unique, child entries are well-formed). Errors are wrapped with the path of
// the node that caused the problem. Validation here is registry-free; type
// existence and connection compatibility are checked by [document.Decode].
//
// # Export
//
// Use [ExportFile] to write a document to a file, or [WriteJSON] to write to
// any io.Writer:
//
//	err := io.ExportFile(d, "program.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Output is indented and deterministic: encoding the same workspace twice
// produces identical bytes, which makes exported files diff- and
// cache-friendly.
//
// # Concurrency
//
// All functions in this package are safe to call concurrently with other
// readers of the same document, but not with concurrent modifications. The
// [ReadJSON] and [ImportFile] functions create independent documents that
// can be used and modified freely after import.
//
// [document]: github.com/matzehuels/blockpad/pkg/document
// [document.Node]: github.com/matzehuels/blockpad/pkg/document.Node
// [document.Decode]: github.com/matzehuels/blockpad/pkg/document.Decode
package io
