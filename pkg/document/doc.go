// Package document provides the portable serialization format for block
// workspaces.
//
// This package defines the canonical wire format for Blockpad's block trees,
// used for JSON files, API responses, storage, and cross-tool exchange.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory block
// model and external formats:
//
//   - [Document], [Node]: Serialization types (this package)
//   - pkg/block.Workspace: In-memory block forest
//
// Use [Encode]/[Decode] to convert between them.
//
// # Document Format
//
// A document is a list of top-level block nodes. Each node nests its value
// and statement children under named input slots, and chains stacked
// statement blocks through "next":
//
//	{
//	  "blocks": [{
//	    "type": "controls_repeat_ext",
//	    "id": "loop",
//	    "children": [
//	      {"input": "TIMES", "kind": "value", "block": {"type": "math_number", ...}},
//	      {"input": "DO", "kind": "statement", "block": {"type": "text_print", ...}}
//	    ],
//	    "x": 24, "y": 16
//	  }]
//	}
//
// Optional flags (collapsed, disabled, deletable, movable, editable) are
// omitted at their defaults; the inline flag appears exactly on blocks with
// value inputs; x/y appear only on top-level nodes. These omission rules are
// the compatibility contract with stored documents and must not change.
//
// # Common Operations
//
//	doc, _ := document.ReadFile("program.json")  // File → Document
//	document.WriteFile(doc, "out.json")          // Document → File
//	data, _ := document.Marshal(doc)             // Document → []byte
//	parsed, _ := document.Unmarshal(data)        // []byte → Document
//
//	doc, _ = document.Encode(ws)                 // Workspace → Document
//	err := document.Decode(ws, doc)              // Document → Workspace
//
// # Decode Failure Semantics
//
// Decoding validates structure as it builds: unknown types, unknown inputs
// or fields, incompatible children, and duplicate IDs surface as sentinel
// errors, and the partially built subtree is disposed before the error
// returns. A failed [Decode] leaves the workspace empty rather than half
// populated.
//
// # Concurrency
//
// Documents are plain data and safe for concurrent reads. Encode and Decode
// touch a workspace and inherit its single-goroutine requirement.
package document
