package document

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Child slot kinds.
const (
	KindValue     = "value"
	KindStatement = "statement"
)

// =============================================================================
// Document - Portable Workspace Serialization
// =============================================================================

// Document is the canonical serialization format for a workspace: a list of
// top-level block nodes, each carrying its nested children and next chain.
// Used for API responses, storage, caching, and cross-tool exchange.
//
// The format is human-readable and designed for round-trip fidelity:
// decode → edit → encode → decode produces an equivalent workspace. Optional
// flags are omitted when at their default value; this omission rule is part
// of the compatibility contract with stored documents.
type Document struct {
	Blocks []*Node `json:"blocks" bson:"blocks"`
}

// Walk visits every node in the document in pre-order: each top-level node,
// then its children, then its next chain.
func (d *Document) Walk(fn func(*Node)) {
	for _, n := range d.Blocks {
		walkNode(n, fn)
	}
}

func walkNode(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		walkNode(c.Block, fn)
	}
	walkNode(n.Next, fn)
}

// CountNodes returns the total number of block nodes in the document,
// including nested children and next chains.
func (d *Document) CountNodes() int {
	count := 0
	d.Walk(func(*Node) { count++ })
	return count
}

// =============================================================================
// Node - Serialized Block
// =============================================================================

// Node is the serialized form of a single block. Optional sections are
// omitted when empty; the flag pointers distinguish "absent" from an
// explicit false.
//
// X and Y appear only on top-level nodes. Inline appears whenever the block
// has at least one value input, since its absence means "no value inputs"
// rather than a default.
type Node struct {
	Type     string          `json:"type" bson:"type"`
	ID       string          `json:"id,omitempty" bson:"id,omitempty"`
	Mutation json.RawMessage `json:"mutation,omitempty" bson:"mutation,omitempty"`
	Fields   []Field         `json:"fields,omitempty" bson:"fields,omitempty"`
	Comment  *Comment        `json:"comment,omitempty" bson:"comment,omitempty"`
	Children []Child         `json:"children,omitempty" bson:"children,omitempty"`

	Inline    *bool `json:"inline,omitempty" bson:"inline,omitempty"`
	Collapsed bool  `json:"collapsed,omitempty" bson:"collapsed,omitempty"`
	Disabled  bool  `json:"disabled,omitempty" bson:"disabled,omitempty"`
	Deletable *bool `json:"deletable,omitempty" bson:"deletable,omitempty"` // Omitted when true
	Movable   *bool `json:"movable,omitempty" bson:"movable,omitempty"`     // Omitted when true
	Editable  *bool `json:"editable,omitempty" bson:"editable,omitempty"`   // Omitted when true

	Next *Node `json:"next,omitempty" bson:"next,omitempty"`

	X *float64 `json:"x,omitempty" bson:"x,omitempty"` // Top-level nodes only
	Y *float64 `json:"y,omitempty" bson:"y,omitempty"`
}

// =============================================================================
// Field - Named Scalar Value
// =============================================================================

// Field is a single {name, value} entry. Values are stored as strings;
// interpreting them is up to the block type.
type Field struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

// UnmarshalJSON accepts numeric and boolean field values in addition to
// strings, normalizing them to their string form. External documents
// commonly carry bare numbers for numeric fields.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Name = raw.Name
	if len(raw.Value) == 0 {
		f.Value = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(raw.Value, &s); err == nil {
		f.Value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Value, &n); err == nil {
		f.Value = n.String()
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw.Value, &b); err == nil {
		f.Value = fmt.Sprintf("%v", b)
		return nil
	}
	return fmt.Errorf("field %s: unsupported value %s", raw.Name, raw.Value)
}

// =============================================================================
// Child - Slot Assignment
// =============================================================================

// Child assigns a nested node to a named input slot on its parent block.
// Kind distinguishes value nesting from statement nesting and must match
// the input's kind on decode.
type Child struct {
	Input string `json:"input" bson:"input"`
	Kind  string `json:"kind" bson:"kind"`
	Block *Node  `json:"block" bson:"block"`
}

// =============================================================================
// Comment - Note Bubble
// =============================================================================

// Comment is the serialized form of a block's note bubble.
type Comment struct {
	Text   string `json:"text" bson:"text"`
	Pinned bool   `json:"pinned,omitempty" bson:"pinned,omitempty"`
	Width  int    `json:"width,omitempty" bson:"width,omitempty"`
	Height int    `json:"height,omitempty" bson:"height,omitempty"`
}
