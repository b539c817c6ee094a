package document

import (
	"fmt"

	"github.com/matzehuels/blockpad/pkg/block"
)

// Encode converts a workspace to its document form. Top-level blocks are
// emitted in positional order (top to bottom, then left to right) so output
// is deterministic. For right-to-left workspaces, top-level x coordinates
// are mirrored across the canvas width.
//
// Returns an error only when a block type's mutation encoder fails.
func Encode(ws *block.Workspace) (*Document, error) {
	doc := &Document{Blocks: []*Node{}} // empty workspace marshals as [], not null
	for _, top := range ws.TopBlocks(true) {
		node, err := encodeNode(top, true)
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, node)
	}
	return doc, nil
}

// EncodeBlock converts a single block subtree to its document form. Position
// is included only when the block is top-level; nested blocks derive their
// place from the slot they fill.
func EncodeBlock(b *block.Block) (*Node, error) {
	return encodeNode(b, b.IsTopLevel())
}

// encodeNode serializes one block depth-first: identity and mutation first,
// then fields, comment, and children, then layout flags, then the next
// chain, and finally position for top-level nodes.
func encodeNode(b *block.Block, topLevel bool) (*Node, error) {
	node := &Node{Type: b.Type(), ID: b.ID()}

	if enc := b.Definition().EncodeMutation; enc != nil {
		payload, err := enc(b)
		if err != nil {
			return nil, fmt.Errorf("encode mutation of %s %s: %w", b.Type(), b.ID(), err)
		}
		if len(payload) > 0 {
			node.Mutation = payload
		}
	}

	for _, in := range b.Inputs() {
		for _, f := range in.Fields {
			node.Fields = append(node.Fields, Field{Name: f.Name, Value: f.Value})
		}
	}

	if c := b.Comment(); c != nil {
		node.Comment = &Comment{Text: c.Text, Pinned: c.Pinned, Width: c.Width, Height: c.Height}
	}

	for _, in := range b.Inputs() {
		if in.Connection == nil {
			continue // dummy inputs carry fields only
		}
		target := in.Connection.TargetBlock()
		if target == nil {
			continue
		}
		kind := KindValue
		if in.Kind == block.InputStatement {
			kind = KindStatement
		}
		child, err := encodeNode(target, false)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, Child{Input: in.Name, Kind: kind, Block: child})
	}

	// The inline flag is meaningful exactly when the block has value inputs,
	// so it is emitted for those blocks regardless of its value.
	if b.HasValueInput() {
		inline := b.InputsInline()
		node.Inline = &inline
	}
	if b.Collapsed() {
		node.Collapsed = true
	}
	if b.Disabled() {
		node.Disabled = true
	}
	if !b.Deletable() {
		v := false
		node.Deletable = &v
	}
	if !b.Movable() {
		v := false
		node.Movable = &v
	}
	if !b.Editable() {
		v := false
		node.Editable = &v
	}

	if next := b.NextBlock(); next != nil {
		nn, err := encodeNode(next, false)
		if err != nil {
			return nil, err
		}
		node.Next = nn
	}

	if topLevel {
		x, y := b.Position()
		if ws := b.Workspace(); ws.RTL() {
			x = ws.CanvasWidth() - x
		}
		node.X = &x
		node.Y = &y
	}

	return node, nil
}
