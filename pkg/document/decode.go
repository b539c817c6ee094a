package document

import (
	"errors"
	"fmt"

	"github.com/matzehuels/blockpad/pkg/block"
)

var (
	// ErrMissingType is returned by [Decode] and [DecodeBlock] when a
	// document node carries no type.
	ErrMissingType = errors.New("document node has no type")

	// ErrIncompatibleChild is returned by [Decode] and [DecodeBlock] when a
	// child assignment cannot work structurally: the slot kind is invalid,
	// the named input is a dummy, the nested block offers no matching
	// connection, or a next chain is given to a type without a next socket.
	ErrIncompatibleChild = errors.New("incompatible child for input slot")
)

// DecodeOption configures [DecodeBlock].
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	reuse bool
}

// WithReuse makes decoding refill an existing block in place when a node's
// ID matches one already in the workspace and the types agree. The block is
// detached from its parent, reset to its definition baseline, and rebuilt
// from the node, preserving its identity. Without this option an ID
// collision is a hard error, since silently rebinding risks disposing
// unrelated live state.
func WithReuse() DecodeOption {
	return func(o *decodeOptions) { o.reuse = true }
}

// Decode replaces the workspace contents with the document. The workspace is
// cleared first, then each top-level node is decoded and placed at its x/y
// offset (mirrored across the canvas width for right-to-left workspaces).
//
// Change listeners stay quiet during the load; one [block.EventLoad] fires
// after the final node. Decoding is atomic: on any structural error the
// workspace is left empty and the error describes the offending node.
func Decode(ws *block.Workspace, doc *Document) error {
	ws.Clear()
	ws.BeginLoad()

	o := decodeOptions{}
	for i, node := range doc.Blocks {
		b, err := decodeNode(ws, node, o)
		if err != nil {
			ws.Clear()
			ws.AbortLoad()
			return fmt.Errorf("blocks[%d]: %w", i, err)
		}
		placeTopLevel(ws, b, node)
		ws.RequestRender(lastInChain(b))
	}

	ws.EndLoad()
	return nil
}

// DecodeBlock decodes a single node tree into the workspace and returns its
// root block. Unlike [Decode] the existing workspace contents are kept and
// change listeners observe the individual steps.
//
// Decoding is atomic: on error no new blocks remain in the workspace. With
// [WithReuse], a refilled block that fails partway is disposed rather than
// restored, since its previous fill is already gone.
func DecodeBlock(ws *block.Workspace, node *Node, opts ...DecodeOption) (*block.Block, error) {
	o := decodeOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	b, err := decodeNode(ws, node, o)
	if err != nil {
		return nil, err
	}
	placeTopLevel(ws, b, node)
	ws.RequestRender(lastInChain(b))
	return b, nil
}

// placeTopLevel applies a node's x/y offset to a decoded top-level block,
// mirroring x for right-to-left workspaces.
func placeTopLevel(ws *block.Workspace, b *block.Block, node *Node) {
	if !b.IsTopLevel() || (node.X == nil && node.Y == nil) {
		return
	}
	var x, y float64
	if node.X != nil {
		x = *node.X
		if ws.RTL() {
			x = ws.CanvasWidth() - x
		}
	}
	if node.Y != nil {
		y = *node.Y
	}
	b.MoveTo(x, y)
}

// lastInChain follows next links to the deepest block in a statement chain.
// Rendering that block also refreshes its ancestors, so one render request
// per decoded stack suffices.
func lastInChain(b *block.Block) *block.Block {
	for next := b.NextBlock(); next != nil; next = b.NextBlock() {
		b = next
	}
	return b
}

// decodeNode rebuilds one block from its node: identity, then flags,
// mutation, comment, and fields, then children and the next chain, and
// collapsed last so a collapsed block is never rendered half-built. Any
// failure disposes the partially built subtree before returning.
func decodeNode(ws *block.Workspace, node *Node, o decodeOptions) (*block.Block, error) {
	if node == nil || node.Type == "" {
		return nil, ErrMissingType
	}

	var b *block.Block
	if node.ID != "" {
		if existing, ok := ws.BlockByID(node.ID); ok {
			if !o.reuse {
				return nil, fmt.Errorf("%w: %s", block.ErrDuplicateID, node.ID)
			}
			if existing.Type() != node.Type {
				return nil, fmt.Errorf("%w: %s is %s, node declares %s",
					block.ErrDuplicateID, node.ID, existing.Type(), node.Type)
			}
			existing.Unplug(false)
			if err := existing.ResetShape(); err != nil {
				existing.Dispose(false)
				return nil, fmt.Errorf("reset %s %s: %w", node.Type, node.ID, err)
			}
			b = existing
		}
	}
	if b == nil {
		created, err := ws.NewBlockWithID(node.Type, node.ID)
		if err != nil {
			return nil, err
		}
		b = created
	}

	// From here on any failure must take the partial subtree with it.
	fail := func(err error) (*block.Block, error) {
		b.Dispose(false)
		return nil, err
	}

	if node.Inline != nil {
		b.SetInputsInline(*node.Inline)
	}
	if node.Disabled {
		b.SetDisabled(true)
	}
	if node.Deletable != nil {
		b.SetDeletable(*node.Deletable)
	}
	if node.Movable != nil {
		b.SetMovable(*node.Movable)
	}
	if node.Editable != nil {
		b.SetEditable(*node.Editable)
	}

	if len(node.Mutation) > 0 {
		if dec := b.Definition().DecodeMutation; dec != nil {
			if err := dec(b, node.Mutation); err != nil {
				return fail(fmt.Errorf("decode mutation of %s %s: %w", node.Type, node.ID, err))
			}
		}
	}

	if node.Comment != nil {
		if c := b.SetComment(node.Comment.Text); c != nil {
			c.Pinned = node.Comment.Pinned
			if node.Comment.Width > 0 {
				c.Width = node.Comment.Width
			}
			if node.Comment.Height > 0 {
				c.Height = node.Comment.Height
			}
		}
	}

	for _, f := range node.Fields {
		if err := b.SetFieldValue(f.Name, f.Value); err != nil {
			return fail(fmt.Errorf("%s: %w", node.Type, err))
		}
	}

	for _, child := range node.Children {
		in, ok := b.Input(child.Input)
		if !ok {
			return fail(fmt.Errorf("%w: %s has no input %q", block.ErrUnknownInput, node.Type, child.Input))
		}
		if child.Kind != KindValue && child.Kind != KindStatement {
			return fail(fmt.Errorf("%w: invalid slot kind %q", ErrIncompatibleChild, child.Kind))
		}
		if in.Connection == nil {
			return fail(fmt.Errorf("%w: input %q is a dummy", ErrIncompatibleChild, child.Input))
		}

		childBlock, err := decodeNode(ws, child.Block, o)
		if err != nil {
			return fail(err)
		}
		var childConn *block.Connection
		if child.Kind == KindValue {
			childConn = childBlock.OutputConnection()
		} else {
			childConn = childBlock.PreviousConnection()
		}
		if childConn == nil {
			childBlock.Dispose(false)
			return fail(fmt.Errorf("%w: %s offers no %s connection", ErrIncompatibleChild, childBlock.Type(), child.Kind))
		}
		if err := in.Connection.Connect(childConn); err != nil {
			childBlock.Dispose(false)
			return fail(fmt.Errorf("connect %s to %s.%s: %w", childBlock.Type(), node.Type, child.Input, err))
		}
	}

	if node.Next != nil {
		if b.NextConnection() == nil {
			return fail(fmt.Errorf("%w: %s cannot chain a next block", ErrIncompatibleChild, node.Type))
		}
		nextBlock, err := decodeNode(ws, node.Next, o)
		if err != nil {
			return fail(err)
		}
		if nextBlock.PreviousConnection() == nil {
			nextBlock.Dispose(false)
			return fail(fmt.Errorf("%w: %s offers no previous connection", ErrIncompatibleChild, nextBlock.Type()))
		}
		if err := b.NextConnection().Connect(nextBlock.PreviousConnection()); err != nil {
			nextBlock.Dispose(false)
			return fail(fmt.Errorf("connect next %s to %s: %w", nextBlock.Type(), node.Type, err))
		}
	}

	if node.Collapsed {
		b.SetCollapsed(true)
	}

	return b, nil
}
