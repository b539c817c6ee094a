package block

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownInput is returned by [Block.RemoveInput] when the block has
	// no input with the given name.
	ErrUnknownInput = errors.New("unknown input name")

	// ErrDuplicateInput is returned by [Block.AppendInput] when the block
	// already has an input with the given name.
	ErrDuplicateInput = errors.New("duplicate input name")

	// ErrUnknownField is returned by [Block.FieldValue] and
	// [Block.SetFieldValue] when no input row carries a field with the
	// given name.
	ErrUnknownField = errors.New("unknown field name")

	// ErrDuplicateField is returned by [Block.AppendInput] when a field name
	// in the spec collides with an existing field on the block.
	ErrDuplicateField = errors.New("duplicate field name")
)

// Default bubble size for freshly created comments, in workspace units.
const (
	defaultCommentWidth  = 160
	defaultCommentHeight = 80
)

// Comment is a note bubble attached to a block.
type Comment struct {
	Text   string
	Pinned bool // Bubble stays open
	Width  int  // Bubble size in workspace units
	Height int
}

// Block is a single block instance in a workspace. Blocks are created with
// [Workspace.NewBlock] and disposed with [Block.Dispose]; the zero value is
// not usable.
//
// A block's parent is derived from its output and previous connections rather
// than stored, so it cannot drift out of sync with the link structure.
// Block is not safe for concurrent use.
type Block struct {
	id  string
	typ string
	def *Definition
	ws  *Workspace

	inputs   []*Input
	output   *Connection
	previous *Connection
	next     *Connection

	comment *Comment

	inline    bool
	collapsed bool
	disabled  bool
	deletable bool
	movable   bool
	editable  bool

	x, y     float64
	disposed bool
}

// newBlock builds a block from its definition with default flags and the
// definition's baseline input rows. The block is not yet registered with the
// workspace; [Workspace.NewBlock] handles that.
func newBlock(ws *Workspace, def *Definition, id string) (*Block, error) {
	b := &Block{
		id:        id,
		typ:       def.Type,
		def:       def,
		ws:        ws,
		inline:    def.Inline,
		deletable: true,
		movable:   true,
		editable:  true,
	}
	if def.Output {
		b.output = &Connection{kind: ConnOutputValue, block: b}
	}
	if def.Previous {
		b.previous = &Connection{kind: ConnPreviousStatement, block: b}
	}
	if def.Next {
		b.next = &Connection{kind: ConnNextStatement, block: b}
	}
	for _, spec := range def.Inputs {
		if _, err := b.appendInput(spec); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ID returns the block's workspace-unique identifier.
func (b *Block) ID() string { return b.id }

// Type returns the block's definition type, e.g. "controls_if".
func (b *Block) Type() string { return b.typ }

// Definition returns the shared definition the block was created from.
func (b *Block) Definition() *Definition { return b.def }

// Workspace returns the workspace that owns the block.
func (b *Block) Workspace() *Workspace { return b.ws }

// IsDisposed reports whether the block has been disposed. Disposed blocks
// must not be used further.
func (b *Block) IsDisposed() bool { return b.disposed }

// OutputConnection returns the block's value plug, or nil if the type has none.
func (b *Block) OutputConnection() *Connection { return b.output }

// PreviousConnection returns the block's top statement plug, or nil if the
// type has none.
func (b *Block) PreviousConnection() *Connection { return b.previous }

// NextConnection returns the block's bottom statement socket, or nil if the
// type has none.
func (b *Block) NextConnection() *Connection { return b.next }

// Parent returns the block this block is attached to through its output or
// previous connection, or nil for top-level blocks. The value is derived from
// the live links on every call.
func (b *Block) Parent() *Block {
	if b.output != nil && b.output.target != nil {
		return b.output.target.block
	}
	if b.previous != nil && b.previous.target != nil {
		return b.previous.target.block
	}
	return nil
}

// Root returns the top-level ancestor of the block, which may be the block
// itself.
func (b *Block) Root() *Block {
	root := b
	for {
		p := root.Parent()
		if p == nil {
			return root
		}
		root = p
	}
}

// IsTopLevel reports whether the block has no parent.
func (b *Block) IsTopLevel() bool { return b.Parent() == nil }

// NextBlock returns the block attached below this one, or nil.
func (b *Block) NextBlock() *Block {
	if b.next == nil {
		return nil
	}
	return b.next.TargetBlock()
}

// Children returns the directly attached child blocks: input targets in input
// order, then the next block if any. Returns nil for a leaf block.
func (b *Block) Children() []*Block {
	var kids []*Block
	for _, in := range b.inputs {
		if child := in.TargetBlock(); child != nil {
			kids = append(kids, child)
		}
	}
	if next := b.NextBlock(); next != nil {
		kids = append(kids, next)
	}
	return kids
}

// Descendants returns the block and every block beneath it in pre-order:
// the block first, then each child subtree in [Block.Children] order.
func (b *Block) Descendants() []*Block {
	out := []*Block{b}
	for _, child := range b.Children() {
		out = append(out, child.Descendants()...)
	}
	return out
}

// connections returns all connection points the block owns, in a stable
// order. Used by workspace validation.
func (b *Block) connections() []*Connection {
	var conns []*Connection
	if b.output != nil {
		conns = append(conns, b.output)
	}
	if b.previous != nil {
		conns = append(conns, b.previous)
	}
	if b.next != nil {
		conns = append(conns, b.next)
	}
	for _, in := range b.inputs {
		if in.Connection != nil {
			conns = append(conns, in.Connection)
		}
	}
	return conns
}

// Inputs returns the block's input rows in layout order.
// The returned slice and its inputs are live - modifications affect the block.
func (b *Block) Inputs() []*Input { return b.inputs }

// Input returns the input with the given name and true, or nil and false if
// the block has no such input.
func (b *Block) Input(name string) (*Input, bool) {
	for _, in := range b.inputs {
		if in.Name == name {
			return in, true
		}
	}
	return nil, false
}

// HasValueInput reports whether the block has at least one value input.
// Only such blocks carry an explicit inline flag in their document form.
func (b *Block) HasValueInput() bool {
	for _, in := range b.inputs {
		if in.Kind == InputValue {
			return true
		}
	}
	return false
}

// AppendInput adds an input row built from the spec to the bottom of the
// block. Mutation codecs use this to grow a block's shape.
//
// Returns ErrInvalidDefinition for unnamed value or statement inputs,
// ErrDuplicateInput if the name is taken, or ErrDuplicateField if a field
// name collides with an existing field.
func (b *Block) AppendInput(spec InputSpec) (*Input, error) {
	in, err := b.appendInput(spec)
	if err != nil {
		return nil, err
	}
	b.ws.markDirty(b)
	b.ws.emit(Event{Kind: EventChange, Block: b})
	return in, nil
}

func (b *Block) appendInput(spec InputSpec) (*Input, error) {
	if spec.Name == "" && spec.Kind != InputDummy {
		return nil, fmt.Errorf("%w: unnamed %s input", ErrInvalidDefinition, spec.Kind)
	}
	if spec.Name != "" {
		if _, exists := b.Input(spec.Name); exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateInput, spec.Name)
		}
	}
	for _, f := range spec.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: unnamed field", ErrInvalidDefinition)
		}
		if _, exists := b.Field(f.Name); exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
	}

	in := &Input{Kind: spec.Kind, Name: spec.Name}
	for _, f := range spec.Fields {
		in.Fields = append(in.Fields, &Field{Name: f.Name, Value: f.Default})
	}
	switch spec.Kind {
	case InputValue:
		in.Connection = &Connection{kind: ConnInputValue, block: b}
	case InputStatement:
		in.Connection = &Connection{kind: ConnNextStatement, block: b}
	}
	b.inputs = append(b.inputs, in)
	return in, nil
}

// RemoveInput removes the named input row. Any block attached to the input's
// socket is disconnected first and becomes top-level. Mutation codecs use
// this to shrink a block's shape.
//
// Returns ErrUnknownInput if the block has no input with the given name.
func (b *Block) RemoveInput(name string) error {
	idx := slices.IndexFunc(b.inputs, func(in *Input) bool { return in.Name == name })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownInput, name)
	}
	in := b.inputs[idx]
	if in.Connection != nil {
		in.Connection.Disconnect()
	}
	b.inputs = slices.Delete(b.inputs, idx, idx+1)
	b.ws.markDirty(b)
	b.ws.emit(Event{Kind: EventChange, Block: b})
	return nil
}

// Field returns the field with the given name and true, searching all input
// rows, or nil and false if the block has no such field.
func (b *Block) Field(name string) (*Field, bool) {
	for _, in := range b.inputs {
		if f, ok := in.Field(name); ok {
			return f, true
		}
	}
	return nil, false
}

// FieldValue returns the current value of the named field.
// Returns ErrUnknownField if the block has no such field.
func (b *Block) FieldValue(name string) (string, error) {
	f, ok := b.Field(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f.Value, nil
}

// SetFieldValue updates the named field and notifies the workspace.
// Setting a field to its current value is a no-op.
// Returns ErrUnknownField if the block has no such field.
func (b *Block) SetFieldValue(name, value string) error {
	f, ok := b.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if f.Value == value {
		return nil
	}
	f.Value = value
	b.ws.markDirty(b)
	b.ws.emit(Event{Kind: EventChange, Block: b})
	return nil
}

// InputsInline reports whether value inputs render on a single row.
func (b *Block) InputsInline() bool { return b.inline }

// SetInputsInline overrides the definition's inline layout for this block.
func (b *Block) SetInputsInline(inline bool) { b.setFlag(&b.inline, inline) }

// Collapsed reports whether the block renders collapsed to a single row.
func (b *Block) Collapsed() bool { return b.collapsed }

// SetCollapsed collapses or expands the block.
func (b *Block) SetCollapsed(collapsed bool) { b.setFlag(&b.collapsed, collapsed) }

// Disabled reports whether the block is excluded from program execution.
func (b *Block) Disabled() bool { return b.disabled }

// SetDisabled enables or disables the block.
func (b *Block) SetDisabled(disabled bool) { b.setFlag(&b.disabled, disabled) }

// Deletable reports whether hosts should allow deleting the block.
// Defaults to true. Core operations such as [Block.Dispose] do not check it.
func (b *Block) Deletable() bool { return b.deletable }

// SetDeletable sets the deletable flag.
func (b *Block) SetDeletable(deletable bool) { b.setFlag(&b.deletable, deletable) }

// Movable reports whether hosts should allow dragging the block.
// Defaults to true. Core operations such as [Block.MoveTo] do not check it.
func (b *Block) Movable() bool { return b.movable }

// SetMovable sets the movable flag.
func (b *Block) SetMovable(movable bool) { b.setFlag(&b.movable, movable) }

// Editable reports whether hosts should allow editing the block's fields.
// Defaults to true. Core operations such as [Block.SetFieldValue] do not
// check it.
func (b *Block) Editable() bool { return b.editable }

// SetEditable sets the editable flag.
func (b *Block) SetEditable(editable bool) { b.setFlag(&b.editable, editable) }

func (b *Block) setFlag(flag *bool, value bool) {
	if *flag == value {
		return
	}
	*flag = value
	b.ws.markDirty(b)
	b.ws.emit(Event{Kind: EventChange, Block: b})
}

// Position returns the block's workspace coordinates. Only top-level blocks
// carry meaningful positions; attached blocks derive theirs from layout.
func (b *Block) Position() (x, y float64) { return b.x, b.y }

// MoveTo places the block at absolute workspace coordinates.
func (b *Block) MoveTo(x, y float64) {
	if b.x == x && b.y == y {
		return
	}
	b.x = x
	b.y = y
	b.ws.markDirty(b)
	b.ws.emit(Event{Kind: EventChange, Block: b})
}

// MoveBy shifts the block by the given deltas.
func (b *Block) MoveBy(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	b.MoveTo(b.x+dx, b.y+dy)
}

// Comment returns the block's comment bubble, or nil if the block has none.
// The returned pointer is live - modifications affect the block, but bypass
// workspace change notification.
func (b *Block) Comment() *Comment { return b.comment }

// SetComment sets the comment text, creating the bubble with a default size
// if needed. An empty text removes the comment and returns nil.
func (b *Block) SetComment(text string) *Comment {
	if text == "" {
		if b.comment == nil {
			return nil
		}
		b.comment = nil
		b.ws.markDirty(b)
		b.ws.emit(Event{Kind: EventChange, Block: b})
		return nil
	}
	if b.comment == nil {
		b.comment = &Comment{Text: text, Width: defaultCommentWidth, Height: defaultCommentHeight}
	} else {
		b.comment.Text = text
	}
	b.ws.markDirty(b)
	b.ws.emit(Event{Kind: EventChange, Block: b})
	return b.comment
}

// Unplug disconnects the block from its parent. For statement blocks,
// healStack reconnects the block's next chain into the vacated slot so the
// surrounding stack stays intact; without a parent the chain becomes
// top-level. Value blocks ignore healStack since expressions have no stack
// to heal. Blocks with neither an output nor a previous connection keep
// their next chain attached.
func (b *Block) Unplug(healStack bool) {
	switch {
	case b.output != nil:
		b.output.Disconnect()
	case b.previous != nil:
		b.unplugFromStack(healStack)
	}
}

func (b *Block) unplugFromStack(healStack bool) {
	prevTarget := b.previous.Target()
	b.previous.Disconnect()
	if !healStack || b.next == nil || !b.next.IsConnected() {
		return
	}
	nextTarget := b.next.Target()
	b.next.Disconnect()
	if prevTarget != nil {
		// Both ends were just vacated and the kinds are an opposite pair,
		// so this reconnect cannot fail.
		_ = prevTarget.Connect(nextTarget)
	}
}

// Dispose removes the block and every block still attached beneath it from
// the workspace. The block is unplugged from its parent first; healStack is
// passed through to [Block.Unplug], so a healed next chain survives while an
// unhealed one is disposed along with the block.
//
// Disposing an already disposed block is a no-op.
func (b *Block) Dispose(healStack bool) {
	if b == nil || b.disposed {
		return
	}
	b.Unplug(healStack)
	for _, child := range b.Children() {
		child.Dispose(false)
	}
	b.disposed = true
	b.ws.removeBlock(b)
}

// ResetShape restores the block to its definition baseline: children are
// disposed, input rows are rebuilt from the definition, fields return to
// their defaults, the comment is removed, and flags reset. The block's
// identity, position, and parent-side connections are preserved.
//
// The document decoder uses this when refilling an existing block in place.
func (b *Block) ResetShape() error {
	for _, child := range b.Children() {
		child.Dispose(false)
	}
	b.inputs = nil
	for _, spec := range b.def.Inputs {
		if _, err := b.appendInput(spec); err != nil {
			return err
		}
	}
	b.comment = nil
	b.inline = b.def.Inline
	b.collapsed = false
	b.disabled = false
	b.deletable = true
	b.movable = true
	b.editable = true
	b.ws.markDirty(b)
	b.ws.emit(Event{Kind: EventChange, Block: b})
	return nil
}
