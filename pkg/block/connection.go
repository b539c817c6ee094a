package block

import "errors"

var (
	// ErrIncompatibleConnection is returned by [Connection.Connect] when the
	// two connection kinds are not an opposite pair, or when the other
	// connection is nil. Value plugs only fit value sockets, and statement
	// plugs only fit statement sockets.
	ErrIncompatibleConnection = errors.New("incompatible connection kinds")

	// ErrAlreadyConnected is returned by [Connection.Connect] when either
	// connection is already occupied. Disconnect first to rewire.
	ErrAlreadyConnected = errors.New("connection is already occupied")

	// ErrSameBlock is returned by [Connection.Connect] when both connections
	// belong to the same block.
	ErrSameBlock = errors.New("cannot connect a block to itself")

	// ErrDifferentWorkspaces is returned by [Connection.Connect] when the two
	// blocks live in different workspaces.
	ErrDifferentWorkspaces = errors.New("blocks belong to different workspaces")

	// ErrCyclicConnection is returned by [Connection.Connect] when the link
	// would make a block an ancestor of itself.
	ErrCyclicConnection = errors.New("connection would create a cycle")
)

// ConnectionKind identifies the role of a connection point on a block.
// The four kinds form two opposite pairs: value sockets accept value plugs,
// and statement sockets accept statement plugs.
type ConnectionKind int

const (
	// ConnInputValue is the socket of a value input, owned by the enclosing
	// block. It accepts a ConnOutputValue plug.
	ConnInputValue ConnectionKind = iota
	// ConnOutputValue is the plug on the left edge of an expression block.
	// It fits into a ConnInputValue socket.
	ConnOutputValue
	// ConnNextStatement is a statement socket: the connector under a block,
	// or the socket of a statement input. It accepts a ConnPreviousStatement plug.
	ConnNextStatement
	// ConnPreviousStatement is the plug on top of a statement block.
	// It fits into a ConnNextStatement socket.
	ConnPreviousStatement
)

// Opposite returns the kind that this kind connects to.
func (k ConnectionKind) Opposite() ConnectionKind {
	switch k {
	case ConnInputValue:
		return ConnOutputValue
	case ConnOutputValue:
		return ConnInputValue
	case ConnNextStatement:
		return ConnPreviousStatement
	default:
		return ConnNextStatement
	}
}

// IsSuperior reports whether the kind sits on the parent side of a link.
// Superior kinds own the socket; the connected block hangs below or inside.
func (k ConnectionKind) IsSuperior() bool {
	return k == ConnInputValue || k == ConnNextStatement
}

// String returns a stable lowercase name for the kind, suitable for documents
// and log output.
func (k ConnectionKind) String() string {
	switch k {
	case ConnInputValue:
		return "input-value"
	case ConnOutputValue:
		return "output-value"
	case ConnNextStatement:
		return "next-statement"
	case ConnPreviousStatement:
		return "previous-statement"
	default:
		return "unknown"
	}
}

// Connection is a single connection point owned by a block. Connections are
// created by the block that owns them and live for the block's lifetime;
// only the link between two connections changes.
//
// Connections come in linked pairs: when a.Target() == b, then b.Target() == a.
// Connection is not safe for concurrent use.
type Connection struct {
	kind   ConnectionKind
	block  *Block
	target *Connection
}

// Kind returns the connection's kind.
func (c *Connection) Kind() ConnectionKind { return c.kind }

// Block returns the block that owns this connection.
func (c *Connection) Block() *Block { return c.block }

// Target returns the connection currently linked to this one, or nil.
func (c *Connection) Target() *Connection { return c.target }

// TargetBlock returns the block on the other end of the link, or nil if the
// connection is free.
func (c *Connection) TargetBlock() *Block {
	if c.target == nil {
		return nil
	}
	return c.target.block
}

// IsConnected reports whether the connection is currently linked.
func (c *Connection) IsConnected() bool { return c.target != nil }

// Connect links this connection to other and updates workspace bookkeeping:
// the inferior block leaves the top-level list and its parent becomes the
// superior block. Both directions are checked, so a.Connect(b) and
// b.Connect(a) behave identically.
//
// Returns ErrIncompatibleConnection, ErrAlreadyConnected, ErrSameBlock,
// ErrDifferentWorkspaces, or ErrCyclicConnection when the link is invalid.
// On error neither connection is modified.
func (c *Connection) Connect(other *Connection) error {
	if other == nil {
		return ErrIncompatibleConnection
	}
	if c.block == other.block {
		return ErrSameBlock
	}
	if c.block.ws != other.block.ws {
		return ErrDifferentWorkspaces
	}
	if c.kind.Opposite() != other.kind {
		return ErrIncompatibleConnection
	}
	if c.target != nil || other.target != nil {
		return ErrAlreadyConnected
	}

	sup, inf := c, other
	if !c.kind.IsSuperior() {
		sup, inf = other, c
	}
	// Linking a block underneath its own descendant would close a loop.
	for anc := sup.block; anc != nil; anc = anc.Parent() {
		if anc == inf.block {
			return ErrCyclicConnection
		}
	}

	c.target = other
	other.target = c

	ws := inf.block.ws
	ws.removeTop(inf.block)
	ws.markDirty(inf.block)
	ws.emit(Event{Kind: EventChange, Block: inf.block})
	return nil
}

// Disconnect breaks the link, if any. The inferior block becomes top-level
// again. Disconnecting a free connection is a no-op.
func (c *Connection) Disconnect() {
	if c.target == nil {
		return
	}
	other := c.target
	c.target = nil
	other.target = nil

	inf := c
	if c.kind.IsSuperior() {
		inf = other
	}
	ws := inf.block.ws
	ws.addTop(inf.block)
	ws.markDirty(inf.block)
	ws.emit(Event{Kind: EventChange, Block: inf.block})
}
