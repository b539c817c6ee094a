package block

// InputKind identifies the layout role of an input row.
type InputKind int

const (
	// InputValue is a row ending in a value socket for nesting expressions.
	InputValue InputKind = iota
	// InputStatement is a row with a statement socket for stacking blocks inside.
	InputStatement
	// InputDummy is a row that carries fields only and exposes no connection.
	InputDummy
)

// String returns a stable lowercase name for the kind.
func (k InputKind) String() string {
	switch k {
	case InputValue:
		return "value"
	case InputStatement:
		return "statement"
	case InputDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// Field is a single editable slot on an input row, such as a number entry or
// a dropdown choice. Values are stored as strings in their document form;
// interpreting them is up to the host.
//
// Mutating Value directly bypasses workspace change notification - prefer
// [Block.SetFieldValue].
type Field struct {
	Name  string // Unique within the owning block
	Value string
}

// Input is one row of a block: zero or more fields followed by an optional
// connection. Value and statement inputs expose a connection; dummy inputs
// carry fields only and have a nil Connection.
//
// Inputs are created from an [InputSpec] by [Block.AppendInput] and should
// not be constructed directly.
type Input struct {
	Kind   InputKind
	Name   string   // Unique within the owning block; may be empty for dummies
	Fields []*Field // Live pointers - modifications affect the block

	// Connection is the input's socket: ConnInputValue for value inputs,
	// ConnNextStatement for statement inputs, nil for dummy inputs.
	Connection *Connection
}

// Field returns the field with the given name and true, or nil and false if
// the input has no such field.
func (in *Input) Field(name string) (*Field, bool) {
	for _, f := range in.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// TargetBlock returns the block attached to the input's socket, or nil if the
// input is a dummy or nothing is attached.
func (in *Input) TargetBlock() *Block {
	if in.Connection == nil {
		return nil
	}
	return in.Connection.TargetBlock()
}
