package block

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidDefinition is returned by [Registry.Register] when a
	// definition is structurally unsound: empty type, both an output and a
	// previous connection, value or statement inputs without a name, or
	// duplicate input or field names.
	ErrInvalidDefinition = errors.New("invalid block definition")

	// ErrDuplicateType is returned by [Registry.Register] when a definition
	// with the same type is already registered.
	ErrDuplicateType = errors.New("duplicate block type")

	// ErrUnknownType is returned by [Registry.Lookup] and
	// [Workspace.NewBlock] when no definition with the given type exists.
	ErrUnknownType = errors.New("unknown block type")
)

// FieldSpec declares a field on an input row.
type FieldSpec struct {
	Name    string // Unique within the block
	Default string // Initial value for new blocks
}

// InputSpec declares one input row of a block type. Value and statement
// inputs require a non-empty name; dummy inputs may be unnamed.
type InputSpec struct {
	Kind   InputKind
	Name   string
	Fields []FieldSpec
}

// Definition describes a block type: its connection surface, input rows, and
// optional mutation codec. Definitions are immutable once registered and are
// shared by every block of the type.
type Definition struct {
	// Type is the unique lowercase identifier, e.g. "controls_if".
	Type string

	// Colour is the hue (0-360) used by renderers for the block body.
	Colour int
	// Tooltip is a short human description shown by hosts.
	Tooltip string
	// HelpURL links to documentation for the block, if any.
	HelpURL string

	// Output declares a value plug on the left edge. Mutually exclusive
	// with Previous.
	Output bool
	// Previous declares a statement plug on top.
	Previous bool
	// Next declares a statement socket underneath.
	Next bool

	// Inline renders value inputs on one row by default. Individual blocks
	// can override this with [Block.SetInputsInline].
	Inline bool

	// Inputs lists the input rows every new block of this type starts with.
	// Mutation codecs may add or remove rows per block afterwards.
	Inputs []InputSpec

	// EncodeMutation captures per-block shape state (such as the number of
	// else-if arms) as an opaque payload during document encoding. Nil for
	// types without mutable shape.
	EncodeMutation func(b *Block) (json.RawMessage, error)

	// DecodeMutation restores per-block shape state from a payload during
	// document decoding, before fields and children are applied. Nil for
	// types without mutable shape.
	DecodeMutation func(b *Block, data json.RawMessage) error
}

// HasMutation reports whether the type declares a mutation codec.
func (d *Definition) HasMutation() bool {
	return d.EncodeMutation != nil || d.DecodeMutation != nil
}

// validate checks the definition's internal consistency.
func (d *Definition) validate() error {
	if d.Type == "" {
		return fmt.Errorf("%w: empty type", ErrInvalidDefinition)
	}
	if d.Output && d.Previous {
		return fmt.Errorf("%w: %s declares both an output and a previous connection", ErrInvalidDefinition, d.Type)
	}
	inputNames := make(map[string]bool, len(d.Inputs))
	fieldNames := make(map[string]bool)
	for _, in := range d.Inputs {
		if in.Name == "" && in.Kind != InputDummy {
			return fmt.Errorf("%w: %s has an unnamed %s input", ErrInvalidDefinition, d.Type, in.Kind)
		}
		if in.Name != "" {
			if inputNames[in.Name] {
				return fmt.Errorf("%w: %s declares input %q twice", ErrInvalidDefinition, d.Type, in.Name)
			}
			inputNames[in.Name] = true
		}
		for _, f := range in.Fields {
			if f.Name == "" {
				return fmt.Errorf("%w: %s has an unnamed field", ErrInvalidDefinition, d.Type)
			}
			if fieldNames[f.Name] {
				return fmt.Errorf("%w: %s declares field %q twice", ErrInvalidDefinition, d.Type, f.Name)
			}
			fieldNames[f.Name] = true
		}
	}
	return nil
}

// Registry maps block types to their definitions. Workspaces resolve types
// through a registry when instantiating blocks.
//
// The zero value is not usable - use NewRegistry. Registration is not safe
// for concurrent use; once registration has completed, lookups may run
// concurrently.
type Registry struct {
	defs  map[string]*Definition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition to the registry. Returns ErrInvalidDefinition
// if the definition is unsound or ErrDuplicateType if the type is taken.
func (r *Registry) Register(def *Definition) error {
	if err := def.validate(); err != nil {
		return err
	}
	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, def.Type)
	}
	r.defs[def.Type] = def
	r.order = append(r.order, def.Type)
	return nil
}

// MustRegister is like [Registry.Register] but panics on error. Intended for
// static definition tables registered at startup.
func (r *Registry) MustRegister(def *Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the definition for the given type.
// Returns ErrUnknownType if no such type is registered.
func (r *Registry) Lookup(typeID string) (*Definition, error) {
	def, ok := r.defs[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeID)
	}
	return def, nil
}

// Has reports whether the type is registered.
func (r *Registry) Has(typeID string) bool {
	_, ok := r.defs[typeID]
	return ok
}

// Types returns all registered types in registration order.
func (r *Registry) Types() []string { return slices.Clone(r.order) }

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.defs) }
