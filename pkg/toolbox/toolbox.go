package toolbox

import (
	"fmt"
	"slices"

	"github.com/matzehuels/blockpad/pkg/block"
)

// Category groups block types under a palette heading.
type Category struct {
	Name   string   // Display name, e.g. "Loops"
	Colour int      // Heading hue (0-360), zero for unspecified
	Blocks []string // Block type ids in palette order
}

// Toolbox is the data model behind a categorized block palette: an ordered
// list of categories referencing an ordered set of block definitions. How
// the palette is presented is up to the host; this package only guarantees
// that every category entry resolves to a definition.
type Toolbox struct {
	categories []Category
	defs       []*block.Definition
	byType     map[string]*block.Definition
}

// New returns an empty toolbox.
func New() *Toolbox {
	return &Toolbox{byType: make(map[string]*block.Definition)}
}

// AddDefinition adds a block definition to the toolbox.
// Returns [block.ErrDuplicateType] if the type is already present.
func (t *Toolbox) AddDefinition(def *block.Definition) error {
	if def == nil {
		return fmt.Errorf("%w: nil definition", block.ErrInvalidDefinition)
	}
	if _, exists := t.byType[def.Type]; exists {
		return fmt.Errorf("%w: %s", block.ErrDuplicateType, def.Type)
	}
	t.defs = append(t.defs, def)
	t.byType[def.Type] = def
	return nil
}

// AddCategory appends a palette category. Category names must be unique;
// the block ids it references are checked by [Toolbox.Validate], not here,
// so categories and definitions can be added in any order.
func (t *Toolbox) AddCategory(c Category) error {
	for _, existing := range t.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("duplicate category: %s", c.Name)
		}
	}
	t.categories = append(t.categories, c)
	return nil
}

// Categories returns the palette categories in order. The returned slice is
// a copy; mutating it does not affect the toolbox.
func (t *Toolbox) Categories() []Category {
	return slices.Clone(t.categories)
}

// Definitions returns the block definitions in registration order.
func (t *Toolbox) Definitions() []*block.Definition {
	return slices.Clone(t.defs)
}

// Definition returns the definition for a block type and true, or nil and
// false if the type is not in the toolbox.
func (t *Toolbox) Definition(typeID string) (*block.Definition, bool) {
	def, ok := t.byType[typeID]
	return def, ok
}

// Types returns all block type ids in registration order.
func (t *Toolbox) Types() []string {
	types := make([]string, len(t.defs))
	for i, def := range t.defs {
		types[i] = def.Type
	}
	return types
}

// Validate checks that every category entry references a definition in the
// toolbox. Definition validity itself is checked when building a registry.
func (t *Toolbox) Validate() error {
	for _, c := range t.categories {
		for _, typeID := range c.Blocks {
			if _, ok := t.byType[typeID]; !ok {
				return fmt.Errorf("category %s: %w: %s", c.Name, block.ErrUnknownType, typeID)
			}
		}
	}
	return nil
}

// Registry builds a block registry from the toolbox's definitions, in
// order. The toolbox is validated first, so a registry built from a
// toolbox never has dangling palette entries.
func (t *Toolbox) Registry() (*block.Registry, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	r := block.NewRegistry()
	for _, def := range t.defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Merge combines base with overlays into a new toolbox. Later toolboxes
// win: an overlay definition with an existing type replaces it in place,
// and an overlay category with an existing name appends its block ids to
// that category (skipping ids already present). New definitions and
// categories are appended in order. The inputs are not modified.
func Merge(base *Toolbox, overlays ...*Toolbox) *Toolbox {
	merged := New()
	merged.categories = slices.Clone(base.categories)
	merged.defs = slices.Clone(base.defs)
	for _, def := range merged.defs {
		merged.byType[def.Type] = def
	}

	for _, overlay := range overlays {
		for _, def := range overlay.defs {
			if _, exists := merged.byType[def.Type]; exists {
				for i, d := range merged.defs {
					if d.Type == def.Type {
						merged.defs[i] = def
						break
					}
				}
			} else {
				merged.defs = append(merged.defs, def)
			}
			merged.byType[def.Type] = def
		}

		for _, c := range overlay.categories {
			idx := -1
			for i, existing := range merged.categories {
				if existing.Name == c.Name {
					idx = i
					break
				}
			}
			if idx < 0 {
				merged.categories = append(merged.categories, c)
				continue
			}
			target := &merged.categories[idx]
			if c.Colour != 0 {
				target.Colour = c.Colour
			}
			target.Blocks = slices.Clone(target.Blocks)
			for _, id := range c.Blocks {
				if !slices.Contains(target.Blocks, id) {
					target.Blocks = append(target.Blocks, id)
				}
			}
		}
	}

	return merged
}
