package document

import (
	"fmt"

	"github.com/matzehuels/blockpad/pkg/block"
)

// Validate checks the document's structural soundness without a workspace:
// every node has a type, IDs are unique across the document, child entries
// carry a valid kind and a nested block, and fields are named. Type
// existence and input compatibility can only be checked during decode, since
// they depend on the registry.
//
// Returns ErrMissingType, ErrIncompatibleChild, or [block.ErrDuplicateID]
// with the offending node's path, e.g. "blocks[1].children[0]".
func Validate(d *Document) error {
	seen := make(map[string]bool)
	for i, n := range d.Blocks {
		if err := validateNode(n, fmt.Sprintf("blocks[%d]", i), seen); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *Node, path string, seen map[string]bool) error {
	if n == nil || n.Type == "" {
		return fmt.Errorf("%s: %w", path, ErrMissingType)
	}
	if n.ID != "" {
		if seen[n.ID] {
			return fmt.Errorf("%s: %w: %s", path, block.ErrDuplicateID, n.ID)
		}
		seen[n.ID] = true
	}
	for i, f := range n.Fields {
		if f.Name == "" {
			return fmt.Errorf("%s.fields[%d]: field has no name", path, i)
		}
	}
	for i, c := range n.Children {
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		if c.Input == "" {
			return fmt.Errorf("%s: %w: child has no input name", childPath, ErrIncompatibleChild)
		}
		if c.Kind != KindValue && c.Kind != KindStatement {
			return fmt.Errorf("%s: %w: invalid slot kind %q", childPath, ErrIncompatibleChild, c.Kind)
		}
		if err := validateNode(c.Block, childPath+".block", seen); err != nil {
			return err
		}
	}
	if n.Next != nil {
		return validateNode(n.Next, path+".next", seen)
	}
	return nil
}
