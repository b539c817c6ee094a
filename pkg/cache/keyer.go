package cache

import "fmt"

// Keyer generates cache keys. Implementations must be deterministic so
// that every host derives the same key for the same work.
type Keyer interface {
	// DocumentKey generates a key for caching document payloads by ID.
	DocumentKey(namespace, id string) string

	// LayoutKey generates a key for caching computed canvas geometry.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for caching rendered artifacts.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts captures every option that changes the layout stage
// output for the same document. View and Detailed matter because the
// node-link view emits DOT during layout.
type LayoutKeyOpts struct {
	View       string
	FrameWidth float64
	MarginX    float64
	MarginY    float64
	RTL        bool
	Detailed   bool
}

// ArtifactKeyOpts captures every option that changes rendered output for
// the same document.
type ArtifactKeyOpts struct {
	View       string
	Format     string
	Style      string
	Detailed   bool
	Connectors bool
	Scale      float64
}

// DefaultKeyer implements the standard key layout shared by the CLI and
// the server.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer with the standard key layout.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DocumentKey generates a key of the form "doc:<namespace>:<id>".
// Document keys stay readable so operators can inspect and invalidate
// them by hand.
func (k *DefaultKeyer) DocumentKey(namespace, id string) string {
	return fmt.Sprintf("doc:%s:%s", namespace, id)
}

// LayoutKey generates a key for computed canvas geometry.
func (k *DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey generates a key for rendered artifacts.
func (k *DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
