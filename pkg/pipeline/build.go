package pipeline

import (
	"fmt"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/toolbox"
)

// Build decodes a document into a fresh workspace.
//
// The workspace is created against the toolbox from opts (the builtin
// library when unset) and configured with the layout direction and frame
// width, so right-to-left documents land mirrored the same way they will
// be drawn.
func Build(doc *document.Document, opts Options) (*block.Workspace, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}
	opts.SetLayoutDefaults()

	tb := opts.Toolbox
	if tb == nil {
		tb = toolbox.Builtin()
	}
	registry, err := tb.Registry()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	width := opts.FrameWidth
	wsOpts := []block.Option{
		block.WithCanvasWidth(func() float64 { return width }),
	}
	if opts.RTL {
		wsOpts = append(wsOpts, block.WithRTL())
	}

	ws := block.NewWorkspace(registry, wsOpts...)
	if err := document.Decode(ws, doc); err != nil {
		return nil, err
	}
	return ws, nil
}
