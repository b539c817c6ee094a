package pipeline

import (
	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/render/canvas"
	"github.com/matzehuels/blockpad/pkg/render/nodelink"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout generates a complete layout for any visualization type.
// This is the unified entry point for producing serializable layout data.
//
// The canvas view computes absolute block geometry; the node-link view
// emits a DOT description for Graphviz.
func GenerateLayout(ws *block.Workspace, opts Options) (Layout, error) {
	if opts.IsNodelink() {
		return generateNodelinkLayout(ws, opts)
	}
	return generateCanvasLayout(ws, opts)
}

// generateCanvasLayout computes canvas geometry for every visible block.
func generateCanvasLayout(ws *block.Workspace, opts Options) (Layout, error) {
	l := canvas.Compute(ws, canvas.Options{
		FrameWidth: opts.FrameWidth,
		MarginX:    opts.MarginX,
		MarginY:    opts.MarginY,
	})
	return Layout{View: ViewCanvas, Canvas: &l}, nil
}

// generateNodelinkLayout emits the DOT description of the workspace.
// Graphviz computes positions later, during rendering.
func generateNodelinkLayout(ws *block.Workspace, opts Options) (Layout, error) {
	dot := nodelink.ToDOT(ws, nodelink.Options{Detailed: opts.Detailed})
	return Layout{View: ViewNodelink, DOT: dot}, nil
}
