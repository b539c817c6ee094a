// Package render provides visualization rendering for block workspaces.
//
// # Overview
//
// This package contains the rendering pipeline that transforms block
// workspaces into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Canvas visualization (in [canvas] subpackage)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). These are used by both
// canvas and node-link renderers.
//
//	svg := canvas.RenderSVG(layout, opts...)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Canvas Visualization
//
// The [canvas] subpackage renders a workspace the way a block editor shows
// it: nested value blocks sit inside their parent's rows, statement bodies
// indent below, and next chains stack vertically. This is the primary
// what-you-see-is-what-you-saved output for documents.
//
// Key entry points:
//   - [canvas.Compute]: block geometry computation
//   - [canvas.RenderSVG]: SVG output with pluggable styles
//   - [canvas.RenderJSON]: computed layout as JSON for external tools
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the connection structure as a directed
// graph using Graphviz. Blocks appear as boxes, slot assignments as
// labelled arrows, and next chains as dashed arrows. Useful for inspecting
// the tree shape of a large program at a glance.
//
//	dot := nodelink.ToDOT(ws, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [canvas]: github.com/matzehuels/blockpad/pkg/render/canvas
// [canvas.Compute]: github.com/matzehuels/blockpad/pkg/render/canvas.Compute
// [canvas.RenderSVG]: github.com/matzehuels/blockpad/pkg/render/canvas.RenderSVG
// [canvas.RenderJSON]: github.com/matzehuels/blockpad/pkg/render/canvas.RenderJSON
// [nodelink]: github.com/matzehuels/blockpad/pkg/render/nodelink
package render
