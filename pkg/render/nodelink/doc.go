// Package nodelink renders block trees as traditional node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// every block appears as a box connected by arrows. It's an alternative to
// the canvas visualization for inspecting program structure: input
// connections become labelled edges and next connections become dashed
// edges, making the tree shape explicit. Collapsed blocks are expanded;
// the node-link view always shows the full tree.
//
// # Usage
//
// Convert a workspace to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(ws, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, node labels include block IDs and field values
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded
// box nodes tinted by each block's definition hue.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
