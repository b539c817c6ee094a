// Package canvas renders workspaces as two-dimensional block diagrams, the
// way a visual editor draws them.
//
// # Overview
//
// Rendering is a two-step process. [Compute] walks the workspace and
// produces a [Layout]: absolute rectangles for every block body, field
// pill, and label, plus the anchor points where blocks join. A sink then
// turns the layout into a final output format:
//
//   - SVG: Scalable vector graphics via [RenderSVG]
//   - JSON: Geometry export for external tools via [RenderJSON]
//   - PDF: Print-ready output via [RenderPDF] (requires rsvg-convert)
//   - PNG: Raster image output via [RenderPNG] (requires rsvg-convert)
//
// # Geometry
//
// Blocks are laid out in rows of [RowHeight] units. A block's type label
// and dummy fields share the first row; value inputs continue the row when
// the block renders inline, and open a row of their own otherwise. Nested
// value blocks sit inside their parent's row, growing it when they are
// taller than one row. Statement bodies indent by [IndentWidth] below
// their input's row, and a closing bar of [FooterHeight] runs under any
// block with statement bodies. Next chains stack flush underneath.
//
// Collapsed blocks shrink to a single row and hide their contents.
// Disabled blocks (and everything nested inside them) are flagged so
// styles can ghost them.
//
// Top-level stacks keep their workspace coordinates, offset by the layout
// margins. The frame grows to fit all content.
//
// # Styles
//
// SVG output is styled through the [Style] interface. [Simple] draws flat
// tinted bodies on a light backdrop; [Dark] draws the same shapes for dark
// UIs. Block tints derive from the definition hue.
//
// Basic usage:
//
//	l := canvas.Compute(ws, canvas.Options{})
//	svg := canvas.RenderSVG(l,
//	    canvas.WithStyle(canvas.Dark{}),
//	    canvas.WithConnectors(),
//	)
//
// # Concurrency
//
// Compute reads the workspace without locking; the caller must not mutate
// the workspace concurrently. Layouts are plain data and safe to render
// from multiple goroutines.
package canvas
