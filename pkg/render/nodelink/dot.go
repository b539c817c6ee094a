package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes block IDs and field values in node labels.
	// When false, only the block type is shown.
	Detailed bool
}

// ToDOT converts a workspace to Graphviz DOT format for node-link
// visualization. Every block becomes a node; input connections become
// labelled edges and next connections become dashed edges. The resulting
// DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Unlike the canvas view, the node-link view always shows the full tree,
// including the contents of collapsed blocks.
func ToDOT(ws *block.Workspace, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	blocks := ws.AllBlocks(true)
	for _, b := range blocks {
		label := fmtLabel(b, opts.Detailed)
		attrs := fmtAttrs(b, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", b.ID(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, b := range blocks {
		for _, in := range b.Inputs() {
			if target := in.TargetBlock(); target != nil {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", b.ID(), target.ID(), in.Name)
			}
		}
		if next := b.NextBlock(); next != nil {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", b.ID(), next.ID())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b *block.Block, detailed bool) string {
	if !detailed {
		return b.Type()
	}

	parts := []string{fmt.Sprintf("id: %s", b.ID())}
	for _, in := range b.Inputs() {
		for _, f := range in.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Value))
		}
	}

	return b.Type() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(b *block.Block, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if hue := b.Definition().Colour; hue != 0 {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", hsvColour(hue)))
	}
	if b.Disabled() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// hsvColour formats a definition hue as a Graphviz HSV colour string.
func hsvColour(hue int) string {
	return fmt.Sprintf("%.3f 0.45 0.85", float64(hue)/360)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
