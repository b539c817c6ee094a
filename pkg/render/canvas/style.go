package canvas

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const textFontFamily = `'Helvetica Neue', Arial, sans-serif`
const monoFontFamily = `'SF Mono', Menlo, Consolas, monospace`

// Style defines the visual appearance for canvas rendering.
// Implementations control how blocks, fields, labels, and connectors are
// drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content (filters, patterns, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderBackground writes the canvas backdrop covering the whole frame.
	RenderBackground(buf *bytes.Buffer, width, height float64)
	// RenderBlock writes the SVG for a single block body.
	RenderBlock(buf *bytes.Buffer, b BlockBox)
	// RenderField writes the SVG for an editable field pill.
	RenderField(buf *bytes.Buffer, f FieldBox)
	// RenderLabel writes the SVG for a block's type label.
	RenderLabel(buf *bytes.Buffer, l Label)
	// RenderConnector writes the SVG marker where two blocks join.
	RenderConnector(buf *bytes.Buffer, c Connector)
}

// Simple is the default flat style: solid block bodies tinted by the
// definition hue, white field pills, and subtle connector notches.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderBackground(buf *bytes.Buffer, width, height float64) {
	fmt.Fprintf(buf, `  <rect width="%.1f" height="%.1f" fill="#f9fafb"/>`+"\n", width, height)
}

func (Simple) RenderBlock(buf *bytes.Buffer, b BlockBox) {
	extra := ""
	if b.Disabled {
		extra = ` fill-opacity="0.45" stroke-dasharray="5 3"`
	}
	fmt.Fprintf(buf, `  <rect id="block-%s" class="block" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" stroke="%s" stroke-width="1"%s/>`+"\n",
		EscapeXML(b.ID), b.X, b.Y, b.W, b.H, fillFor(b.Colour, 65), fillFor(b.Colour, 45), extra)
}

func (Simple) RenderField(buf *bytes.Buffer, f FieldBox) {
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="#ffffff" stroke="#00000033"/>`+"\n",
		f.X, f.Y, f.W, f.H, f.H/2)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.0f" fill="#333">%s</text>`+"\n",
		f.X+f.W/2, f.Y+f.H/2, monoFontFamily, fontSize-2, EscapeXML(f.Value))
}

func (Simple) RenderLabel(buf *bytes.Buffer, l Label) {
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" dominant-baseline="central" font-family="%s" font-size="%.0f" fill="#ffffff">%s</text>`+"\n",
		l.X, l.Y, textFontFamily, l.Size, EscapeXML(l.Text))
}

func (Simple) RenderConnector(buf *bytes.Buffer, c Connector) {
	switch c.Kind {
	case ConnectorValue:
		fmt.Fprintf(buf, `  <path d="M %.1f %.1f l -5 -4 v 8 z" fill="#00000055"/>`+"\n", c.X, c.Y)
	default:
		fmt.Fprintf(buf, `  <path d="M %.1f %.1f h 12" stroke="#00000055" stroke-width="2"/>`+"\n", c.X+4, c.Y)
	}
}

// Dark renders the same shapes on a dark backdrop with deeper block tints,
// for embedding canvases in dark UIs.
type Dark struct{}

func (Dark) RenderDefs(buf *bytes.Buffer) {}

func (Dark) RenderBackground(buf *bytes.Buffer, width, height float64) {
	fmt.Fprintf(buf, `  <rect width="%.1f" height="%.1f" fill="#1e2227"/>`+"\n", width, height)
}

func (Dark) RenderBlock(buf *bytes.Buffer, b BlockBox) {
	extra := ""
	if b.Disabled {
		extra = ` fill-opacity="0.45" stroke-dasharray="5 3"`
	}
	fmt.Fprintf(buf, `  <rect id="block-%s" class="block" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" stroke="%s" stroke-width="1"%s/>`+"\n",
		EscapeXML(b.ID), b.X, b.Y, b.W, b.H, fillFor(b.Colour, 40), fillFor(b.Colour, 58), extra)
}

func (Dark) RenderField(buf *bytes.Buffer, f FieldBox) {
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="#14171a" stroke="#ffffff33"/>`+"\n",
		f.X, f.Y, f.W, f.H, f.H/2)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.0f" fill="#d8dee6">%s</text>`+"\n",
		f.X+f.W/2, f.Y+f.H/2, monoFontFamily, fontSize-2, EscapeXML(f.Value))
}

func (Dark) RenderLabel(buf *bytes.Buffer, l Label) {
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" dominant-baseline="central" font-family="%s" font-size="%.0f" fill="#eceff4">%s</text>`+"\n",
		l.X, l.Y, textFontFamily, l.Size, EscapeXML(l.Text))
}

func (Dark) RenderConnector(buf *bytes.Buffer, c Connector) {
	switch c.Kind {
	case ConnectorValue:
		fmt.Fprintf(buf, `  <path d="M %.1f %.1f l -5 -4 v 8 z" fill="#ffffff44"/>`+"\n", c.X, c.Y)
	default:
		fmt.Fprintf(buf, `  <path d="M %.1f %.1f h 12" stroke="#ffffff44" stroke-width="2"/>`+"\n", c.X+4, c.Y)
	}
}

// fillFor maps a definition hue to an SVG colour at the given lightness.
// Hue zero means the definition declared no colour and falls back to a
// neutral slate.
func fillFor(hue, lightness int) string {
	if hue == 0 {
		return fmt.Sprintf("hsl(210, 8%%, %d%%)", lightness)
	}
	return fmt.Sprintf("hsl(%d, 45%%, %d%%)", hue, lightness)
}

// EscapeXML escapes a string for safe embedding in SVG text and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
