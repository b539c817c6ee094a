package canvas

import (
	"bytes"
	"fmt"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style          Style
	showConnectors bool
}

func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }
func WithConnectors() SVGOption   { return func(r *svgRenderer) { r.showConnectors = true } }

// RenderSVG draws a computed layout as a standalone SVG document. Blocks are
// painted in layout order, so parents always sit underneath the blocks
// nested inside them.
func RenderSVG(l Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.FrameWidth, l.FrameHeight, l.FrameWidth, l.FrameHeight)

	r.style.RenderDefs(&buf)
	r.style.RenderBackground(&buf, l.FrameWidth, l.FrameHeight)

	for _, b := range l.Blocks {
		r.style.RenderBlock(&buf, b)
	}
	for _, f := range l.Fields {
		r.style.RenderField(&buf, f)
	}
	for _, lb := range l.Labels {
		r.style.RenderLabel(&buf, lb)
	}
	if r.showConnectors {
		for _, c := range l.Connectors {
			r.style.RenderConnector(&buf, c)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
