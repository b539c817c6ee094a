package pipeline

import (
	"fmt"

	"github.com/matzehuels/blockpad/pkg/render/canvas"
	"github.com/matzehuels/blockpad/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(l Layout, opts Options) (map[string][]byte, error) {
	if l.IsNodelink() {
		return renderNodelink(l, opts)
	}
	return renderCanvas(l, opts)
}

// renderCanvas generates canvas outputs.
func renderCanvas(l Layout, opts Options) (map[string][]byte, error) {
	if l.Canvas == nil {
		return nil, fmt.Errorf("canvas layout missing geometry")
	}

	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = canvas.RenderSVG(*l.Canvas, svgOpts...)
		case FormatPNG:
			data, err = canvas.RenderPNG(*l.Canvas,
				canvas.WithPNGSVGOptions(svgOpts...),
				canvas.WithScale(opts.Scale))
		case FormatPDF:
			data, err = canvas.RenderPDF(*l.Canvas, canvas.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = canvas.RenderJSON(*l.Canvas, buildJSONOptions(opts)...)
		default:
			return nil, fmt.Errorf("unsupported canvas format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderNodelink generates node-link outputs from a DOT layout.
func renderNodelink(l Layout, opts Options) (map[string][]byte, error) {
	if l.DOT == "" {
		return nil, fmt.Errorf("node-link layout missing DOT string")
	}

	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(l.DOT)
		case FormatPNG:
			data, err = nodelink.RenderPNG(l.DOT, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(l.DOT)
		case FormatDOT:
			data = []byte(l.DOT)
		case FormatJSON:
			data, err = MarshalLayout(l)
		default:
			return nil, fmt.Errorf("unsupported node-link format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds canvas SVG rendering options.
func buildSVGOptions(opts Options) []canvas.SVGOption {
	var svgOpts []canvas.SVGOption

	switch opts.Style {
	case StyleDark:
		svgOpts = append(svgOpts, canvas.WithStyle(canvas.Dark{}))
	case StyleSimple:
		svgOpts = append(svgOpts, canvas.WithStyle(canvas.Simple{}))
	}
	if opts.Connectors {
		svgOpts = append(svgOpts, canvas.WithConnectors())
	}

	return svgOpts
}

// buildJSONOptions builds canvas JSON sink options. The style name is
// echoed into the output so consumers can reproduce the render.
func buildJSONOptions(opts Options) []canvas.JSONOption {
	jsonOpts := []canvas.JSONOption{canvas.WithJSONStyle(opts.Style)}
	if opts.Connectors {
		jsonOpts = append(jsonOpts, canvas.WithJSONConnectors())
	}
	return jsonOpts
}
