// Package pipeline provides the core render pipeline for blockpad.
//
// This package implements the complete build → layout → render pipeline that
// can be used by CLI and server components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Decode a document into a live workspace against a toolbox
//  2. Layout: Compute canvas geometry, or DOT for the node-link view
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    View:    "canvas",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Build only
//	ws, err := runner.Build(ctx, doc, opts)
//
//	// Layout with an existing workspace
//	layout, err := runner.GenerateLayout(ctx, ws, opts)
//
//	// Render with an existing layout
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/cache"
	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/render/canvas"
	"github.com/matzehuels/blockpad/pkg/toolbox"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultFrameWidth is the default frame width in pixels.
	DefaultFrameWidth = 960.0

	// DefaultMarginX is the default horizontal canvas margin in pixels.
	DefaultMarginX = 24.0

	// DefaultMarginY is the default vertical canvas margin in pixels.
	DefaultMarginY = 24.0

	// DefaultScale is the default raster scale factor for PNG output.
	DefaultScale = 2.0
)

// View constants for visualization types.
const (
	ViewCanvas   = "canvas"
	ViewNodelink = "nodelink"
)

// DefaultView is the default visualization type.
const DefaultView = ViewCanvas

// Style constants for canvas rendering.
const (
	StyleSimple = "simple"
	StyleDark   = "dark"
)

// DefaultStyle is the default visual style.
const DefaultStyle = StyleSimple

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	StyleSimple: true,
	StyleDark:   true,
}

// ValidViews is the set of supported visualization types.
var ValidViews = map[string]bool{
	ViewCanvas:   true,
	ViewNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the render pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	RTL     bool `json:"rtl,omitempty"`
	Refresh bool `json:"refresh,omitempty"`

	// Layout options
	View       string  `json:"view,omitempty"`
	FrameWidth float64 `json:"frame_width,omitempty"`
	MarginX    float64 `json:"margin_x,omitempty"`
	MarginY    float64 `json:"margin_y,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Style      string   `json:"style,omitempty"`
	Connectors bool     `json:"connectors,omitempty"` // Draw connection markers in canvas SVG
	Detailed   bool     `json:"detailed,omitempty"`   // Include IDs and fields in node-link labels
	Scale      float64  `json:"scale,omitempty"`      // PNG raster scale factor

	// Runtime options (not serialized)
	Toolbox *toolbox.Toolbox `json:"-"` // Palette to decode against; nil means the builtin library
	Logger  *log.Logger      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the input document.
	Document *document.Document

	// DocHash is the content hash of the document.
	DocHash string

	// Workspace is the decoded workspace.
	Workspace *block.Workspace

	// Layout contains the layout stage output (canvas geometry or DOT).
	Layout Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BlockCount int
	TopCount   int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage. Build is never
// cached: decoding is cheap and workspaces are live object graphs.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Layout - Serializable Stage Output
// =============================================================================

// Layout is the serializable output of the layout stage. Exactly one of
// Canvas and DOT is populated, depending on the view.
type Layout struct {
	View   string         `json:"view"`
	Canvas *canvas.Layout `json:"canvas,omitempty"`
	DOT    string         `json:"dot,omitempty"`
}

// IsNodelink reports whether this is a node-link layout.
func (l Layout) IsNodelink() bool {
	return l.View == ViewNodelink
}

// MarshalLayout serializes a layout for caching or JSON output.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout deserializes a layout produced by MarshalLayout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return fmt.Errorf("invalid style: %q (must be one of: simple, dark)", style)
	}
	return nil
}

// ValidateView checks that a visualization type is valid.
func ValidateView(view string) error {
	if !ValidViews[view] {
		return fmt.Errorf("invalid view: %q (must be one of: canvas, nodelink)", view)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.View == "" {
		o.View = DefaultView
	}
	if o.FrameWidth == 0 {
		o.FrameWidth = DefaultFrameWidth
	}
	if o.MarginX == 0 {
		o.MarginX = DefaultMarginX
	}
	if o.MarginY == 0 {
		o.MarginY = DefaultMarginY
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateView(o.View)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// IsCanvas returns true if this is a canvas visualization.
func (o *Options) IsCanvas() bool {
	return o.View == "" || o.View == ViewCanvas
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.View == ViewNodelink
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		View:       o.View,
		FrameWidth: o.FrameWidth,
		MarginX:    o.MarginX,
		MarginY:    o.MarginY,
		RTL:        o.RTL,
		Detailed:   o.Detailed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		View:       o.View,
		Format:     format,
		Style:      o.Style,
		Detailed:   o.Detailed,
		Connectors: o.Connectors,
		Scale:      o.Scale,
	}
}
