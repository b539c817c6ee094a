package pipeline

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/cache"
	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/toolbox"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"dark", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateView(t *testing.T) {
	tests := []struct {
		view    string
		wantErr bool
	}{
		{"canvas", false},
		{"nodelink", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateView(tt.view)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateView(%q) error = %v, wantErr %v", tt.view, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.View != DefaultView {
		t.Errorf("View should be %s, got %s", DefaultView, opts.View)
	}
	if opts.FrameWidth != DefaultFrameWidth {
		t.Errorf("FrameWidth should be %f, got %f", DefaultFrameWidth, opts.FrameWidth)
	}
	if opts.MarginX != DefaultMarginX {
		t.Errorf("MarginX should be %f, got %f", DefaultMarginX, opts.MarginX)
	}
	if opts.MarginY != DefaultMarginY {
		t.Errorf("MarginY should be %f, got %f", DefaultMarginY, opts.MarginY)
	}

	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style should be %s, got %s", DefaultStyle, opts.Style)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %f, got %f", DefaultScale, opts.Scale)
	}
}

func TestOptionsIsCanvas(t *testing.T) {
	opts := Options{}
	if !opts.IsCanvas() {
		t.Error("Empty View should be canvas")
	}

	opts.View = "canvas"
	if !opts.IsCanvas() {
		t.Error("canvas View should be canvas")
	}

	opts.View = "nodelink"
	if opts.IsCanvas() {
		t.Error("nodelink View should not be canvas")
	}
}

func TestOptionsIsNodelink(t *testing.T) {
	opts := Options{}
	if opts.IsNodelink() {
		t.Error("Empty View should not be nodelink")
	}

	opts.View = "nodelink"
	if !opts.IsNodelink() {
		t.Error("nodelink View should be nodelink")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalView := opts.View
	originalStyle := opts.Style
	originalWidth := opts.FrameWidth

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.View != originalView {
		t.Error("View changed on second call")
	}
	if opts.Style != originalStyle {
		t.Error("Style changed on second call")
	}
	if opts.FrameWidth != originalWidth {
		t.Error("FrameWidth changed on second call")
	}
}

func TestOptionsKeyOpts(t *testing.T) {
	opts := Options{View: "nodelink", FrameWidth: 800, RTL: true, Detailed: true,
		Style: "dark", Connectors: true, Scale: 3}

	lk := opts.LayoutKeyOpts()
	if lk.View != "nodelink" || lk.FrameWidth != 800 || !lk.RTL || !lk.Detailed {
		t.Errorf("LayoutKeyOpts dropped options: %+v", lk)
	}

	ak := opts.ArtifactKeyOpts("png")
	if ak.Format != "png" || ak.Style != "dark" || !ak.Connectors || ak.Scale != 3 {
		t.Errorf("ArtifactKeyOpts dropped options: %+v", ak)
	}
}

func TestMarshalLayoutRoundTrip(t *testing.T) {
	l := Layout{View: ViewNodelink, DOT: "digraph G {}"}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout error: %v", err)
	}

	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout error: %v", err)
	}
	if back.View != l.View || back.DOT != l.DOT {
		t.Errorf("Round trip changed layout: %+v", back)
	}
	if !back.IsNodelink() {
		t.Error("IsNodelink should hold after round trip")
	}
}

// =============================================================================
// Runner
// =============================================================================

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// sampleDocument builds a small document through the encoder so IDs and
// positions match what a real workspace produces.
func sampleDocument(t *testing.T) *document.Document {
	t.Helper()
	registry, err := toolbox.Builtin().Registry()
	if err != nil {
		t.Fatalf("Registry() error: %v", err)
	}
	ws := block.NewWorkspace(registry)
	if _, err := ws.NewBlock("text_print"); err != nil {
		t.Fatalf("NewBlock error: %v", err)
	}
	doc, err := document.Encode(ws)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	return doc
}

func TestExecuteCanvas(t *testing.T) {
	ctx := context.Background()
	doc := sampleDocument(t)
	r := NewRunner(cache.NewMemoryCache(), nil, discardLogger())
	defer r.Close()

	opts := Options{Formats: []string{"svg", "json"}}
	result, err := r.Execute(ctx, doc, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Stats.BlockCount != 1 || result.Stats.TopCount != 1 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if result.DocHash == "" {
		t.Error("DocHash should be set")
	}
	if result.Layout.Canvas == nil {
		t.Fatal("Canvas layout should be populated")
	}
	if !bytes.Contains(result.Artifacts["svg"], []byte("<svg")) {
		t.Error("SVG artifact should contain an svg element")
	}
	if !bytes.Contains(result.Artifacts["json"], []byte(`"blocks"`)) {
		t.Error("JSON artifact should contain blocks")
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("First run should not hit the cache")
	}

	// Second run should be served from cache
	again, err := r.Execute(ctx, doc, Options{Formats: []string{"svg", "json"}})
	if err != nil {
		t.Fatalf("Second Execute error: %v", err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("Second run should hit the cache: %+v", again.CacheInfo)
	}
	if !bytes.Equal(again.Artifacts["svg"], result.Artifacts["svg"]) {
		t.Error("Cached artifact should match the original render")
	}
}

func TestExecuteRefreshSkipsCache(t *testing.T) {
	ctx := context.Background()
	doc := sampleDocument(t)
	r := NewRunner(cache.NewMemoryCache(), nil, discardLogger())
	defer r.Close()

	if _, err := r.Execute(ctx, doc, Options{Formats: []string{"svg"}}); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	result, err := r.Execute(ctx, doc, Options{Formats: []string{"svg"}, Refresh: true})
	if err != nil {
		t.Fatalf("Refresh Execute error: %v", err)
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("Refresh should bypass cache reads")
	}
}

func TestExecuteNodelinkDOT(t *testing.T) {
	ctx := context.Background()
	doc := sampleDocument(t)
	r := NewRunner(nil, nil, discardLogger())
	defer r.Close()

	result, err := r.Execute(ctx, doc, Options{View: ViewNodelink, Formats: []string{"dot"}})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !result.Layout.IsNodelink() || result.Layout.DOT == "" {
		t.Fatalf("Layout should carry DOT: %+v", result.Layout)
	}
	if !bytes.Contains(result.Artifacts["dot"], []byte("digraph")) {
		t.Errorf("DOT artifact unexpected: %s", result.Artifacts["dot"])
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, discardLogger())
	defer r.Close()

	if _, err := r.Execute(ctx, sampleDocument(t), Options{View: "bogus"}); err == nil {
		t.Error("Invalid view should fail")
	}
	if _, err := r.Execute(ctx, sampleDocument(t), Options{Formats: []string{"gif"}}); err == nil {
		t.Error("Invalid format should fail")
	}
	if _, err := r.Execute(ctx, nil, Options{}); err == nil {
		t.Error("Nil document should fail")
	}
}

func TestBuildUnknownType(t *testing.T) {
	doc := &document.Document{Blocks: []*document.Node{{ID: "b1", Type: "no_such_block"}}}
	if _, err := Build(doc, Options{}); err == nil {
		t.Error("Unknown block type should fail")
	}
}

func TestRunnerNilDefaults(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	defer r.Close()

	if _, ok := r.Cache.(*cache.NullCache); !ok {
		t.Errorf("Nil cache should default to NullCache, got %T", r.Cache)
	}
	if _, ok := r.Keyer.(*cache.DefaultKeyer); !ok {
		t.Errorf("Nil keyer should default to DefaultKeyer, got %T", r.Keyer)
	}
}
