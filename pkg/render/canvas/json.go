package canvas

import "encoding/json"

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style      string
	connectors bool
}

// WithJSONStyle records the style name (e.g., "simple", "dark") in the JSON
// output for documentation or round-trip rendering.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONConnectors includes connector anchor points in the JSON output.
func WithJSONConnectors() JSONOption { return func(r *jsonRenderer) { r.connectors = true } }

type jsonOutput struct {
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	MarginX    float64         `json:"margin_x"`
	MarginY    float64         `json:"margin_y"`
	Style      string          `json:"style,omitempty"`
	Blocks     []jsonBlock     `json:"blocks"`
	Fields     []jsonField     `json:"fields"`
	Connectors []jsonConnector `json:"connectors,omitempty"`
}

type jsonBlock struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Colour    int     `json:"colour,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Collapsed bool    `json:"collapsed,omitempty"`
	Disabled  bool    `json:"disabled,omitempty"`
}

type jsonField struct {
	Block  string  `json:"block"`
	Name   string  `json:"name,omitempty"`
	Value  string  `json:"value"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonConnector struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// RenderJSON exports the computed geometry as a pretty-printed JSON document,
// the data interchange format for external canvas renderers:
//
//   - Block rectangles in painter's order (parents before nested blocks)
//   - Field pill rectangles with their current values
//   - Optional connector anchor points
//
// RenderJSON returns an error only if JSON marshaling fails. It does not
// modify l and is safe to call concurrently.
func RenderJSON(l Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:   l.FrameWidth,
		Height:  l.FrameHeight,
		MarginX: l.MarginX,
		MarginY: l.MarginY,
		Style:   r.style,
		Blocks:  buildJSONBlocks(l),
		Fields:  buildJSONFields(l),
	}
	if r.connectors {
		out.Connectors = buildJSONConnectors(l)
	}

	return json.MarshalIndent(out, "", "  ")
}

func buildJSONBlocks(l Layout) []jsonBlock {
	blocks := make([]jsonBlock, 0, len(l.Blocks))
	for _, b := range l.Blocks {
		blocks = append(blocks, jsonBlock{
			ID:        b.ID,
			Type:      b.Type,
			Colour:    b.Colour,
			X:         b.X,
			Y:         b.Y,
			Width:     b.W,
			Height:    b.H,
			Collapsed: b.Collapsed,
			Disabled:  b.Disabled,
		})
	}
	return blocks
}

func buildJSONFields(l Layout) []jsonField {
	fields := make([]jsonField, 0, len(l.Fields))
	for _, f := range l.Fields {
		fields = append(fields, jsonField{
			Block:  f.BlockID,
			Name:   f.Name,
			Value:  f.Value,
			X:      f.X,
			Y:      f.Y,
			Width:  f.W,
			Height: f.H,
		})
	}
	return fields
}

func buildJSONConnectors(l Layout) []jsonConnector {
	conns := make([]jsonConnector, 0, len(l.Connectors))
	for _, c := range l.Connectors {
		conns = append(conns, jsonConnector{
			From: c.FromID,
			To:   c.ToID,
			Kind: c.Kind,
			X:    c.X,
			Y:    c.Y,
		})
	}
	return conns
}
