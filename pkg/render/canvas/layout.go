package canvas

import (
	"github.com/matzehuels/blockpad/pkg/block"
)

// Geometry constants, in user units (pixels in SVG).
const (
	RowHeight    = 28.0 // height of one block row
	FooterHeight = 12.0 // closing bar under a block with statement bodies
	FieldHeight  = 20.0 // field pill height, centered in its row
	IndentWidth  = 18.0 // statement body indent from the parent's left edge
	SocketWidth  = 24.0 // width reserved by an empty value socket

	padX     = 10.0 // text inset from the block's left and right edges
	fieldGap = 6.0  // gap before fields and nested value blocks

	minBlockWidth = 56.0
	minFieldWidth = 24.0

	fontSize      = 13.0
	fontCharWidth = 0.55 // estimated glyph width as a fraction of font size
)

// Connector kinds.
const (
	ConnectorValue     = "value"
	ConnectorStatement = "statement"
	ConnectorNext      = "next"
)

// BlockBox is the computed rectangle for one block. Boxes appear in
// painter's order: a parent always precedes the blocks nested inside it.
type BlockBox struct {
	ID        string
	Type      string
	Colour    int // definition hue (0-360), zero for unspecified
	X, Y      float64
	W, H      float64
	Collapsed bool
	Disabled  bool // set when the block or any ancestor is disabled
}

// FieldBox is the computed rectangle for one editable field pill.
type FieldBox struct {
	BlockID string
	Name    string
	Value   string
	X, Y    float64
	W, H    float64
}

// Label is a piece of text anchored at the left edge, vertically centered
// on Y.
type Label struct {
	BlockID string
	Text    string
	X, Y    float64
	Size    float64
}

// Connector marks the anchor point where a child block attaches to its
// parent, or where a next block meets the previous one.
type Connector struct {
	FromID string
	ToID   string
	Kind   string
	X, Y   float64
}

// Layout is the computed geometry for a whole workspace, ready for a sink.
type Layout struct {
	FrameWidth  float64
	FrameHeight float64
	MarginX     float64
	MarginY     float64

	Blocks     []BlockBox
	Fields     []FieldBox
	Labels     []Label
	Connectors []Connector
}

// Block returns the box for a block ID and true, or a zero box and false.
func (l Layout) Block(id string) (BlockBox, bool) {
	for _, b := range l.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return BlockBox{}, false
}

// Options configures geometry computation.
type Options struct {
	FrameWidth float64 // minimum frame width (default 960); grows to fit content
	MarginX    float64 // left offset added to workspace coordinates (default 24)
	MarginY    float64 // top offset added to workspace coordinates (default 24)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.FrameWidth <= 0 {
		opts.FrameWidth = 960
	}
	if opts.MarginX <= 0 {
		opts.MarginX = 24
	}
	if opts.MarginY <= 0 {
		opts.MarginY = 24
	}
	return opts
}

// Compute lays out every top-level stack at its workspace position. Nested
// value blocks sit inside their parent's rows, statement bodies indent
// below their row, and next chains stack flush underneath. Collapsed
// blocks shrink to a single row and hide their contents.
//
// The frame grows to fit content; FrameWidth/FrameHeight in the result are
// always large enough to contain every box plus the margins.
func Compute(ws *block.Workspace, opts Options) Layout {
	o := opts.WithDefaults()
	c := &computer{layout: Layout{
		FrameWidth:  o.FrameWidth,
		FrameHeight: o.MarginY * 2,
		MarginX:     o.MarginX,
		MarginY:     o.MarginY,
	}}

	for _, top := range ws.TopBlocks(true) {
		x, y := top.Position()
		c.placeStack(top, o.MarginX+x, o.MarginY+y, top.Disabled())
	}

	if w := c.maxRight + o.MarginX; w > c.layout.FrameWidth {
		c.layout.FrameWidth = w
	}
	if h := c.maxBottom + o.MarginY; h > c.layout.FrameHeight {
		c.layout.FrameHeight = h
	}
	return c.layout
}

type computer struct {
	layout    Layout
	maxRight  float64
	maxBottom float64
}

// placeStack lays out a block and its next chain top to bottom, returning
// the stack's bounding size.
func (c *computer) placeStack(b *block.Block, x, y float64, ghosted bool) (w, h float64) {
	prev := ""
	for cur := b; cur != nil; cur = cur.NextBlock() {
		bw, bh := c.placeBlock(cur, x, y+h, ghosted || cur.Disabled())
		if prev != "" {
			c.layout.Connectors = append(c.layout.Connectors, Connector{
				FromID: prev, ToID: cur.ID(), Kind: ConnectorNext, X: x, Y: y + h,
			})
		}
		prev = cur.ID()
		if bw > w {
			w = bw
		}
		h += bh
	}
	return w, h
}

// placeBlock lays out one block at (x, y) and returns its size. Rows are
// anchored to their top edge; a row grows downward when a nested value
// block is taller than one row.
func (c *computer) placeBlock(b *block.Block, x, y float64, ghosted bool) (w, h float64) {
	idx := len(c.layout.Blocks)
	c.layout.Blocks = append(c.layout.Blocks, BlockBox{
		ID:        b.ID(),
		Type:      b.Type(),
		Colour:    b.Definition().Colour,
		X:         x,
		Y:         y,
		Collapsed: b.Collapsed(),
		Disabled:  ghosted,
	})

	if b.Collapsed() {
		w, h = c.placeCollapsed(b, x, y)
	} else {
		w, h = c.placeRows(b, x, y, ghosted)
	}

	c.layout.Blocks[idx].W = w
	c.layout.Blocks[idx].H = h
	c.track(x+w, y+h)
	return w, h
}

func (c *computer) placeCollapsed(b *block.Block, x, y float64) (w, h float64) {
	label := b.Type() + " ..."
	c.layout.Labels = append(c.layout.Labels, Label{
		BlockID: b.ID(), Text: label,
		X: x + padX, Y: y + RowHeight/2, Size: fontSize,
	})
	return max(minBlockWidth, textWidth(label)+2*padX), RowHeight
}

func (c *computer) placeRows(b *block.Block, x, y float64, ghosted bool) (w, h float64) {
	maxW := minBlockWidth
	rowY := y
	cur := padX
	rowH := RowHeight
	rowOpen := true
	hasBody := false

	flush := func() {
		if cur+padX > maxW {
			maxW = cur + padX
		}
		rowY += rowH
		cur = padX
		rowH = RowHeight
		rowOpen = false
	}

	c.layout.Labels = append(c.layout.Labels, Label{
		BlockID: b.ID(), Text: b.Type(),
		X: x + cur, Y: rowY + RowHeight/2, Size: fontSize,
	})
	cur += textWidth(b.Type())

	inline := b.InputsInline()
	for _, in := range b.Inputs() {
		switch in.Kind {
		case block.InputDummy:
			cur = c.placeFields(in, b.ID(), x, rowY, cur)
			rowOpen = true

		case block.InputValue:
			if !inline && rowOpen {
				flush()
			}
			cur = c.placeFields(in, b.ID(), x, rowY, cur)
			childX := x + cur + fieldGap
			if target := in.TargetBlock(); target != nil {
				cw, ch := c.placeBlock(target, childX, rowY, ghosted || target.Disabled())
				c.layout.Connectors = append(c.layout.Connectors, Connector{
					FromID: b.ID(), ToID: target.ID(), Kind: ConnectorValue,
					X: childX, Y: rowY + RowHeight/2,
				})
				cur = childX - x + cw
				if ch > rowH {
					rowH = ch
				}
			} else {
				cur = childX - x + SocketWidth
			}
			rowOpen = true
			if !inline {
				flush()
			}

		case block.InputStatement:
			if rowOpen {
				flush()
			}
			hasBody = true
			bodyX := x + IndentWidth
			if target := in.TargetBlock(); target != nil {
				sw, sh := c.placeStack(target, bodyX, rowY, ghosted || target.Disabled())
				c.layout.Connectors = append(c.layout.Connectors, Connector{
					FromID: b.ID(), ToID: target.ID(), Kind: ConnectorStatement,
					X: bodyX, Y: rowY,
				})
				if IndentWidth+sw+padX > maxW {
					maxW = IndentWidth + sw + padX
				}
				rowY += sh
			} else {
				rowY += RowHeight // empty body slot stays one row tall
			}
		}
	}

	if rowOpen {
		flush()
	}
	h = rowY - y
	if hasBody {
		h += FooterHeight
	}
	return maxW, h
}

// placeFields lays out an input's field pills on the current row, returning
// the advanced cursor.
func (c *computer) placeFields(in *block.Input, blockID string, x, rowY, cur float64) float64 {
	for _, f := range in.Fields {
		fw := max(minFieldWidth, textWidth(f.Value)+2*fieldGap)
		c.layout.Fields = append(c.layout.Fields, FieldBox{
			BlockID: blockID,
			Name:    f.Name,
			Value:   f.Value,
			X:       x + cur + fieldGap,
			Y:       rowY + (RowHeight-FieldHeight)/2,
			W:       fw,
			H:       FieldHeight,
		})
		cur += fieldGap + fw
	}
	return cur
}

func (c *computer) track(right, bottom float64) {
	if right > c.maxRight {
		c.maxRight = right
	}
	if bottom > c.maxBottom {
		c.maxBottom = bottom
	}
}

func textWidth(s string) float64 {
	return float64(len(s)) * fontSize * fontCharWidth
}
