package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/matzehuels/blockpad/pkg/block"
)

// recorder captures render notifications so tests can assert on the
// load-time render request protocol.
type recorder struct {
	dirty []*block.Block
}

func (r *recorder) NotifyDirty(b *block.Block) { r.dirty = append(r.dirty, b) }

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestDecodeNumberBlock(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	doc := &Document{Blocks: []*Node{{
		Type:   "math_number",
		ID:     "n1",
		Fields: []Field{{Name: "NUM", Value: "42"}},
		X:      floatPtr(10),
		Y:      floatPtr(20),
	}}}

	if err := Decode(w, doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	b, ok := w.BlockByID("n1")
	if !ok {
		t.Fatal("decoded block not registered under its ID")
	}
	if got, _ := b.FieldValue("NUM"); got != "42" {
		t.Errorf("NUM = %q, want 42", got)
	}
	if x, y := b.Position(); x != 10 || y != 20 {
		t.Errorf("position = (%v, %v), want (10, 20)", x, y)
	}
	if !b.Deletable() || !b.Movable() || !b.Editable() || b.Collapsed() || b.Disabled() {
		t.Error("flag-less document must decode to default flags")
	}
}

func TestDecodeGeneratesMissingIDs(t *testing.T) {
	w := block.NewWorkspace(testRegistry(), block.WithIDGenerator(seqIDs()))
	doc := &Document{Blocks: []*Node{{Type: "math_number"}}}

	if err := Decode(w, doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := w.BlockByID("b1"); !ok {
		t.Error("ID-less node must receive a generated ID")
	}
}

func TestDecodeRebuildsTree(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	doc := &Document{Blocks: []*Node{{
		Type: "controls_repeat_ext",
		ID:   "loop",
		Children: []Child{
			{Input: "TIMES", Kind: KindValue, Block: &Node{
				Type: "math_number", ID: "times",
				Fields: []Field{{Name: "NUM", Value: "3"}},
			}},
			{Input: "DO", Kind: KindStatement, Block: &Node{
				Type: "text_print", ID: "body",
			}},
		},
		Next: &Node{Type: "text_print", ID: "after"},
	}}}

	if err := Decode(w, doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("Validate after decode: %v", err)
	}

	loop, _ := w.BlockByID("loop")
	times, _ := w.BlockByID("times")
	body, _ := w.BlockByID("body")
	after, _ := w.BlockByID("after")
	if times.Parent() != loop || body.Parent() != loop || after.Parent() != loop {
		t.Error("decoded children not attached to the loop")
	}
	if loop.NextBlock() != after {
		t.Error("next chain not rebuilt")
	}
	if len(w.TopBlocks(false)) != 1 {
		t.Errorf("top blocks = %d, want 1", len(w.TopBlocks(false)))
	}
}

func TestDecodeFlags(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	doc := &Document{Blocks: []*Node{{
		Type:      "text_print",
		ID:        "p",
		Inline:    boolPtr(true),
		Collapsed: true,
		Disabled:  true,
		Deletable: boolPtr(false),
		Movable:   boolPtr(false),
		Editable:  boolPtr(false),
	}}}

	if err := Decode(w, doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, _ := w.BlockByID("p")
	if !b.InputsInline() || !b.Collapsed() || !b.Disabled() {
		t.Error("inline/collapsed/disabled not applied")
	}
	if b.Deletable() || b.Movable() || b.Editable() {
		t.Error("explicit false flags not applied")
	}
}

func TestDecodeMutationReshapesBlock(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	doc := &Document{Blocks: []*Node{{
		Type:     "controls_if",
		ID:       "if",
		Mutation: json.RawMessage(`{"elseif":2,"else":1}`),
		Children: []Child{
			{Input: "IF2", Kind: KindValue, Block: &Node{Type: "math_number", ID: "cond"}},
			{Input: "ELSE", Kind: KindStatement, Block: &Node{Type: "text_print", ID: "fallback"}},
		},
	}}}

	if err := Decode(w, doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	cond, _ := w.BlockByID("if")
	for _, name := range []string{"IF0", "DO0", "IF1", "DO1", "IF2", "DO2", "ELSE"} {
		if _, ok := cond.Input(name); !ok {
			t.Errorf("mutated shape missing input %s", name)
		}
	}
	child, _ := w.BlockByID("cond")
	if child.Parent() != cond {
		t.Error("child connected to mutation-created input not attached")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	src := block.NewWorkspace(testRegistry(), block.WithIDGenerator(seqIDs()))
	loop := mustBlock(t, src, "controls_repeat_ext")
	loop.MoveTo(30, 60)
	loop.SetComment("outer loop")
	times := mustBlock(t, src, "math_arithmetic")
	lhs := mustBlock(t, src, "math_number")
	body := mustBlock(t, src, "text_print")
	body.SetDisabled(true)
	mustConnect(t, socket(t, loop, "TIMES"), times.OutputConnection())
	mustConnect(t, socket(t, times, "A"), lhs.OutputConnection())
	mustConnect(t, socket(t, loop, "DO"), body.PreviousConnection())

	first, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dst := block.NewWorkspace(testRegistry())
	if err := Decode(dst, first); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	second, err := Encode(dst)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}

	a, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := Marshal(second)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("round trip not stable:\nfirst:\n%s\nsecond:\n%s", a, b)
	}
}

func TestDecodeRTLMirrorsX(t *testing.T) {
	opts := []block.Option{
		block.WithRTL(),
		block.WithCanvasWidth(func() float64 { return 800 }),
	}
	src := block.NewWorkspace(testRegistry(), opts...)
	num := mustBlock(t, src, "math_number")
	num.MoveTo(100, 40)

	doc, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dst := block.NewWorkspace(testRegistry(), opts...)
	if err := Decode(dst, doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := dst.TopBlocks(false)[0]
	if x, _ := got.Position(); x != 100 {
		t.Errorf("x = %v, want 100 (mirror applied symmetrically)", x)
	}
}

func TestDecodeClearsWorkspace(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	mustBlock(t, w, "math_number")
	mustBlock(t, w, "math_number")

	doc := &Document{Blocks: []*Node{{Type: "text_print", ID: "only"}}}
	if err := Decode(w, doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w.BlockCount() != 1 {
		t.Errorf("blocks = %d, want 1 (decode replaces prior content)", w.BlockCount())
	}
}

func TestDecodeEmitsSingleLoadEvent(t *testing.T) {
	sink := &recorder{}
	w := block.NewWorkspace(testRegistry(), block.WithRenderSink(sink))
	var events []block.Event
	w.AddChangeListener(func(e block.Event) { events = append(events, e) })

	doc := &Document{Blocks: []*Node{{
		Type: "text_print", ID: "a",
		Next: &Node{Type: "text_print", ID: "b",
			Next: &Node{Type: "text_print", ID: "c"}},
	}}}
	if err := Decode(w, doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(events) != 1 || events[0].Kind != block.EventLoad {
		t.Errorf("events = %v, want exactly one load event", events)
	}
	if len(sink.dirty) != 1 || sink.dirty[0].ID() != "c" {
		t.Errorf("render requests = %v, want one for the deepest block in the stack", sink.dirty)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name:    "missing type",
			doc:     &Document{Blocks: []*Node{{ID: "x"}}},
			wantErr: ErrMissingType,
		},
		{
			name: "missing child type",
			doc: &Document{Blocks: []*Node{{
				Type: "controls_repeat_ext",
				Children: []Child{
					{Input: "TIMES", Kind: KindValue, Block: &Node{ID: "x"}},
				},
			}}},
			wantErr: ErrMissingType,
		},
		{
			name: "missing child block",
			doc: &Document{Blocks: []*Node{{
				Type:     "controls_repeat_ext",
				Children: []Child{{Input: "TIMES", Kind: KindValue}},
			}}},
			wantErr: ErrMissingType,
		},
		{
			name:    "unknown type",
			doc:     &Document{Blocks: []*Node{{Type: "does_not_exist"}}},
			wantErr: block.ErrUnknownType,
		},
		{
			name: "unknown input",
			doc: &Document{Blocks: []*Node{{
				Type: "controls_repeat_ext",
				Children: []Child{
					{Input: "NOPE", Kind: KindValue, Block: &Node{Type: "math_number"}},
				},
			}}},
			wantErr: block.ErrUnknownInput,
		},
		{
			name: "unknown field",
			doc: &Document{Blocks: []*Node{{
				Type:   "math_number",
				Fields: []Field{{Name: "NOPE", Value: "1"}},
			}}},
			wantErr: block.ErrUnknownField,
		},
		{
			name: "duplicate ids",
			doc: &Document{Blocks: []*Node{
				{Type: "math_number", ID: "dup"},
				{Type: "math_number", ID: "dup"},
			}},
			wantErr: block.ErrDuplicateID,
		},
		{
			name: "invalid child kind",
			doc: &Document{Blocks: []*Node{{
				Type: "controls_repeat_ext",
				Children: []Child{
					{Input: "TIMES", Kind: "banana", Block: &Node{Type: "math_number"}},
				},
			}}},
			wantErr: ErrIncompatibleChild,
		},
		{
			name: "dummy input cannot host children",
			doc: &Document{Blocks: []*Node{{
				Type: "note_label",
				Children: []Child{
					{Input: "LABEL", Kind: KindValue, Block: &Node{Type: "math_number"}},
				},
			}}},
			wantErr: ErrIncompatibleChild,
		},
		{
			name: "value child without output",
			doc: &Document{Blocks: []*Node{{
				Type: "controls_repeat_ext",
				Children: []Child{
					{Input: "TIMES", Kind: KindValue, Block: &Node{Type: "text_print"}},
				},
			}}},
			wantErr: ErrIncompatibleChild,
		},
		{
			name: "statement child without previous",
			doc: &Document{Blocks: []*Node{{
				Type: "controls_repeat_ext",
				Children: []Child{
					{Input: "DO", Kind: KindStatement, Block: &Node{Type: "math_number"}},
				},
			}}},
			wantErr: ErrIncompatibleChild,
		},
		{
			name: "kind mismatch on the socket",
			doc: &Document{Blocks: []*Node{{
				Type: "controls_repeat_ext",
				Children: []Child{
					{Input: "TIMES", Kind: KindStatement, Block: &Node{Type: "text_print"}},
				},
			}}},
			wantErr: block.ErrIncompatibleConnection,
		},
		{
			name: "next without next connection",
			doc: &Document{Blocks: []*Node{{
				Type: "math_number",
				Next: &Node{Type: "text_print"},
			}}},
			wantErr: ErrIncompatibleChild,
		},
		{
			name: "next target without previous connection",
			doc: &Document{Blocks: []*Node{{
				Type: "text_print",
				Next: &Node{Type: "math_number"},
			}}},
			wantErr: ErrIncompatibleChild,
		},
		{
			name: "malformed mutation",
			doc: &Document{Blocks: []*Node{{
				Type:     "controls_if",
				Mutation: json.RawMessage(`{"elseif":"two"}`),
			}}},
			wantErr: nil, // codec error, matched by substring below
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := block.NewWorkspace(testRegistry())
			err := Decode(w, tc.doc)
			if err == nil {
				t.Fatal("Decode succeeded, want error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
			if w.BlockCount() != 0 {
				t.Errorf("failed decode left %d blocks behind", w.BlockCount())
			}
			if len(w.TopBlocks(false)) != 0 {
				t.Error("failed decode left top-level blocks behind")
			}
		})
	}
}

func TestDecodeFailureRestoresEventDelivery(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	var events []block.Event
	w.AddChangeListener(func(e block.Event) { events = append(events, e) })

	if err := Decode(w, &Document{Blocks: []*Node{{ID: "x"}}}); err == nil {
		t.Fatal("Decode succeeded, want error")
	}
	if len(events) != 0 {
		t.Errorf("failed decode emitted events: %v", events)
	}

	// The workspace must deliver events normally again.
	mustBlock(t, w, "math_number")
	if len(events) != 1 || events[0].Kind != block.EventCreate {
		t.Errorf("events after failed decode = %v, want [create]", events)
	}
}

func TestDecodeBlockKeepsExistingContent(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	existing := mustBlock(t, w, "math_number")

	node := &Node{Type: "text_print", ID: "new"}
	b, err := DecodeBlock(w, node)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if b.ID() != "new" {
		t.Errorf("ID = %s, want new", b.ID())
	}
	if existing.IsDisposed() {
		t.Error("DecodeBlock must not touch unrelated blocks")
	}
	if w.BlockCount() != 2 {
		t.Errorf("blocks = %d, want 2", w.BlockCount())
	}
}

func TestDecodeBlockRollsBackSubtree(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	existing := mustBlock(t, w, "math_number")

	// The child slot name is wrong, so the partially built subtree
	// must be disposed while prior content stays put.
	node := &Node{
		Type: "controls_repeat_ext",
		Children: []Child{
			{Input: "TIMES", Kind: KindValue, Block: &Node{Type: "math_number", ID: "inner"}},
			{Input: "NOPE", Kind: KindValue, Block: &Node{Type: "math_number"}},
		},
	}
	if _, err := DecodeBlock(w, node); !errors.Is(err, block.ErrUnknownInput) {
		t.Fatalf("DecodeBlock error = %v, want %v", err, block.ErrUnknownInput)
	}
	if w.BlockCount() != 1 {
		t.Errorf("blocks = %d, want only the pre-existing one", w.BlockCount())
	}
	if existing.IsDisposed() {
		t.Error("rollback disposed an unrelated block")
	}
	if _, ok := w.BlockByID("inner"); ok {
		t.Error("partially decoded child survived rollback")
	}
}

func TestDecodeBlockDuplicateID(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	if _, err := w.NewBlockWithID("math_number", "taken"); err != nil {
		t.Fatalf("NewBlockWithID: %v", err)
	}

	_, err := DecodeBlock(w, &Node{Type: "math_number", ID: "taken"})
	if !errors.Is(err, block.ErrDuplicateID) {
		t.Errorf("error = %v, want %v", err, block.ErrDuplicateID)
	}
}

func TestDecodeBlockReuse(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	sum := mustBlock(t, w, "math_arithmetic")
	kept, err := w.NewBlockWithID("math_number", "keep")
	if err != nil {
		t.Fatalf("NewBlockWithID: %v", err)
	}
	if err := kept.SetFieldValue("NUM", "1"); err != nil {
		t.Fatalf("SetFieldValue: %v", err)
	}
	mustConnect(t, socket(t, sum, "A"), kept.OutputConnection())

	node := &Node{
		Type:   "math_number",
		ID:     "keep",
		Fields: []Field{{Name: "NUM", Value: "9"}},
	}
	got, err := DecodeBlock(w, node, WithReuse())
	if err != nil {
		t.Fatalf("DecodeBlock(reuse): %v", err)
	}

	if got != kept {
		t.Error("reuse must refill the existing block, not allocate a new one")
	}
	if v, _ := got.FieldValue("NUM"); v != "9" {
		t.Errorf("NUM = %q, want 9 (refilled)", v)
	}
	if !got.IsTopLevel() {
		t.Error("reused block must be detached from its old parent")
	}
	if in, _ := sum.Input("A"); in.TargetBlock() != nil {
		t.Error("old parent slot must be vacated")
	}
}

func TestDecodeBlockReuseTypeMismatch(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	if _, err := w.NewBlockWithID("math_number", "keep"); err != nil {
		t.Fatalf("NewBlockWithID: %v", err)
	}

	_, err := DecodeBlock(w, &Node{Type: "text_print", ID: "keep"}, WithReuse())
	if !errors.Is(err, block.ErrDuplicateID) {
		t.Errorf("error = %v, want %v (reuse requires matching type)", err, block.ErrDuplicateID)
	}
}
