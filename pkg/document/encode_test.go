package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/blockpad/pkg/block"
)

// ifMutation is the shape payload for the test controls_if type: counts of
// extra else-if arms and whether a final else arm exists.
type ifMutation struct {
	ElseIf int `json:"elseif,omitempty"`
	Else   int `json:"else,omitempty"`
}

// testRegistry builds a registry shaped like the builtin library, including
// a controls_if type with a mutation codec that grows and shrinks its arms.
func testRegistry() *block.Registry {
	r := block.NewRegistry()
	r.MustRegister(&block.Definition{
		Type:   "math_number",
		Output: true,
		Inputs: []block.InputSpec{
			{Kind: block.InputDummy, Fields: []block.FieldSpec{{Name: "NUM", Default: "0"}}},
		},
	})
	r.MustRegister(&block.Definition{
		Type:   "math_arithmetic",
		Output: true,
		Inline: true,
		Inputs: []block.InputSpec{
			{Kind: block.InputValue, Name: "A"},
			{Kind: block.InputValue, Name: "B", Fields: []block.FieldSpec{{Name: "OP", Default: "ADD"}}},
		},
	})
	r.MustRegister(&block.Definition{
		Type:     "text_print",
		Previous: true,
		Next:     true,
		Inputs: []block.InputSpec{
			{Kind: block.InputValue, Name: "TEXT"},
		},
	})
	r.MustRegister(&block.Definition{
		Type:     "controls_repeat_ext",
		Previous: true,
		Next:     true,
		Inputs: []block.InputSpec{
			{Kind: block.InputValue, Name: "TIMES"},
			{Kind: block.InputStatement, Name: "DO"},
		},
	})
	r.MustRegister(&block.Definition{
		Type:   "note_label",
		Output: true,
		Inputs: []block.InputSpec{
			{Kind: block.InputDummy, Name: "LABEL", Fields: []block.FieldSpec{{Name: "TEXT", Default: ""}}},
		},
	})
	r.MustRegister(&block.Definition{
		Type:     "controls_if",
		Previous: true,
		Next:     true,
		Inputs: []block.InputSpec{
			{Kind: block.InputValue, Name: "IF0"},
			{Kind: block.InputStatement, Name: "DO0"},
		},
		EncodeMutation: func(b *block.Block) (json.RawMessage, error) {
			var m ifMutation
			for _, in := range b.Inputs() {
				if strings.HasPrefix(in.Name, "IF") && in.Name != "IF0" {
					m.ElseIf++
				}
				if in.Name == "ELSE" {
					m.Else = 1
				}
			}
			if m.ElseIf == 0 && m.Else == 0 {
				return nil, nil
			}
			return json.Marshal(m)
		},
		DecodeMutation: func(b *block.Block, data json.RawMessage) error {
			var m ifMutation
			if err := json.Unmarshal(data, &m); err != nil {
				return err
			}
			for i := 1; i <= m.ElseIf; i++ {
				if _, err := b.AppendInput(block.InputSpec{Kind: block.InputValue, Name: fmt.Sprintf("IF%d", i)}); err != nil {
					return err
				}
				if _, err := b.AppendInput(block.InputSpec{Kind: block.InputStatement, Name: fmt.Sprintf("DO%d", i)}); err != nil {
					return err
				}
			}
			if m.Else > 0 {
				if _, err := b.AppendInput(block.InputSpec{Kind: block.InputStatement, Name: "ELSE"}); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return r
}

// seqIDs returns a deterministic ID generator: b1, b2, b3, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
}

func mustBlock(t *testing.T, w *block.Workspace, typeID string) *block.Block {
	t.Helper()
	b, err := w.NewBlock(typeID)
	if err != nil {
		t.Fatalf("NewBlock(%s): %v", typeID, err)
	}
	return b
}

func mustConnect(t *testing.T, a, b *block.Connection) {
	t.Helper()
	if err := a.Connect(b); err != nil {
		t.Fatalf("Connect: %v", err)
	}
}

func socket(t *testing.T, b *block.Block, name string) *block.Connection {
	t.Helper()
	in, ok := b.Input(name)
	if !ok {
		t.Fatalf("input %s not found on %s", name, b.Type())
	}
	return in.Connection
}

func TestEncodeNumberBlock(t *testing.T) {
	w := block.NewWorkspace(testRegistry(), block.WithIDGenerator(seqIDs()))
	num := mustBlock(t, w, "math_number")
	if err := num.SetFieldValue("NUM", "42"); err != nil {
		t.Fatalf("SetFieldValue: %v", err)
	}

	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(doc.Blocks))
	}

	node := doc.Blocks[0]
	if node.Type != "math_number" || node.ID != "b1" {
		t.Errorf("node identity = %s/%s, want math_number/b1", node.Type, node.ID)
	}
	if len(node.Fields) != 1 || node.Fields[0].Name != "NUM" || node.Fields[0].Value != "42" {
		t.Errorf("fields = %+v, want [{NUM 42}]", node.Fields)
	}
	if node.X == nil || node.Y == nil || *node.X != 0 || *node.Y != 0 {
		t.Error("top-level node must carry x/y even at the origin")
	}
}

func TestEncodeOmitsDefaultFlags(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	mustBlock(t, w, "math_number")

	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	for _, key := range []string{"inline", "collapsed", "disabled", "deletable", "movable", "editable", "mutation", "comment", "children", "next"} {
		if strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("default-state encoding contains %q:\n%s", key, data)
		}
	}
	for _, key := range []string{"x", "y", "fields"} {
		if !strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("encoding missing %q:\n%s", key, data)
		}
	}
}

func TestEncodeNonDefaultFlags(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	num := mustBlock(t, w, "math_number")
	num.SetCollapsed(true)
	num.SetDisabled(true)
	num.SetDeletable(false)
	num.SetMovable(false)
	num.SetEditable(false)

	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	node := doc.Blocks[0]

	if !node.Collapsed || !node.Disabled {
		t.Error("collapsed/disabled flags missing")
	}
	if node.Deletable == nil || *node.Deletable {
		t.Error("deletable=false must be emitted explicitly")
	}
	if node.Movable == nil || *node.Movable {
		t.Error("movable=false must be emitted explicitly")
	}
	if node.Editable == nil || *node.Editable {
		t.Error("editable=false must be emitted explicitly")
	}
}

func TestEncodeInlineOnlyWithValueInputs(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	mustBlock(t, w, "math_number")     // no value inputs
	mustBlock(t, w, "math_arithmetic") // inline by definition
	printer := mustBlock(t, w, "text_print")
	printer.MoveTo(0, 100) // keep positional order stable

	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	byType := map[string]*Node{}
	for _, n := range doc.Blocks {
		byType[n.Type] = n
	}

	if byType["math_number"].Inline != nil {
		t.Error("math_number has no value inputs, inline must be omitted")
	}
	if in := byType["math_arithmetic"].Inline; in == nil || !*in {
		t.Error("math_arithmetic must emit inline=true")
	}
	if in := byType["text_print"].Inline; in == nil || *in {
		t.Error("text_print must emit inline=false explicitly")
	}
}

func TestEncodeChildrenAndNext(t *testing.T) {
	w := block.NewWorkspace(testRegistry(), block.WithIDGenerator(seqIDs()))
	loop := mustBlock(t, w, "controls_repeat_ext") // b1
	times := mustBlock(t, w, "math_number")        // b2
	body := mustBlock(t, w, "text_print")          // b3
	after := mustBlock(t, w, "text_print")         // b4

	mustConnect(t, socket(t, loop, "TIMES"), times.OutputConnection())
	mustConnect(t, socket(t, loop, "DO"), body.PreviousConnection())
	mustConnect(t, loop.NextConnection(), after.PreviousConnection())

	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 (everything hangs off the loop)", len(doc.Blocks))
	}

	node := doc.Blocks[0]
	if len(node.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(node.Children))
	}
	if c := node.Children[0]; c.Input != "TIMES" || c.Kind != KindValue || c.Block.ID != "b2" {
		t.Errorf("children[0] = {%s %s %s}, want {TIMES value b2}", c.Input, c.Kind, c.Block.ID)
	}
	if c := node.Children[1]; c.Input != "DO" || c.Kind != KindStatement || c.Block.ID != "b3" {
		t.Errorf("children[1] = {%s %s %s}, want {DO statement b3}", c.Input, c.Kind, c.Block.ID)
	}
	if node.Next == nil || node.Next.ID != "b4" {
		t.Error("next chain missing from encoding")
	}
	if node.Next.X != nil || node.Next.Y != nil {
		t.Error("nested nodes must not carry positions")
	}
	if node.Children[0].Block.X != nil {
		t.Error("nested child must not carry a position")
	}
}

func TestEncodeComment(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	num := mustBlock(t, w, "math_number")
	c := num.SetComment("answer to everything")
	c.Pinned = true
	c.Width = 240

	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := doc.Blocks[0].Comment
	if got == nil {
		t.Fatal("comment missing from encoding")
	}
	if got.Text != "answer to everything" || !got.Pinned || got.Width != 240 {
		t.Errorf("comment = %+v, want text/pinned/width preserved", got)
	}
}

func TestEncodeMutation(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	cond := mustBlock(t, w, "controls_if")

	// Baseline shape has no mutation payload.
	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(doc.Blocks[0].Mutation) != 0 {
		t.Errorf("baseline controls_if emitted mutation %s", doc.Blocks[0].Mutation)
	}

	// Grow an else-if arm and an else arm.
	for _, spec := range []block.InputSpec{
		{Kind: block.InputValue, Name: "IF1"},
		{Kind: block.InputStatement, Name: "DO1"},
		{Kind: block.InputStatement, Name: "ELSE"},
	} {
		if _, err := cond.AppendInput(spec); err != nil {
			t.Fatalf("AppendInput: %v", err)
		}
	}

	doc, err = Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var m ifMutation
	if err := json.Unmarshal(doc.Blocks[0].Mutation, &m); err != nil {
		t.Fatalf("unmarshal mutation: %v", err)
	}
	if m.ElseIf != 1 || m.Else != 1 {
		t.Errorf("mutation = %+v, want {ElseIf:1 Else:1}", m)
	}
}

func TestEncodeRTLMirrorsX(t *testing.T) {
	w := block.NewWorkspace(testRegistry(),
		block.WithRTL(),
		block.WithCanvasWidth(func() float64 { return 800 }))
	num := mustBlock(t, w, "math_number")
	num.MoveTo(100, 40)

	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	node := doc.Blocks[0]
	if *node.X != 700 {
		t.Errorf("x = %v, want 700 (mirrored across canvas)", *node.X)
	}
	if *node.Y != 40 {
		t.Errorf("y = %v, want 40 (unmirrored)", *node.Y)
	}
}

func TestEncodeOrdersTopBlocksByPosition(t *testing.T) {
	w := block.NewWorkspace(testRegistry(), block.WithIDGenerator(seqIDs()))
	b1 := mustBlock(t, w, "math_number")
	b1.MoveTo(50, 90)
	b2 := mustBlock(t, w, "math_number")
	b2.MoveTo(10, 20)

	doc, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if doc.Blocks[0].ID != "b2" || doc.Blocks[1].ID != "b1" {
		t.Errorf("order = [%s %s], want [b2 b1] (top to bottom)", doc.Blocks[0].ID, doc.Blocks[1].ID)
	}
}

func TestEncodeBlockNested(t *testing.T) {
	w := block.NewWorkspace(testRegistry())
	sum := mustBlock(t, w, "math_arithmetic")
	num := mustBlock(t, w, "math_number")
	mustConnect(t, socket(t, sum, "A"), num.OutputConnection())

	node, err := EncodeBlock(num)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if node.X != nil || node.Y != nil {
		t.Error("nested block encoding must omit position")
	}

	top, err := EncodeBlock(sum)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if top.X == nil || top.Y == nil {
		t.Error("top-level block encoding must carry position")
	}
}
