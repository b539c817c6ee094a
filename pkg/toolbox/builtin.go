package toolbox

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/blockpad/pkg/block"
)

// Category hues follow the conventional assignments, so documents exchanged
// with other block editors look familiar.
const (
	ColourLogic     = 210
	ColourLoops     = 120
	ColourMath      = 230
	ColourText      = 160
	ColourVariables = 330
)

// Builtin returns the standard block library: logic, loops, math, text,
// and variables, with the palette categories to match. The result is a
// fresh toolbox each call, safe to merge with custom libraries.
func Builtin() *Toolbox {
	t := New()
	for _, def := range builtinDefinitions() {
		if err := t.AddDefinition(def); err != nil {
			panic(fmt.Sprintf("toolbox: builtin library: %v", err))
		}
	}
	for _, c := range builtinCategories() {
		if err := t.AddCategory(c); err != nil {
			panic(fmt.Sprintf("toolbox: builtin library: %v", err))
		}
	}
	return t
}

func builtinCategories() []Category {
	return []Category{
		{Name: "Logic", Colour: ColourLogic, Blocks: []string{
			"controls_if", "logic_compare", "logic_operation", "logic_negate", "logic_boolean",
		}},
		{Name: "Loops", Colour: ColourLoops, Blocks: []string{
			"controls_repeat_ext", "controls_whileUntil",
		}},
		{Name: "Math", Colour: ColourMath, Blocks: []string{
			"math_number", "math_arithmetic",
		}},
		{Name: "Text", Colour: ColourText, Blocks: []string{
			"text", "text_join", "text_print",
		}},
		{Name: "Variables", Colour: ColourVariables, Blocks: []string{
			"variables_get", "variables_set",
		}},
	}
}

func builtinDefinitions() []*block.Definition {
	return []*block.Definition{
		{
			Type:     "controls_if",
			Colour:   ColourLogic,
			Tooltip:  "Do something if a condition is true",
			Previous: true,
			Next:     true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "IF0"},
				{Kind: block.InputStatement, Name: "DO0"},
			},
			EncodeMutation: encodeIfShape,
			DecodeMutation: decodeIfShape,
		},
		{
			Type:    "logic_compare",
			Colour:  ColourLogic,
			Tooltip: "Compare two values",
			Output:  true,
			Inline:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "A"},
				{Kind: block.InputValue, Name: "B", Fields: []block.FieldSpec{{Name: "OP", Default: "EQ"}}},
			},
		},
		{
			Type:    "logic_operation",
			Colour:  ColourLogic,
			Tooltip: "Combine two boolean values",
			Output:  true,
			Inline:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "A"},
				{Kind: block.InputValue, Name: "B", Fields: []block.FieldSpec{{Name: "OP", Default: "AND"}}},
			},
		},
		{
			Type:    "logic_negate",
			Colour:  ColourLogic,
			Tooltip: "Invert a boolean value",
			Output:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "BOOL"},
			},
		},
		{
			Type:    "logic_boolean",
			Colour:  ColourLogic,
			Tooltip: "A true or false literal",
			Output:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputDummy, Fields: []block.FieldSpec{{Name: "BOOL", Default: "TRUE"}}},
			},
		},
		{
			Type:     "controls_repeat_ext",
			Colour:   ColourLoops,
			Tooltip:  "Run the body a number of times",
			Previous: true,
			Next:     true,
			Inline:   true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "TIMES"},
				{Kind: block.InputStatement, Name: "DO"},
			},
		},
		{
			Type:     "controls_whileUntil",
			Colour:   ColourLoops,
			Tooltip:  "Run the body while or until a condition holds",
			Previous: true,
			Next:     true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "BOOL", Fields: []block.FieldSpec{{Name: "MODE", Default: "WHILE"}}},
				{Kind: block.InputStatement, Name: "DO"},
			},
		},
		{
			Type:    "math_number",
			Colour:  ColourMath,
			Tooltip: "A number literal",
			Output:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputDummy, Fields: []block.FieldSpec{{Name: "NUM", Default: "0"}}},
			},
		},
		{
			Type:    "math_arithmetic",
			Colour:  ColourMath,
			Tooltip: "Arithmetic on two numbers",
			Output:  true,
			Inline:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "A"},
				{Kind: block.InputValue, Name: "B", Fields: []block.FieldSpec{{Name: "OP", Default: "ADD"}}},
			},
		},
		{
			Type:    "text",
			Colour:  ColourText,
			Tooltip: "A text literal",
			Output:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputDummy, Fields: []block.FieldSpec{{Name: "TEXT", Default: ""}}},
			},
		},
		{
			Type:    "text_join",
			Colour:  ColourText,
			Tooltip: "Join pieces of text together",
			Output:  true,
			Inline:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "ADD0"},
				{Kind: block.InputValue, Name: "ADD1"},
			},
			EncodeMutation: encodeJoinShape,
			DecodeMutation: decodeJoinShape,
		},
		{
			Type:     "text_print",
			Colour:   ColourText,
			Tooltip:  "Print a value",
			Previous: true,
			Next:     true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "TEXT"},
			},
		},
		{
			Type:    "variables_get",
			Colour:  ColourVariables,
			Tooltip: "Read a variable",
			Output:  true,
			Inputs: []block.InputSpec{
				{Kind: block.InputDummy, Fields: []block.FieldSpec{{Name: "VAR", Default: "item"}}},
			},
		},
		{
			Type:     "variables_set",
			Colour:   ColourVariables,
			Tooltip:  "Assign a value to a variable",
			Previous: true,
			Next:     true,
			Inputs: []block.InputSpec{
				{Kind: block.InputValue, Name: "VALUE", Fields: []block.FieldSpec{{Name: "VAR", Default: "item"}}},
			},
		},
	}
}

// ifShape is the serialized shape of a controls_if block: how many else-if
// arms it grew and whether it has an else arm. The baseline single-arm
// shape serializes as no mutation at all.
type ifShape struct {
	ElseIf int `json:"elseif,omitempty"`
	Else   int `json:"else,omitempty"`
}

func encodeIfShape(b *block.Block) (json.RawMessage, error) {
	var shape ifShape
	for _, in := range b.Inputs() {
		if in.Name == "ELSE" {
			shape.Else = 1
			continue
		}
		if strings.HasPrefix(in.Name, "IF") && in.Name != "IF0" {
			shape.ElseIf++
		}
	}
	if shape.ElseIf == 0 && shape.Else == 0 {
		return nil, nil
	}
	return json.Marshal(shape)
}

func decodeIfShape(b *block.Block, data json.RawMessage) error {
	var shape ifShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return err
	}
	if shape.ElseIf < 0 || shape.Else < 0 || shape.Else > 1 {
		return fmt.Errorf("invalid if shape: elseif=%d else=%d", shape.ElseIf, shape.Else)
	}
	for i := 1; i <= shape.ElseIf; i++ {
		if _, err := b.AppendInput(block.InputSpec{Kind: block.InputValue, Name: fmt.Sprintf("IF%d", i)}); err != nil {
			return err
		}
		if _, err := b.AppendInput(block.InputSpec{Kind: block.InputStatement, Name: fmt.Sprintf("DO%d", i)}); err != nil {
			return err
		}
	}
	if shape.Else == 1 {
		if _, err := b.AppendInput(block.InputSpec{Kind: block.InputStatement, Name: "ELSE"}); err != nil {
			return err
		}
	}
	return nil
}

// joinShape is the serialized shape of a text_join block: the number of
// pieces it joins. The two-piece baseline serializes as no mutation.
type joinShape struct {
	Items int `json:"items"`
}

func encodeJoinShape(b *block.Block) (json.RawMessage, error) {
	items := 0
	for _, in := range b.Inputs() {
		if strings.HasPrefix(in.Name, "ADD") {
			items++
		}
	}
	if items == 2 {
		return nil, nil
	}
	return json.Marshal(joinShape{Items: items})
}

func decodeJoinShape(b *block.Block, data json.RawMessage) error {
	var shape joinShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return err
	}
	if shape.Items < 0 {
		return fmt.Errorf("invalid join shape: items=%d", shape.Items)
	}
	for i := 2; i < shape.Items; i++ {
		if _, err := b.AppendInput(block.InputSpec{Kind: block.InputValue, Name: fmt.Sprintf("ADD%d", i)}); err != nil {
			return err
		}
	}
	for i := 1; i >= shape.Items; i-- {
		if err := b.RemoveInput(fmt.Sprintf("ADD%d", i)); err != nil {
			return err
		}
	}
	return nil
}
