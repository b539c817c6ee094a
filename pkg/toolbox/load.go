package toolbox

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blockpad/pkg/block"
	apperrors "github.com/matzehuels/blockpad/pkg/errors"
)

var kindFromString = map[string]block.InputKind{
	"value":     block.InputValue,
	"statement": block.InputStatement,
	"dummy":     block.InputDummy,
}

// Parse decodes a TOML block library into a toolbox.
//
// The format has two kinds of top-level tables. [[block]] defines a block
// type, [[category]] defines a palette heading:
//
//	[[category]]
//	name = "Sound"
//	colour = 20
//	blocks = ["sound_beep"]
//
//	[[block]]
//	type = "sound_beep"
//	colour = 20
//	tooltip = "Play a beep"
//	previous = true
//	next = true
//
//	  [[block.input]]
//	  kind = "value"
//	  name = "PITCH"
//
// Input kinds are "value", "statement", or "dummy". Fields nest under
// inputs as [[block.input.field]] tables with "name" and "default" keys.
// Custom blocks cannot carry mutation codecs; those require code and so
// are reserved for compiled-in definitions.
//
// Parse validates the result: definitions must be well-formed and every
// category entry must reference a block type defined in the same file.
// To reference builtin types from a custom category, merge the parsed
// toolbox with [Builtin] first and validate the merged result.
func Parse(data []byte) (*Toolbox, error) {
	var file tomlFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse library: %w", err)
	}

	t := New()
	for _, tb := range file.Blocks {
		def, err := tb.definition()
		if err != nil {
			return nil, err
		}
		if err := t.AddDefinition(def); err != nil {
			return nil, err
		}
	}
	for _, tc := range file.Categories {
		if tc.Name == "" {
			return nil, fmt.Errorf("category with no name")
		}
		if err := t.AddCategory(Category{Name: tc.Name, Colour: tc.Colour, Blocks: tc.Blocks}); err != nil {
			return nil, err
		}
	}

	// Building a registry validates both the definitions and the
	// category references in one pass.
	if _, err := t.Registry(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile reads a TOML block library from a file.
// The error wraps the underlying cause with the file path for context.
func LoadFile(path string) (*Toolbox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

type tomlFile struct {
	Categories []tomlCategory `toml:"category"`
	Blocks     []tomlBlock    `toml:"block"`
}

type tomlCategory struct {
	Name   string   `toml:"name"`
	Colour int      `toml:"colour"`
	Blocks []string `toml:"blocks"`
}

type tomlBlock struct {
	Type     string      `toml:"type"`
	Colour   int         `toml:"colour"`
	Tooltip  string      `toml:"tooltip"`
	HelpURL  string      `toml:"help_url"`
	Output   bool        `toml:"output"`
	Previous bool        `toml:"previous"`
	Next     bool        `toml:"next"`
	Inline   bool        `toml:"inline"`
	Inputs   []tomlInput `toml:"input"`
}

type tomlInput struct {
	Kind   string      `toml:"kind"`
	Name   string      `toml:"name"`
	Fields []tomlField `toml:"field"`
}

type tomlField struct {
	Name    string `toml:"name"`
	Default string `toml:"default"`
}

func (tb tomlBlock) definition() (*block.Definition, error) {
	if err := apperrors.ValidateTypeID(tb.Type); err != nil {
		return nil, fmt.Errorf("block: %s", apperrors.UserMessage(err))
	}
	def := &block.Definition{
		Type:     tb.Type,
		Colour:   tb.Colour,
		Tooltip:  tb.Tooltip,
		HelpURL:  tb.HelpURL,
		Output:   tb.Output,
		Previous: tb.Previous,
		Next:     tb.Next,
		Inline:   tb.Inline,
	}
	for _, in := range tb.Inputs {
		kind, ok := kindFromString[in.Kind]
		if !ok {
			return nil, fmt.Errorf("block %s: unknown input kind %q", tb.Type, in.Kind)
		}
		spec := block.InputSpec{Kind: kind, Name: in.Name}
		for _, f := range in.Fields {
			if err := apperrors.ValidateFieldName(f.Name); err != nil {
				return nil, fmt.Errorf("block %s: %s", tb.Type, apperrors.UserMessage(err))
			}
			spec.Fields = append(spec.Fields, block.FieldSpec{Name: f.Name, Default: f.Default})
		}
		def.Inputs = append(def.Inputs, spec)
	}
	return def, nil
}
