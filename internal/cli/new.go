package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/io"
	"github.com/matzehuels/blockpad/pkg/toolbox"
)

// newCommand creates the new command for starting a document.
func (c *CLI) newCommand() *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:   "new [file]",
		Short: "Create a new block document",
		Long: `Create a new block document from a starter template.

Templates:
  greeting  A hello-world print program (default)
  counter   A repeat loop that prints a counter variable
  empty     A document with no blocks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNew(args[0], template)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "greeting", "starter template: greeting (default), counter, empty")

	return cmd
}

// runNew builds the template document and writes it to path.
func (c *CLI) runNew(path, template string) error {
	doc, err := starterDocument(template)
	if err != nil {
		return err
	}

	if err := io.ExportFile(doc, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Created %s document", template)
	printFile(path)
	printNewline()
	printNextStep("Edit", "blockpad edit "+path)
	printNextStep("Render", "blockpad render "+path)

	return nil
}

// starterDocument builds the document for a named template.
func starterDocument(template string) (*document.Document, error) {
	if template == "empty" {
		return &document.Document{}, nil
	}

	registry, err := toolbox.Builtin().Registry()
	if err != nil {
		return nil, err
	}
	ws := block.NewWorkspace(registry)

	switch template {
	case "greeting":
		err = buildGreeting(ws)
	case "counter":
		err = buildCounter(ws)
	default:
		return nil, fmt.Errorf("unknown template: %s (must be 'greeting', 'counter', or 'empty')", template)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s template: %w", template, err)
	}

	return document.Encode(ws)
}

// buildGreeting assembles: print "Hello, world!".
func buildGreeting(ws *block.Workspace) error {
	printer, err := ws.NewBlock("text_print")
	if err != nil {
		return err
	}
	msg, err := ws.NewBlock("text")
	if err != nil {
		return err
	}
	if err := msg.SetFieldValue("TEXT", "Hello, world!"); err != nil {
		return err
	}
	return connectValue(printer, "TEXT", msg)
}

// buildCounter assembles: set count to 0, then repeat 10 times printing count.
func buildCounter(ws *block.Workspace) error {
	set, err := ws.NewBlock("variables_set")
	if err != nil {
		return err
	}
	if err := set.SetFieldValue("VAR", "count"); err != nil {
		return err
	}
	zero, err := ws.NewBlock("math_number")
	if err != nil {
		return err
	}
	if err := zero.SetFieldValue("NUM", "0"); err != nil {
		return err
	}
	if err := connectValue(set, "VALUE", zero); err != nil {
		return err
	}

	repeat, err := ws.NewBlock("controls_repeat_ext")
	if err != nil {
		return err
	}
	times, err := ws.NewBlock("math_number")
	if err != nil {
		return err
	}
	if err := times.SetFieldValue("NUM", "10"); err != nil {
		return err
	}
	if err := connectValue(repeat, "TIMES", times); err != nil {
		return err
	}

	printer, err := ws.NewBlock("text_print")
	if err != nil {
		return err
	}
	count, err := ws.NewBlock("variables_get")
	if err != nil {
		return err
	}
	if err := count.SetFieldValue("VAR", "count"); err != nil {
		return err
	}
	if err := connectValue(printer, "TEXT", count); err != nil {
		return err
	}
	if err := connectStatement(repeat, "DO", printer); err != nil {
		return err
	}

	return set.NextConnection().Connect(repeat.PreviousConnection())
}

// connectValue plugs child into the named value input of b.
func connectValue(b *block.Block, input string, child *block.Block) error {
	in, ok := b.Input(input)
	if !ok || in.Connection == nil {
		return fmt.Errorf("%s has no %s input", b.Type(), input)
	}
	return in.Connection.Connect(child.OutputConnection())
}

// connectStatement stacks child inside the named statement input of b.
func connectStatement(b *block.Block, input string, child *block.Block) error {
	in, ok := b.Input(input)
	if !ok || in.Connection == nil {
		return fmt.Errorf("%s has no %s input", b.Type(), input)
	}
	return in.Connection.Connect(child.PreviousConnection())
}
