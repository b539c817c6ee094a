package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/toolbox"
)

// blocksCommand creates the blocks command listing available block types.
func (c *CLI) blocksCommand() *cobra.Command {
	var libraries []string

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List available block types",
		Long: `List the block types of the built-in toolbox, grouped by palette
category. Additional toolbox libraries merged with --library appear in the
same listing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBlocks(libraries)
		},
	}

	cmd.Flags().StringSliceVarP(&libraries, "library", "l", nil, "additional toolbox library files (repeatable)")

	return cmd
}

func (c *CLI) runBlocks(libraries []string) error {
	tb, err := loadToolbox(libraries)
	if err != nil {
		return err
	}
	if err := tb.Validate(); err != nil {
		return err
	}

	fmt.Println(renderBlockTable(tb))
	printDetail("%d types in %d categories", len(tb.Definitions()), len(tb.Categories()))
	return nil
}

// renderBlockTable formats the toolbox as a bordered table, one row per
// block type. Types not referenced by any category land in a trailing
// "Other" group.
func renderBlockTable(tb *toolbox.Toolbox) string {
	type row struct {
		category string
		def      *block.Definition
	}

	var rows []row
	seen := map[string]bool{}
	for _, cat := range tb.Categories() {
		for _, typeID := range cat.Blocks {
			def, ok := tb.Definition(typeID)
			if !ok {
				continue
			}
			rows = append(rows, row{cat.Name, def})
			seen[typeID] = true
		}
	}
	for _, def := range tb.Definitions() {
		if !seen[def.Type] {
			rows = append(rows, row{"Other", def})
		}
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		category := ""
		if i == 0 || rows[i-1].category != r.category {
			category = r.category
		}
		cells[i] = []string{category, r.def.Type, shapeOf(r.def), inputSummary(r.def), r.def.Tooltip}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Category", "Type", "Shape", "Inputs", "Description").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 0:
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			case 1:
				return lipgloss.NewStyle().Foreground(colorWhite)
			case 4:
				return lipgloss.NewStyle().Foreground(colorGray)
			default:
				return lipgloss.NewStyle()
			}
		})

	return t.Render()
}

// shapeOf describes how a block type connects to its surroundings.
func shapeOf(def *block.Definition) string {
	switch {
	case def.Output:
		return "value"
	case def.Previous || def.Next:
		return "statement"
	default:
		return "floating"
	}
}

// inputSummary condenses a definition's input rows into "2 values, 1
// statement, 1 field" form.
func inputSummary(def *block.Definition) string {
	var values, statements, fields int
	for _, in := range def.Inputs {
		switch in.Kind {
		case block.InputValue:
			values++
		case block.InputStatement:
			statements++
		}
		fields += len(in.Fields)
	}

	var parts []string
	add := func(n int, noun string) {
		if n == 0 {
			return
		}
		s := fmt.Sprintf("%d %s", n, noun)
		if n > 1 {
			s += "s"
		}
		parts = append(parts, s)
	}
	add(values, "value")
	add(statements, "statement")
	add(fields, "field")

	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, ", ")
}
