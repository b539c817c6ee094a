package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/io"
)

// editCommand creates the edit command.
func (c *CLI) editCommand() *cobra.Command {
	var libraries []string

	cmd := &cobra.Command{
		Use:   "edit [document.json]",
		Short: "Edit a document in the terminal",
		Long: `Open a document in the interactive terminal editor. If the file does
not exist yet, the editor starts with an empty workspace and creates it on
save.

Blocks are added from the toolbox palette, snapped together with mark and
plug, and edited in place. Connection rules are enforced as you edit:
plugging a block where it does not fit reports why.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(args[0], libraries)
		},
	}

	cmd.Flags().StringSliceVarP(&libraries, "library", "l", nil, "additional toolbox library files (repeatable)")

	return cmd
}

func (c *CLI) runEdit(path string, libraries []string) error {
	tb, err := loadToolbox(libraries)
	if err != nil {
		return err
	}
	registry, err := tb.Registry()
	if err != nil {
		return err
	}

	ws := block.NewWorkspace(registry)
	if _, statErr := os.Stat(path); statErr == nil {
		doc, err := io.ImportFile(path)
		if err != nil {
			return err
		}
		if err := document.Decode(ws, doc); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return statErr
	}

	m := NewEditorModel(ws, tb, path)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(EditorModel)
	if !ok || !fm.Saved {
		printDetail("No changes saved")
		return nil
	}

	printSuccess("Saved %s", path)
	printNextStep("Render", fmt.Sprintf("blockpad render %s", path))
	return nil
}
