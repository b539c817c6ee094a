package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpad/pkg/document"
)

// fmtCommand creates the fmt command for canonicalizing documents.
func (c *CLI) fmtCommand() *cobra.Command {
	var (
		check bool
		write bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [document.json...]",
		Short: "Canonicalize document files",
		Long: `Rewrite document files in canonical form: two-space indentation,
stable key order, and default flags omitted.

By default the formatted document is printed to stdout. With --write the
file is rewritten in place; with --check nothing is written and the command
fails if any file is not already canonical.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFmt(args, check, write)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail if files are not canonical")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite files in place")

	return cmd
}

// runFmt canonicalizes each file per the check/write mode.
func (c *CLI) runFmt(paths []string, check, write bool) error {
	dirty := 0
	for _, path := range paths {
		changed, formatted, err := canonicalize(path)
		if err != nil {
			return err
		}

		switch {
		case check:
			if changed {
				printWarning("%s is not canonical", path)
				dirty++
			}
		case write:
			if changed {
				if err := os.WriteFile(path, formatted, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printSuccess("Formatted %s", path)
			}
		default:
			os.Stdout.Write(formatted)
		}
	}

	if check && dirty > 0 {
		return fmt.Errorf("%d file(s) not canonical", dirty)
	}
	return nil
}

// canonicalize parses, validates, and re-marshals a document file.
// The returned flag reports whether the canonical form differs from the
// bytes on disk.
func canonicalize(path string) (changed bool, formatted []byte, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := document.Unmarshal(raw)
	if err != nil {
		return false, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := document.Validate(doc); err != nil {
		return false, nil, fmt.Errorf("validate %s: %w", path, err)
	}
	formatted, err = document.Marshal(doc)
	if err != nil {
		return false, nil, err
	}
	return !bytes.Equal(raw, formatted), formatted, nil
}
