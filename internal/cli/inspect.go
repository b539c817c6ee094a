package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/io"
)

// inspectCommand creates the inspect command for summarizing documents.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [document.json]",
		Short: "Summarize a document's structure",
		Long: `Summarize a document's structure: block and stack counts, nesting
depth, and a per-type breakdown. The document is validated on load, so
inspect also serves as a structural check.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
	return cmd
}

// docSummary aggregates the structural facts inspect reports.
type docSummary struct {
	Blocks    int
	Stacks    int
	Depth     int
	Collapsed int
	Disabled  int
	Types     map[string]int
}

// runInspect loads the document and prints its summary.
func (c *CLI) runInspect(input string) error {
	doc, err := io.ImportFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	s := summarize(doc)

	fmt.Println(StyleTitle.Render("Document ") + StyleValue.Render(input))
	printNewline()
	printKeyValue("Blocks", fmt.Sprintf("%d", s.Blocks))
	printKeyValue("Stacks", fmt.Sprintf("%d", s.Stacks))
	printKeyValue("Depth", fmt.Sprintf("%d", s.Depth))
	if s.Collapsed > 0 {
		printKeyValue("Collapsed", fmt.Sprintf("%d", s.Collapsed))
	}
	if s.Disabled > 0 {
		printKeyValue("Disabled", fmt.Sprintf("%d", s.Disabled))
	}

	if len(s.Types) > 0 {
		printNewline()
		fmt.Println(StyleTitle.Render("Types"))
		for _, tc := range sortedTypes(s.Types) {
			fmt.Printf("  %s %s\n",
				StyleNumber.Render(fmt.Sprintf("%3d", tc.count)),
				StyleValue.Render(tc.name))
		}
	}

	return nil
}

// summarize walks the document and collects structural statistics.
func summarize(doc *document.Document) docSummary {
	s := docSummary{
		Stacks: len(doc.Blocks),
		Types:  make(map[string]int),
	}
	doc.Walk(func(n *document.Node) {
		s.Blocks++
		s.Types[n.Type]++
		if n.Collapsed {
			s.Collapsed++
		}
		if n.Disabled {
			s.Disabled++
		}
	})
	for _, n := range doc.Blocks {
		if d := nodeDepth(n); d > s.Depth {
			s.Depth = d
		}
	}
	return s
}

// nodeDepth returns the nesting depth of a node's subtree. Chained blocks
// continue at the same depth; only input children nest.
func nodeDepth(n *document.Node) int {
	depth := 1
	for _, ch := range n.Children {
		if ch.Block == nil {
			continue
		}
		if d := 1 + nodeDepth(ch.Block); d > depth {
			depth = d
		}
	}
	if n.Next != nil {
		if d := nodeDepth(n.Next); d > depth {
			depth = d
		}
	}
	return depth
}

type typeCount struct {
	name  string
	count int
}

// sortedTypes orders type counts by frequency, then name.
func sortedTypes(types map[string]int) []typeCount {
	out := make([]typeCount, 0, len(types))
	for name, count := range types {
		out = append(out, typeCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}
