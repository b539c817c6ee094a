package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpad/pkg/io"
	"github.com/matzehuels/blockpad/pkg/pipeline"
)

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		libraries  []string
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render [document.json]",
		Short: "Render a block document to SVG, PNG, PDF, JSON, or DOT",
		Long: `Render a block document to one or more output formats.

The canvas view (default) draws blocks the way an editor shows them:
stacked shapes with fields, sockets, and notches. The nodelink view draws
the connection structure as a Graphviz diagram instead.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateStyle(opts.Style); err != nil {
				return err
			}
			if err := pipeline.ValidateView(opts.View); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache, libraries)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringSliceVarP(&libraries, "library", "l", nil, "custom block library (TOML, repeatable)")

	// Layout flags
	cmd.Flags().StringVar(&opts.View, "view", opts.View, "view: canvas (default), nodelink")
	cmd.Flags().Float64Var(&opts.FrameWidth, "width", opts.FrameWidth, "frame width")
	cmd.Flags().BoolVar(&opts.RTL, "rtl", opts.RTL, "lay out right-to-left")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", opts.Detailed, "show fields and values (nodelink)")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "visual style: simple (default), dark")
	cmd.Flags().BoolVar(&opts.Connectors, "connectors", opts.Connectors, "draw connector markers (canvas)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "raster scale factor (png)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", opts.Refresh, "recompute even when cached")

	return cmd
}

// runRender loads the document, runs the pipeline, and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool, libraries []string) error {
	doc, err := io.ImportFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	tb, err := loadToolbox(libraries)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Toolbox = tb
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s view...", opts.View))
	spinner.Start()

	result, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Render complete")
	if err := writeArtifacts(result.Artifacts, opts.Formats, input, output); err != nil {
		return err
	}
	printStats(result.Stats.BlockCount, result.Stats.TopCount, result.CacheInfo.RenderHit)

	return nil
}

// writeArtifacts writes each rendered artifact to a file derived from the
// output and input paths, printing every written file.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	base := basePath(output, input)

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		path := output
		if path == "" || len(formats) > 1 {
			path = base + "." + format
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
// This is used when generating multiple files (e.g., demo.svg, demo.png).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
