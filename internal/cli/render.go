package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenegrid/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple outputs)
	formats   []string // output formats: "svg", "png", "pdf", "json", "dot"
	width     float64  // overrides the scene width
	height    float64  // overrides the scene height
	gridLines bool     // draw grid outlines in SVG output
	detailed  bool     // show bounds and layer counts in DOT output
	scale     float64  // PNG scale factor
	noCache   bool     // bypass the artifact cache
	refresh   bool     // re-render and overwrite cached artifacts
	watch     bool     // re-render whenever the scene file changes
}

// renderCommand creates the render command for generating scene outputs.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene description to SVG, PNG, PDF, JSON or DOT",
		Long: `Render builds the scene described by a TOML or YAML file and writes one
output file per requested format.

The svg, png and pdf formats draw the figure. json exports the resolved
layout and dot exports the layout tree as a Graphviz graph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.watch {
				return c.watchRender(cmd.Context(), args[0], &opts)
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "scene width (overrides the description)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "scene height (overrides the description)")
	cmd.Flags().BoolVar(&opts.gridLines, "grid-lines", false, "outline grids in drawn output")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show bounds and layer counts (dot)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the scene file changes")

	return cmd
}

// runRender executes the pipeline once and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Path:      input,
		Width:     opts.width,
		Height:    opts.height,
		Formats:   opts.formats,
		GridLines: opts.gridLines,
		Detailed:  opts.detailed,
		Scale:     opts.scale,
		Refresh:   opts.refresh,
		Logger:    logger,
	})
	if err != nil {
		spinner.StopWithError("Render failed: " + input)
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, basePath(opts.output, input), opts.output, opts.formats)
	if err != nil {
		spinner.Stop()
		return err
	}

	spinner.StopWithSuccess("Rendered " + input)
	printStats(result.Stats, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(paths)))
	return nil
}

// writeArtifacts writes one file per format. A single format goes to output
// as given; otherwise files are named base.format.
func writeArtifacts(artifacts map[string][]byte, base, output string, formats []string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return paths, fmt.Errorf("no %s artifact produced", format)
		}
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := writeFile(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
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

// writeFile writes data to path, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
