package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmswint/plantbeam/pkg/diagram"
	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	source    string // inline diagram source (bypasses the file argument)
	format    string // output format: png or svg
	diagType  string // explicit diagram type (skips detection)
	topic     string // topic slug for output filenames
	outputDir string // output directory override
	engine    string // rendering engine: plantuml or dot
	noCache   bool   // disable the render cache
	refresh   bool   // bypass cached images for this run
}

// renderCommand creates the render command.
//
// The input may be a pure PlantUML source or mixed text (notes, LLM
// output) containing @startuml blocks or fenced code blocks; every
// recognizable diagram in it is rendered, and one broken diagram does not
// stop the rest.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render PlantUML sources to images",
		Long: `Render PlantUML sources to images.

Reads diagram source from a file, from stdin ("-"), or from --source.
Mixed text is scanned for @startuml blocks and fenced plantuml code
blocks; each extracted diagram is rendered independently.

The rendering server is chosen by probing the configured endpoint chain:
the self-hosted server first, then plantuml.com, then kroki.io.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, opts.source)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), text, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", "", "inline diagram source")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png (default), svg")
	cmd.Flags().StringVarP(&opts.diagType, "type", "t", "", "diagram type (default: detected from source)")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "topic used in output filenames")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "rendering engine: plantuml (default), dot")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-fetch even if the image is cached")

	return cmd
}

// runRender extracts diagrams from text and renders each one.
func (c *CLI) runRender(ctx context.Context, text string, opts *renderOpts) error {
	runner, store, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	popts := c.pipelineOptions()
	popts.Type = diagram.Type(opts.diagType)
	popts.Topic = opts.topic
	popts.Engine = opts.engine
	popts.Refresh = opts.refresh
	if opts.format != "" {
		popts.Format = opts.format
	}
	if opts.outputDir != "" {
		popts.OutputDir = opts.outputDir
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering diagrams...")
	spinner.Start()
	results, err := runner.ExecuteText(ctx, text, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("processed %d diagram(s)", len(results)))

	failed := 0
	for _, res := range results {
		if res.Render.Success {
			printSuccess("Rendered %s diagram", res.Type)
			printFile(res.Render.Path)
			printRenderStats(string(res.Type), res.Server, res.Render.CacheHit)
		} else {
			failed++
			printError("Render failed: %s", errors.UserMessage(res.Render.Err))
		}
	}

	if failed == len(results) {
		return fmt.Errorf("all %d diagrams failed", len(results))
	}
	if failed > 0 {
		printWarning("%d of %d diagrams failed", failed, len(results))
	}
	return nil
}

// readInput resolves the diagram text from --source, a file argument, or
// stdin ("-" or no argument).
func readInput(args []string, source string) (string, error) {
	if source != "" {
		return source, nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseFormat validates a --format value early so errors surface before
// any server probing.
func parseFormat(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return pipeline.FormatPNG, nil
	}
	if err := pipeline.ValidateFormat(s); err != nil {
		return "", err
	}
	return s, nil
}
