package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmswint/plantbeam/pkg/diagram"
	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/pipeline"
	"github.com/jmswint/plantbeam/pkg/synth"
)

// synthOpts holds the command-line flags for the synth command.
type synthOpts struct {
	diagType   string // target diagram type; empty triggers detection or the picker
	title      string // diagram title line
	step       int    // step number for multi-part threads
	totalSteps int    // total steps for multi-part threads
	format     string // output format
	outputDir  string // output directory override
	engine     string // plantuml (default) or dot
	noRender   bool   // print the synthesized source instead of rendering
	noCache    bool   // disable the render cache
	noInput    bool   // never prompt interactively
}

// synthCommand creates the synth command: turn a plain-text description
// into a diagram.
func (c *CLI) synthCommand() *cobra.Command {
	var opts synthOpts

	cmd := &cobra.Command{
		Use:   "synth [description]",
		Short: "Synthesize a diagram from a plain-text description",
		Long: `Synthesize a diagram from a plain-text description.

Entities, interactions, components, and steps are extracted from the text
with heuristics and assembled into a PlantUML skeleton of the chosen
type. Without --type the type is guessed from the wording; in an
interactive terminal a picker is shown instead.

With --engine dot the description becomes a Graphviz digraph rendered
in-process, which works without any PlantUML server.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.TrimSpace(strings.Join(args, " "))
			if description == "" {
				text, err := readInput(nil, "")
				if err != nil {
					return err
				}
				description = strings.TrimSpace(text)
			}
			if description == "" {
				return errors.New(errors.ErrCodeInvalidSource, "description is empty")
			}
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}
			opts.format = format
			return c.runSynth(cmd.Context(), description, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.diagType, "type", "t", "", "diagram type: sequence, class, component, activity, ...")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().IntVar(&opts.step, "step", 0, "step number (shown in the title)")
	cmd.Flags().IntVar(&opts.totalSteps, "total-steps", 0, "total number of steps")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png (default), svg")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "rendering engine: plantuml (default), dot")
	cmd.Flags().BoolVar(&opts.noRender, "no-render", false, "print the synthesized source without rendering")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.noInput, "no-input", false, "never prompt; guess the type from the text")

	return cmd
}

func (c *CLI) runSynth(ctx context.Context, description string, opts *synthOpts) error {
	typ := diagram.Type(opts.diagType)
	if typ != "" && !typ.Valid() {
		return errors.New(errors.ErrCodeInvalidType, "invalid diagram type: %q", opts.diagType)
	}

	if typ == "" && !opts.noInput && isInteractive() {
		picked, err := pickDiagramType(description)
		if err != nil {
			return err
		}
		typ = picked
	}

	if opts.engine == pipeline.EngineDOT {
		return c.renderSynthesized(ctx, synth.GenerateDOT(description), typ, opts)
	}

	src, generated := synth.Generate(description, synth.Options{
		Type:       typ,
		Title:      opts.title,
		Step:       opts.step,
		TotalSteps: opts.totalSteps,
	})
	return c.renderSynthesized(ctx, src, generated, opts)
}

func (c *CLI) renderSynthesized(ctx context.Context, src string, typ diagram.Type, opts *synthOpts) error {
	if opts.noRender {
		fmt.Println(src)
		return nil
	}

	runner, store, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	popts := c.pipelineOptions()
	popts.Source = src
	popts.Type = typ
	popts.Format = opts.format
	popts.Engine = opts.engine
	if opts.title != "" {
		popts.Topic = opts.title
	}
	if opts.outputDir != "" {
		popts.OutputDir = opts.outputDir
	}

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if !result.Render.Success {
		printError("Render failed: %s", errors.UserMessage(result.Render.Err))
		printDetail("Synthesized source:")
		fmt.Println(result.Source)
		return fmt.Errorf("render failed")
	}

	printSuccess("Rendered %s diagram", result.Type)
	printFile(result.Render.Path)
	printRenderStats(string(result.Type), result.Server, result.Render.CacheHit)
	return nil
}

// isInteractive reports whether stdin is attached to a terminal.
func isInteractive() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
