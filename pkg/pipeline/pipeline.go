// Package pipeline provides the core diagram rendering pipeline.
//
// This package implements the complete normalize → detect → resolve →
// encode → fetch → persist flow that can be used by CLI and API
// components. By centralizing this logic, we ensure consistent behavior
// across all entry points and avoid code duplication.
//
// # Architecture
//
// A render run consists of four stages:
//
//  1. Prepare: detect the diagram type and normalize the source markers
//  2. Resolve: probe the endpoint chain and pick the first live server
//  3. Encode: compress the source into the token scheme the server expects
//  4. Render: fetch the image, cache it, and persist it to disk
//
// The resolver's choice drives the encoding, so steps 2 and 3 cannot be
// reordered: the local server takes raw-DEFLATE tokens, the public server
// takes hex, and kroki takes zlib plus standard base64.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	opts := pipeline.Options{
//	    Source: "@startuml\nA -> B: hi\n@enduml",
//	    Format: "png",
//	    Topic:  "greeting",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Render.Success {
//	    fmt.Println(result.Render.Path)
//	}
//
// Execute returns an error only for invalid options. Operational
// failures, including an unreachable server chain and server-side syntax
// errors, are reported through Result.Render.Err so callers can treat
// diagram rendering as best-effort.
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jmswint/plantbeam/pkg/diagram"
	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/render"
)

// Engine constants select how a source is rendered.
const (
	// EnginePlantUML renders via a PlantUML-speaking HTTP endpoint.
	EnginePlantUML = "plantuml"

	// EngineDOT renders Graphviz DOT sources in-process. SVG only.
	EngineDOT = "dot"
)

// Format constants for output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
}

// ValidEngines is the set of supported rendering engines.
var ValidEngines = map[string]bool{
	EnginePlantUML: true,
	EngineDOT:      true,
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source is the diagram source. For EnginePlantUML it may carry or
	// omit @start/@end markers; normalization adds them. For EngineDOT it
	// must be a DOT graph.
	Source string `json:"source"`

	// Type overrides diagram type detection when set.
	Type diagram.Type `json:"type,omitempty"`

	// Format is the output image format (png or svg). Defaults to png.
	Format string `json:"format,omitempty"`

	// Engine selects the rendering engine. Defaults to EnginePlantUML.
	Engine string `json:"engine,omitempty"`

	// Topic is slugged into output filenames.
	Topic string `json:"topic,omitempty"`

	// OutputDir overrides the default output directory.
	OutputDir string `json:"output_dir,omitempty"`

	// Refresh bypasses the render cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Source is the normalized diagram source that was rendered.
	Source string

	// Type is the detected or requested diagram type.
	Type diagram.Type

	// Token is the encoded form sent to the server. Empty for EngineDOT
	// and when no endpoint was reachable.
	Token string

	// Server names the endpoint that served the render.
	Server string

	// Render is the renderer's outcome, including the written path or
	// the failure.
	Render render.Result

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks whether the image came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ResolveTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: png, svg)", format)
	}
	return nil
}

// ValidateEngine checks that an engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidEngine,
			"invalid engine: %q (must be one of: plantuml, dot)", engine)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if strings.TrimSpace(o.Source) == "" {
		return errors.New(errors.ErrCodeInvalidSource, "diagram source is empty")
	}

	if o.Engine == "" {
		o.Engine = EnginePlantUML
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}

	if o.Engine == EngineDOT {
		if o.Format != "" && o.Format != FormatSVG {
			return errors.New(errors.ErrCodeInvalidFormat,
				"the dot engine only renders svg, got %q", o.Format)
		}
		o.Format = FormatSVG
	}
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}

	if o.Type != "" && !o.Type.Valid() {
		return errors.New(errors.ErrCodeInvalidType, "invalid diagram type: %q", o.Type)
	}
	if o.OutputDir == "" {
		o.OutputDir = render.DefaultOutputDir
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// renderOptions converts pipeline options to renderer options.
func (o *Options) renderOptions(typ diagram.Type) render.Options {
	return render.Options{
		Format:    o.Format,
		Type:      typ,
		Topic:     o.Topic,
		OutputDir: o.OutputDir,
		Refresh:   o.Refresh,
	}
}

// unreachableResult builds a failed render result when no endpoint
// answered the probe chain.
func unreachableResult(typ diagram.Type, format string, err error) render.Result {
	return render.Result{
		Type:   typ,
		Format: format,
		Err:    err,
	}
}
