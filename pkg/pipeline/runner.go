package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jmswint/plantbeam/pkg/diagram"
	"github.com/jmswint/plantbeam/pkg/render"
	"github.com/jmswint/plantbeam/pkg/render/local"
	"github.com/jmswint/plantbeam/pkg/server"
	"github.com/jmswint/plantbeam/pkg/token"
)

// Runner encapsulates pipeline execution. Both CLI and API use this to
// avoid duplicating resolve/encode/render logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Resolver *server.Resolver
	Renderer *render.Renderer
	Logger   *log.Logger
}

// NewRunner creates a runner.
// If resolver is nil, the default endpoint chain is used.
// If renderer is nil, an uncached renderer with default timeouts is used.
func NewRunner(resolver *server.Resolver, renderer *render.Renderer, logger *log.Logger) *Runner {
	if resolver == nil {
		resolver = server.NewResolver(nil)
	}
	if renderer == nil {
		renderer = render.NewRenderer(nil, nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Resolver: resolver,
		Renderer: renderer,
		Logger:   logger,
	}
}

// Execute runs the complete pipeline for one diagram source.
//
// The returned error covers option validation only; operational failures
// land in Result.Render.Err so callers can degrade to a skipped image.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if opts.Engine == EngineDOT {
		return r.executeDOT(ctx, opts)
	}

	// Detect on the raw source: after normalization every diagram starts
	// with the generic @startuml marker and typed markers are gone.
	typ := opts.Type
	if typ == "" {
		typ = diagram.Detect(opts.Source)
	}

	result := &Result{
		Type:   typ,
		Source: diagram.Normalize(opts.Source),
	}

	resolveStart := time.Now()
	ep, err := r.Resolver.Resolve(ctx)
	result.Stats.ResolveTime = time.Since(resolveStart)
	if err != nil {
		opts.Logger.Warn("no rendering endpoint reachable", "err", err)
		result.Render = unreachableResult(typ, opts.Format, err)
		return result, nil
	}
	result.Server = ep.Name

	source := result.Source
	if ep.Scheme == token.SchemeHex {
		// The public server resolves theme names case-sensitively.
		source = diagram.LowercaseThemes(source)
	}
	result.Token = token.Encode(source, ep.Scheme)

	opts.Logger.Debug("encoded diagram",
		"scheme", ep.Scheme,
		"type", typ,
		"token_len", len(result.Token))

	renderStart := time.Now()
	res := r.Renderer.Render(ctx, ep, result.Token, opts.renderOptions(typ))
	result.Render = res
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = res.CacheHit

	if res.Success {
		opts.Logger.Info("rendered diagram",
			"server", ep.Name,
			"type", typ,
			"path", res.Path,
			"cache_hit", res.CacheHit,
			"duration", result.Stats.RenderTime)
	} else {
		opts.Logger.Warn("render failed",
			"server", ep.Name,
			"type", typ,
			"err", res.Err)
	}
	return result, nil
}

// executeDOT renders a DOT source in-process, bypassing the endpoint
// chain entirely.
func (r *Runner) executeDOT(ctx context.Context, opts Options) (*Result, error) {
	typ := opts.Type
	if typ == "" {
		typ = diagram.TypeGeneric
	}
	result := &Result{
		Type:   typ,
		Source: opts.Source,
		Server: EngineDOT,
	}

	start := time.Now()
	svg, err := local.RenderSVG(ctx, opts.Source)
	if err != nil {
		opts.Logger.Warn("local dot render failed", "err", err)
		result.Render = render.Result{Server: EngineDOT, Type: typ, Format: FormatSVG, Err: err}
		result.Stats.RenderTime = time.Since(start)
		return result, nil
	}

	path, err := render.Persist(svg, opts.renderOptions(typ))
	result.Stats.RenderTime = time.Since(start)
	if err != nil {
		result.Render = render.Result{Server: EngineDOT, Type: typ, Format: FormatSVG, Err: err}
		return result, nil
	}

	result.Render = render.Result{
		Success:     true,
		Path:        path,
		Server:      EngineDOT,
		Type:        typ,
		Format:      FormatSVG,
		ContentType: "image/svg+xml",
	}
	opts.Logger.Info("rendered diagram locally", "path", path, "duration", result.Stats.RenderTime)
	return result, nil
}

// ExecuteText extracts diagram blocks from mixed text (prose, LLM output,
// fenced code) and renders each one, continuing past per-diagram
// failures. Text with no recognizable blocks is treated as one diagram.
func (r *Runner) ExecuteText(ctx context.Context, text string, opts Options) ([]*Result, error) {
	blocks := diagram.ExtractBlocks(text)
	if len(blocks) == 0 {
		blocks = []string{text}
	}

	results := make([]*Result, 0, len(blocks))
	for i, block := range blocks {
		o := opts
		o.Source = block
		o.validated = false
		if len(blocks) > 1 && o.Topic != "" {
			o.Topic = fmt.Sprintf("%s %d", opts.Topic, i+1)
		}
		res, err := r.Execute(ctx, o)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
