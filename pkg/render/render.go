package render

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jmswint/plantbeam/pkg/cache"
	"github.com/jmswint/plantbeam/pkg/diagram"
	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/httputil"
	"github.com/jmswint/plantbeam/pkg/observability"
	"github.com/jmswint/plantbeam/pkg/server"
)

// DefaultOutputDir is where rendered diagrams land unless overridden.
const DefaultOutputDir = "generated_tweets/diagrams/plantuml"

// DefaultFormat is the image format used when none is requested.
const DefaultFormat = "png"

// Options configures a single render.
type Options struct {
	// Format is the requested image format ("png" or "svg").
	// Defaults to DefaultFormat.
	Format string

	// Type labels the diagram in the output filename.
	Type diagram.Type

	// Topic is slugged into the output filename.
	Topic string

	// OutputDir overrides DefaultOutputDir.
	OutputDir string

	// Refresh bypasses the render cache for this call.
	Refresh bool
}

// Result reports the outcome of a render. Failures travel in Err rather
// than panicking so callers can skip the image and keep going.
type Result struct {
	Success     bool
	Path        string       // file the image was written to
	URL         string       // fetch URL, useful for debugging
	Server      string       // endpoint name that served the render
	Type        diagram.Type // detected or requested diagram type
	Format      string
	ContentType string
	CacheHit    bool
	Err         error
}

// Renderer fetches encoded diagrams over HTTP and writes the image bytes
// to disk. Safe for concurrent use.
type Renderer struct {
	client *http.Client
	cache  cache.Cache
}

// NewRenderer creates a renderer. A nil client gets the shared client with
// the default fetch timeout; a nil cache disables caching.
func NewRenderer(client *http.Client, c cache.Cache) *Renderer {
	if client == nil {
		client = httputil.NewClient(httputil.DefaultTimeout)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Renderer{client: client, cache: c}
}

// Render fetches the encoded token from the endpoint and persists the
// image under opts.OutputDir.
func (r *Renderer) Render(ctx context.Context, ep server.Endpoint, tok string, opts Options) Result {
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.Type == "" {
		opts.Type = diagram.TypeGeneric
	}

	res := Result{
		URL:    ep.RenderURL(opts.Format, tok),
		Server: ep.Name,
		Type:   opts.Type,
		Format: opts.Format,
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, ep.Name, opts.Format)

	key := cache.RenderKey(tok, opts.Format, string(ep.Scheme))
	if !opts.Refresh {
		if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, key)
			return r.finish(ctx, res, data, opts, start, true)
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	data, contentType, err := r.fetch(ctx, ep.Name, res.URL)
	res.ContentType = contentType
	if err != nil {
		res.Err = err
		observability.Pipeline().OnRenderComplete(ctx, ep.Name, opts.Format, 0, time.Since(start), err)
		return res
	}

	if !opts.Refresh {
		if err := r.cache.Set(ctx, key, data, cache.TTLRender); err == nil {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}

	return r.finish(ctx, res, data, opts, start, false)
}

func (r *Renderer) finish(ctx context.Context, res Result, data []byte, opts Options, start time.Time, cached bool) Result {
	path, err := r.persist(data, opts)
	if err != nil {
		res.Err = err
		observability.Pipeline().OnRenderComplete(ctx, res.Server, opts.Format, 0, time.Since(start), err)
		return res
	}
	res.Success = true
	res.Path = path
	res.CacheHit = cached
	observability.Pipeline().OnRenderComplete(ctx, res.Server, opts.Format, len(data), time.Since(start), nil)
	return res
}

func (r *Renderer) persist(data []byte, opts Options) (string, error) {
	return Persist(data, opts)
}

// Persist writes image bytes to a fresh file under opts.OutputDir,
// creating the directory if needed. Returns the written path.
func Persist(data []byte, opts Options) (string, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "create output dir %s", opts.OutputDir)
	}
	path := filepath.Join(opts.OutputDir, Filename(opts.Type, opts.Topic, opts.Format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return path, nil
}
