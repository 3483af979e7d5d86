package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jmswint/plantbeam/pkg/buildinfo"
	"github.com/jmswint/plantbeam/pkg/diagram"
	perrors "github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/pipeline"
	"github.com/jmswint/plantbeam/pkg/server"
	"github.com/jmswint/plantbeam/pkg/synth"
)

// DefaultServeAddr is the default listen address for the HTTP API.
const DefaultServeAddr = ":8421"

// serveCommand creates the serve command: a JSON API over the same
// pipeline the CLI uses.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendering pipeline as a JSON API",
		Long: `Serve the rendering pipeline as a JSON API.

Endpoints:
  GET  /healthz      liveness and version
  GET  /api/servers  probe results for the endpoint chain
  POST /api/render   render a PlantUML source
  POST /api/synth    synthesize a diagram from a description

All state is request-scoped; the process holds no mutable globals, so
multiple renders can run concurrently.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, store, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			a := &api{
				runner:   runner,
				resolver: server.NewResolver(c.Config.Endpoints()),
				logger:   c.Logger,
				defaults: c.pipelineOptions(),
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           a.routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := newShutdownContext()
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			c.Logger.Info("serving", "addr", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", DefaultServeAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	return cmd
}

// api holds the handlers' collaborators. The runner and resolver are safe
// for concurrent use, so one api value serves all requests.
type api struct {
	runner   *pipeline.Runner
	resolver *server.Resolver
	logger   *log.Logger
	defaults pipeline.Options
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/healthz", a.handleHealthz)
	r.Get("/api/servers", a.handleServers)
	r.Post("/api/render", a.handleRender)
	r.Post("/api/synth", a.handleSynth)

	return r
}

// requestLogger attaches a request-scoped logger and logs completions.
func (a *api) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := a.logger.With("request_id", middleware.GetReqID(r.Context()))
		ctx := withLogger(r.Context(), reqLogger)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		reqLogger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (a *api) handleServers(w http.ResponseWriter, r *http.Request) {
	statuses := a.resolver.Status(r.Context())

	type serverStatus struct {
		Name      string `json:"name"`
		URL       string `json:"url"`
		Scheme    string `json:"scheme"`
		Live      bool   `json:"live"`
		LatencyMS int64  `json:"latency_ms,omitempty"`
	}
	out := make([]serverStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, serverStatus{
			Name:      s.Endpoint.Name,
			URL:       s.Endpoint.BaseURL,
			Scheme:    string(s.Endpoint.Scheme),
			Live:      s.Live,
			LatencyMS: s.Latency.Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// renderRequest is the body of POST /api/render.
type renderRequest struct {
	Source  string `json:"source"`
	Type    string `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Engine  string `json:"engine,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

// renderResponse is the body of render and synth responses.
type renderResponse struct {
	ID       string `json:"id"`
	Success  bool   `json:"success"`
	Type     string `json:"type"`
	Format   string `json:"format,omitempty"`
	Server   string `json:"server,omitempty"`
	Path     string `json:"path,omitempty"`
	URL      string `json:"url,omitempty"`
	Source   string `json:"source,omitempty"`
	CacheHit bool   `json:"cache_hit"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

func (a *api) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, perrors.New(perrors.ErrCodeInvalidSource, "invalid JSON body: %v", err))
		return
	}

	opts := a.options(req)
	opts.Logger = loggerFromContext(r.Context())
	result, err := a.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse(result, false))
}

// synthRequest is the body of POST /api/synth.
type synthRequest struct {
	Description string `json:"description"`
	Type        string `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Step        int    `json:"step,omitempty"`
	TotalSteps  int    `json:"total_steps,omitempty"`
	Format      string `json:"format,omitempty"`
	Engine      string `json:"engine,omitempty"`

	// Render controls whether the synthesized source is also rendered.
	// When false only the source comes back.
	Render bool `json:"render,omitempty"`
}

func (a *api) handleSynth(w http.ResponseWriter, r *http.Request) {
	var req synthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, perrors.New(perrors.ErrCodeInvalidSource, "invalid JSON body: %v", err))
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, perrors.New(perrors.ErrCodeInvalidSource, "description is empty"))
		return
	}

	src, typ := synth.Generate(req.Description, synth.Options{
		Type:       diagram.Type(req.Type),
		Title:      req.Title,
		Step:       req.Step,
		TotalSteps: req.TotalSteps,
	})

	if !req.Render {
		writeJSON(w, http.StatusOK, renderResponse{
			ID:      uuid.NewString(),
			Success: true,
			Type:    string(typ),
			Source:  src,
		})
		return
	}

	opts := a.options(renderRequest{
		Source: src,
		Type:   string(typ),
		Format: req.Format,
		Engine: req.Engine,
		Topic:  req.Title,
	})
	opts.Logger = loggerFromContext(r.Context())
	result, err := a.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse(result, true))
}

func (a *api) options(req renderRequest) pipeline.Options {
	opts := a.defaults
	opts.Source = req.Source
	opts.Type = diagram.Type(req.Type)
	opts.Topic = req.Topic
	opts.Engine = req.Engine
	opts.Refresh = req.Refresh
	if req.Format != "" {
		opts.Format = req.Format
	}
	return opts
}

func resultResponse(result *pipeline.Result, includeSource bool) renderResponse {
	resp := renderResponse{
		ID:       uuid.NewString(),
		Success:  result.Render.Success,
		Type:     string(result.Type),
		Format:   result.Render.Format,
		Server:   result.Server,
		Path:     result.Render.Path,
		URL:      result.Render.URL,
		CacheHit: result.Render.CacheHit,
	}
	if includeSource {
		resp.Source = result.Source
	}
	if result.Render.Err != nil {
		resp.Error = perrors.UserMessage(result.Render.Err)
		resp.Code = string(perrors.GetCode(result.Render.Err))
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": perrors.UserMessage(err),
		"code":  string(perrors.GetCode(err)),
	})
}

func newShutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
