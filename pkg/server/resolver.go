package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/httputil"
	"github.com/jmswint/plantbeam/pkg/observability"
)

// ProbeTimeout bounds a single liveness probe. Probes are meant to fail
// fast so that an unreachable local server costs the user a couple of
// seconds, not the full render timeout.
const ProbeTimeout = 2 * time.Second

// Resolver chooses a live rendering endpoint from an ordered chain.
//
// Liveness is probed on every Resolve call; nothing is cached across
// calls. Render calls are interactive and infrequent, so the extra probe
// round-trip is cheaper than serving a stale liveness verdict. Within one
// call an endpoint is probed at most once and never revisited after the
// resolver has moved past it.
type Resolver struct {
	endpoints []Endpoint
	client    *http.Client
}

// NewResolver creates a Resolver over the given endpoint chain.
// A nil or empty chain falls back to [DefaultEndpoints].
func NewResolver(endpoints []Endpoint) *Resolver {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints()
	}
	return &Resolver{
		endpoints: endpoints,
		client:    httputil.NewClient(ProbeTimeout),
	}
}

// Endpoints returns the resolver's chain in probe order.
func (r *Resolver) Endpoints() []Endpoint {
	return r.endpoints
}

// Resolve probes the chain in order and returns the first live endpoint.
// If no endpoint answers, it returns a SERVER_UNREACHABLE error; callers
// are expected to degrade gracefully rather than abort their own flow.
func (r *Resolver) Resolve(ctx context.Context) (Endpoint, error) {
	observability.Pipeline().OnResolveStart(ctx)
	start := time.Now()

	var lastErr error
	for _, e := range r.endpoints {
		if err := r.Probe(ctx, e); err != nil {
			lastErr = err
			continue
		}
		observability.Pipeline().OnResolveComplete(ctx, e.Name, time.Since(start), nil)
		return e, nil
	}

	err := errors.Wrap(errors.ErrCodeServerUnreachable, lastErr, "no rendering endpoint reachable")
	observability.Pipeline().OnResolveComplete(ctx, "", time.Since(start), err)
	return Endpoint{}, err
}

// Probe issues one liveness check against an endpoint. A 200 response to
// the health diagram means the server is up and actually rendering, not
// just accepting connections.
func (r *Resolver) Probe(ctx context.Context, e Endpoint) error {
	probeURL := e.HealthURL()
	host, path := splitURL(probeURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build probe request")
	}

	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
		return errors.Wrap(errors.ErrCodeServerUnreachable, err, "%s not reachable", e.Name)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return errors.New(errors.ErrCodeServerUnreachable, "%s health check returned status %d", e.Name, resp.StatusCode)
	}
	return nil
}

// Status reports liveness for every endpoint in the chain. Unlike
// Resolve, it does not stop at the first live endpoint.
func (r *Resolver) Status(ctx context.Context) []EndpointStatus {
	out := make([]EndpointStatus, 0, len(r.endpoints))
	for _, e := range r.endpoints {
		start := time.Now()
		err := r.Probe(ctx, e)
		out = append(out, EndpointStatus{
			Endpoint: e,
			Live:     err == nil,
			Latency:  time.Since(start),
			Err:      err,
		})
	}
	return out
}

// EndpointStatus is the result of probing one endpoint.
type EndpointStatus struct {
	Endpoint Endpoint
	Live     bool
	Latency  time.Duration
	Err      error
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return raw, ""
	}
	return u.Host, u.Path
}
