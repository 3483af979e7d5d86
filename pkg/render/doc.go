// Package render fetches encoded diagrams from a rendering server and
// persists the resulting images.
//
// # Overview
//
// A [Renderer] takes an endpoint chosen by the server resolver plus an
// encoded token and performs the HTTP fetch, content validation, caching,
// and file persistence for one diagram:
//
//	r := render.NewRenderer(nil, fileCache)
//	res := r.Render(ctx, endpoint, tok, render.Options{
//	    Format: "png",
//	    Type:   diagram.TypeSequence,
//	    Topic:  "auth flow",
//	})
//	if !res.Success {
//	    log.Warn("render failed", "err", res.Err)
//	}
//
// Render never panics and never lets a failure escape as anything but a
// [Result] value. Rendering is a best-effort enrichment step for callers,
// so a broken server or malformed diagram must degrade to a skipped image,
// not a crashed run.
//
// # Error pages
//
// PlantUML servers report syntax errors as HTML pages, often with a 200
// status. Any response whose Content-Type does not include "image" is
// treated as a failure, and the readable text of the HTML body is carried
// into the error message (truncated) so users see the server's diagnostic
// instead of a tag soup.
//
// # Local fallback
//
// The [local] subpackage renders DOT sources in-process via Graphviz, used
// as a last resort when no remote endpoint is reachable.
//
// [local]: github.com/jmswint/plantbeam/pkg/render/local
package render
