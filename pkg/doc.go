// Package pkg provides the core libraries for plantbeam diagram rendering.
//
// # Overview
//
// plantbeam turns PlantUML source into rendered images by encoding the
// source into compressed URL tokens and fetching the result from a chain
// of rendering servers. The pkg directory is organized into a few areas:
//
//  1. [diagram] - source handling (type detection, normalization, samples)
//  2. [token] - the PlantUML token encodings (deflate, hex, kroki)
//  3. [server] - the endpoint chain and liveness resolution
//  4. [render] - image fetching, caching, and persistence
//  5. [pipeline] - orchestration (detect → resolve → encode → render)
//  6. [synth] - prose-to-diagram synthesis
//
// # Architecture
//
// The typical data flow through plantbeam:
//
//	PlantUML source (or prose, via [synth])
//	         ↓
//	    [diagram] package (detect type, normalize markers)
//	         ↓
//	    [server] package (probe the chain, pick a live endpoint)
//	         ↓
//	    [token] package (encode for that endpoint's scheme)
//	         ↓
//	    [render] package (fetch, cache, write to disk)
//
// # Quick Start
//
// Most callers go through the pipeline:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source: "Bob -> Alice : hello",
//	    Topic:  "greeting",
//	})
//
// Supporting packages - [cache], [config], [errors], [httputil],
// [observability], [buildinfo] - carry the ambient concerns and are
// shared by the CLI and the HTTP API.
package pkg
