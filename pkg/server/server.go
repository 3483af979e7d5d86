// Package server describes rendering endpoints and chooses a live one.
//
// plantbeam knows three kinds of endpoints, tried in order: a self-hosted
// PlantUML server (usually the local Docker container), the public
// plantuml.com server, and kroki.io. Each carries its own token encoding
// scheme and URL shape, so the resolver's choice dictates how the diagram
// source is encoded downstream.
package server

import (
	"strings"

	"github.com/jmswint/plantbeam/pkg/token"
)

// HealthToken is a known-good pre-encoded minimal diagram
// ("Bob -> Alice : hello") in the native deflate scheme. Requesting it is
// the cheapest way to prove a PlantUML server is alive and rendering.
const HealthToken = "SyfFKj2rKt3CoKnELR1Io4ZDoSa70000"

// healthSource is the diagram probed against endpoints whose scheme is
// not the native deflate one; for those the token is computed, not fixed.
const healthSource = "@startuml\nBob -> Alice : hello\n@enduml"

// Endpoint describes one rendering server.
type Endpoint struct {
	// Name identifies the endpoint in logs and results ("local",
	// "public", "kroki").
	Name string

	// BaseURL is the server base, without a trailing slash.
	BaseURL string

	// Scheme is the token encoding this server expects.
	Scheme token.Scheme

	// Prefix is prepended to the token in the URL path when the server
	// needs a signal about the encoding used ("~h" for hex tokens on the
	// public server). It must match the scheme or the server will
	// misinterpret the token.
	Prefix string

	// PathPrefix is an extra path segment between the base URL and the
	// format ("plantuml" for kroki, empty for PlantUML servers).
	PathPrefix string
}

// RenderURL builds the fetch URL for an encoded token in the given
// output format.
func (e Endpoint) RenderURL(format, tok string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(e.BaseURL, "/"))
	if e.PathPrefix != "" {
		sb.WriteString("/")
		sb.WriteString(e.PathPrefix)
	}
	sb.WriteString("/")
	sb.WriteString(format)
	sb.WriteString("/")
	sb.WriteString(e.Prefix)
	sb.WriteString(tok)
	return sb.String()
}

// HealthURL builds the liveness probe URL for this endpoint.
func (e Endpoint) HealthURL() string {
	if e.Scheme == token.SchemeDeflate {
		return e.RenderURL("png", HealthToken)
	}
	return e.RenderURL("png", token.Encode(healthSource, e.Scheme))
}

// Default endpoint locations, overridable through configuration.
const (
	DefaultLocalURL  = "http://localhost:8080"
	DefaultPublicURL = "http://www.plantuml.com/plantuml"
	DefaultKrokiURL  = "https://kroki.io"
)

// DefaultEndpoints returns the standard fallback chain: local Docker
// server, then public plantuml.com, then kroki.io.
//
// The public server uses hex tokens rather than the compressed scheme
// because hex has proven more reliable against it, at the cost of longer
// URLs.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{
			Name:    "local",
			BaseURL: DefaultLocalURL,
			Scheme:  token.SchemeDeflate,
		},
		{
			Name:    "public",
			BaseURL: DefaultPublicURL,
			Scheme:  token.SchemeHex,
			Prefix:  "~h",
		},
		{
			Name:       "kroki",
			BaseURL:    DefaultKrokiURL,
			Scheme:     token.SchemeKroki,
			PathPrefix: "plantuml",
		},
	}
}
