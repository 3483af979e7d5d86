package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/jmswint/plantbeam/pkg/pipeline"
	"github.com/jmswint/plantbeam/pkg/render"
	"github.com/jmswint/plantbeam/pkg/server"
	"github.com/jmswint/plantbeam/pkg/token"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfakeimagedata")

// newTestAPI wires the API against a fake rendering endpoint.
func newTestAPI(t *testing.T, outputDir string) (*api, *httptest.Server) {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	t.Cleanup(upstream.Close)

	endpoints := []server.Endpoint{{
		Name:    "upstream",
		BaseURL: upstream.URL,
		Scheme:  token.SchemeDeflate,
	}}
	resolver := server.NewResolver(endpoints)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(resolver, render.NewRenderer(upstream.Client(), nil), logger)

	return &api{
		runner:   runner,
		resolver: resolver,
		logger:   logger,
		defaults: pipeline.Options{OutputDir: outputDir, Logger: logger},
	}, upstream
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	a, _ := newTestAPI(t, t.TempDir())
	rec := httptest.NewRecorder()
	a.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestAPIRender(t *testing.T) {
	a, _ := newTestAPI(t, t.TempDir())
	rec := postJSON(t, a.routes(), "/api/render", renderRequest{
		Source: "Bob -> Alice : hello",
		Topic:  "greeting",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatalf("render failed: %s", resp.Error)
	}
	if resp.ID == "" || resp.Server != "upstream" || resp.Type != "sequence" {
		t.Errorf("response = %+v", resp)
	}
}

func TestAPIRenderRejectsBadInput(t *testing.T) {
	a, _ := newTestAPI(t, t.TempDir())
	routes := a.routes()

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader([]byte("{nope")))
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("empty source", func(t *testing.T) {
		rec := postJSON(t, routes, "/api/render", renderRequest{Source: "   "})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["code"] != "INVALID_SOURCE" {
			t.Errorf("code = %q", body["code"])
		}
	})
}

func TestAPISynthSourceOnly(t *testing.T) {
	a, _ := newTestAPI(t, t.TempDir())
	rec := postJSON(t, a.routes(), "/api/synth", synthRequest{
		Description: "Client sends Server the payload",
		Type:        "sequence",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Type != "sequence" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Source == "" || resp.Path != "" {
		t.Errorf("expected source without a rendered file: %+v", resp)
	}
}

func TestAPISynthWithRender(t *testing.T) {
	a, _ := newTestAPI(t, t.TempDir())
	rec := postJSON(t, a.routes(), "/api/synth", synthRequest{
		Description: "Client sends Server the payload",
		Type:        "sequence",
		Render:      true,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatalf("render failed: %s", resp.Error)
	}
	if resp.Path == "" || resp.Source == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestAPIServers(t *testing.T) {
	a, _ := newTestAPI(t, t.TempDir())
	rec := httptest.NewRecorder()
	a.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/servers", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body []struct {
		Name string `json:"name"`
		Live bool   `json:"live"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body) != 1 || !body[0].Live || body[0].Name != "upstream" {
		t.Errorf("body = %+v", body)
	}
}
