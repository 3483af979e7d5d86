package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/token"
)

func TestRenderURL(t *testing.T) {
	tests := []struct {
		name string
		e    Endpoint
		want string
	}{
		{
			name: "local plain token",
			e:    Endpoint{Name: "local", BaseURL: "http://localhost:8080", Scheme: token.SchemeDeflate},
			want: "http://localhost:8080/png/ABC123",
		},
		{
			name: "public hex prefix",
			e:    Endpoint{Name: "public", BaseURL: "http://www.plantuml.com/plantuml", Scheme: token.SchemeHex, Prefix: "~h"},
			want: "http://www.plantuml.com/plantuml/png/~hABC123",
		},
		{
			name: "kroki path prefix",
			e:    Endpoint{Name: "kroki", BaseURL: "https://kroki.io", Scheme: token.SchemeKroki, PathPrefix: "plantuml"},
			want: "https://kroki.io/plantuml/png/ABC123",
		},
		{
			name: "trailing slash trimmed",
			e:    Endpoint{Name: "local", BaseURL: "http://localhost:8080/", Scheme: token.SchemeDeflate},
			want: "http://localhost:8080/png/ABC123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.RenderURL("png", "ABC123"); got != tt.want {
				t.Errorf("RenderURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHealthURLUsesKnownToken(t *testing.T) {
	e := Endpoint{Name: "local", BaseURL: "http://localhost:8080", Scheme: token.SchemeDeflate}
	if got := e.HealthURL(); !strings.HasSuffix(got, "/png/"+HealthToken) {
		t.Errorf("HealthURL = %q, want suffix /png/%s", got, HealthToken)
	}
}

func TestHealthURLComputedForOtherSchemes(t *testing.T) {
	e := Endpoint{Name: "kroki", BaseURL: "https://kroki.io", Scheme: token.SchemeKroki, PathPrefix: "plantuml"}
	got := e.HealthURL()
	tok := strings.TrimPrefix(got, "https://kroki.io/plantuml/png/")
	src, err := token.DecodeKroki(tok)
	if err != nil {
		t.Fatalf("health token does not decode: %v", err)
	}
	if !strings.Contains(src, "Bob -> Alice") {
		t.Errorf("health diagram = %q", src)
	}
}

// healthServer answers 200 to any GET, imitating a live PlantUML server.
func healthServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// deadServer returns a base URL that refuses connections.
func deadServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestResolvePrefersPrimary(t *testing.T) {
	primary := healthServer(t)
	fallback := healthServer(t)

	r := NewResolver([]Endpoint{
		{Name: "local", BaseURL: primary.URL, Scheme: token.SchemeDeflate},
		{Name: "public", BaseURL: fallback.URL, Scheme: token.SchemeHex, Prefix: "~h"},
	})

	e, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.Name != "local" {
		t.Errorf("resolved %q, want local", e.Name)
	}
}

func TestResolveFallsBack(t *testing.T) {
	fallback := healthServer(t)

	r := NewResolver([]Endpoint{
		{Name: "local", BaseURL: deadServer(t), Scheme: token.SchemeDeflate},
		{Name: "public", BaseURL: fallback.URL, Scheme: token.SchemeHex, Prefix: "~h"},
	})

	e, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.Name != "public" {
		t.Errorf("resolved %q, want public", e.Name)
	}
}

func TestResolveNon200IsNotLive(t *testing.T) {
	erroring := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer erroring.Close()
	fallback := healthServer(t)

	r := NewResolver([]Endpoint{
		{Name: "local", BaseURL: erroring.URL, Scheme: token.SchemeDeflate},
		{Name: "public", BaseURL: fallback.URL, Scheme: token.SchemeHex, Prefix: "~h"},
	})

	e, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.Name != "public" {
		t.Errorf("resolved %q, want public", e.Name)
	}
}

func TestResolveAllDead(t *testing.T) {
	r := NewResolver([]Endpoint{
		{Name: "local", BaseURL: deadServer(t), Scheme: token.SchemeDeflate},
		{Name: "public", BaseURL: deadServer(t), Scheme: token.SchemeHex},
	})

	_, err := r.Resolve(context.Background())
	if err == nil {
		t.Fatal("expected error when no endpoint is live")
	}
	if !errors.Is(err, errors.ErrCodeServerUnreachable) {
		t.Errorf("error code = %q, want SERVER_UNREACHABLE", errors.GetCode(err))
	}
}

func TestStatusProbesAll(t *testing.T) {
	live := healthServer(t)

	r := NewResolver([]Endpoint{
		{Name: "local", BaseURL: deadServer(t), Scheme: token.SchemeDeflate},
		{Name: "public", BaseURL: live.URL, Scheme: token.SchemeHex},
	})

	statuses := r.Status(context.Background())
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	if statuses[0].Live {
		t.Error("dead endpoint reported live")
	}
	if !statuses[1].Live {
		t.Errorf("live endpoint reported dead: %v", statuses[1].Err)
	}
}

func TestDefaultEndpointsShape(t *testing.T) {
	eps := DefaultEndpoints()
	if len(eps) != 3 {
		t.Fatalf("got %d endpoints, want 3", len(eps))
	}
	if eps[0].Name != "local" || eps[1].Name != "public" || eps[2].Name != "kroki" {
		t.Errorf("unexpected chain order: %v %v %v", eps[0].Name, eps[1].Name, eps[2].Name)
	}
	if eps[1].Prefix != "~h" {
		t.Errorf("public prefix = %q, want ~h", eps[1].Prefix)
	}
	if eps[2].PathPrefix != "plantuml" {
		t.Errorf("kroki path prefix = %q", eps[2].PathPrefix)
	}
}
