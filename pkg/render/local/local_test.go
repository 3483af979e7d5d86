package local

import (
	"context"
	"strings"
	"testing"
)

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), `digraph G { a -> b; }`)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, "<svg") {
		t.Error("output is not SVG")
	}
	if !strings.Contains(out, `viewBox="0 0 `) {
		t.Error("viewBox not normalized to origin")
	}
}

func TestRenderSVGBadSource(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "not a graph {{{"); err == nil {
		t.Error("expected error for invalid DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites offset viewBox",
			in:   `<svg width="100pt" height="50pt" viewBox="0.00 0.00 200.00 100.00">`,
			want: `viewBox="0 0 200.00 100.00" width="200" height="100"`,
		},
		{
			name: "no viewBox passes through",
			in:   `<svg width="10" height="10">`,
			want: `<svg width="10" height="10">`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(normalizeViewBox([]byte(tt.in)))
			if !strings.Contains(got, tt.want) {
				t.Errorf("normalizeViewBox = %q, want substring %q", got, tt.want)
			}
		})
	}
}
