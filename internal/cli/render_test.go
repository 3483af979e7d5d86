package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadInput(t *testing.T) {
	t.Run("inline source wins", func(t *testing.T) {
		got, err := readInput([]string{"ignored.puml"}, "A -> B")
		if err != nil {
			t.Fatal(err)
		}
		if got != "A -> B" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("file argument", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "d.puml")
		if err := os.WriteFile(path, []byte("@startuml\nA -> B\n@enduml\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := readInput([]string{path}, "")
		if err != nil {
			t.Fatal(err)
		}
		if got == "" {
			t.Error("expected file contents")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := readInput([]string{"/does/not/exist.puml"}, ""); err == nil {
			t.Error("expected error")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "png", false},
		{"png", "png", false},
		{"SVG", "svg", false},
		{" svg ", "svg", false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		got, err := parseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
