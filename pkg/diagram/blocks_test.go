package diagram

import (
	"strings"
	"testing"
)

func TestExtractBlocks(t *testing.T) {
	text := "Here is the architecture:\n\n" +
		"@startuml\nAlice -> Bob: Hello\n@enduml\n\n" +
		"And a class view:\n\n" +
		"```plantuml\nclass User\n```\n\n" +
		"```puml\nclass Order\n```\n"

	blocks := ExtractBlocks(text)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3: %q", len(blocks), blocks)
	}
	if !strings.Contains(blocks[0], "Alice -> Bob") {
		t.Errorf("marker block missing content: %q", blocks[0])
	}
	if !strings.Contains(blocks[1], "class User") {
		t.Errorf("fenced plantuml block missing content: %q", blocks[1])
	}
	if !strings.Contains(blocks[2], "class Order") {
		t.Errorf("fenced puml block missing content: %q", blocks[2])
	}
}

func TestExtractBlocksTypedMarkers(t *testing.T) {
	text := "@startsequence\nA -> B\n@endsequence"
	blocks := ExtractBlocks(text)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0] != text {
		t.Errorf("block = %q, want full span", blocks[0])
	}
}

func TestExtractBlocksNone(t *testing.T) {
	if blocks := ExtractBlocks("no diagrams in this prose"); len(blocks) != 0 {
		t.Errorf("got %d blocks, want 0", len(blocks))
	}
}

func TestSamples(t *testing.T) {
	for _, typ := range SampleTypes() {
		src, ok := Sample(typ)
		if !ok || strings.TrimSpace(src) == "" {
			t.Errorf("Sample(%q) missing or empty", typ)
			continue
		}
		// Samples are bodies; normalization must wrap them cleanly.
		normalized := Normalize(src)
		if Normalize(normalized) != normalized {
			t.Errorf("sample %q does not normalize idempotently", typ)
		}
	}

	if _, ok := Sample(TypeUsecase); ok {
		t.Error("unexpected sample for usecase")
	}
}
