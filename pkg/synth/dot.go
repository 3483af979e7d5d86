package synth

import (
	"bytes"
	"fmt"
)

// GenerateDOT synthesizes a Graphviz digraph from a natural-language
// description, using the same entity and interaction extraction as the
// PlantUML templates. The output feeds the in-process DOT engine, which
// needs no rendering server at all, the offline last resort.
func GenerateDOT(description string) string {
	entities := extractEntities(description)
	pairs := extractInteractionPairs(description)

	if len(pairs) == 0 {
		pairs = []interaction{
			{From: "Client", To: "Server", Verb: "request"},
			{From: "Server", To: "Database", Verb: "query"},
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	// Declare extracted entities first so isolated ones still appear.
	for _, e := range entities {
		fmt.Fprintf(&buf, "  %q;\n", e)
	}
	buf.WriteString("\n")

	for _, p := range pairs {
		if p.Verb != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", p.From, p.To, p.Verb)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p.From, p.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
