// Package synth turns free-form descriptions into skeleton diagram source.
//
// This is heuristic scaffolding, not understanding: capitalized tokens
// become entities, verb phrases become edges, and each diagram type has a
// template that arranges whatever was extracted. When nothing usable is
// found, a small fixed set of placeholder entities keeps the output a
// valid diagram. Treat the result as a draft for human or LLM refinement,
// never as authoritative.
package synth

import (
	"fmt"
	"strings"

	"github.com/jmswint/plantbeam/pkg/diagram"
)

// Caps keep generated diagrams readable on a phone screen.
const (
	maxEntities     = 8
	maxParticipants = 6
	maxInteractions = 10
	maxComponents   = 12
	maxClasses      = 8
	maxSteps        = 10
)

// defaultDirection is emitted into every generated diagram; vertical
// layouts read better in tweet attachments.
const defaultDirection = "top to bottom direction"

// Options configures one synthesis run.
type Options struct {
	// Type selects the template. Empty means guess from the
	// description's vocabulary via [diagram.DetectFromProse].
	Type diagram.Type

	// Title, when set, becomes a title line in the diagram.
	Title string

	// Step and TotalSteps tag the diagram with its position in a thread
	// ("Step 2 of 5"). Both must be positive to take effect.
	Step, TotalSteps int
}

// Generate synthesizes diagram source from a natural-language description.
// The returned type is the one actually used, which matters when Options
// left it to the heuristic. The output is always a normalized, renderable
// unit, even for empty input.
func Generate(description string, opts Options) (string, diagram.Type) {
	typ := opts.Type
	if typ == "" || typ == diagram.TypeGeneric {
		typ = diagram.DetectFromProse(description)
	}

	lines := []string{diagram.StartMarker, defaultDirection}
	if title := titleLine(opts); title != "" {
		lines = append(lines, title)
	}
	lines = append(lines, "")

	switch typ {
	case diagram.TypeSequence:
		lines = append(lines, sequenceBody(description)...)
	case diagram.TypeClass:
		lines = append(lines, classBody(description)...)
	case diagram.TypeActivity:
		lines = append(lines, activityBody(description)...)
	default:
		// Component layout doubles as the generic fallback.
		lines = append(lines, componentBody(description)...)
		if typ != diagram.TypeComponent && typ != diagram.TypeDeployment {
			typ = diagram.TypeGeneric
		}
	}

	lines = append(lines, diagram.EndMarker)
	return strings.Join(lines, "\n"), typ
}

func titleLine(opts Options) string {
	switch {
	case opts.Title != "" && opts.Step > 0 && opts.TotalSteps > 0:
		return fmt.Sprintf("title Step %d of %d - %s", opts.Step, opts.TotalSteps, opts.Title)
	case opts.Title != "":
		return "title " + opts.Title
	default:
		return ""
	}
}

func sequenceBody(description string) []string {
	entities := extractEntities(description)
	interactions := extractInteractions(description)

	var lines []string
	for _, e := range entities[:min(len(entities), maxParticipants)] {
		lines = append(lines, "participant "+e)
	}
	lines = append(lines, "")

	if len(interactions) == 0 {
		return append(lines,
			"Client -> Server: Request",
			"Server -> Database: Query",
			"Database --> Server: Response",
			"Server --> Client: Result",
		)
	}
	return append(lines, interactions...)
}

func componentBody(description string) []string {
	components := extractComponents(description)

	// Group by rough architectural layer.
	var ui, services, data []string
	for _, c := range components {
		lower := strings.ToLower(c)
		switch {
		case containsAny(lower, "ui", "frontend", "client", "web"):
			ui = append(ui, c)
		case containsAny(lower, "database", "db", "storage", "cache"):
			data = append(data, c)
		default:
			services = append(services, c)
		}
	}

	var lines []string
	lines = appendPackage(lines, "Frontend", "component", ui)
	lines = appendPackage(lines, "Services", "component", services)
	lines = appendPackage(lines, "Data Layer", "database", data)

	if len(components) >= 2 {
		lines = append(lines, "", fmt.Sprintf("[%s] --> [%s]", components[0], components[1]))
	}
	return lines
}

func appendPackage(lines []string, name, kind string, members []string) []string {
	if len(members) == 0 {
		return lines
	}
	lines = append(lines, fmt.Sprintf("package %q {", name))
	for _, m := range members {
		lines = append(lines, fmt.Sprintf("  %s [%s]", kind, m))
	}
	return append(lines, "}")
}

func classBody(description string) []string {
	classes := extractClasses(description)

	var lines []string
	for _, cls := range classes[:min(len(classes), 5)] {
		lines = append(lines,
			"class "+cls+" {",
			"  +id: String",
			"  +name: String",
			"  +process(): void",
			"}",
		)
	}
	if len(classes) >= 2 {
		lines = append(lines, fmt.Sprintf("%s --> %s : uses", classes[0], classes[1]))
	}
	return lines
}

func activityBody(description string) []string {
	steps := extractSteps(description)

	lines := []string{"start"}
	for _, s := range steps {
		lines = append(lines, ":"+s+";")
	}
	return append(lines, "stop")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
