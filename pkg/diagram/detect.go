package diagram

import "strings"

// typeMarkers maps each diagram type to its explicit start marker. The
// bare "@startuml" marker maps to generic and sits last in the [Types]
// precedence order, so a named marker always wins over it.
var typeMarkers = map[Type]string{
	TypeSequence:   "@startsequence",
	TypeClass:      "@startclass",
	TypeComponent:  "@startcomponent",
	TypeDeployment: "@startdeployment",
	TypeActivity:   "@startactivity",
	TypeState:      "@startstate",
	TypeUsecase:    "@startusecase",
	TypeObject:     "@startobject",
	TypeGeneric:    "@startuml",
}

// Detect classifies diagram source into exactly one [Type].
//
// Explicit start markers win over keyword sniffing and are checked in the
// order of [Types]. When no marker matches, keywords decide:
//
//   - "class" without an arrow token → class
//   - an arrow token or "participant" → sequence
//   - "component" or a bracket token → component
//   - "activity" or "start" → activity
//
// Anything else is generic. This is a heuristic, not a parser; treat a
// wrong answer as a soft failure that only affects cosmetic choices.
func Detect(source string) Type {
	lower := strings.ToLower(source)

	for _, t := range Types {
		marker, ok := typeMarkers[t]
		if ok && strings.Contains(lower, marker) {
			return t
		}
	}

	hasArrow := strings.Contains(lower, "->")
	switch {
	case strings.Contains(lower, "class") && !hasArrow:
		return TypeClass
	case hasArrow || strings.Contains(lower, "participant"):
		return TypeSequence
	case strings.Contains(lower, "component") || strings.Contains(lower, "["):
		return TypeComponent
	case strings.Contains(lower, "activity") || strings.Contains(lower, "start"):
		return TypeActivity
	}
	return TypeGeneric
}

// proseKeywords maps diagram types to the vocabulary that suggests them in
// free-form prose. Checked in order; first hit wins.
var proseKeywords = []struct {
	t     Type
	words []string
}{
	{TypeSequence, []string{"flow", "request", "response", "sends", "receives"}},
	{TypeClass, []string{"class", "inheritance", "extends", "implements"}},
	{TypeComponent, []string{"component", "module", "service", "system"}},
	{TypeDeployment, []string{"deploy", "server", "node", "cluster"}},
	{TypeActivity, []string{"activity", "process", "workflow", "step"}},
	{TypeState, []string{"state", "transition", "status"}},
}

// DetectFromProse guesses which diagram type best fits a natural-language
// description. Used by the synthesizer to pick a template when the caller
// does not specify one.
func DetectFromProse(text string) Type {
	lower := strings.ToLower(text)
	for _, pk := range proseKeywords {
		for _, w := range pk.words {
			if strings.Contains(lower, w) {
				return pk.t
			}
		}
	}
	return TypeGeneric
}
