package synth

import (
	"regexp"
	"strings"
)

// Extraction regexes. These match surface patterns, nothing deeper:
// capitalized multi-character tokens with optional role suffixes, and
// "A verb B" / "A -> B" phrases.
var (
	entityRe = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:Service|Server|Client|API|DB|System|Module)?\b`)

	verbInteractionRe  = regexp.MustCompile(`(?i)(\w+)\s+(sends?|calls?|requests?|queries?|returns?|responds?)\s+(?:to\s+)?(\w+)`)
	arrowInteractionRe = regexp.MustCompile(`(\w+)\s*(->|-->)\s*(\w+)`)

	componentRoleRe  = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:Service|Component|Module|System|Server|Client|API|Gateway|Database|Cache))\b`)
	componentShortRe = regexp.MustCompile(`\b(UI|API|DB|Auth|Payment|Order|User|Admin|Frontend|Backend)\b`)

	classRe = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:Class|Model|Entity|Service|Controller|Repository)?\b`)

	numberedStepRe = regexp.MustCompile(`\d+\.\s+([^.\n]+)`)
	orderedStepRe  = regexp.MustCompile(`(?i)(?:First|Then|Next|Finally),?\s+([^.\n]+)`)
)

// extractEntities finds candidate participant names: capitalized tokens
// longer than two characters, deduplicated in first-seen order. When the
// text yields fewer than three, the generic Client/Server/Database triple
// pads the list so diagrams never come out empty.
func extractEntities(text string) []string {
	entities := dedupe(entityRe.FindAllString(text, -1), func(w string) bool {
		return len(w) > 2
	})

	if len(entities) < 3 {
		for _, d := range []string{"Client", "Server", "Database"} {
			if !contains(entities, d) {
				entities = append(entities, d)
			}
		}
	}
	return limit(entities, maxEntities)
}

// interaction is one extracted edge between two entities.
type interaction struct {
	From, To, Verb string
}

// extractInteractionPairs finds "A verb B" and "A -> B" phrases.
func extractInteractionPairs(text string) []interaction {
	var pairs []interaction
	for _, m := range verbInteractionRe.FindAllStringSubmatch(text, -1) {
		pairs = append(pairs, interaction{
			From: capitalize(m[1]),
			To:   capitalize(m[3]),
			Verb: m[2],
		})
	}
	// Arrow phrases carry no verb; the arrow itself is the relation.
	for _, m := range arrowInteractionRe.FindAllStringSubmatch(text, -1) {
		pairs = append(pairs, interaction{
			From: capitalize(m[1]),
			To:   capitalize(m[3]),
		})
	}
	if len(pairs) > maxInteractions {
		pairs = pairs[:maxInteractions]
	}
	return pairs
}

// extractInteractions formats extracted pairs as sequence arrows,
// labelled with the verb where one exists.
func extractInteractions(text string) []string {
	var interactions []string
	for _, p := range extractInteractionPairs(text) {
		line := p.From + " -> " + p.To
		if p.Verb != "" {
			line += ": " + p.Verb
		}
		interactions = append(interactions, line)
	}
	return interactions
}

// extractComponents finds component-like names: role-suffixed capitalized
// tokens plus a short list of common architecture words.
func extractComponents(text string) []string {
	var raw []string
	for _, m := range componentRoleRe.FindAllStringSubmatch(text, -1) {
		raw = append(raw, m[1])
	}
	for _, m := range componentShortRe.FindAllStringSubmatch(text, -1) {
		raw = append(raw, m[1])
	}

	components := dedupe(raw, nil)
	if len(components) == 0 {
		components = []string{"Frontend", "APIGateway", "Service", "Database"}
	}
	return limit(components, maxComponents)
}

// extractClasses finds class-like names, requiring at least four
// characters to filter out prose words like "The".
func extractClasses(text string) []string {
	classes := dedupe(classRe.FindAllString(text, -1), func(w string) bool {
		return len(w) > 3
	})
	if len(classes) == 0 {
		classes = []string{"User", "Order", "Product"}
	}
	return limit(classes, maxClasses)
}

// extractSteps finds process steps: numbered items and ordering phrases
// (First/Then/Next/Finally). Steps longer than 50 characters are dropped
// as unfit for an activity node label.
func extractSteps(text string) []string {
	var steps []string
	for _, re := range []*regexp.Regexp{numberedStepRe, orderedStepRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			step := strings.TrimSpace(m[1])
			if step != "" && len(step) < 50 {
				steps = append(steps, step)
			}
		}
	}
	if len(steps) == 0 {
		steps = []string{"Initialize", "Process Request", "Validate", "Execute", "Return Response"}
	}
	return limit(steps, maxSteps)
}

// dedupe keeps first occurrences, optionally filtered by keep.
func dedupe(words []string, keep func(string) bool) []string {
	seen := make(map[string]bool, len(words))
	var out []string
	for _, w := range words {
		if seen[w] || (keep != nil && !keep(w)) {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func limit(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
