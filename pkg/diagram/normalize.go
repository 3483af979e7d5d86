package diagram

import (
	"regexp"
	"strings"
)

const (
	// StartMarker and EndMarker are the canonical wrapper pair. PlantUML
	// infers the diagram kind from the body, so the bare markers suffice
	// for every type.
	StartMarker = "@startuml"
	EndMarker   = "@enduml"
)

var (
	startMarkerRe = regexp.MustCompile(`(?i)@start[a-z]*[ \t]*\n?`)
	endMarkerRe   = regexp.MustCompile(`(?i)@end[a-z]*[ \t]*\n?`)
)

// Normalize produces exactly one well-formed diagram unit from raw source.
//
// Any existing start/end marker pairs are stripped (case-insensitively,
// however many there are), surrounding whitespace is trimmed, and the
// body is re-wrapped with the canonical marker pair. Normalizing an
// already-normalized source returns it unchanged.
func Normalize(source string) string {
	body := startMarkerRe.ReplaceAllString(source, "")
	body = endMarkerRe.ReplaceAllString(body, "")
	body = strings.TrimSpace(body)
	return StartMarker + "\n" + body + "\n" + EndMarker
}

var themeRe = regexp.MustCompile(`!theme\s+(\w+)`)

// LowercaseThemes rewrites "!theme X" directives with a lowercased theme
// name. The public plantuml.com server only recognizes lowercase theme
// names.
func LowercaseThemes(source string) string {
	return themeRe.ReplaceAllStringFunc(source, func(m string) string {
		name := themeRe.FindStringSubmatch(m)[1]
		return "!theme " + strings.ToLower(name)
	})
}
