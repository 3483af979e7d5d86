package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmswint/plantbeam/pkg/diagram"
)

// maxSlugLen keeps topic slugs from dominating the filename.
const maxSlugLen = 40

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalizes a topic into a filename-safe fragment.
func Slug(topic string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(topic), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "diagram"
	}
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}

// Filename builds a collision-resistant name for a rendered diagram:
//
//	plantuml_{type}_{topic}_{timestamp}_{suffix}.{format}
//
// The timestamp keeps listings chronological; the random suffix keeps
// same-second renders of the same topic from clobbering each other.
func Filename(t diagram.Type, topic, format string) string {
	ts := time.Now().Format("20060102_150405")
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("plantuml_%s_%s_%s_%s.%s", t, Slug(topic), ts, suffix, format)
}
