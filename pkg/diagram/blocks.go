package diagram

import "regexp"

var (
	markerBlockRe = regexp.MustCompile(`(?is)@start[a-z]*.*?@end[a-z]*`)
	fencedUMLRe   = regexp.MustCompile("(?s)```(?:plantuml|uml|puml)\\s*(.*?)```")
)

// ExtractBlocks pulls diagram source blocks out of mixed text, such as an
// LLM reply or a markdown document. It recognizes @start…@end spans and
// fenced code blocks tagged plantuml, uml, or puml, in that order of
// appearance per pattern. Returned blocks are raw; callers normalize them
// before use.
func ExtractBlocks(text string) []string {
	var blocks []string
	blocks = append(blocks, markerBlockRe.FindAllString(text, -1)...)
	for _, m := range fencedUMLRe.FindAllStringSubmatch(text, -1) {
		blocks = append(blocks, m[1])
	}
	return blocks
}
