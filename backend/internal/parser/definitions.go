package parser

import (
	"regexp"
	"strings"
)

// Matches a clause stating `"Thuật ngữ" là định nghĩa`. Curly quotes appear
// in documents pasted from word processors, so both forms are accepted.
var definitionPattern = regexp.MustCompile(`^["“]([^"”]+)["”]\s+là\s+(.+)`)

const interpretationHeading = "giải thích từ ngữ"

// extractDefinitions collects term definitions from the interpretation
// article ("Giải thích từ ngữ", conventionally Điều 3): each clause opening
// with a quoted term followed by "là" contributes one entry. Clauses that do
// not follow that form are skipped.
func extractDefinitions(nodes []*Component) map[string]string {
	definitions := map[string]string{}
	var walk func(nodes []*Component)
	walk = func(nodes []*Component) {
		for _, node := range nodes {
			if node.Type == TypeDieu && strings.Contains(strings.ToLower(node.Title), interpretationHeading) {
				for _, child := range node.Children {
					if child.Type != TypeKhoan {
						continue
					}
					if term, def, ok := matchDefinition(child); ok {
						definitions[term] = def
					}
				}
			}
			walk(node.Children)
		}
	}
	walk(nodes)
	return definitions
}

// matchDefinition checks the clause's marker-line text first, then the body
// (a clause whose definition starts on the following line).
func matchDefinition(clause *Component) (term, def string, ok bool) {
	for _, text := range []string{clause.Title, clause.Body} {
		if m := definitionPattern.FindStringSubmatch(text); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}
