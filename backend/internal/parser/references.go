package parser

import "regexp"

var (
	// Mentions of a provision, optionally qualified by clause/point and
	// optionally followed by the named source document up to the next
	// punctuation: "khoản 2 Điều 6", "Điều 12 của Luật Ban hành văn bản...".
	componentRefPattern = regexp.MustCompile(
		`(?i)(?:điểm\s+[a-zđ]\s+)?(?:khoản\s+\d+\s+)?Điều\s+\d+` +
			`(?:\s+(?:của\s+)?(?:Bộ luật|Luật|Nghị định|Thông tư|Pháp lệnh|Nghị quyết|Quyết định)[^.;,\n]*)?`)

	// Legal-basis citations in the preamble: "Căn cứ Luật Tổ chức Chính phủ
	// ngày 19 tháng 6 năm 2015;".
	legalBasisPattern = regexp.MustCompile(`(?m)^Căn cứ\s+[^;\n]+`)
)

// extractReferences scans the full text for cross-reference mentions and
// returns the distinct matched spans in first-occurrence order. Deduplication
// is by exact string equality of the span, not semantic identity.
func extractReferences(text string) []string {
	refs := []string{}
	seen := make(map[string]bool)

	for _, pattern := range []*regexp.Regexp{legalBasisPattern, componentRefPattern} {
		for _, match := range pattern.FindAllString(text, -1) {
			if seen[match] {
				continue
			}
			seen[match] = true
			refs = append(refs, match)
		}
	}

	return refs
}
