// Package parser converts raw Vietnamese legal document text into a
// hierarchical component tree with classification metadata and lexical
// cross-references. Parsing is a pure transformation: no state survives
// between invocations and concurrent calls need no locking.
package parser

// Parse runs the full pipeline over raw text: classification, structural
// segmentation, reference extraction and term-definition collection. An empty
// input yields an empty tree
// and default metadata, never an error; input validation belongs to the
// caller.
func Parse(text string) *ParsedDocument {
	structure := segment(text)
	return &ParsedDocument{
		Metadata:        classify(text),
		Structure:       structure,
		CrossReferences: extractReferences(text),
		DinhNghia:       extractDefinitions(structure),
	}
}

// CountComponents returns the total number of components in the forest,
// counted depth-first.
func CountComponents(nodes []*Component) int {
	count := len(nodes)
	for _, node := range nodes {
		count += CountComponents(node.Children)
	}
	return count
}
