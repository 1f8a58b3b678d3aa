package jsonc

// ExtractSchemaField returns the value of a top-level "$schema" string
// member, if the document root is an object that has one.
func ExtractSchemaField(root *Node) (string, bool) {
	if root == nil || root.Kind != KindObject {
		return "", false
	}
	for _, m := range root.Members {
		if m.Key.Value == "$schema" && m.Value.Kind == KindString {
			return m.Value.Value, true
		}
	}
	return "", false
}

// ExtractSchemaFieldFromSource parses src and extracts its "$schema"
// field in one step, discarding syntax errors — callers that only need
// schema auto-detection don't care whether the rest of the document is
// well-formed yet.
func ExtractSchemaFieldFromSource(src []byte) (string, bool) {
	root, _ := Parse(src)
	return ExtractSchemaField(root)
}
