// Package annotate walks a JSON Schema document in parallel with a JSON
// Pointer into a validated instance, collecting the schema annotations
// (title, description, examples, default, enum) that apply at that
// pointer. It backs the hover handler: hovering a value in a document
// shows whatever the schema says about the corresponding location.
package annotate

import (
	"fmt"
	"strconv"
	"strings"
)

// Annotation is the descriptive metadata a schema attaches to one
// location, gathered from the schema keywords that apply there.
type Annotation struct {
	Title       string
	Description string
	Default     any
	Examples    []any
	Enum        []any
	Type        string // JSON Schema "type", if a single string; "" otherwise
}

func (a Annotation) IsEmpty() bool {
	return a.Title == "" && a.Description == "" && a.Default == nil &&
		len(a.Examples) == 0 && len(a.Enum) == 0 && a.Type == ""
}

// Walk descends schemaDoc (the decoded root schema document) following
// pointer's segments through "properties" and "prefixItems"/"items", and
// returns the annotation attached to the schema subtree at that
// location.
//
// $ref resolution is restricted to fragment-only references ($ref
// starting with "#") as an explicit security boundary: this walker never
// makes a network or filesystem access of its own on the hover path, no
// matter what a schema's $ref claims to point to.
func Walk(schemaDoc any, pointer string) (Annotation, error) {
	node, ok := schemaDoc.(map[string]any)
	if !ok {
		return Annotation{}, fmt.Errorf("root schema is not an object")
	}

	visited := map[string]bool{}
	node, err := resolveRefs(schemaDoc, node, visited)
	if err != nil {
		return Annotation{}, err
	}

	if pointer != "" {
		for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
			tok = unescapeToken(tok)
			node, err = descend(schemaDoc, node, tok, visited)
			if err != nil {
				return Annotation{}, err
			}
			if node == nil {
				return Annotation{}, nil
			}
		}
	}

	return extractAnnotation(node), nil
}

// descend moves from an object-schema node into the sub-schema that
// governs member tok, following "properties" for object instances or
// "prefixItems"/"items" for array instances. tok is only ever a document
// segment (a property name or array index), never a schema keyword.
//
// "patternProperties" and "additionalProperties" are deliberately
// unhandled: a property not covered by an exact "properties" entry
// returns no annotation rather than falling back to a wildcard schema.
// An array element past the "prefixItems" entries falls back to "items".
func descend(root any, node map[string]any, tok string, visited map[string]bool) (map[string]any, error) {
	if props, ok := node["properties"].(map[string]any); ok {
		if sub, ok := props[tok].(map[string]any); ok {
			return resolveRefs(root, sub, visited)
		}
	}
	if idx, err := strconv.Atoi(tok); err == nil {
		if prefixItems, ok := node["prefixItems"].([]any); ok && idx >= 0 && idx < len(prefixItems) {
			if sub, ok := prefixItems[idx].(map[string]any); ok {
				return resolveRefs(root, sub, visited)
			}
		}
		if items, ok := node["items"].(map[string]any); ok {
			return resolveRefs(root, items, visited)
		}
	}
	return nil, nil
}

// resolveRefs follows a chain of fragment-only "$ref" keywords, refusing
// (with an error) any $ref that isn't a "#"-rooted fragment, and
// detecting cycles via visited fragment pointers.
func resolveRefs(root any, node map[string]any, visited map[string]bool) (map[string]any, error) {
	for {
		ref, ok := node["$ref"].(string)
		if !ok {
			return node, nil
		}
		if !strings.HasPrefix(ref, "#") {
			return nil, fmt.Errorf("refusing to follow non-fragment $ref %q", ref)
		}
		if visited[ref] {
			return nil, fmt.Errorf("cyclic $ref %q", ref)
		}
		visited[ref] = true

		target, err := resolveFragment(root, ref)
		if err != nil {
			return nil, err
		}
		node = target
	}
}

func resolveFragment(root any, ref string) (map[string]any, error) {
	pointer := strings.TrimPrefix(ref, "#")
	cur := root
	if pointer == "" {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("$ref target is not an object")
		}
		return m, nil
	}
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = unescapeToken(tok)
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot resolve $ref %q: not an object at %q", ref, tok)
		}
		next, ok := m[tok]
		if !ok {
			return nil, fmt.Errorf("cannot resolve $ref %q: no member %q", ref, tok)
		}
		cur = next
	}
	m, ok := cur.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("$ref %q does not resolve to an object", ref)
	}
	return m, nil
}

func unescapeToken(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}

func extractAnnotation(node map[string]any) Annotation {
	var a Annotation
	if s, ok := node["title"].(string); ok {
		a.Title = s
	}
	if s, ok := node["description"].(string); ok {
		a.Description = s
	}
	if v, ok := node["default"]; ok {
		a.Default = v
	}
	if arr, ok := node["examples"].([]any); ok {
		a.Examples = arr
	}
	if arr, ok := node["enum"].([]any); ok {
		a.Enum = arr
	}
	if s, ok := node["type"].(string); ok {
		a.Type = s
	}
	return a
}
