package jsonc

import (
	"strconv"
	"strings"
)

// OffsetToPointer maps a byte offset into the source text to the JSON
// Pointer (RFC 6901) of the smallest node containing it. It returns
// ok=false when the offset falls on a structural token (braces, brackets,
// commas, colons, or whitespace) rather than on a key or value, matching
// the behavior a hover request needs: hovering whitespace has nothing to
// annotate.
func OffsetToPointer(root *Node, offset int) (pointer string, ok bool) {
	if root == nil || !root.Range.Contains(offset) && offset != root.Range.End {
		return "", false
	}
	segs, ok := walk(root, offset)
	if !ok {
		return "", false
	}
	return encodePointer(segs), true
}

func walk(n *Node, offset int) ([]string, bool) {
	switch n.Kind {
	case KindObject:
		for _, m := range n.Members {
			if m.KeyRange.Contains(offset) {
				return []string{m.Key.Value}, true
			}
			if m.Value.Range.Contains(offset) {
				sub, ok := walk(&m.Value, offset)
				if !ok {
					return nil, false
				}
				return append([]string{m.Key.Value}, sub...), true
			}
		}
		return nil, false
	case KindArray:
		for i := range n.Elements {
			el := &n.Elements[i]
			if el.Range.Contains(offset) {
				sub, ok := walk(el, offset)
				idx := strconv.Itoa(i)
				if !ok {
					return nil, false
				}
				return append([]string{idx}, sub...), true
			}
		}
		return nil, false
	default:
		if n.Range.Contains(offset) {
			return []string{}, true
		}
		return nil, false
	}
}

func encodePointer(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(escapeToken(s))
	}
	return b.String()
}

func escapeToken(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

func unescapeToken(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}

// ResolvePointer walks root according to an RFC 6901 JSON Pointer and
// returns the value node it addresses.
func ResolvePointer(root *Node, pointer string) (*Node, bool) {
	if pointer == "" {
		return root, true
	}
	if pointer[0] != '/' {
		return nil, false
	}
	cur := root
	for _, tok := range strings.Split(pointer[1:], "/") {
		tok = unescapeToken(tok)
		switch cur.Kind {
		case KindObject:
			found := false
			for i := range cur.Members {
				if cur.Members[i].Key.Value == tok {
					cur = &cur.Members[i].Value
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case KindArray:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(cur.Elements) {
				return nil, false
			}
			cur = &cur.Elements[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// ResolvePointerKey is like ResolvePointer but, when the pointer's final
// segment addresses an object member, returns the range of the member's
// key token instead of its value. This is used to anchor diagnostics on
// the property name rather than its (possibly multi-line) value.
func ResolvePointerKey(root *Node, pointer string) (Range, bool) {
	if pointer == "" || pointer[0] != '/' {
		return Range{}, false
	}
	segs := strings.Split(pointer[1:], "/")
	cur := root
	for i, tok := range segs {
		tok = unescapeToken(tok)
		last := i == len(segs)-1
		switch cur.Kind {
		case KindObject:
			found := false
			for j := range cur.Members {
				if cur.Members[j].Key.Value == tok {
					if last {
						return cur.Members[j].KeyRange, true
					}
					cur = &cur.Members[j].Value
					found = true
					break
				}
			}
			if !found {
				return Range{}, false
			}
		case KindArray:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(cur.Elements) {
				return Range{}, false
			}
			if last {
				return cur.Elements[idx].Range, true
			}
			cur = &cur.Elements[idx]
		default:
			return Range{}, false
		}
	}
	return cur.Range, true
}
