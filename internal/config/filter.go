package config

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter evaluates a workspace-relative path against an ordered list of
// glob patterns. Patterns are evaluated in order; a pattern prefixed with
// "!" excludes a previously included path. The last matching pattern wins,
// so later entries in Files can re-include something an earlier "!" pattern
// excluded.
type Filter struct {
	entries []filterEntry
}

type filterEntry struct {
	exclude bool
	raw     string
}

// NewFilter compiles the raw pattern list from a jvl.json "files" array.
func NewFilter(rawPatterns []string) *Filter {
	f := &Filter{entries: make([]filterEntry, 0, len(rawPatterns))}
	for _, p := range rawPatterns {
		exclude := false
		if strings.HasPrefix(p, "!") {
			exclude = true
			p = p[1:]
		}
		p = path.Clean(filepath.ToSlash(p))
		f.entries = append(f.entries, filterEntry{exclude: exclude, raw: p})
	}
	return f
}

// Match reports whether relPath (workspace-relative, slash-separated)
// should be included, per the last pattern that matched it. A path that
// matches nothing is not included.
func (f *Filter) Match(relPath string) bool {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "/")

	matched := false
	included := false
	for _, e := range f.entries {
		ok, err := doublestar.Match(e.raw, relPath)
		if err != nil || !ok {
			continue
		}
		matched = true
		included = !e.exclude
	}
	return matched && included
}

// Patterns returns the raw include/exclude pattern strings, in evaluation
// order, with a leading "!" restored on exclusions.
func (f *Filter) Patterns() []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		if e.exclude {
			out[i] = "!" + e.raw
		} else {
			out[i] = e.raw
		}
	}
	return out
}
