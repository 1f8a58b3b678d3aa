package config

import (
	"fmt"
	"path/filepath"

	"github.com/sargunv/jvl/internal/schema"
)

// CompiledMappings pre-compiles a Config's schema mappings so resolving
// the schema for a given file is a linear scan over compiled globs
// rather than re-parsing patterns on every lookup.
type CompiledMappings struct {
	entries []compiledEntry
}

type compiledEntry struct {
	filter  *Filter
	mapping SchemaMapping
}

// CompileMappings pre-compiles every schema mapping in cfg.
func CompileMappings(cfg Config) *CompiledMappings {
	entries := make([]compiledEntry, len(cfg.Schemas))
	for i, m := range cfg.Schemas {
		entries[i] = compiledEntry{filter: NewFilter(m.Files), mapping: m}
	}
	return &CompiledMappings{entries: entries}
}

// Resolve returns the schema source for fileRelative (project-root
// relative, slash-separated), per the first mapping whose glob patterns
// match it, or ok=false if no mapping applies.
func (c *CompiledMappings) Resolve(fileRelative, projectRoot string) (schema.Source, bool) {
	for _, e := range c.entries {
		if !e.filter.Match(fileRelative) {
			continue
		}
		if e.mapping.isURL() {
			return schema.Source{URL: e.mapping.URL}, true
		}
		return schema.Source{File: filepath.Clean(filepath.Join(projectRoot, e.mapping.Path))}, true
	}
	return schema.Source{}, false
}

func (c *CompiledMappings) String() string {
	return fmt.Sprintf("CompiledMappings(%d entries)", len(c.entries))
}
