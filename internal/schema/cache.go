package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CompileResult is what Cache.GetOrCompile returns for a source: the
// compiled, shareable validator, any warnings emitted while producing it,
// and (for URL sources) how the disk cache was used.
type CompileResult struct {
	Schema   *jsonschema.Schema
	Doc      any // the decoded root schema document, for the hover annotation walker
	Warnings []FetchWarning
	Outcome  *CacheOutcome // nil for file sources, or for a source compiled by another caller first
}

// Cache is a process-wide cache of compiled schema validators, keyed by
// Source. Each distinct source is loaded and compiled exactly once, even
// under concurrent access from many validation workers; later callers for
// the same source block until the first caller's compilation finishes and
// then share its result.
type Cache struct {
	mu    sync.Mutex
	slots map[Source]*slot
}

type slot struct {
	once   sync.Once
	result CompileResult
	err    error

	// warningsTaken ensures only the caller that triggered compilation
	// receives the warnings and cache outcome; everyone else already has
	// a validator sitting in memory and doesn't need to see them again.
	warningsTaken atomic.Bool
}

// NewCache constructs an empty schema cache.
func NewCache() *Cache {
	return &Cache{slots: make(map[Source]*slot)}
}

// Evict removes source's slot, forcing the next GetOrCompile for it to
// recompile from scratch. A CompileResult already handed out to a caller
// keeps its own *jsonschema.Schema and decoded Doc regardless — those
// live on the returned value, not in the slot — so evicting a key never
// invalidates validators already in use.
func (c *Cache) Evict(source Source) {
	c.mu.Lock()
	delete(c.slots, source)
	c.mu.Unlock()
}

// GetOrCompile returns the compiled validator for source, compiling it if
// this is the first request for that source. noCache bypasses the on-disk
// HTTP cache for URL sources (it does not bypass this in-memory slot
// cache: a second call for the same source within one process still
// shares the first compilation).
func (c *Cache) GetOrCompile(source Source, noCache bool) (CompileResult, error) {
	c.mu.Lock()
	s, ok := c.slots[source]
	if !ok {
		s = &slot{}
		c.slots[source] = s
	}
	c.mu.Unlock()

	s.once.Do(func() {
		s.result, s.err = compile(source, noCache)
	})

	isFirst := !s.warningsTaken.Swap(true)
	if s.err != nil {
		return CompileResult{}, s.err
	}
	if isFirst {
		return s.result, nil
	}
	return CompileResult{Schema: s.result.Schema, Doc: s.result.Doc}, nil
}

func compile(source Source, noCache bool) (CompileResult, error) {
	var content string
	var warnings []FetchWarning
	var outcome *CacheOutcome

	if source.isURL() {
		c, w, o, err := loadURL(source.URL, noCache)
		if err != nil {
			return CompileResult{}, fmt.Errorf("fetch schema from %q: %w", source.URL, err)
		}
		content, warnings, outcome = c, w, &o
	} else {
		raw, err := os.ReadFile(source.File)
		if err != nil {
			return CompileResult{}, fmt.Errorf("read schema file %q: %w", source.File, err)
		}
		content = string(raw)
	}

	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return CompileResult{}, fmt.Errorf("parse schema %q: %w", source.String(), err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.UseLoader(cachingLoader{noCache: noCache})
	if err := compiler.AddResource(source.String(), doc); err != nil {
		return CompileResult{}, fmt.Errorf("register schema %q: %w", source.String(), err)
	}
	sch, err := compiler.Compile(source.String())
	if err != nil {
		return CompileResult{}, fmt.Errorf("compile schema %q: %w", source.String(), err)
	}

	return CompileResult{Schema: sch, Doc: doc, Warnings: warnings, Outcome: outcome}, nil
}

// cachingLoader routes any $ref fetches the compiler needs to perform
// (references to schemas beyond the root document) through the same
// disk-cache-backed HTTP loading logic as top-level schema sources.
// Warnings and cache outcomes from nested fetches are not surfaced —
// only the root schema's load result is reported to the caller.
type cachingLoader struct {
	noCache bool
}

func (l cachingLoader) Load(url string) (any, error) {
	content, _, _, err := loadURL(url, l.noCache)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse referenced schema %q: %w", url, err)
	}
	return doc, nil
}
