package config

import (
	"sync"

	"github.com/sargunv/jvl/internal/diagnostic"
)

// Compiled bundles a loaded Config with its pre-compiled schema mappings,
// its pre-compiled file filter, and the project root it was discovered
// relative to.
type Compiled struct {
	Config       Config
	Mappings     *CompiledMappings
	Filter       *Filter
	ProjectRoot  string
	ConfigPath   string // "" if no jvl.json was found and Config is the default
	LoadWarnings []diagnostic.Warning
}

// Cache memoizes loaded/compiled configs keyed by their canonical
// jvl.json path (or "" for the no-config-found default), so many
// documents under the same project share one Config instance and one
// set of compiled globs. Entries are invalidated explicitly by
// Invalidate when a watcher observes the underlying file change.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Compiled
}

// NewCache constructs an empty config cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Compiled)}
}

// GetOrLoad returns the compiled config for configPath, loading and
// compiling it if this is the first request since the cache was created
// or since the entry was last invalidated. configPath == "" means "no
// jvl.json was found"; the default config is used and cached under that
// key so repeated lookups for unconfigured projects don't reload
// anything.
func (c *Cache) GetOrLoad(configPath, projectRoot string) (*Compiled, error) {
	c.mu.Lock()
	if entry, ok := c.entries[configPath]; ok {
		c.mu.Unlock()
		return entry, nil
	}
	c.mu.Unlock()

	var cfg Config
	var err error
	if configPath == "" {
		cfg = Default()
	} else {
		cfg, err = Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	compiled := &Compiled{
		Config:      cfg,
		Mappings:    CompileMappings(cfg),
		Filter:      NewFilter(cfg.Files),
		ProjectRoot: projectRoot,
		ConfigPath:  configPath,
	}

	c.mu.Lock()
	// Another goroutine may have raced us to load the same entry; keep
	// whichever was inserted first so callers observe one another's
	// results predictably instead of the last writer silently winning.
	if existing, ok := c.entries[configPath]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.entries[configPath] = compiled
	c.mu.Unlock()

	return compiled, nil
}

// Invalidate drops the cached entry for configPath, forcing the next
// GetOrLoad to reload it from disk.
func (c *Cache) Invalidate(configPath string) {
	c.mu.Lock()
	delete(c.entries, configPath)
	c.mu.Unlock()
}
