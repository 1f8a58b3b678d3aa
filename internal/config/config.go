// Package config loads jvl.json, resolves schema mappings against
// discovered files, and caches parsed configs keyed by their canonical
// path so the LSP server and the batch CLI checker share one code path.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sargunv/jvl/internal/jsonc"
)

// SchemaMapping associates a schema source (URL or local path) with the
// glob patterns of files it applies to. Exactly one of URL or Path is
// set — jvl.json's "schemas" entries are validated at load time to
// enforce that.
type SchemaMapping struct {
	URL   string
	Path  string
	Files []string
}

func (m SchemaMapping) isURL() bool { return m.URL != "" }

// Config is the parsed contents of a jvl.json file.
type Config struct {
	SchemaURL string
	Files     []string
	Schemas   []SchemaMapping
	Strict    bool
}

func defaultFiles() []string {
	return []string{"**/*.json", "**/*.jsonc"}
}

// Default returns the configuration jvl uses when no jvl.json is found.
func Default() Config {
	return Config{Files: defaultFiles()}
}

// rawConfig mirrors jvl.json's on-disk shape for decoding; Config itself
// stays free of JSON tags so callers construct/compare it as plain data.
type rawConfig struct {
	Schema  string          `json:"$schema,omitempty"`
	Files   []string        `json:"files,omitempty"`
	Schemas []rawSchemaItem `json:"schemas,omitempty"`
	Strict  bool            `json:"strict,omitempty"`
}

type rawSchemaItem struct {
	URL   string   `json:"url,omitempty"`
	Path  string   `json:"path,omitempty"`
	Files []string `json:"files"`
}

// Load reads and parses a jvl.json file. The file is parsed as JSONC (so
// comments and trailing commas are tolerated) but its shape must
// otherwise strictly match Config: unknown top-level fields and unknown
// schema-mapping fields are rejected, and each schema mapping must set
// exactly one of url/path.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", path, err)
	}

	root, syntaxErrs := jsonc.Parse(content)
	if len(syntaxErrs) > 0 {
		return Config{}, fmt.Errorf("parse config file %q: %s", path, syntaxErrs[0].Message)
	}
	if root == nil {
		return Config{}, fmt.Errorf("parse config file %q: empty config file", path)
	}

	decoded, err := root.Decode()
	if err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
	}

	strict, err := json.Marshal(decoded)
	if err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(strict))
	dec.DisallowUnknownFields()
	var raw rawConfig
	if err := dec.Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
	}

	cfg := Config{SchemaURL: raw.Schema, Files: raw.Files, Strict: raw.Strict}
	if cfg.Files == nil {
		cfg.Files = defaultFiles()
	}
	for i, item := range raw.Schemas {
		if (item.URL == "") == (item.Path == "") {
			return Config{}, fmt.Errorf("parse config file %q: schemas[%d] must set exactly one of url or path", path, i)
		}
		if len(item.Files) == 0 {
			return Config{}, fmt.Errorf("parse config file %q: schemas[%d].files must be non-empty", path, i)
		}
		cfg.Schemas = append(cfg.Schemas, SchemaMapping{URL: item.URL, Path: item.Path, Files: item.Files})
	}

	return cfg, nil
}

// FindConfigFile walks up from start (a file or directory) looking for a
// jvl.json, stopping at the first one found or the filesystem root.
func FindConfigFile(start string) (string, bool) {
	dir := start
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		dir = filepath.Dir(start)
	}

	for {
		candidate := filepath.Join(dir, "jvl.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
