package lspserver

import (
	"fmt"
	"path/filepath"

	"github.com/sargunv/jvl/internal/config"
	"github.com/sargunv/jvl/internal/schema"
)

// resolveSchemaForDocument finds the nearest jvl.json above filePath and
// resolves filePath's schema mapping against it, loading and compiling
// the config through configCache so every document under one project
// shares a single compiled Config and CompiledMappings.
//
// It returns (nil, false, "") when no jvl.json exists above filePath or
// the relative path is excluded by the config's file filter, and (nil,
// strict, "") when a jvl.json applies but has no schema mapping for
// filePath; in each of these cases the caller falls back to the
// document's own "$schema" field. It returns (nil, false,
// warning) when a jvl.json was found but failed to load or compile, so
// the caller can surface that as a window/logMessage instead of silently
// losing config-driven mappings. The returned bool is the config's
// strict flag, which the caller applies unconditionally (even when no
// schema resolved) since strict mode is what turns "no schema" into a
// diagnostic instead of a silent skip.
func resolveSchemaForDocument(filePath string, configCache *config.Cache) (*schema.Source, bool, string) {
	configPath, found := config.FindConfigFile(filePath)
	if !found {
		return nil, false, ""
	}
	projectRoot := filepath.Dir(configPath)

	compiled, err := configCache.GetOrLoad(configPath, projectRoot)
	if err != nil {
		return nil, false, fmt.Sprintf("jvl: failed to load %s: %v", configPath, err)
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}
	relative, err := filepath.Rel(compiled.ProjectRoot, abs)
	if err != nil {
		relative = filePath
	}
	relative = filepath.ToSlash(relative)

	if !compiled.Filter.Match(relative) {
		return nil, false, ""
	}

	source, ok := compiled.Mappings.Resolve(relative, compiled.ProjectRoot)
	if !ok {
		return nil, compiled.Config.Strict, ""
	}
	return &source, compiled.Config.Strict, ""
}
