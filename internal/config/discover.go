package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sargunv/jvl/internal/diagnostic"
)

// DiscoverFiles walks projectRoot and returns every regular file whose
// root-relative, slash-separated path matches cfg.Files. It is
// DiscoverFilesUnder(projectRoot, projectRoot, cfg) — the common case
// where the walk root and the root glob patterns are matched against
// are the same directory.
func DiscoverFiles(projectRoot string, cfg Config) ([]string, []diagnostic.Warning, error) {
	return DiscoverFilesUnder(projectRoot, projectRoot, cfg)
}

// DiscoverFilesUnder walks walkRoot but matches cfg.Files patterns
// against each file's path relative to matchRoot, not walkRoot. This is
// what "jvl check some/subdir" needs: cfg.Files patterns are always
// written relative to the project root, even when the user only asked
// to check one of its subdirectories. Directories named ".git" are
// always skipped; there is no broader VCS-ignore awareness (jvl does not
// carry a gitignore-parsing dependency — see DESIGN.md).
func DiscoverFilesUnder(walkRoot, matchRoot string, cfg Config) ([]string, []diagnostic.Warning, error) {
	filter := NewFilter(cfg.Files)

	var files []string
	var warnings []diagnostic.Warning

	err := filepath.Walk(walkRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			warnings = append(warnings, diagnostic.Warning{
				Code:    "walk",
				Message: fmt.Sprintf("error walking directory: %v", err),
			})
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(matchRoot, path)
		if err != nil {
			return nil
		}
		if filter.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("walk %q: %w", walkRoot, err)
	}
	return files, warnings, nil
}
