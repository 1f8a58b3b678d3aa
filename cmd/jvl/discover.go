package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sargunv/jvl/internal/config"
	"github.com/sargunv/jvl/internal/diagnostic"
)

// loadConfigForCheck resolves jvl.json the same way for every command
// that needs a project's config: an explicit --config path is a hard
// error if it fails to load, while auto-discovery falling through to
// defaults is not.
//
// It returns the effective Config, the config path actually used ("" if
// none was found), and the project root schema mappings and file
// discovery are resolved relative to.
func loadConfigForCheck(explicitPath, cwd string) (config.Config, string, string, error) {
	if explicitPath != "" {
		abs := explicitPath
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cwd, abs)
		}
		cfg, err := config.Load(abs)
		if err != nil {
			return config.Config{}, "", "", err
		}
		return cfg, abs, filepath.Dir(abs), nil
	}

	path, found := config.FindConfigFile(cwd)
	if !found {
		return config.Default(), "", cwd, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", "", err
	}
	return cfg, path, filepath.Dir(path), nil
}

// resolveCheckTargets turns the CLI's positional file/directory
// arguments into a concrete file list: explicit files are checked
// as-is, explicit directories (and the implicit cwd, when args is
// empty) are walked and filtered through cfg.Files.
func resolveCheckTargets(args []string, cwd, projectRoot string, cfg config.Config, flags *checkFlags, stderr io.Writer) ([]string, []diagnostic.Warning, error) {
	verbose := flags.verbose && flags.format == "human"

	if len(args) == 0 {
		if verbose {
			verboseLog(stderr, fmt.Sprintf("discovering files in: %s", cwd))
		}
		files, warnings, err := config.DiscoverFiles(projectRoot, cfg)
		if err != nil {
			return nil, nil, err
		}
		if verbose {
			verboseLog(stderr, fmt.Sprintf("discovered %d files", len(files)))
		}
		return files, warnings, nil
	}

	var walkRoots []string
	var explicitFiles []string
	for _, arg := range args {
		resolved := arg
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(cwd, arg)
		}
		if info, err := os.Stat(resolved); err == nil && info.IsDir() {
			walkRoots = append(walkRoots, resolved)
		} else {
			explicitFiles = append(explicitFiles, arg)
		}
	}

	if verbose {
		if len(explicitFiles) > 0 {
			verboseLog(stderr, fmt.Sprintf("%d explicit files", len(explicitFiles)))
		}
		for _, root := range walkRoots {
			verboseLog(stderr, fmt.Sprintf("discovering files in: %s", root))
		}
	}

	var warnings []diagnostic.Warning
	for _, root := range walkRoots {
		found, walkWarnings, err := config.DiscoverFilesUnder(root, projectRoot, cfg)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, walkWarnings...)
		explicitFiles = append(explicitFiles, found...)
	}

	return explicitFiles, warnings, nil
}
