package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sargunv/jvl/internal/config"
	"github.com/sargunv/jvl/internal/diagnostic"
	"github.com/sargunv/jvl/internal/jsonc"
	"github.com/sargunv/jvl/internal/render"
	"github.com/sargunv/jvl/internal/schema"
	"github.com/sargunv/jvl/internal/validate"
)

type checkFlags struct {
	schema  string
	config  string
	format  string
	jobs    int
	strict  bool
	noCache bool
	verbose bool
}

func newCheckCommand() *cobra.Command {
	flags := &checkFlags{format: "human", jobs: 10}

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate JSON files against JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.schema, "schema", "s", "", "schema to validate all files against (path or URL)")
	f.StringVarP(&flags.config, "config", "c", "", "path to config file")
	f.StringVarP(&flags.format, "format", "f", "human", `output format: "human" or "json"`)
	f.IntVarP(&flags.jobs, "jobs", "j", 10, "number of concurrent jobs (1..256)")
	f.BoolVar(&flags.strict, "strict", false, "error if any file has no resolvable schema")
	f.BoolVar(&flags.noCache, "no-cache", false, "bypass schema cache; always fetch from network")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "print verbose diagnostic information to stderr")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, flags *checkFlags) error {
	start := time.Now()
	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()

	if flags.jobs < 1 || flags.jobs > 256 {
		return &exitError{code: 2, msg: "jobs must be between 1 and 256"}
	}
	if flags.format != "human" && flags.format != "json" {
		return &exitError{code: 2, msg: fmt.Sprintf("unknown format %q", flags.format)}
	}

	if flags.verbose && flags.format == "human" {
		verboseLog(stderr, fmt.Sprintf("jobs: %d", flags.jobs))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return &exitError{code: 2, msg: fmt.Sprintf("cannot determine current directory: %v", err)}
	}

	loadedConfig, configPath, projectRoot, err := loadConfigForCheck(flags.config, cwd)
	if err != nil {
		return &exitError{code: 2, msg: fmt.Sprintf("failed to load config: %v", err)}
	}
	if abs, err := filepath.Abs(projectRoot); err == nil {
		projectRoot = abs
	}

	if flags.verbose && flags.format == "human" {
		switch {
		case configPath != "" && flags.config != "":
			verboseLog(stderr, fmt.Sprintf("config: %s", configPath))
		case configPath != "":
			verboseLog(stderr, fmt.Sprintf("config: %s (auto-discovered)", configPath))
		default:
			verboseLog(stderr, "config: none found, using defaults")
		}
		verboseLog(stderr, fmt.Sprintf("project root: %s", projectRoot))
	}

	cfg := loadedConfig
	mappings := config.CompileMappings(cfg)

	var schemaOverride *schema.Source
	if flags.schema != "" {
		resolved := schema.ResolveRef(flags.schema, cwd)
		schemaOverride = &resolved
	}

	var earlyWarnings []diagnostic.Warning
	filesToCheck, discoverWarnings, err := resolveCheckTargets(args, cwd, projectRoot, cfg, flags, stderr)
	if err != nil {
		return &exitError{code: 2, msg: fmt.Sprintf("failed to discover files: %v", err)}
	}
	earlyWarnings = append(earlyWarnings, discoverWarnings...)

	if len(filesToCheck) == 0 {
		if flags.format == "human" {
			fmt.Fprintln(stderr, "warning: no files to check")
		}
		return nil
	}

	type fileContent struct {
		path    string
		content []byte
	}
	contents := make([]fileContent, 0, len(filesToCheck))
	hasFileReadError := false
	for _, path := range filesToCheck {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "error: could not read %s: %v\n", path, err)
			hasFileReadError = true
			continue
		}
		contents = append(contents, fileContent{path: path, content: jsonc.StripBOM(raw)})
	}

	schemaCache := schema.NewCache()

	type fileOutcome struct {
		result  validate.Result
		verbose *render.VerboseFileInfo
	}
	outcomes := make([]fileOutcome, len(contents))

	group := new(errgroup.Group)
	group.SetLimit(flags.jobs)
	for i, fc := range contents {
		i, fc := i, fc
		group.Go(func() error {
			fileStart := time.Now()

			effective := schemaOverride
			schemaVia := ""
			if effective != nil {
				schemaVia = "flag"
			} else {
				relative, err := filepath.Rel(projectRoot, fc.path)
				if err != nil {
					relative = fc.path
				}
				relative = filepath.ToSlash(relative)
				if src, ok := mappings.Resolve(relative, projectRoot); ok {
					effective = &src
					schemaVia = "config"
				}
			}

			result := validate.File(fc.path, fc.content, validate.Options{
				SchemaSource: effective,
				Cache:        schemaCache,
				NoCache:      flags.noCache,
				Strict:       flags.strict,
			})

			var vinfo *render.VerboseFileInfo
			if flags.verbose {
				schemaDisplay := ""
				via := schemaVia
				if effective != nil {
					schemaDisplay = effective.String()
				} else if !result.File.Skipped {
					if ref, ok := jsonc.ExtractSchemaFieldFromSource(fc.content); ok {
						schemaDisplay = ref
						via = "inline $schema"
					}
				}
				vinfo = &render.VerboseFileInfo{
					Schema:    schemaDisplay,
					SchemaVia: via,
					Duration:  time.Since(fileStart),
				}
			}

			outcomes[i] = fileOutcome{result: result, verbose: vinfo}
			return nil
		})
	}
	_ = group.Wait()

	if flags.verbose && flags.format == "human" {
		for _, o := range outcomes {
			if o.verbose == nil {
				continue
			}
			status := "invalid"
			switch {
			case o.result.File.Skipped:
				status = "skipped (no schema)"
			case o.result.File.ToolError:
				status = "error"
			case o.result.File.Valid:
				status = "valid"
			}
			schemaInfo := "none"
			switch {
			case o.verbose.Schema != "" && o.verbose.SchemaVia != "":
				schemaInfo = fmt.Sprintf("%s (via %s)", o.verbose.Schema, o.verbose.SchemaVia)
			case o.verbose.SchemaVia != "":
				schemaInfo = fmt.Sprintf("(via %s)", o.verbose.SchemaVia)
			}
			verboseLog(stderr, fmt.Sprintf("%s: %s | schema: %s | %s", o.result.File.Path, status, schemaInfo, o.verbose.Duration.Round(time.Millisecond)))
		}
	}

	results := make([]diagnostic.FileResult, len(outcomes))
	verboseInfos := make([]*render.VerboseFileInfo, len(outcomes))
	warnings := earlyWarnings
	for i, o := range outcomes {
		results[i] = o.result.File
		verboseInfos[i] = o.verbose
		for _, w := range o.result.Warnings {
			warnings = append(warnings, w)
		}
	}

	checked, skipped, invalid := 0, 0, 0
	totalErrors := 0
	hasToolError := hasFileReadError
	for _, r := range results {
		if r.Skipped {
			skipped++
			continue
		}
		checked++
		if !r.Valid {
			invalid++
		}
		if r.ToolError {
			hasToolError = true
		}
		totalErrors += len(r.Errors)
	}

	summary := render.Summary{
		CheckedFiles:  checked,
		ValidFiles:    checked - invalid,
		InvalidFiles:  invalid,
		SkippedFiles:  skipped,
		TotalErrors:   totalErrors,
		TotalWarnings: len(warnings),
		Duration:      time.Since(start),
		Jobs:          flags.jobs,
		HasToolError:  hasToolError,
	}

	if flags.format == "json" {
		if !flags.verbose {
			verboseInfos = nil
		}
		if err := render.JSON(stdout, results, warnings, summary, verboseInfos); err != nil {
			return &exitError{code: 2, msg: err.Error()}
		}
	} else {
		render.Human(stderr, results, warnings, summary)
	}

	switch {
	case hasToolError:
		return &exitError{code: 2, msg: "tool error", reported: true}
	case invalid > 0:
		return &exitError{code: 1, msg: "validation failed", reported: true}
	}
	return nil
}

func verboseLog(w interface{ Write([]byte) (int, error) }, msg string) {
	fmt.Fprintf(w, "[verbose] %s\n", msg)
}
