package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sargunv/jvl/internal/diagnostic"
	"github.com/sargunv/jvl/internal/schema"
)

// VerboseFileInfo carries the extra per-file detail --verbose collects
// while checking a file, surfaced in JSON output for scripts/agents that
// want to see which schema resolved and how, without re-deriving it.
type VerboseFileInfo struct {
	Schema    string // resolved schema URL or path, "" if none
	SchemaVia string // "flag", "config", "inline $schema", or ""
	Cache     *schema.CacheOutcome
	Duration  time.Duration
}

type jsonOutput struct {
	Version  int              `json:"version"`
	Valid    bool             `json:"valid"`
	Warnings []jsonWarning    `json:"warnings"`
	Files    []jsonFileResult `json:"files"`
	Summary  jsonSummary      `json:"summary"`
}

type jsonWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type jsonFileResult struct {
	Path       string      `json:"path"`
	Valid      bool        `json:"valid"`
	Schema     *string     `json:"schema,omitempty"`
	SchemaVia  *string     `json:"schema_via,omitempty"`
	Cache      *string     `json:"cache,omitempty"`
	DurationMs *int64      `json:"duration_ms,omitempty"`
	Errors     []jsonError `json:"errors"`
}

type jsonError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Severity   string        `json:"severity"`
	Location   *jsonLocation `json:"location,omitempty"`
	SchemaPath *string       `json:"schema_path,omitempty"`
}

type jsonLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
	Length int `json:"length"`
}

type jsonSummary struct {
	CheckedFiles int   `json:"checked_files"`
	ValidFiles   int   `json:"valid_files"`
	InvalidFiles int   `json:"invalid_files"`
	SkippedFiles int   `json:"skipped_files"`
	Errors       int   `json:"errors"`
	Warnings     int   `json:"warnings"`
	DurationMs   int64 `json:"duration_ms"`
}

// JSON renders results in the stable machine-readable format to w
// (stdout). verboseInfos, when non-nil, must be indexed exactly like
// results (same length, nil entries allowed) and adds the schema/cache/
// duration fields per file.
func JSON(w io.Writer, results []diagnostic.FileResult, warnings []diagnostic.Warning, summary Summary, verboseInfos []*VerboseFileInfo) error {
	out := buildJSONOutput(results, warnings, summary, verboseInfos)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	return nil
}

func buildJSONOutput(results []diagnostic.FileResult, warnings []diagnostic.Warning, summary Summary, verboseInfos []*VerboseFileInfo) jsonOutput {
	jsonWarnings := make([]jsonWarning, len(warnings))
	for i, w := range warnings {
		jsonWarnings[i] = jsonWarning{Code: w.Code, Message: w.Message}
	}

	var files []jsonFileResult
	for i, r := range results {
		if r.Skipped {
			continue
		}

		errs := make([]jsonError, len(r.Errors))
		for j, e := range r.Errors {
			var loc *jsonLocation
			if e.Location != nil {
				loc = &jsonLocation{
					Line:   e.Location.Line,
					Column: e.Location.Column,
					Offset: e.Location.Offset,
					Length: e.Location.Length,
				}
			}
			var schemaPath *string
			if e.SchemaPath != "" {
				schemaPath = &e.SchemaPath
			}
			errs[j] = jsonError{
				Code:       e.Code,
				Message:    e.Message,
				Severity:   e.Severity.String(),
				Location:   loc,
				SchemaPath: schemaPath,
			}
		}

		fr := jsonFileResult{Path: r.Path, Valid: r.Valid, Errors: errs}
		if i < len(verboseInfos) && verboseInfos[i] != nil {
			info := verboseInfos[i]
			if info.Schema != "" {
				fr.Schema = &info.Schema
			}
			if info.SchemaVia != "" {
				fr.SchemaVia = &info.SchemaVia
			}
			if info.Cache != nil {
				s := info.Cache.String()
				fr.Cache = &s
			}
			ms := info.Duration.Milliseconds()
			fr.DurationMs = &ms
		}
		files = append(files, fr)
	}

	return jsonOutput{
		Version:  1,
		Valid:    summary.InvalidFiles == 0 && !summary.HasToolError,
		Warnings: jsonWarnings,
		Files:    files,
		Summary: jsonSummary{
			CheckedFiles: summary.CheckedFiles,
			ValidFiles:   summary.ValidFiles,
			InvalidFiles: summary.InvalidFiles,
			SkippedFiles: summary.SkippedFiles,
			Errors:       summary.TotalErrors,
			Warnings:     summary.TotalWarnings,
			DurationMs:   summary.Duration.Milliseconds(),
		},
	}
}
