// Package validate is the validation façade: given a document's source
// text and a way to resolve its schema, it parses, resolves, validates,
// and produces the FileDiagnostics the CLI and LSP server both render.
package validate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/sargunv/jvl/internal/coords"
	"github.com/sargunv/jvl/internal/diagnostic"
	"github.com/sargunv/jvl/internal/jsonc"
	"github.com/sargunv/jvl/internal/schema"
)

// Options configures one call to File.
type Options struct {
	// SchemaSource is an explicit override (--schema flag, or an LSP
	// config schema-mapping match). Takes priority over the document's
	// own "$schema" field.
	SchemaSource *schema.Source
	Cache        *schema.Cache
	NoCache      bool
	// Strict makes a document with no resolvable schema a validation
	// error ("no-schema") instead of being silently skipped.
	Strict bool
}

// Result is a validation outcome plus any warnings surfaced along the
// way (e.g. a stale schema cache entry).
type Result struct {
	File     diagnostic.FileResult
	Warnings []diagnostic.Warning
}

// File validates the document at filePath whose contents are source,
// per opts.
func File(filePath string, source []byte, opts Options) Result {
	root, syntaxErrs := jsonc.Parse(source)
	if len(syntaxErrs) > 0 {
		lineStarts := coords.ComputeLineStarts(source)
		errs := make([]diagnostic.FileDiagnostic, len(syntaxErrs))
		for i, e := range syntaxErrs {
			line, col := lineStarts.LineCol(e.Offset)
			errs[i] = diagnostic.FileDiagnostic{
				Code:     "parse(syntax)",
				Message:  e.Message,
				Severity: diagnostic.SeverityError,
				Span:     &diagnostic.Span{Start: e.Offset, End: e.Offset},
				Location: &diagnostic.SourceLocation{Line: line, Column: col, Offset: e.Offset, Length: 0},
				Label:    "syntax error",
			}
		}
		return Result{File: diagnostic.Invalid(filePath, errs)}
	}

	effective := opts.SchemaSource
	if effective == nil {
		if ref, ok := jsonc.ExtractSchemaField(root); ok {
			resolved := schema.ResolveRef(ref, filepath.Dir(filePath))
			effective = &resolved
		}
	}

	if effective == nil {
		if opts.Strict {
			return Result{File: diagnostic.Invalid(filePath, []diagnostic.FileDiagnostic{{
				Code:     "no-schema",
				Message:  "no schema found",
				Severity: diagnostic.SeverityError,
				Help:     `Add a "$schema" field to the file, configure a schema mapping in jvl.json, or use --schema.`,
			}})}
		}
		return Result{File: diagnostic.Skipped(filePath)}
	}

	compiled, err := opts.Cache.GetOrCompile(*effective, opts.NoCache)
	if err != nil {
		category := "load"
		if strings.Contains(err.Error(), "compile schema") {
			category = "compile"
		}
		return Result{File: diagnostic.ToolError(filePath, []diagnostic.FileDiagnostic{{
			Code:     fmt.Sprintf("schema(%s)", category),
			Message:  err.Error(),
			Severity: diagnostic.SeverityError,
		}})}
	}

	var warnings []diagnostic.Warning
	for _, w := range compiled.Warnings {
		warnings = append(warnings, diagnostic.Warning{Code: w.Code, Message: w.Message})
	}

	instance, err := root.Decode()
	if err != nil {
		return Result{
			File: diagnostic.ToolError(filePath, []diagnostic.FileDiagnostic{{
				Code:     "parse(decode)",
				Message:  err.Error(),
				Severity: diagnostic.SeverityError,
			}}),
			Warnings: warnings,
		}
	}

	if err := compiled.Schema.Validate(instance); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return Result{
				File: diagnostic.ToolError(filePath, []diagnostic.FileDiagnostic{{
					Code:     "schema(validate)",
					Message:  err.Error(),
					Severity: diagnostic.SeverityError,
				}}),
				Warnings: warnings,
			}
		}
		errs := mapValidationErrors(root, source, ve)
		return Result{File: diagnostic.Invalid(filePath, errs), Warnings: warnings}
	}

	return Result{File: diagnostic.Valid(filePath), Warnings: warnings}
}

// mapValidationErrors flattens the (possibly deeply nested, from
// anyOf/oneOf branches) validation error tree into one FileDiagnostic
// per leaf failure.
func mapValidationErrors(root *jsonc.Node, source []byte, ve *jsonschema.ValidationError) []diagnostic.FileDiagnostic {
	leaves := collectLeaves(ve)
	lineStarts := coords.ComputeLineStarts(source)
	diags := make([]diagnostic.FileDiagnostic, 0, len(leaves))
	for _, leaf := range leaves {
		pointer := "/" + strings.Join(leaf.InstanceLocation, "/")
		if len(leaf.InstanceLocation) == 0 {
			pointer = ""
		}

		var span *diagnostic.Span
		var loc *diagnostic.SourceLocation
		if target, ok := jsonc.ResolvePointer(root, pointer); ok {
			span = &diagnostic.Span{Start: target.Range.Start, End: target.Range.End}
			line, col := lineStarts.LineCol(target.Range.Start)
			loc = &diagnostic.SourceLocation{Line: line, Column: col, Offset: target.Range.Start, Length: target.Range.End - target.Range.Start}
		}

		keyword := keywordOf(leaf.ErrorKind)
		diags = append(diags, diagnostic.FileDiagnostic{
			Code:       fmt.Sprintf("schema(%s)", keyword),
			Message:    leaf.ErrorKind.LocalizedString(defaultPrinter),
			Severity:   diagnostic.SeverityError,
			Span:       span,
			Location:   loc,
			Label:      label(keyword, leaf.ErrorKind),
			Help:       help(keyword),
			SchemaPath: schemaPathOf(leaf.ErrorKind),
		})
	}
	return diags
}

// collectLeaves walks a jsonschema.ValidationError's Causes tree and
// returns the leaf nodes (no further causes), which is where the actual
// keyword failures live; interior nodes only aggregate branch failures
// from anyOf/oneOf/if-then-else.
func collectLeaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, collectLeaves(c)...)
	}
	return out
}
