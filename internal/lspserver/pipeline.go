package lspserver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sargunv/jvl/internal/coords"
	"github.com/sargunv/jvl/internal/diagnostic"
	"github.com/sargunv/jvl/internal/protocol"
	"github.com/sargunv/jvl/internal/validate"
)

// debounceDelay matches the interval editors settle at between
// keystrokes; validating on every keystroke would burn CPU re-parsing
// and re-validating documents mid-edit for no visible benefit.
const debounceDelay = 200 * time.Millisecond

// maxConcurrentValidations bounds how many validations run at once so a
// workspace-wide config change (which re-validates every open document
// in one burst) can't spin up unbounded goroutines all doing schema
// compilation and file I/O at the same time.
const maxConcurrentValidations = 8

// spawnValidation launches a fire-and-forget debounced validation for
// uri, capturing its version at spawn time. If a newer edit arrives
// before the debounce window elapses, this task's own version check
// finds the document at a newer version and discards its work — see
// validateAndPublish.
func (s *Server) spawnValidation(uri protocol.DocumentUri) {
	doc, ok := s.documents.get(uri)
	if !ok {
		return
	}
	spawnVersion := doc.Version

	go s.validateAndPublish(uri, spawnVersion)
}

// validateAndPublish sleeps out the debounce window, validates the
// document, and publishes diagnostics — but only if the document is
// still open and still at the version this task was spawned for. The
// version is re-checked twice: once after the debounce sleep (a newer
// edit may have arrived while sleeping) and once more after validation
// itself completes (a newer edit may have arrived while this task held
// its semaphore permit or was blocked on schema compilation).
//
// Capturing content only after the debounce sleep — not at spawn time —
// matters: content captured at spawn time can go stale by the time the
// sleep ends while the version guard alone still passes, publishing
// diagnostics for text the user has already changed.
func (s *Server) validateAndPublish(uri protocol.DocumentUri, spawnVersion int32) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("validation panic", "uri", string(uri), "panic", r)
			s.logWarning(fmt.Sprintf("jvl: validation of %s panicked and was skipped: %v", uri, r))
		}
	}()

	timer := time.NewTimer(debounceDelay)
	defer timer.Stop()
	<-timer.C

	if err := s.sem.Acquire(context.Background(), 1); err != nil {
		return
	}
	defer s.sem.Release(1)

	doc, ok := s.documents.get(uri)
	if !ok {
		return // document was closed during the debounce window
	}
	if doc.Version != spawnVersion {
		return // a newer edit superseded this task
	}
	version := doc.Version

	filePath, ok := uriToFilePath(uri)
	if !ok {
		return
	}

	correlationID := uuid.NewString()
	logger := s.logger.With("correlation_id", correlationID, "uri", string(uri))

	explicitSource, strict, warnMsg := resolveSchemaForDocument(filePath, s.configCache)
	if warnMsg != "" {
		logger.Warn(warnMsg)
		s.logWarning(warnMsg)
	}

	source := []byte(doc.Text)
	result := validate.File(filePath, source, validate.Options{
		SchemaSource: explicitSource,
		Cache:        s.schemaCache,
		NoCache:      false, // LSP mode always trusts the on-disk HTTP cache
		Strict:       strict,
	})
	for _, w := range result.Warnings {
		logger.Warn(w.Message, "code", w.Code)
		s.logWarning(w.Message)
	}

	// Post-validation version guard: discard if a newer edit arrived
	// during validation, or the document was closed in the meantime.
	if !s.documents.currentVersion(uri, version) {
		return
	}

	enc := s.encodingSnapshot()
	lineStarts := coords.ComputeLineStarts(source)
	diagnostics := make([]protocol.Diagnostic, 0, len(result.File.Errors))
	for _, d := range result.File.Errors {
		diagnostics = append(diagnostics, fileDiagnosticToLSP(d, source, lineStarts, enc))
	}

	v := version
	if err := s.conn.WriteNotification("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &v,
		Diagnostics: diagnostics,
	}); err != nil {
		logger.Error("publish diagnostics", "err", err)
	}
}

// fileDiagnosticToLSP converts a validation diagnostic into its LSP wire
// form, mapping the diagnostic's byte span into a Position range using
// the negotiated encoding. A diagnostic with no span (schema-load
// failures, and syntax errors without a precise location) points at the
// start of the file.
func fileDiagnosticToLSP(d diagnostic.FileDiagnostic, source []byte, lineStarts coords.LineStarts, enc coords.Encoding) protocol.Diagnostic {
	start := protocol.Position{}
	end := protocol.Position{}
	if d.Span != nil {
		sp := coords.OffsetToPosition(source, lineStarts, d.Span.Start, enc)
		ep := coords.OffsetToPosition(source, lineStarts, d.Span.End, enc)
		start = protocol.Position{Line: uint32(sp.Line), Character: uint32(sp.Character)}
		end = protocol.Position{Line: uint32(ep.Line), Character: uint32(ep.Character)}
	}

	severity := protocol.DiagnosticSeverityError
	if d.Severity == diagnostic.SeverityWarning {
		severity = protocol.DiagnosticSeverityWarning
	}

	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: severity,
		Code:     d.Code,
		Source:   "jvl",
		Message:  d.Message,
	}
}

// revalidateAllOpenDocuments re-runs the validation pipeline for every
// open document, used after a jvl.json change since any document's
// resolved schema may now be different.
func (s *Server) revalidateAllOpenDocuments() {
	for _, uri := range s.documents.uris() {
		s.spawnValidation(uri)
	}
}
