package lspserver

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sargunv/jvl/internal/annotate"
	"github.com/sargunv/jvl/internal/coords"
	"github.com/sargunv/jvl/internal/jsonc"
	"github.com/sargunv/jvl/internal/protocol"
	"github.com/sargunv/jvl/internal/rpc"
	"github.com/sargunv/jvl/internal/schema"
)

// handleHover resolves the cursor position to a JSON Pointer into the
// open document, resolves that document's schema, and walks the schema
// for whatever descriptive annotations (title, description, default,
// examples, enum) apply at that pointer. It returns a nil result (not an
// error) for every case where there's simply nothing to show — an
// unopened document, unparseable JSON, cursor on whitespace, a document
// with no resolvable schema — since none of those are protocol errors.
func (s *Server) handleHover(params json.RawMessage) (any, *rpc.ErrorObject) {
	var p protocol.HoverParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &rpc.ErrorObject{Code: rpc.CodeInvalidParams, Message: err.Error()}
	}

	doc, ok := s.documents.get(p.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	source := []byte(doc.Text)
	root, _ := jsonc.Parse(source)
	if root == nil {
		return nil, nil
	}

	lineStarts := coords.ComputeLineStarts(source)
	enc := s.encodingSnapshot()
	offset := coords.PositionToOffset(source, lineStarts, coords.Position{
		Line:      int(p.Position.Line),
		Character: int(p.Position.Character),
	}, enc)

	pointer, ok := jsonc.OffsetToPointer(root, offset)
	if !ok {
		return nil, nil
	}

	filePath, ok := uriToFilePath(p.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	effective, _, warnMsg := resolveSchemaForDocument(filePath, s.configCache)
	if warnMsg != "" {
		s.logWarning(warnMsg)
	}
	if effective == nil {
		if ref, ok := jsonc.ExtractSchemaField(root); ok {
			resolved := schema.ResolveRef(ref, filepath.Dir(filePath))
			effective = &resolved
		}
	}
	if effective == nil {
		return nil, nil
	}

	compiled, err := s.schemaCache.GetOrCompile(*effective, false)
	if err != nil {
		return nil, nil
	}

	annotation, err := annotate.Walk(compiled.Doc, pointer)
	if err != nil || annotation.IsEmpty() {
		return nil, nil
	}

	target, ok := jsonc.ResolvePointer(root, pointer)
	var hoverRange *protocol.Range
	if ok {
		startPos := coords.OffsetToPosition(source, lineStarts, target.Range.Start, enc)
		endPos := coords.OffsetToPosition(source, lineStarts, target.Range.End, enc)
		hoverRange = &protocol.Range{
			Start: protocol.Position{Line: uint32(startPos.Line), Character: uint32(startPos.Character)},
			End:   protocol.Position{Line: uint32(endPos.Line), Character: uint32(endPos.Character)},
		}
	}

	return protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: renderAnnotation(annotation),
		},
		Range: hoverRange,
	}, nil
}

// renderAnnotation formats a schema annotation as Markdown for hover
// display: a title heading, the description, and a fenced block for
// default/examples/enum when present.
func renderAnnotation(a annotate.Annotation) string {
	var b strings.Builder
	if a.Title != "" {
		fmt.Fprintf(&b, "**%s**\n\n", a.Title)
	}
	if a.Type != "" {
		fmt.Fprintf(&b, "`%s`\n\n", a.Type)
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", a.Description)
	}
	if a.Default != nil {
		if raw, err := json.Marshal(a.Default); err == nil {
			fmt.Fprintf(&b, "Default: `%s`\n\n", raw)
		}
	}
	if len(a.Enum) > 0 {
		vals := make([]string, len(a.Enum))
		for i, v := range a.Enum {
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			vals[i] = string(raw)
		}
		fmt.Fprintf(&b, "Allowed values: %s\n\n", strings.Join(vals, ", "))
	}
	if len(a.Examples) > 0 {
		b.WriteString("Examples:\n\n")
		for _, ex := range a.Examples {
			if raw, err := json.Marshal(ex); err == nil {
				fmt.Fprintf(&b, "- `%s`\n", raw)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
