package lspserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hoverSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "name": {
      "type": "string",
      "title": "Name",
      "description": "The item's display name."
    }
  }
}`

func TestHoverReturnsSchemaAnnotationForFieldValue(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(hoverSchema), 0o644))

	docPath := filepath.Join(dir, "doc.json")
	docContent := fmt.Sprintf("{\"$schema\": %q, \"name\": \"widget\"}", fileURI(schemaPath))
	require.NoError(t, os.WriteFile(docPath, []byte(docContent), 0o644))

	client := newTestClient(t)
	client.initialize(map[string]any{})
	client.didOpen(fileURI(docPath), 1, docContent)

	// Position inside the "widget" string value.
	idx := indexOf(docContent, "widget")
	line, char := lineCharOf(docContent, idx)

	frame := client.hover(fileURI(docPath), line, char)
	require.Nil(t, frame.Error)

	var hover map[string]any
	require.NoError(t, json.Unmarshal(frame.Result, &hover))
	require.NotNil(t, hover)

	contents, _ := hover["contents"].(map[string]any)
	require.NotNil(t, contents)
	assert.Contains(t, contents["value"], "Name")
	assert.Contains(t, contents["value"], "display name")
}

func TestHoverReturnsNilWhenDocumentNotOpen(t *testing.T) {
	client := newTestClient(t)
	client.initialize(map[string]any{})

	frame := client.hover("file:///never/opened.json", 0, 0)
	require.Nil(t, frame.Error)
	assert.True(t, len(frame.Result) == 0 || string(frame.Result) == "null")
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func lineCharOf(s string, offset int) (line, char uint32) {
	for i := 0; i < offset; i++ {
		if s[i] == '\n' {
			line++
			char = 0
		} else {
			char++
		}
	}
	return line, char
}
