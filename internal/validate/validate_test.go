package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sargunv/jvl/internal/schema"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileValidDocument(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", `{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`)
	src := schema.Source{File: schemaPath}
	cache := schema.NewCache()

	result := File("doc.json", []byte(`{"name": "jvl"}`), Options{SchemaSource: &src, Cache: cache})
	assert.True(t, result.File.Valid)
	assert.Empty(t, result.File.Errors)
}

func TestFileInvalidDocumentProducesLocatedDiagnostic(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", `{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`)
	src := schema.Source{File: schemaPath}
	cache := schema.NewCache()

	result := File("doc.json", []byte(`{"name": 5}`), Options{SchemaSource: &src, Cache: cache})
	require.False(t, result.File.Valid)
	require.Len(t, result.File.Errors, 1)
	assert.Contains(t, result.File.Errors[0].Code, "schema(")
	require.NotNil(t, result.File.Errors[0].Span)
}

func TestFileSyntaxErrorReportsLocation(t *testing.T) {
	result := File("doc.json", []byte(`{"name": }`), Options{Cache: schema.NewCache()})
	require.False(t, result.File.Valid)
	require.Len(t, result.File.Errors, 1)
	assert.Equal(t, "parse(syntax)", result.File.Errors[0].Code)
	require.NotNil(t, result.File.Errors[0].Location)
}

func TestFileNoSchemaSkippedByDefault(t *testing.T) {
	result := File("doc.json", []byte(`{"a": 1}`), Options{Cache: schema.NewCache()})
	assert.True(t, result.File.Valid)
	assert.True(t, result.File.Skipped)
}

func TestFileNoSchemaStrictModeErrors(t *testing.T) {
	result := File("doc.json", []byte(`{"a": 1}`), Options{Cache: schema.NewCache(), Strict: true})
	assert.False(t, result.File.Valid)
	require.Len(t, result.File.Errors, 1)
	assert.Equal(t, "no-schema", result.File.Errors[0].Code)
}

func TestFileUsesSchemaFieldFromDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schema.json", `{"type": "object", "required": ["a"]}`)

	doc := `{"$schema": "./schema.json", "a": 1}`
	result := File(filepath.Join(dir, "doc.json"), []byte(doc), Options{Cache: schema.NewCache()})
	assert.True(t, result.File.Valid)
}
