package lspserver

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRapidEditsOnlyPublishOnce verifies the debounce window collapses a
// burst of edits into validating only the last one: superseded
// validateAndPublish tasks discard their work once a newer edit's
// version has landed in the document store.
func TestRapidEditsOnlyPublishOnce(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeTempSchema(t, dir)
	docPath := filepath.Join(dir, "doc.json")
	uri := fileURI(docPath)

	v1 := fmt.Sprintf(`{"$schema": %q, "age": 5}`, fileURI(schemaPath))
	require.NoError(t, os.WriteFile(docPath, []byte(v1), 0o644))

	client := newTestClient(t)
	client.initialize(map[string]any{})

	client.didOpen(uri, 1, v1)

	// Rapid-fire several edits well within the debounce window; only the
	// last one's content should ever be published.
	v2 := fmt.Sprintf(`{"$schema": %q, "age": 6}`, fileURI(schemaPath))
	v3 := fmt.Sprintf(`{"$schema": %q, "name": "final"}`, fileURI(schemaPath))
	client.didChange(uri, 2, v2)
	client.didChange(uri, 3, v3)

	msg := client.recvNotification("textDocument/publishDiagnostics", 2*time.Second)
	params := msg["params"].(map[string]any)
	diags, _ := params["diagnostics"].([]any)
	assert.Empty(t, diags, "the final edit is valid; only its result should ever be published")

	assertNoFurtherPublish(t, client, 400*time.Millisecond)
}

// assertNoFurtherPublish fails the test if another publishDiagnostics
// notification arrives within window, confirming the superseded
// debounced tasks from earlier edits didn't also publish stale results.
func assertNoFurtherPublish(t *testing.T, client *testClient, window time.Duration) {
	t.Helper()
	if _, ok := client.tryRecvNotification("textDocument/publishDiagnostics", window); ok {
		t.Fatal("unexpected extra publishDiagnostics notification")
	}
}
