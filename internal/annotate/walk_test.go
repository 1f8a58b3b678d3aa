package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkTopLevel(t *testing.T) {
	schema := map[string]any{
		"title":       "Root",
		"description": "the root object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "description": "the name"},
		},
	}
	a, err := Walk(schema, "")
	require.NoError(t, err)
	assert.Equal(t, "Root", a.Title)
	assert.Equal(t, "the root object", a.Description)
}

func TestWalkIntoProperty(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "description": "the name"},
		},
	}
	a, err := Walk(schema, "/name")
	require.NoError(t, err)
	assert.Equal(t, "the name", a.Description)
	assert.Equal(t, "string", a.Type)
}

func TestWalkIntoArrayItems(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "description": "a tag"},
			},
		},
	}
	a, err := Walk(schema, "/tags/0")
	require.NoError(t, err)
	assert.Equal(t, "a tag", a.Description)
}

func TestWalkFollowsFragmentRef(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"name": map[string]any{"$ref": "#/$defs/name"},
		},
		"$defs": map[string]any{
			"name": map[string]any{"type": "string", "description": "a name via ref"},
		},
	}
	a, err := Walk(schema, "/name")
	require.NoError(t, err)
	assert.Equal(t, "a name via ref", a.Description)
}

func TestWalkRefusesNonFragmentRef(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"name": map[string]any{"$ref": "https://example.com/other.json"},
		},
	}
	_, err := Walk(schema, "/name")
	assert.Error(t, err)
}

func TestWalkDetectsCyclicRef(t *testing.T) {
	schema := map[string]any{
		"$defs": map[string]any{
			"a": map[string]any{"$ref": "#/$defs/b"},
			"b": map[string]any{"$ref": "#/$defs/a"},
		},
		"$ref": "#/$defs/a",
	}
	_, err := Walk(schema, "")
	assert.Error(t, err)
}

func TestWalkMissingPropertyReturnsEmpty(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	}
	a, err := Walk(schema, "/unknown")
	require.NoError(t, err)
	assert.True(t, a.IsEmpty())
}

func TestWalkIntoTupleUsesPrefixItemsByPosition(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"point": map[string]any{
				"type": "array",
				"prefixItems": []any{
					map[string]any{"type": "number", "description": "x coordinate"},
					map[string]any{"type": "number", "description": "y coordinate"},
				},
				"items": map[string]any{"type": "number", "description": "extra coordinate"},
			},
		},
	}

	a, err := Walk(schema, "/point/0")
	require.NoError(t, err)
	assert.Equal(t, "x coordinate", a.Description)

	a, err = Walk(schema, "/point/1")
	require.NoError(t, err)
	assert.Equal(t, "y coordinate", a.Description)

	// beyond prefixItems' length, tuple schemas fall back to "items"
	a, err = Walk(schema, "/point/2")
	require.NoError(t, err)
	assert.Equal(t, "extra coordinate", a.Description)
}

func TestWalkDoesNotFallBackToAdditionalProperties(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"additionalProperties": map[string]any{
			"type":        "string",
			"description": "a wildcard property",
		},
	}

	a, err := Walk(schema, "/unknown")
	require.NoError(t, err)
	assert.True(t, a.IsEmpty())
}

func TestWalkArrayWithNoItemsOrPrefixItemsReturnsEmpty(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"tuple": map[string]any{
				"type":                 "array",
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
	}

	a, err := Walk(schema, "/tuple/0")
	require.NoError(t, err)
	assert.True(t, a.IsEmpty())
}
