package migration

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	schema "github.com/satishbabariya/schemigrate/internal/core/schema/domain"
	"github.com/satishbabariya/schemigrate/internal/core/schema/parser"
)

var fixedNow = time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

func mustParse(t *testing.T, doc string) *schema.Schema {
	t.Helper()
	s, err := parser.Parse([]byte(doc), parser.FormatAuto)
	require.NoError(t, err)
	return s
}

func TestCompile_FirstRun(t *testing.T) {
	c := NewCompiler(nil)

	res, err := c.Compile(nil, mustParse(t, `{"users": {"properties": {"name": "string"}}}`), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, Generated, res.Status)
	require.NotNil(t, res.Artifact)
	assert.Equal(t, "20250102030405-generated.js", res.Artifact.Filename)
	assert.Contains(t, res.Artifact.Text, "db.createTable(\"users\", {\n      \"name\": \"string\"\n  });")
	assert.Contains(t, res.Artifact.Text, `db.dropTable("users");`)
	assert.Len(t, res.Artifact.Up, 1)
	assert.Len(t, res.Artifact.Down, 1)
}

func TestCompile_NoChanges(t *testing.T) {
	c := NewCompiler(nil)
	doc := `{"a": {"properties": {"x": "int"}}}`

	res, err := c.Compile(mustParse(t, doc), mustParse(t, doc), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, NoChanges, res.Status)
	assert.Nil(t, res.Artifact)
	assert.Equal(t, "no changes", res.Status.String())
}

func TestCompile_EnumListIsNotEmitted(t *testing.T) {
	c := NewCompiler(nil)
	from := mustParse(t, `{"users": {"properties": {"status": {"type": "enum", "enum": ["a", "b"]}}}}`)
	to := mustParse(t, `{"users": {"properties": {"status": {"type": "enum", "enum": ["a", "b", "c"]}}}}`)

	res, err := c.Compile(from, to, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(res.Artifact.Text, `db.removeColumn("users", "status");`))
	assert.Equal(t, 2, strings.Count(res.Artifact.Text, "db.addColumn(\"users\", \"status\", {\n      \"type\": \"string\"\n  });"))
	assert.NotContains(t, res.Artifact.Text, "enum")
}

func TestCompile_InvalidPropertyProducesNothing(t *testing.T) {
	c := NewCompiler(nil)
	to := mustParse(t, `{"users": {"properties": {"name": "string", "broken": {"default": 1}}}}`)

	res, err := c.Compile(schema.NewSchema(), to, fixedNow)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, schema.ErrInvalidPropertyDefinition))

	var opErr *domain.OperationError
	assert.True(t, errors.As(err, &opErr))
}

func TestCompile_MalformedResourceFails(t *testing.T) {
	c := NewCompiler(nil)
	from := mustParse(t, `{"users": {"properties": {"name": "string"}}}`)
	to := mustParse(t, `{"users": "oops"}`)

	_, err := c.Compile(from, to, fixedNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrInvalidSchemaShape))
}

func TestCompile_DeterministicText(t *testing.T) {
	c := NewCompiler(nil)
	from := `{"a": {"properties": {"x": "int"}}, "b": {"properties": {"k": "text"}}}`
	to := `{"a": {"properties": {"x": "bigint", "y": {"type": "string", "length": 3}}}, "c": {"properties": {"id": "uuid"}}}`

	first, err := c.Compile(mustParse(t, from), mustParse(t, to), fixedNow)
	require.NoError(t, err)
	second, err := c.Compile(mustParse(t, from), mustParse(t, to), fixedNow.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.Artifact.Text, second.Artifact.Text)
	assert.NotEqual(t, first.Artifact.Filename, second.Artifact.Filename)
}

func TestCompile_SnapshotRoundTripHasNoChanges(t *testing.T) {
	docs := map[string]string{
		"float zero":      `{"items": {"properties": {"price": {"type": "decimal", "default": 0.0}}}}`,
		"yaml float":      "items:\n  properties:\n    price:\n      type: decimal\n      default: 1.0\n",
		"yaml exponent":   "items:\n  properties:\n    price:\n      type: decimal\n      max: 1e3\n",
		"integers":        `{"items": {"properties": {"qty": {"type": "int", "default": 3, "min": -2}}}}`,
		"fractions":       `{"items": {"properties": {"ratio": {"type": "real", "default": 0.25, "max": 1.5e-3}}}}`,
		"nested numbers":  `{"items": {"properties": {"pos": {"type": "json", "default": {"x": 1.0, "y": [2.0, 0.5]}}}}}`,
		"resource extras": `{"items": {"version": 2.0, "properties": {"name": "string"}}}`,
	}

	c := NewCompiler(nil)
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			current := mustParse(t, doc)

			encoded, err := parser.Encode(current)
			require.NoError(t, err)
			snapshot, err := parser.Parse(encoded, parser.FormatJSON)
			require.NoError(t, err)

			res, err := c.Compile(snapshot, current, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, NoChanges, res.Status)

			res, err = c.Compile(current, snapshot, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, NoChanges, res.Status)
		})
	}
}
