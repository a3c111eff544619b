package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/schemigrate/internal/core/schema/domain"
)

const yamlSchema = `
users:
  properties:
    name: string
    status:
      type: enum
      enum: [active, banned]
      default: active
    age: int
logs:
  persistent: false
  properties:
    line: text
`

func TestParse_YAMLKeepsOrder(t *testing.T) {
	s, err := Parse([]byte(yamlSchema), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"users", "logs"}, s.Names())

	users, ok := s.Get("users")
	require.True(t, ok)
	assert.True(t, users.IsPersistent())
	assert.Equal(t, []string{"name", "status", "age"}, users.PropertyNames())

	status, _ := users.Property("status")
	assert.Equal(t, domain.KindDetailed, status.Kind())
	typ, _ := status.Type()
	assert.Equal(t, "enum", typ)
	values, _ := status.Enum()
	assert.Equal(t, []string{"active", "banned"}, values)
	assert.Equal(t, []domain.Attribute{{Key: "default", Value: "active"}}, status.Extras())

	logs, _ := s.Get("logs")
	assert.False(t, logs.IsPersistent())
}

func TestParse_JSONKeepsOrder(t *testing.T) {
	doc := `{"zeta": {"properties": {"b": "int", "a": {"type": "string", "length": 32}}}, "alpha": {}}`

	s, err := Parse([]byte(doc), FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha"}, s.Names())
	zeta, _ := s.Get("zeta")
	assert.Equal(t, []string{"b", "a"}, zeta.PropertyNames())

	a, _ := zeta.Property("a")
	assert.Equal(t, []domain.Attribute{{Key: "length", Value: 32}}, a.Extras())
}

func TestParse_JSONAndYAMLAgree(t *testing.T) {
	fromYAML, err := Parse([]byte(yamlSchema), FormatYAML)
	require.NoError(t, err)

	encoded, err := Encode(fromYAML)
	require.NoError(t, err)

	fromJSON, err := Parse(encoded, FormatJSON)
	require.NoError(t, err)

	assert.True(t, fromYAML.Equal(fromJSON))
	assert.Equal(t, fromYAML.Names(), fromJSON.Names())
}

func TestParse_Empty(t *testing.T) {
	for _, doc := range []string{"", "   \n", "{}", "null", "~"} {
		s, err := Parse([]byte(doc), FormatAuto)
		require.NoError(t, err, doc)
		assert.Equal(t, 0, s.Len(), doc)
	}
}

func TestParse_RootMustBeMapping(t *testing.T) {
	_, err := Parse([]byte(`[1, 2]`), FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidSchemaShape))

	_, err = Parse([]byte("- users\n- logs\n"), FormatYAML)
	assert.True(t, errors.Is(err, domain.ErrInvalidSchemaShape))
}

func TestParse_SyntaxErrors(t *testing.T) {
	_, err := Parse([]byte(`{"users": `), FormatJSON)
	assert.Error(t, err)

	_, err = Parse([]byte(`{"users": {}} {}`), FormatJSON)
	assert.Error(t, err)

	_, err = Parse([]byte("users: [unclosed"), FormatYAML)
	assert.Error(t, err)
}

func TestParse_MalformedEntriesAreKept(t *testing.T) {
	doc := `{
		"listy": ["not", "a", "mapping"],
		"badprops": {"properties": "nope"},
		"users": {
			"persistent": "yes",
			"properties": {
				"n": 42,
				"t": {"type": 7},
				"e": {"enum": "abc"},
				"l": ["x"],
				"empty": {}
			}
		}
	}`

	s, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)

	listy, _ := s.Get("listy")
	assert.True(t, listy.IsMalformed())
	assert.Equal(t, []any{"not", "a", "mapping"}, listy.Raw())

	badprops, _ := s.Get("badprops")
	assert.True(t, badprops.IsMalformed())

	users, _ := s.Get("users")
	assert.False(t, users.IsMalformed())
	assert.Nil(t, users.Persistent)
	assert.Equal(t, []domain.Attribute{{Key: "persistent", Value: "yes"}}, users.Extras)

	for _, name := range []string{"n", "t", "e", "l"} {
		p, _ := users.Property(name)
		assert.Equal(t, domain.KindMalformed, p.Kind(), name)
	}

	empty, _ := users.Property("empty")
	assert.Equal(t, domain.KindDetailed, empty.Kind())
}

func TestParse_YAMLMergeKeys(t *testing.T) {
	doc := `
base: &base
  id: uuid
  created_at: datetime
users:
  properties:
    <<: *base
    name: string
`
	s, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)

	users, _ := s.Get("users")
	assert.Equal(t, []string{"id", "created_at", "name"}, users.PropertyNames())
}

func TestEncode_RoundTripsOrder(t *testing.T) {
	s, err := Parse([]byte(yamlSchema), FormatYAML)
	require.NoError(t, err)

	out, err := Encode(s)
	require.NoError(t, err)

	expected := `{
    "users": {
        "properties": {
            "name": "string",
            "status": {
                "type": "enum",
                "enum": [
                    "active",
                    "banned"
                ],
                "default": "active"
            },
            "age": "int"
        }
    },
    "logs": {
        "persistent": false,
        "properties": {
            "line": "text"
        }
    }
}
`
	assert.Equal(t, expected, string(out))
}

func TestEncode_Nil(t *testing.T) {
	out, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("schema.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("dir/schema.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("schema.yaml"))
	assert.Equal(t, FormatAuto, FormatFromPath("schema"))
}

func TestParse_IntegralFloatsBecomeInts(t *testing.T) {
	docs := map[string]string{
		"json": `{"p": {"properties": {"x": {"type": "decimal", "default": 1.0, "scale": 2.5, "max": 1e3, "min": -0.0}}}}`,
		"yaml": "p:\n  properties:\n    x:\n      type: decimal\n      default: 1.0\n      scale: 2.5\n      max: 1e3\n      min: -0.0\n",
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			s, err := Parse([]byte(doc), FormatAuto)
			require.NoError(t, err)

			p, _ := s.Get("p")
			x, _ := p.Property("x")
			assert.Equal(t, []domain.Attribute{
				{Key: "default", Value: 1},
				{Key: "scale", Value: 2.5},
				{Key: "max", Value: 1000},
				{Key: "min", Value: 0},
			}, x.Extras())
		})
	}
}

func TestEncode_KeepsKeyOrderAndHTML(t *testing.T) {
	doc := `
users:
  properties:
    status:
      default: active
      type: enum
      enum: [active]
  persistent: true
  comment: "<a & b>"
`
	s, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)

	out, err := Encode(s)
	require.NoError(t, err)

	expected := `{
    "users": {
        "properties": {
            "status": {
                "default": "active",
                "type": "enum",
                "enum": [
                    "active"
                ]
            }
        },
        "persistent": true,
        "comment": "<a & b>"
    }
}
`
	assert.Equal(t, expected, string(out))

	again, err := Parse(out, FormatJSON)
	require.NoError(t, err)
	assert.True(t, s.Equal(again))
}
