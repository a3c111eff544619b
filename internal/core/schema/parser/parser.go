// Package parser reads schema documents into the schema domain model and
// writes schema snapshots back out.
//
// JSON and YAML documents are accepted. Resource and property order follows
// the document, which is what makes diffing deterministic.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/satishbabariya/schemigrate/internal/core/schema/domain"
)

// Format identifies the syntax of a schema document.
type Format string

const (
	// FormatAuto picks JSON when the document starts with '{' and YAML otherwise.
	FormatAuto Format = ""
	// FormatJSON parses the document as JSON.
	FormatJSON Format = "json"
	// FormatYAML parses the document as YAML.
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the document format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Parse decodes a schema document. An empty document is an empty schema.
//
// Resources that are not mappings and properties that are neither strings nor
// mappings are kept as malformed entries rather than rejected, so that they can
// still be diffed; only rendering needs resolved types.
func Parse(data []byte, format Format) (*domain.Schema, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return domain.NewSchema(), nil
	}

	if format == FormatAuto {
		format = FormatYAML
		if trimmed[0] == '{' {
			format = FormatJSON
		}
	}

	var (
		root *value
		err  error
	)
	switch format {
	case FormatJSON:
		root, err = decodeJSON(trimmed)
	case FormatYAML:
		root, err = decodeYAML(trimmed)
	default:
		return nil, fmt.Errorf("unsupported schema format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	return buildSchema(root)
}

// Encode writes a schema snapshot as JSON indented with four spaces, keeping
// source order. HTML characters are not escaped.
func Encode(s *domain.Schema) ([]byte, error) {
	if s == nil {
		s = domain.NewSchema()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return buf.Bytes(), nil
}

func buildSchema(root *value) (*domain.Schema, error) {
	s := domain.NewSchema()
	if root == nil || (root.kind == scalarValue && root.scalar == nil) {
		return s, nil
	}
	if root.kind != mappingValue {
		return nil, fmt.Errorf("%w: schema document must be a mapping of resource names", domain.ErrInvalidSchemaShape)
	}

	for _, name := range root.keys {
		s.Set(name, buildResource(root.fields[name]))
	}
	return s, nil
}

func buildResource(v *value) *domain.Resource {
	if v.kind != mappingValue {
		return domain.MalformedResource(v.plain())
	}
	if props, ok := v.fields["properties"]; ok && props.kind != mappingValue {
		return domain.MalformedResource(v.plain())
	}

	r := &domain.Resource{}
	r.SetKeyOrder(v.keys)
	for _, key := range v.keys {
		field := v.fields[key]
		switch key {
		case "persistent":
			if b, ok := field.scalar.(bool); ok && field.kind == scalarValue {
				r.Persistent = &b
				continue
			}
			r.Extras = append(r.Extras, domain.Attribute{Key: key, Value: field.plain()})
		case "properties":
			r.Properties = domain.NewProperties()
			for _, name := range field.keys {
				r.Properties.Set(name, buildProperty(field.fields[name]))
			}
		default:
			r.Extras = append(r.Extras, domain.Attribute{Key: key, Value: field.plain()})
		}
	}
	return r
}

func buildProperty(v *value) domain.Property {
	switch v.kind {
	case scalarValue:
		if s, ok := v.scalar.(string); ok {
			return domain.Bare(s)
		}
		return domain.Malformed(v.plain())
	case sequenceValue:
		return domain.Malformed(v.plain())
	}

	p := domain.Detailed()
	for _, key := range v.keys {
		field := v.fields[key]
		switch key {
		case "type":
			s, ok := field.scalar.(string)
			if !ok || field.kind != scalarValue {
				return domain.Malformed(v.plain())
			}
			p = p.WithType(s)
		case "enum":
			values, ok := field.strings()
			if !ok {
				return domain.Malformed(v.plain())
			}
			p = p.WithEnum(values...)
		default:
			p = p.WithAttribute(key, field.plain())
		}
	}
	return p
}
