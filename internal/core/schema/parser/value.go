package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

type valueKind int

const (
	scalarValue valueKind = iota
	mappingValue
	sequenceValue
)

// value is a decoded document node that remembers mapping key order.
type value struct {
	kind   valueKind
	keys   []string
	fields map[string]*value
	items  []*value
	scalar any
}

func newMapping() *value {
	return &value{kind: mappingValue, fields: make(map[string]*value)}
}

// set stores a mapping entry; a repeated key keeps its first position and its
// last value.
func (v *value) set(key string, item *value) {
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = item
}

// plain converts the node to plain Go data.
func (v *value) plain() any {
	if v == nil {
		return nil
	}
	switch v.kind {
	case mappingValue:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.fields[k].plain()
		}
		return out
	case sequenceValue:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.plain()
		}
		return out
	default:
		return v.scalar
	}
}

// strings returns the items of a sequence of strings.
func (v *value) strings() ([]string, bool) {
	if v.kind != sequenceValue {
		return nil, false
	}
	out := make([]string, 0, len(v.items))
	for _, item := range v.items {
		s, ok := item.scalar.(string)
		if !ok || item.kind != scalarValue {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func decodeJSON(data []byte) (*value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := readJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON schema: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse JSON schema: unexpected data after document")
	}
	return root, nil
}

func readJSONValue(dec *json.Decoder) (*value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := newMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				item, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				v.set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return v, nil
		case '[':
			v := &value{kind: sequenceValue}
			for dec.More() {
				item, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return v, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case json.Number:
		return &value{kind: scalarValue, scalar: jsonNumber(t)}, nil
	default:
		return &value{kind: scalarValue, scalar: t}, nil
	}
}

// jsonNumber decodes a JSON number the way scalarNumber normalises YAML ones.
func jsonNumber(n json.Number) any {
	if i, err := strconv.ParseInt(n.String(), 10, 0); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return scalarNumber(f)
	}
	return n.String()
}

// scalarNumber turns integral floats into ints, the form they take once
// written to a snapshot and read back.
func scalarNumber(v any) any {
	f, ok := v.(float64)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return v
	}
	if f < -(1<<63) || f >= 1<<63 {
		return v
	}
	return int(f)
}

func decodeYAML(data []byte) (*value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML schema: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root, err := fromYAMLNode(doc.Content[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML schema: %w", err)
	}
	return root, nil
}

func fromYAMLNode(n *yaml.Node) (*value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		v := newMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, itemNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			if keyNode.Tag == "!!merge" {
				if err := mergeYAML(v, itemNode); err != nil {
					return nil, err
				}
				continue
			}
			item, err := fromYAMLNode(itemNode)
			if err != nil {
				return nil, err
			}
			v.set(keyNode.Value, item)
		}
		return v, nil
	case yaml.SequenceNode:
		v := &value{kind: sequenceValue}
		for _, child := range n.Content {
			item, err := fromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			v.items = append(v.items, item)
		}
		return v, nil
	default:
		var scalar any
		if err := n.Decode(&scalar); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return &value{kind: scalarValue, scalar: scalarNumber(scalar)}, nil
	}
}

// mergeYAML applies a "<<" merge key. Keys already present win.
func mergeYAML(into *value, n *yaml.Node) error {
	src, err := fromYAMLNode(n)
	if err != nil {
		return err
	}
	sources := []*value{src}
	if src != nil && src.kind == sequenceValue {
		sources = src.items
	}
	for _, s := range sources {
		if s == nil || s.kind != mappingValue {
			return fmt.Errorf("line %d: merge value must be a mapping", n.Line)
		}
		for _, k := range s.keys {
			if _, exists := into.fields[k]; !exists {
				into.set(k, s.fields[k])
			}
		}
	}
	return nil
}
