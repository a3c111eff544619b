package domain

import (
	"fmt"
	"math"
	"reflect"
)

// PropertyKind tags the shape of a property definition.
type PropertyKind int

const (
	// KindBare is a bare type name such as "string".
	KindBare PropertyKind = iota
	// KindDetailed is a mapping with optional type, enum and extra attributes.
	KindDetailed
	// KindMalformed is any other source value.
	KindMalformed
)

func (k PropertyKind) String() string {
	switch k {
	case KindBare:
		return "bare"
	case KindDetailed:
		return "detailed"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("PropertyKind(%d)", int(k))
	}
}

// Property is one named, typed attribute of a resource. The zero value is a
// bare property with an empty type name, which never resolves.
type Property struct {
	kind    PropertyKind
	typ     string
	hasType bool
	enum    []string
	hasEnum bool
	extras  []Attribute
	raw     any
	// keys is the order detailed keys were first set in.
	keys []string
}

// Bare creates a bare type-name property.
func Bare(typeName string) Property {
	return Property{kind: KindBare, typ: typeName, hasType: true}
}

// Detailed creates an empty detailed property. Use the With methods to
// populate it.
func Detailed() Property {
	return Property{kind: KindDetailed}
}

// Malformed wraps a source value that is neither a string nor a mapping.
func Malformed(raw any) Property {
	return Property{kind: KindMalformed, raw: cloneValue(raw)}
}

// WithType returns a copy of a detailed property with its type set.
func (p Property) WithType(typeName string) Property {
	out := p.Clone()
	if !out.hasType {
		out.keys = append(out.keys, "type")
	}
	out.typ = typeName
	out.hasType = true
	return out
}

// WithEnum returns a copy of a detailed property with its enum list set.
func (p Property) WithEnum(values ...string) Property {
	out := p.Clone()
	if !out.hasEnum {
		out.keys = append(out.keys, "enum")
	}
	out.enum = append([]string{}, values...)
	out.hasEnum = true
	return out
}

// WithoutEnum returns a copy with the enum list removed.
func (p Property) WithoutEnum() Property {
	out := p.Clone()
	out.enum = nil
	out.hasEnum = false
	out.keys = removeKey(out.keys, "enum")
	return out
}

// WithAttribute returns a copy with an extra attribute set. An existing key
// keeps its position.
func (p Property) WithAttribute(key string, value any) Property {
	out := p.Clone()
	for i := range out.extras {
		if out.extras[i].Key == key {
			out.extras[i].Value = cloneValue(value)
			return out
		}
	}
	out.extras = append(out.extras, Attribute{Key: key, Value: cloneValue(value)})
	out.keys = append(out.keys, key)
	return out
}

// Kind returns the shape of the definition.
func (p Property) Kind() PropertyKind { return p.kind }

// Type returns the declared type name, if any.
func (p Property) Type() (string, bool) { return p.typ, p.hasType }

// Enum returns a copy of the declared enum values, if any.
func (p Property) Enum() ([]string, bool) {
	if !p.hasEnum {
		return nil, false
	}
	return append([]string{}, p.enum...), true
}

// Extras returns a copy of the extra attributes in source order.
func (p Property) Extras() []Attribute { return cloneAttributes(p.extras) }

// Raw returns the source value of a malformed property.
func (p Property) Raw() any { return cloneValue(p.raw) }

// Clone returns a deep copy.
func (p Property) Clone() Property {
	out := p
	if p.enum != nil {
		out.enum = append([]string{}, p.enum...)
	}
	out.extras = cloneAttributes(p.extras)
	out.raw = cloneValue(p.raw)
	if p.keys != nil {
		out.keys = append([]string{}, p.keys...)
	}
	return out
}

// Equal reports deep structural equality over the full definition. Enum order
// is significant; extra attribute order is not.
func (p Property) Equal(o Property) bool {
	if p.kind != o.kind {
		return false
	}
	switch p.kind {
	case KindBare:
		return p.typ == o.typ
	case KindMalformed:
		return valuesEqual(p.raw, o.raw)
	}
	if p.hasType != o.hasType || p.typ != o.typ {
		return false
	}
	if p.hasEnum != o.hasEnum || len(p.enum) != len(o.enum) {
		return false
	}
	for i := range p.enum {
		if p.enum[i] != o.enum[i] {
			return false
		}
	}
	return attributesEqual(p.extras, o.extras)
}

func removeKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i:i], keys[i+1:]...)
		}
	}
	return keys
}

func cloneAttributes(attrs []Attribute) []Attribute {
	if attrs == nil {
		return nil
	}
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = Attribute{Key: a.Key, Value: cloneValue(a.Value)}
	}
	return out
}

func attributesEqual(a, b []Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	index := make(map[string]any, len(b))
	for _, attr := range b {
		index[attr.Key] = attr.Value
	}
	for _, attr := range a {
		v, ok := index[attr.Key]
		if !ok || !valuesEqual(attr.Value, v) {
			return false
		}
	}
	return true
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// valuesEqual compares plain decoded data. Numbers compare by value, so 1 and
// 1.0 are equal whichever decoder produced them.
func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !valuesEqual(v, w) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}

	if x, ok := integer(a); ok {
		if y, ok := integer(b); ok {
			return x == y
		}
	}
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	return reflect.DeepEqual(a, b)
}

func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n), true
		}
	case uint32:
		return int64(n), true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

func number(v any) (float64, bool) {
	if i, ok := integer(v); ok {
		return float64(i), true
	}
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
