package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the schema with resources in source order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for _, name := range s.Names() {
		r, _ := s.Get(name)
		if err := w.field(name, r); err != nil {
			return nil, err
		}
	}
	return w.close(), nil
}

// MarshalJSON encodes the resource with its keys in source order.
func (r *Resource) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	if r.malformed {
		return Marshal(r.raw)
	}

	w := newObjectWriter()
	keys := append([]string{}, r.order...)
	keys = append(keys, "persistent", "properties")
	for _, attr := range r.Extras {
		keys = append(keys, attr.Key)
	}
	for _, key := range keys {
		if w.has(key) {
			continue
		}
		if err := r.writeKey(w, key); err != nil {
			return nil, err
		}
	}
	return w.close(), nil
}

func (r *Resource) writeKey(w *objectWriter, key string) error {
	switch {
	case key == "persistent" && r.Persistent != nil:
		return w.field(key, *r.Persistent)
	case key == "properties" && r.Properties != nil:
		return w.field(key, r.Properties)
	}
	for _, attr := range r.Extras {
		if attr.Key == key {
			return w.field(key, attr.Value)
		}
	}
	return nil
}

// MarshalJSON encodes the properties in source order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for _, name := range p.Names() {
		def, _ := p.Get(name)
		if err := w.field(name, def); err != nil {
			return nil, err
		}
	}
	return w.close(), nil
}

// MarshalJSON encodes a bare property as a string and a detailed one as an
// object whose keys keep the order they were set in.
func (p Property) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case KindBare:
		return Marshal(p.typ)
	case KindMalformed:
		return Marshal(p.raw)
	}

	w := newObjectWriter()
	keys := append([]string{}, p.keys...)
	keys = append(keys, "type", "enum")
	for _, attr := range p.extras {
		keys = append(keys, attr.Key)
	}
	for _, key := range keys {
		if w.has(key) {
			continue
		}
		if err := p.writeKey(w, key); err != nil {
			return nil, err
		}
	}
	return w.close(), nil
}

func (p Property) writeKey(w *objectWriter, key string) error {
	switch {
	case key == "type" && p.hasType:
		return w.field(key, p.typ)
	case key == "enum" && p.hasEnum:
		values := p.enum
		if values == nil {
			values = []string{}
		}
		return w.field(key, values)
	}
	for _, attr := range p.extras {
		if attr.Key == key {
			return w.field(key, attr.Value)
		}
	}
	return nil
}

// String returns the JSON form of the definition.
func (p Property) String() string {
	b, err := p.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s property>", p.kind)
	}
	return string(b)
}

// Marshal is json.Marshal without HTML escaping, so "<", ">" and "&" are
// written as is.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// objectWriter builds a JSON object with keys in call order.
type objectWriter struct {
	buf  bytes.Buffer
	seen map[string]bool
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{seen: make(map[string]bool)}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) has(key string) bool {
	return w.seen[key]
}

func (w *objectWriter) field(key string, value any) error {
	k, err := Marshal(key)
	if err != nil {
		return err
	}
	v, err := Marshal(value)
	if err != nil {
		return err
	}
	if len(w.seen) > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(v)
	w.seen[key] = true
	return nil
}

func (w *objectWriter) close() []byte {
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}
