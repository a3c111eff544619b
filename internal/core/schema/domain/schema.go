// Package domain contains the declarative schema data model: resources, their
// properties and the ordered collections that hold them.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPropertyDefinition is returned when a property resolves to
	// neither a type nor an enum.
	ErrInvalidPropertyDefinition = errors.New("invalid property definition")

	// ErrInvalidSchemaShape is returned when a resource or property entry is
	// neither a mapping nor a type name.
	ErrInvalidSchemaShape = errors.New("invalid schema shape")
)

// ShapeError reports a malformed entry met while rendering. A malformed entry
// has no usable type either, so it matches both ErrInvalidSchemaShape and
// ErrInvalidPropertyDefinition.
type ShapeError struct {
	Detail string
}

// NewShapeError formats a ShapeError.
func NewShapeError(format string, args ...any) *ShapeError {
	return &ShapeError{Detail: fmt.Sprintf(format, args...)}
}

func (e *ShapeError) Error() string {
	return ErrInvalidSchemaShape.Error() + ": " + e.Detail
}

// Is matches ErrInvalidSchemaShape and ErrInvalidPropertyDefinition.
func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidSchemaShape || target == ErrInvalidPropertyDefinition
}

// Schema is an ordered mapping from resource name to resource definition.
// Iteration order is the insertion order of the source document.
// A nil *Schema behaves as an empty schema.
type Schema struct {
	names     []string
	resources map[string]*Resource
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{resources: make(map[string]*Resource)}
}

// Set adds or replaces a resource. Replacing keeps the original position.
func (s *Schema) Set(name string, r *Resource) {
	if s.resources == nil {
		s.resources = make(map[string]*Resource)
	}
	if _, exists := s.resources[name]; !exists {
		s.names = append(s.names, name)
	}
	s.resources[name] = r
}

// Get returns the resource registered under name.
func (s *Schema) Get(name string) (*Resource, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.resources[name]
	return r, ok
}

// Has reports whether a resource named name exists.
func (s *Schema) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Delete removes a resource.
func (s *Schema) Delete(name string) {
	if s == nil {
		return
	}
	if _, ok := s.resources[name]; !ok {
		return
	}
	delete(s.resources, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i:i], s.names[i+1:]...)
			break
		}
	}
}

// Names returns the resource names in insertion order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of resources.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	out := NewSchema()
	if s == nil {
		return out
	}
	for _, name := range s.names {
		out.Set(name, s.resources[name].Clone())
	}
	return out
}

// Persistent returns a deep copy restricted to persistent resources.
func (s *Schema) Persistent() *Schema {
	out := NewSchema()
	for _, name := range s.Names() {
		r := s.resources[name]
		if r.IsPersistent() {
			out.Set(name, r.Clone())
		}
	}
	return out
}

// Equal reports structural equality. Resource order is not significant.
func (s *Schema) Equal(o *Schema) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, name := range s.Names() {
		a, _ := s.Get(name)
		b, ok := o.Get(name)
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}
