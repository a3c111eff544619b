package domain

// Attribute is a key/value pair kept verbatim from the source document.
// Values are plain decoded data: string, bool, int, float64, nil,
// []any or map[string]any.
type Attribute struct {
	Key   string
	Value any
}

// Resource is one storable entity type. When persistent it maps to a table.
type Resource struct {
	// Persistent is nil when the source left persistence unspecified.
	Persistent *bool
	// Properties is nil when the source had no properties entry.
	Properties *Properties
	// Extras holds every other attribute of the resource, in source order.
	Extras []Attribute

	malformed bool
	raw       any
	order     []string
}

// NewResource creates a resource with an empty property set.
func NewResource() *Resource {
	return &Resource{Properties: NewProperties()}
}

// MalformedResource wraps a source value that is not a mapping.
func MalformedResource(raw any) *Resource {
	return &Resource{malformed: true, raw: cloneValue(raw)}
}

// SetKeyOrder records the source order of the resource's keys. Encoding
// follows it; keys it does not name come after, in field order.
func (r *Resource) SetKeyOrder(keys []string) {
	r.order = append([]string(nil), keys...)
}

// IsPersistent reports whether the resource is backed by a table.
// Unspecified persistence counts as persistent.
func (r *Resource) IsPersistent() bool {
	if r == nil || r.Persistent == nil {
		return true
	}
	return *r.Persistent
}

// IsMalformed reports whether the source value was not a mapping.
func (r *Resource) IsMalformed() bool {
	return r != nil && r.malformed
}

// Raw returns the source value of a malformed resource.
func (r *Resource) Raw() any {
	if r == nil {
		return nil
	}
	return cloneValue(r.raw)
}

// Property returns the named property.
func (r *Resource) Property(name string) (Property, bool) {
	if r == nil {
		return Property{}, false
	}
	return r.Properties.Get(name)
}

// PropertyNames returns property names in source order.
func (r *Resource) PropertyNames() []string {
	if r == nil {
		return nil
	}
	return r.Properties.Names()
}

// Clone returns a deep copy.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	out := &Resource{
		malformed: r.malformed,
		raw:       cloneValue(r.raw),
		Extras:    cloneAttributes(r.Extras),
		order:     append([]string(nil), r.order...),
	}
	if r.Persistent != nil {
		p := *r.Persistent
		out.Persistent = &p
	}
	if r.Properties != nil {
		out.Properties = r.Properties.Clone()
	}
	return out
}

// Equal reports structural equality.
func (r *Resource) Equal(o *Resource) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.malformed != o.malformed {
		return false
	}
	if r.malformed {
		return valuesEqual(r.raw, o.raw)
	}
	if (r.Persistent == nil) != (o.Persistent == nil) {
		return false
	}
	if r.Persistent != nil && *r.Persistent != *o.Persistent {
		return false
	}
	if (r.Properties == nil) != (o.Properties == nil) {
		return false
	}
	if !r.Properties.Equal(o.Properties) {
		return false
	}
	return attributesEqual(r.Extras, o.Extras)
}

// Properties is an ordered mapping from property name to definition.
// A nil *Properties behaves as an empty set.
type Properties struct {
	names []string
	defs  map[string]Property
}

// NewProperties creates an empty property set.
func NewProperties() *Properties {
	return &Properties{defs: make(map[string]Property)}
}

// Set adds or replaces a property. Replacing keeps the original position.
func (p *Properties) Set(name string, def Property) {
	if p.defs == nil {
		p.defs = make(map[string]Property)
	}
	if _, exists := p.defs[name]; !exists {
		p.names = append(p.names, name)
	}
	p.defs[name] = def
}

// Get returns the property registered under name.
func (p *Properties) Get(name string) (Property, bool) {
	if p == nil {
		return Property{}, false
	}
	def, ok := p.defs[name]
	return def, ok
}

// Has reports whether a property named name exists.
func (p *Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Delete removes a property.
func (p *Properties) Delete(name string) {
	if p == nil {
		return
	}
	if _, ok := p.defs[name]; !ok {
		return
	}
	delete(p.defs, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i:i], p.names[i+1:]...)
			break
		}
	}
}

// Names returns property names in insertion order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	out := NewProperties()
	for _, name := range p.Names() {
		out.Set(name, p.defs[name].Clone())
	}
	return out
}

// Equal reports structural equality. Property order is not significant.
func (p *Properties) Equal(o *Properties) bool {
	if p.Len() != o.Len() {
		return false
	}
	for _, name := range p.Names() {
		a, _ := p.Get(name)
		b, ok := o.Get(name)
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}
