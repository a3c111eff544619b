// Package sanitizer maps the shorthand type names schema authors write onto
// the canonical type vocabulary of the migration DSL.
package sanitizer

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/schemigrate/internal/core/schema/domain"
)

// Canonical type names understood by the migration DSL.
const (
	String    = "string"
	Char      = "char"
	Text      = "text"
	SmallInt  = "smallint"
	Int       = "int"
	BigInt    = "bigint"
	Real      = "real"
	Decimal   = "decimal"
	Boolean   = "boolean"
	Date      = "date"
	DateTime  = "datetime"
	Time      = "time"
	Timestamp = "timestamp"
	Blob      = "blob"
	Binary    = "binary"
)

// aliases maps lower-cased shorthand onto canonical names. Canonical names map
// onto themselves.
var aliases = map[string]string{
	"string":    String,
	"str":       String,
	"varchar":   String,
	"enum":      String,
	"uuid":      String,
	"char":      Char,
	"character": Char,
	"text":      Text,
	"longtext":  Text,
	"json":      Text,
	"object":    Text,
	"array":     Text,
	"smallint":  SmallInt,
	"int":       Int,
	"integer":   Int,
	"number":    Int,
	"bigint":    BigInt,
	"long":      BigInt,
	"real":      Real,
	"float":     Real,
	"double":    Real,
	"decimal":   Decimal,
	"numeric":   Decimal,
	"money":     Decimal,
	"boolean":   Boolean,
	"bool":      Boolean,
	"date":      Date,
	"datetime":  DateTime,
	"time":      Time,
	"timestamp": Timestamp,
	"blob":      Blob,
	"bytes":     Blob,
	"binary":    Binary,
}

// CanonicalType maps a type alias onto the canonical vocabulary. Unknown names
// are passed through trimmed, so authors can target driver-specific types.
func CanonicalType(alias string) string {
	name := strings.TrimSpace(alias)
	if canonical, ok := aliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// Resolve returns the canonical type of a property. A declared type wins over
// an enum list; an enum list alone resolves to the string type.
func Resolve(p domain.Property) (string, error) {
	switch p.Kind() {
	case domain.KindBare:
		t, _ := p.Type()
		if strings.TrimSpace(t) == "" {
			return "", fmt.Errorf("%w: empty type name", domain.ErrInvalidPropertyDefinition)
		}
		return CanonicalType(t), nil
	case domain.KindDetailed:
		if t, ok := p.Type(); ok && strings.TrimSpace(t) != "" {
			return CanonicalType(t), nil
		}
		if _, ok := p.Enum(); ok {
			return CanonicalType("enum"), nil
		}
		return "", fmt.Errorf("%w: no type or enum found", domain.ErrInvalidPropertyDefinition)
	default:
		return "", domain.NewShapeError("property must be a type name or a mapping, got %T", p.Raw())
	}
}

// Sanitize returns the definition to emit: a bare property becomes its
// canonical type name; a detailed one gets its canonical type and loses its
// enum list. The input is never modified.
func Sanitize(p domain.Property) (domain.Property, error) {
	canonical, err := Resolve(p)
	if err != nil {
		return domain.Property{}, err
	}
	if p.Kind() == domain.KindBare {
		return domain.Bare(canonical), nil
	}
	return p.WithType(canonical).WithoutEnum(), nil
}

// SanitizeProperties sanitizes every property of a set, keeping order. The
// first failure aborts and names the offending property.
func SanitizeProperties(props *domain.Properties) (*domain.Properties, error) {
	out := domain.NewProperties()
	for _, name := range props.Names() {
		def, _ := props.Get(name)
		clean, err := Sanitize(def)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		out.Set(name, clean)
	}
	return out, nil
}
