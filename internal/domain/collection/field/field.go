package field

import (
	"fmt"
	"regexp"
)

// Type is the declared type of a metadata field.
type Type string

// Field type constants.
const (
	// String is an exact-match filterable field.
	String Type = "string"
	// Number is a range-filterable field.
	Number Type = "number"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

var reservedFieldNames = map[string]bool{
	"id": true, "content": true, "score": true, "vector": true,
}

// Field is an immutable value object describing a declared metadata field.
// Declared fields become filterable index attributes; undeclared metadata
// keys are stored but not filterable.
type Field struct {
	name      string
	fieldType Type
}

// New validates and creates a Field.
// Name must start with a letter, contain only letters/digits/underscore,
// be at most 64 chars, and not be reserved. Type must be string or number.
func New(name string, ft Type) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if reservedFieldNames[name] {
		return Field{}, fmt.Errorf("field name %q is reserved", name)
	}
	if !nameRegex.MatchString(name) {
		return Field{}, fmt.Errorf("field name %q must start with a letter and contain only letters, digits and underscores", name)
	}
	if ft != String && ft != Number {
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, fieldType: ft}, nil
}

// Reconstruct creates a Field without validation (storage hydration).
func Reconstruct(name string, ft Type) Field {
	return Field{name: name, fieldType: ft}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the field's declared type.
func (f Field) FieldType() Type { return f.fieldType }
