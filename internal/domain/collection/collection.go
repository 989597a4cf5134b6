package collection

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/intramind/intramind/internal/domain/collection/field"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

var reservedNames = map[string]bool{
	"search": true, "collections": true, "documents": true,
}

// Canonicalize returns the canonical form of a collection name: the first
// letter upper-cased, the rest preserved. `myCollection` and `MyCollection`
// address the same collection.
func Canonicalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Collection is the document collection aggregate (immutable value object).
type Collection struct {
	name        string
	description string
	fields      []field.Field
	vectorDim   int
	vectorCount int64
	createdAt   int64
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if reservedNames[strings.ToLower(name)] {
		return fmt.Errorf("collection name %q is reserved", name)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must start with a letter and contain only letters, digits and underscores")
	}
	return nil
}

func validateFields(fields []field.Field) error {
	if len(fields) > 64 {
		return fmt.Errorf("too many fields (max 64)")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name()] {
			return fmt.Errorf("duplicate field name: %s", f.Name())
		}
		seen[f.Name()] = true
	}
	return nil
}

// New validates and creates a Collection. The name is canonicalized.
// Name: first char a letter, then [a-zA-Z0-9_], 1-64 chars, not reserved.
// Description: max 1024 chars. Fields: unique names, max 64. VectorDim: > 0.
func New(name, description string, fields []field.Field, vectorDim int) (Collection, error) {
	if err := validateName(name); err != nil {
		return Collection{}, err
	}
	if len(description) > 1024 {
		return Collection{}, fmt.Errorf("description too long (max 1024)")
	}
	if vectorDim <= 0 {
		return Collection{}, fmt.Errorf("vector dimension must be positive")
	}
	if err := validateFields(fields); err != nil {
		return Collection{}, err
	}

	return Collection{
		name:        Canonicalize(name),
		description: description,
		fields:      fields,
		vectorDim:   vectorDim,
		createdAt:   time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(
	name, description string, fields []field.Field,
	vectorDim int, createdAt int64,
) Collection {
	return Collection{
		name:        name,
		description: description,
		fields:      fields,
		vectorDim:   vectorDim,
		createdAt:   createdAt,
	}
}

// WithVectorCount returns a copy with the document count attached.
// Счётчик не хранится, он выводится из индекса при чтении.
func (c Collection) WithVectorCount(n int64) Collection {
	c.vectorCount = n
	return c
}

// Name returns the canonical collection name.
func (c Collection) Name() string { return c.name }

// Description returns the collection description.
func (c Collection) Description() string { return c.description }

// Fields returns the declared metadata field definitions.
func (c Collection) Fields() []field.Field { return c.fields }

// VectorDim returns the vector dimension.
func (c Collection) VectorDim() int { return c.vectorDim }

// VectorCount returns the number of stored documents, if attached.
func (c Collection) VectorCount() int64 { return c.vectorCount }

// CreatedAt returns the creation timestamp (unix millis).
func (c Collection) CreatedAt() int64 { return c.createdAt }

// HasField checks if a field with the given name and type is declared.
func (c Collection) HasField(name string, ft field.Type) bool {
	for _, f := range c.fields {
		if f.Name() == name && f.FieldType() == ft {
			return true
		}
	}
	return false
}

// FieldByName looks up a declared field by name.
func (c Collection) FieldByName(name string) (field.Field, bool) {
	for _, f := range c.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return field.Field{}, false
}
