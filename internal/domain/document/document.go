package document

import (
	"fmt"
	"regexp"
	"time"
)

var (
	idRegex     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	reservedIDs = map[string]bool{"search": true, "collections": true}
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is the document aggregate (immutable value object).
type Document struct {
	id        string
	content   string
	metadata  map[string]string
	vector    []float32
	createdAt int64
	updatedAt int64
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars, not reserved.
// Content: non-empty, max 160KB. Metadata schema validation happens in the service layer.
func New(id, content string, metadata map[string]string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if reservedIDs[id] {
		return Document{}, fmt.Errorf("document ID %q is reserved", id)
	}
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}

	now := time.Now().UnixMilli()
	return Document{
		id:        id,
		content:   content,
		metadata:  cloneStringMap(metadata),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, content string, metadata map[string]string,
	vector []float32, createdAt, updatedAt int64,
) Document {
	return Document{
		id: id, content: content, metadata: metadata,
		vector: vector, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Metadata returns the metadata fields.
func (d *Document) Metadata() map[string]string { return d.metadata }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// CreatedAt returns the creation timestamp (unix millis).
func (d *Document) CreatedAt() int64 { return d.createdAt }

// UpdatedAt returns the last update timestamp (unix millis).
func (d *Document) UpdatedAt() int64 { return d.updatedAt }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32) Document {
	c := *d
	c.vector = v
	return c
}

// WithCreatedAt returns a copy with the creation timestamp replaced.
// Replace-правка сохраняет исходный createdAt документа.
func (d *Document) WithCreatedAt(ts int64) Document {
	c := *d
	c.createdAt = ts
	return c
}

// SetVector sets the vector in place (mutation).
func (d *Document) SetVector(v []float32) { d.vector = v }

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
