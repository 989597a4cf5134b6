package document

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	meta := map[string]string{"lang": "go"}
	before := time.Now().UnixMilli()

	doc, err := New("doc-1", "hello world", meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := time.Now().UnixMilli()

	if doc.ID() != "doc-1" {
		t.Errorf("ID() = %q", doc.ID())
	}
	if doc.Content() != "hello world" {
		t.Errorf("Content() = %q", doc.Content())
	}
	if doc.Metadata()["lang"] != "go" {
		t.Errorf("Metadata() = %v", doc.Metadata())
	}
	if doc.Vector() != nil {
		t.Errorf("Vector() should be nil for new document")
	}
	if doc.CreatedAt() < before || doc.CreatedAt() > after {
		t.Errorf("CreatedAt() = %d, want between %d and %d", doc.CreatedAt(), before, after)
	}
	if doc.UpdatedAt() != doc.CreatedAt() {
		t.Errorf("UpdatedAt() = %d, want %d", doc.UpdatedAt(), doc.CreatedAt())
	}
}

func TestNew_NilMetadata(t *testing.T) {
	doc, err := New("doc-1", "content", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata() != nil {
		t.Errorf("Metadata() = %v, want nil", doc.Metadata())
	}
}

func TestNew_ClonesMetadata(t *testing.T) {
	meta := map[string]string{"k": "v"}

	doc, _ := New("doc-1", "content", meta)

	// Mutating the original map must not affect the document
	meta["k"] = "mutated"

	if doc.Metadata()["k"] != "v" {
		t.Error("metadata mutation leaked into document")
	}
}

func TestNew_EmptyID(t *testing.T) {
	_, err := New("", "content", nil)
	if err == nil {
		t.Fatal("expected error for empty ID")
	}
}

func TestNew_IDTooLong(t *testing.T) {
	_, err := New(strings.Repeat("a", 257), "content", nil)
	if err == nil {
		t.Fatal("expected error for ID too long")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_InvalidIDChars(t *testing.T) {
	ids := []string{"has space", "слово", "doc.id", "doc/id"}
	for _, id := range ids {
		_, err := New(id, "content", nil)
		if err == nil {
			t.Errorf("expected error for ID %q", id)
		}
	}
}

func TestNew_ReservedIDs(t *testing.T) {
	for _, id := range []string{"search", "collections"} {
		_, err := New(id, "content", nil)
		if err == nil {
			t.Errorf("expected error for reserved ID %q", id)
		}
		if !strings.Contains(err.Error(), "reserved") {
			t.Errorf("error for %q = %q, want 'reserved'", id, err)
		}
	}
}

func TestNew_EmptyContent(t *testing.T) {
	_, err := New("doc-1", "", nil)
	if err == nil {
		t.Fatal("expected error for empty content")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_ContentTooLarge(t *testing.T) {
	_, err := New("doc-1", strings.Repeat("x", MaxContentSize+1), nil)
	if err == nil {
		t.Fatal("expected error for content too large")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_ContentAtMaxSize(t *testing.T) {
	_, err := New("doc-1", strings.Repeat("x", MaxContentSize), nil)
	if err != nil {
		t.Fatalf("unexpected error for content at max size: %v", err)
	}
}

func TestWithVector(t *testing.T) {
	doc, _ := New("doc-1", "content", nil)
	vec := []float32{0.1, 0.2, 0.3}

	doc2 := doc.WithVector(vec)

	if doc.Vector() != nil {
		t.Error("original document should not have vector")
	}
	if len(doc2.Vector()) != 3 {
		t.Errorf("WithVector doc has %d elements", len(doc2.Vector()))
	}
	if doc2.ID() != "doc-1" {
		t.Error("WithVector should preserve ID")
	}
}

func TestWithCreatedAt(t *testing.T) {
	doc, _ := New("doc-1", "content", nil)
	doc2 := doc.WithCreatedAt(1700000000000)

	if doc2.CreatedAt() != 1700000000000 {
		t.Errorf("CreatedAt() = %d, want 1700000000000", doc2.CreatedAt())
	}
	if doc2.UpdatedAt() != doc.UpdatedAt() {
		t.Error("WithCreatedAt should preserve UpdatedAt")
	}
	if doc.CreatedAt() == 1700000000000 {
		t.Error("original document must not change")
	}
}

func TestReconstruct(t *testing.T) {
	vec := []float32{1.0, 2.0}
	doc := Reconstruct("id", "text", map[string]string{"k": "v"}, vec, 1700000000000, 1700000001000)

	if doc.ID() != "id" {
		t.Errorf("ID() = %q", doc.ID())
	}
	if doc.Content() != "text" {
		t.Errorf("Content() = %q", doc.Content())
	}
	if len(doc.Vector()) != 2 {
		t.Errorf("Vector() len = %d", len(doc.Vector()))
	}
	if doc.CreatedAt() != 1700000000000 || doc.UpdatedAt() != 1700000001000 {
		t.Errorf("timestamps = (%d, %d)", doc.CreatedAt(), doc.UpdatedAt())
	}
}

func TestReconstruct_SkipsValidation(t *testing.T) {
	// Reconstruct accepts reserved IDs
	doc := Reconstruct("search", "", nil, nil, 0, 0)
	if doc.ID() != "search" {
		t.Errorf("Reconstruct should skip validation")
	}
}
