package document

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/intramind/intramind/internal/domain"
	domcol "github.com/intramind/intramind/internal/domain/collection"
	"github.com/intramind/intramind/internal/domain/collection/field"
	domdoc "github.com/intramind/intramind/internal/domain/document"
)

// Service handles document CRUD with automatic vectorization.
type Service struct {
	repo            Repository
	colls           Collections
	embedder        Embedder
	vectorDim       int
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service. A nil embedder disables vectorization:
// documents are stored without vectors and never hit the embedding provider.
func New(repo Repository, colls Collections, embedder Embedder, vectorDim int) *Service {
	return &Service{
		repo:            repo,
		colls:           colls,
		embedder:        embedder,
		vectorDim:       vectorDim,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert creates or updates a document with automatic vectorization.
// A blank id gets a server-generated UUID. The owning collection is
// created with an empty schema when it does not exist yet.
// Returns the stored document and true when it was created, false when updated.
func (s *Service) Upsert(
	ctx context.Context, collectionName, id, content string, metadata map[string]string,
) (domdoc.Document, bool, error) {
	if id == "" {
		id = uuid.NewString()
	}
	doc, err := domdoc.New(id, content, metadata)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("validate document: %w: %w", domain.ErrInvalidSchema, err)
	}

	col, err := s.ensureCollection(ctx, domcol.Canonicalize(collectionName))
	if err != nil {
		return domdoc.Document{}, false, err
	}
	if err := validateMetadata(metadata, col); err != nil {
		return domdoc.Document{}, false, err
	}
	if err := s.vectorize(ctx, &doc, col); err != nil {
		return domdoc.Document{}, false, err
	}

	created, err := s.repo.Upsert(ctx, col.Name(), &doc)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("upsert document: %w", err)
	}
	return doc, created, nil
}

// Replace overwrites an existing document wholesale. Unlike Upsert it
// never creates: a missing collection or document is reported not found.
// The original created_at of the stored document survives the replace.
func (s *Service) Replace(
	ctx context.Context, collectionName, id, content string, metadata map[string]string,
) (domdoc.Document, error) {
	doc, err := domdoc.New(id, content, metadata)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("validate document: %w: %w", domain.ErrInvalidSchema, err)
	}

	col, err := s.colls.Get(ctx, domcol.Canonicalize(collectionName))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get collection: %w", err)
	}
	if _, err := s.repo.Get(ctx, col.Name(), id); err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	if err := validateMetadata(metadata, col); err != nil {
		return domdoc.Document{}, err
	}
	if err := s.vectorize(ctx, &doc, col); err != nil {
		return domdoc.Document{}, err
	}

	if _, err := s.repo.Upsert(ctx, col.Name(), &doc); err != nil {
		return domdoc.Document{}, fmt.Errorf("replace document: %w", err)
	}
	return doc, nil
}

// Get retrieves a document by collection and ID.
func (s *Service) Get(ctx context.Context, collectionName, id string) (domdoc.Document, error) {
	col, err := s.colls.Get(ctx, domcol.Canonicalize(collectionName))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get collection: %w", err)
	}
	doc, err := s.repo.Get(ctx, col.Name(), id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a paginated list of documents.
func (s *Service) List(
	ctx context.Context, collectionName, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	col, err := s.colls.Get(ctx, domcol.Canonicalize(collectionName))
	if err != nil {
		return nil, "", fmt.Errorf("get collection: %w", err)
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	docs, nextCursor, err := s.repo.List(ctx, col.Name(), cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	return docs, nextCursor, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, collectionName, id string) error {
	col, err := s.colls.Get(ctx, domcol.Canonicalize(collectionName))
	if err != nil {
		return fmt.Errorf("get collection: %w", err)
	}
	if err := s.repo.Delete(ctx, col.Name(), id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// ensureCollection resolves the owning collection, creating it with an
// empty schema on first insert.
func (s *Service) ensureCollection(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := s.colls.Get(ctx, name)
	if err == nil {
		return col, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}

	col, err = domcol.New(name, "", nil, s.vectorDim)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidSchema, err)
	}
	switch err := s.colls.Create(ctx, col); {
	case err == nil:
		return col, nil
	case errors.Is(err, domain.ErrAlreadyExists):
		// Lost the creation race: another writer inserted first.
		return s.colls.Get(ctx, name)
	default:
		return domcol.Collection{}, fmt.Errorf("auto-create collection: %w", err)
	}
}

// vectorize embeds the document content and attaches the vector.
// With the vectorizer disabled the document is stored without one.
func (s *Service) vectorize(ctx context.Context, doc *domdoc.Document, col domcol.Collection) error {
	if s.embedder == nil {
		return nil
	}
	result, err := s.embedder.Embed(ctx, doc.Content())
	if err != nil {
		return fmt.Errorf("vectorize document: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)
	if col.VectorDim() > 0 && len(result.Embedding) != col.VectorDim() {
		return fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(result.Embedding), col.VectorDim(), domain.ErrVectorDimMismatch,
		)
	}
	doc.SetVector(result.Embedding)
	return nil
}

// validateMetadata checks declared number fields carry numeric values.
// Undeclared keys pass through: they are stored but not filterable.
func validateMetadata(metadata map[string]string, col domcol.Collection) error {
	for k, v := range metadata {
		f, ok := col.FieldByName(k)
		if !ok || f.FieldType() != field.Number {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf(
				"field %q is declared number, value %q is not numeric: %w",
				k, v, domain.ErrInvalidSchema,
			)
		}
	}
	return nil
}
