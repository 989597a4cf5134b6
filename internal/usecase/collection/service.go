package collection

import (
	"context"
	"fmt"

	"github.com/intramind/intramind/internal/domain"
	domcol "github.com/intramind/intramind/internal/domain/collection"
	"github.com/intramind/intramind/internal/domain/collection/field"
)

// Service handles collection CRUD operations.
type Service struct {
	repo      Repository
	counter   Counter
	vectorDim int
}

// New creates a collection service.
func New(repo Repository, counter Counter, vectorDim int) *Service {
	return &Service{repo: repo, counter: counter, vectorDim: vectorDim}
}

// Create validates and stores a new collection.
func (s *Service) Create(
	ctx context.Context, name, description string, fields []field.Field,
) (domcol.Collection, error) {
	col, err := domcol.New(name, description, fields, s.vectorDim)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidSchema, err)
	}
	if err := s.repo.Create(ctx, col); err != nil {
		return domcol.Collection{}, fmt.Errorf("create collection: %w", err)
	}
	// A new collection holds no documents, vectorCount stays 0.
	return col, nil
}

// Get retrieves a collection by name along with its live document count.
func (s *Service) Get(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := s.repo.Get(ctx, domcol.Canonicalize(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	n, err := s.counter.Count(ctx, col.Name())
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("count documents: %w", err)
	}
	return col.WithVectorCount(int64(n)), nil
}

// List returns all collections with their document counts.
func (s *Service) List(ctx context.Context) ([]domcol.Collection, error) {
	cols, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	for i, col := range cols {
		n, err := s.counter.Count(ctx, col.Name())
		if err != nil {
			return nil, fmt.Errorf("count documents %s: %w", col.Name(), err)
		}
		cols[i] = col.WithVectorCount(int64(n))
	}
	return cols, nil
}

// Delete removes a collection and everything stored under it.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, domcol.Canonicalize(name)); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}
