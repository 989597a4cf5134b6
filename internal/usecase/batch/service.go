package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/intramind/intramind/internal/domain"
	dombatch "github.com/intramind/intramind/internal/domain/batch"
	domcol "github.com/intramind/intramind/internal/domain/collection"
	"github.com/intramind/intramind/internal/domain/collection/field"
	domdoc "github.com/intramind/intramind/internal/domain/document"
)

// Item is one document in a batch upsert request. Items may target
// different collections within the same batch.
type Item struct {
	CollectionName string
	ID             string
	Content        string
	Metadata       map[string]string
}

// Service handles batch document ingest with per-item error reporting.
type Service struct {
	bulk         BulkUpserter
	colls        Collections
	embed        Embedder
	vectorDim    int
	maxBatchSize int
}

// New creates a batch service.
func New(bulk BulkUpserter, colls Collections, embed Embedder, vectorDim int) *Service {
	return &Service{
		bulk: bulk, colls: colls, embed: embed,
		vectorDim:    vectorDim,
		maxBatchSize: dombatch.MaxItems,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert validates, vectorizes, and stores a batch of documents.
// The returned slice carries one result per input item, in order.
// Empty and oversized batches are rejected wholesale. Quota and
// rate-limit errors abort the cascade: remaining items are reported
// failed without being attempted.
func (s *Service) Upsert(ctx context.Context, items []Item) ([]dombatch.Result, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("empty batch: %w", domain.ErrInvalidSchema)
	}
	if len(items) > s.maxBatchSize {
		return nil, fmt.Errorf(
			"batch size %d exceeds %d: %w", len(items), s.maxBatchSize, domain.ErrInvalidSchema,
		)
	}

	results := make([]dombatch.Result, len(items))
	type group struct {
		docs []*domdoc.Document
		idx  []int
	}
	groups := make(map[string]*group)
	cache := newCollectionCache(s)

	for i := range items {
		item := &items[i]
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		doc, err := domdoc.New(id, item.Content, item.Metadata)
		if err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("validate document: %w: %w", domain.ErrInvalidSchema, err))
			continue
		}
		col, err := cache.resolve(ctx, item.CollectionName)
		if err != nil {
			results[i] = dombatch.NewError(id, err)
			continue
		}
		if err := validateItemMetadata(item.Metadata, col); err != nil {
			results[i] = dombatch.NewError(id, err)
			continue
		}
		cascade, err := s.vectorize(ctx, &doc, col)
		if err != nil {
			results[i] = dombatch.NewError(id, err)
			if cascade {
				for j := i + 1; j < len(items); j++ {
					results[j] = dombatch.NewError(items[j].ID, err)
				}
				break
			}
			continue
		}

		g := groups[col.Name()]
		if g == nil {
			g = &group{}
			groups[col.Name()] = g
		}
		g.docs = append(g.docs, &doc)
		g.idx = append(g.idx, i)
	}

	// Flush validated items per collection in one pipelined write each.
	// A cascade abort still stores everything embedded before it.
	for name, g := range groups {
		if err := s.bulk.UpsertMulti(ctx, name, g.docs); err != nil {
			for k, i := range g.idx {
				results[i] = dombatch.NewError(g.docs[k].ID(), fmt.Errorf("batch upsert: %w", err))
			}
			continue
		}
		for k, i := range g.idx {
			results[i] = dombatch.NewOK(g.docs[k].ID())
		}
	}
	return results, nil
}

// vectorize embeds document content via the embedding API.
// Returns (cascade, error): cascade=true means quota/rate-limit error, skip remaining.
func (s *Service) vectorize(
	ctx context.Context, doc *domdoc.Document, col domcol.Collection,
) (bool, error) {
	if s.embed == nil {
		return false, nil
	}
	embResult, err := s.embed.Embed(ctx, doc.Content())
	if err != nil {
		cascade := errors.Is(err, domain.ErrEmbeddingQuotaExceeded) ||
			errors.Is(err, domain.ErrRateLimited)
		return cascade, fmt.Errorf("vectorize: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)
	if col.VectorDim() > 0 && len(embResult.Embedding) != col.VectorDim() {
		return false, fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(embResult.Embedding), col.VectorDim(), domain.ErrVectorDimMismatch,
		)
	}
	doc.SetVector(embResult.Embedding)
	return false, nil
}

// collectionCache memoizes collection resolution within one batch call,
// auto-creating missing collections the way single upserts do.
type collectionCache struct {
	svc  *Service
	cols map[string]domcol.Collection
	errs map[string]error
}

func newCollectionCache(svc *Service) *collectionCache {
	return &collectionCache{
		svc:  svc,
		cols: make(map[string]domcol.Collection),
		errs: make(map[string]error),
	}
}

func (c *collectionCache) resolve(ctx context.Context, rawName string) (domcol.Collection, error) {
	name := domcol.Canonicalize(rawName)
	if col, ok := c.cols[name]; ok {
		return col, nil
	}
	if err, ok := c.errs[name]; ok {
		return domcol.Collection{}, err
	}
	col, err := c.lookup(ctx, name)
	if err != nil {
		c.errs[name] = err
		return domcol.Collection{}, err
	}
	c.cols[name] = col
	return col, nil
}

func (c *collectionCache) lookup(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := c.svc.colls.Get(ctx, name)
	if err == nil {
		return col, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}

	col, err = domcol.New(name, "", nil, c.svc.vectorDim)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidSchema, err)
	}
	switch err := c.svc.colls.Create(ctx, col); {
	case err == nil:
		return col, nil
	case errors.Is(err, domain.ErrAlreadyExists):
		return c.svc.colls.Get(ctx, name)
	default:
		return domcol.Collection{}, fmt.Errorf("auto-create collection: %w", err)
	}
}

// validateItemMetadata checks declared number fields carry numeric values.
// Undeclared keys pass through: they are stored but not filterable.
func validateItemMetadata(metadata map[string]string, col domcol.Collection) error {
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
