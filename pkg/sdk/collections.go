package intramind

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CollectionService manages collections.
type CollectionService struct {
	c   *Client
	obs *observer
}

type createCollectionRequest struct {
	CollectionName string        `json:"collectionName"`
	Description    string        `json:"description,omitempty"`
	MetadataSchema []FieldSchema `json:"metadataSchema,omitempty"`
}

type listCollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
	Count       int              `json:"count"`
}

// Create creates a new collection.
func (s *CollectionService) Create(
	ctx context.Context, name string, opts ...CollectionOption,
) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.create", start, err) }()

	cfg := &collectionConfig{}
	for _, o := range opts {
		o.applyCollection(cfg)
	}

	req := createCollectionRequest{
		CollectionName: name,
		Description:    cfg.description,
		MetadataSchema: cfg.fields,
	}
	var out CollectionInfo
	if err = s.c.do(ctx, http.MethodPost, "/v1/collections", nil, req, &out); err != nil {
		return CollectionInfo{}, fmt.Errorf("create collection: %w", err)
	}
	return out, nil
}

// Ensure creates a collection if it does not exist.
// If it already exists, returns its info.
func (s *CollectionService) Ensure(
	ctx context.Context, name string, opts ...CollectionOption,
) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.ensure", start, err) }()

	info, createErr := s.Create(ctx, name, opts...)
	if createErr == nil {
		return info, nil
	}
	if !errors.Is(createErr, ErrAlreadyExists) {
		return CollectionInfo{}, fmt.Errorf("ensure collection: %w", createErr)
	}

	existing, err := s.Get(ctx, name)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("ensure collection: %w", err)
	}
	return existing, nil
}

// Get retrieves collection metadata by name.
func (s *CollectionService) Get(
	ctx context.Context, name string,
) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.get", start, err) }()

	var out CollectionInfo
	if err = s.c.do(ctx, http.MethodGet, "/v1/collections/"+url.PathEscape(name), nil, nil, &out); err != nil {
		return CollectionInfo{}, fmt.Errorf("get collection: %w", err)
	}
	return out, nil
}

// List returns all collections.
func (s *CollectionService) List(ctx context.Context) (_ []CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.list", start, err) }()

	var out listCollectionsResponse
	if err = s.c.do(ctx, http.MethodGet, "/v1/collections", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return out.Collections, nil
}

// Delete removes a collection with its index and all documents.
func (s *CollectionService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.delete", start, err) }()

	if err = s.c.do(ctx, http.MethodDelete, "/v1/collections/"+url.PathEscape(name), nil, nil, nil); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}
