package intramind

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DocumentService manages documents within a single collection.
type DocumentService struct {
	collection string
	c          *Client
	obs        *observer
}

type documentRequest struct {
	DocumentID     string            `json:"documentId,omitempty"`
	CollectionName string            `json:"collectionName"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type insertDocumentResponse struct {
	DocumentID     string `json:"documentId"`
	CollectionName string `json:"collectionName"`
	Created        bool   `json:"created"`
}

// Upsert creates or updates a document. Returns true if created.
// The document ID is required; the gateway rejects anonymous inserts.
func (s *DocumentService) Upsert(ctx context.Context, doc Document) (_ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.upsert", start, err) }()

	if doc.ID == "" {
		return false, errors.New("upsert: document id required")
	}

	req := documentRequest{
		DocumentID:     doc.ID,
		CollectionName: s.collection,
		Content:        doc.Content,
		Metadata:       doc.Metadata,
	}
	var out insertDocumentResponse
	if err = s.c.do(ctx, http.MethodPost, "/v1/documents", nil, req, &out); err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return out.Created, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ DocumentInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	q := url.Values{"collectionName": {s.collection}}
	var out DocumentInfo
	if err = s.c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id), q, nil, &out); err != nil {
		return DocumentInfo{}, fmt.Errorf("get document: %w", err)
	}
	return out, nil
}

// List returns a paginated list of documents.
// Cursor is the opaque token from a previous page (empty for the first).
// Limit 0 uses the service default page size.
func (s *DocumentService) List(
	ctx context.Context, cursor string, limit int,
) (_ ListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.list", start, err) }()

	q := url.Values{"collectionName": {s.collection}}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out ListResult
	if err = s.c.do(ctx, http.MethodGet, "/v1/documents", q, nil, &out); err != nil {
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// Replace overwrites an existing document in full. Unlike Upsert it
// fails with ErrNotFound when the document does not exist.
func (s *DocumentService) Replace(ctx context.Context, doc Document) (_ DocumentInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.replace", start, err) }()

	if doc.ID == "" {
		return DocumentInfo{}, errors.New("replace: document id required")
	}

	req := documentRequest{
		DocumentID:     doc.ID,
		CollectionName: s.collection,
		Content:        doc.Content,
		Metadata:       doc.Metadata,
	}
	var out DocumentInfo
	if err = s.c.do(ctx, http.MethodPut, "/v1/documents/"+url.PathEscape(doc.ID), nil, req, &out); err != nil {
		return DocumentInfo{}, fmt.Errorf("replace: %w", err)
	}
	return out, nil
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	q := url.Values{"collectionName": {s.collection}}
	if err = s.c.do(ctx, http.MethodDelete, "/v1/documents/"+url.PathEscape(id), q, nil, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// BatchUpsert creates or updates documents in batch (at most 100 per
// call). Items without an ID get one assigned by the service. Results
// preserve input order.
func (s *DocumentService) BatchUpsert(
	ctx context.Context, docs []Document,
) (_ []BatchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.batch_upsert", start, err) }()

	items := make([]documentRequest, len(docs))
	for i, d := range docs {
		items[i] = documentRequest{
			DocumentID:     d.ID,
			CollectionName: s.collection,
			Content:        d.Content,
			Metadata:       d.Metadata,
		}
	}

	var out []BatchResult
	if err = s.c.do(ctx, http.MethodPost, "/v1/documents/batch", nil, items, &out); err != nil {
		return nil, fmt.Errorf("batch upsert: %w", err)
	}
	return out, nil
}
