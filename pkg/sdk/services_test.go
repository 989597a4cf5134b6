package intramind

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
)

// --- Collections ---

func TestCreateCollection_SendsSchema(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody createCollectionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"collectionName":"articles","description":"news articles","vectorCount":0}`))
	})

	info, err := c.Collections().Create(context.Background(), "articles",
		WithDescription("news articles"),
		WithMetadataField("author", FieldString),
		WithMetadataField("year", FieldNumber),
	)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/v1/collections" {
		t.Errorf("request = %s %s, want POST /v1/collections", gotMethod, gotPath)
	}
	if gotBody.CollectionName != "articles" || gotBody.Description != "news articles" {
		t.Errorf("body = %+v", gotBody)
	}
	if len(gotBody.MetadataSchema) != 2 {
		t.Fatalf("schema len = %d, want 2", len(gotBody.MetadataSchema))
	}
	if gotBody.MetadataSchema[1].Name != "year" || gotBody.MetadataSchema[1].Type != FieldNumber {
		t.Errorf("schema[1] = %+v", gotBody.MetadataSchema[1])
	}
	if info.CollectionName != "articles" {
		t.Errorf("info.CollectionName = %q", info.CollectionName)
	}
}

func TestEnsureCollection_CreatesWhenMissing(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"collectionName":"kb","vectorCount":0}`))
	})

	if _, err := c.Collections().Ensure(context.Background(), "kb"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (no follow-up get)", requests)
	}
}

func TestEnsureCollection_FetchesExisting(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPost {
			writeEnvelope(w, http.StatusConflict, "already_exists", "collection kb already exists")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"collectionName":"kb","vectorCount":42}`))
	})

	info, err := c.Collections().Ensure(context.Background(), "kb")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if info.VectorCount != 42 {
		t.Errorf("VectorCount = %d, want 42", info.VectorCount)
	}
	want := []string{"POST /v1/collections", "GET /v1/collections/kb"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("requests = %v, want %v", paths, want)
	}
}

func TestEnsureCollection_PropagatesOtherErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, "invalid_request", "collection name is required")
	})

	if _, err := c.Collections().Ensure(context.Background(), ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGetCollection_EscapesName(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"collectionName":"my col","vectorCount":0}`))
	})

	if _, err := c.Collections().Get(context.Background(), "my col"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotPath != "/v1/collections/my%20col" {
		t.Errorf("path = %q, want escaped name", gotPath)
	}
}

func TestListCollections_ReturnsAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"collections":[{"collectionName":"a","vectorCount":1},{"collectionName":"b","vectorCount":2}],"count":2}`))
	})

	cols, err := c.Collections().List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cols) != 2 || cols[1].CollectionName != "b" {
		t.Errorf("collections = %+v", cols)
	}
}

func TestDeleteCollection_OK(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Collections().Delete(context.Background(), "kb"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/v1/collections/kb" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

// --- Documents ---

func TestUpsertDocument_RequiresID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for missing document id")
	})

	_, err := c.Documents("kb").Upsert(context.Background(), Document{Content: "text"})
	if err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestUpsertDocument_SendsBody(t *testing.T) {
	var gotBody documentRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"documentId":"doc-1","collectionName":"kb","created":true}`))
	})

	created, err := c.Documents("kb").Upsert(context.Background(), Document{
		ID:       "doc-1",
		Content:  "hello world",
		Metadata: map[string]string{"author": "amira"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if !created {
		t.Error("created = false, want true")
	}
	if gotBody.DocumentID != "doc-1" || gotBody.CollectionName != "kb" || gotBody.Content != "hello world" {
		t.Errorf("body = %+v", gotBody)
	}
	if gotBody.Metadata["author"] != "amira" {
		t.Errorf("metadata = %v", gotBody.Metadata)
	}
}

func TestGetDocument_QueryParams(t *testing.T) {
	var gotPath, gotCollection string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCollection = r.URL.Query().Get("collectionName")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documentId":"doc-1","collectionName":"kb","content":"hello"}`))
	})

	doc, err := c.Documents("kb").Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotPath != "/v1/documents/doc-1" || gotCollection != "kb" {
		t.Errorf("request = %s?collectionName=%s", gotPath, gotCollection)
	}
	if doc.Content != "hello" {
		t.Errorf("content = %q", doc.Content)
	}
}

func TestListDocuments_Paging(t *testing.T) {
	var gotLimit, gotCursor string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		gotCursor = r.URL.Query().Get("cursor")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documents":[{"documentId":"doc-3","collectionName":"kb","content":"c"}],"nextCursor":"doc-3"}`))
	})

	page, err := c.Documents("kb").List(context.Background(), "doc-2", 25)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotLimit != "25" || gotCursor != "doc-2" {
		t.Errorf("query = limit=%s cursor=%s", gotLimit, gotCursor)
	}
	if page.NextCursor != "doc-3" || len(page.Documents) != 1 {
		t.Errorf("page = %+v", page)
	}
}

func TestReplaceDocument_UsesPut(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documentId":"doc-1","collectionName":"kb","content":"updated"}`))
	})

	doc, err := c.Documents("kb").Replace(context.Background(), Document{ID: "doc-1", Content: "updated"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/v1/documents/doc-1" {
		t.Errorf("request = %s %s, want PUT /v1/documents/doc-1", gotMethod, gotPath)
	}
	if doc.Content != "updated" {
		t.Errorf("content = %q", doc.Content)
	}
}

func TestDeleteDocument_OK(t *testing.T) {
	var gotMethod, gotCollection string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCollection = r.URL.Query().Get("collectionName")
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Documents("kb").Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotCollection != "kb" {
		t.Errorf("request = %s collectionName=%s", gotMethod, gotCollection)
	}
}

func TestBatchUpsert_BareArrays(t *testing.T) {
	var raw []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var err error
		raw, err = io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"documentId":"doc-1","status":"success"},{"documentId":"gen-1","status":"failed","error":"embedding failed"}]`))
	})

	results, err := c.Documents("kb").BatchUpsert(context.Background(), []Document{
		{ID: "doc-1", Content: "first"},
		{Content: "second, id assigned by the service"},
	})
	if err != nil {
		t.Fatalf("batch upsert: %v", err)
	}

	var items []documentRequest
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("request body is not a bare array: %v", err)
	}
	if len(items) != 2 || items[0].CollectionName != "kb" || items[1].DocumentID != "" {
		t.Errorf("items = %+v", items)
	}

	if len(results) != 2 {
		t.Fatalf("results len = %d, want 2", len(results))
	}
	if !results[0].OK() || results[0].DocumentID != "doc-1" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].OK() || results[1].Error != "embedding failed" {
		t.Errorf("results[1] = %+v", results[1])
	}
}

// --- Search ---

func TestSearch_BuildsRequest(t *testing.T) {
	var gotBody searchRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"documentId":"doc-1","score":0.91,"content":"hello"}]}`))
	})

	author := "amira"
	results, err := c.Search("kb").Query(context.Background(), "greeting", &SearchOptions{
		Mode:  ModeHybrid,
		Limit: 5,
		Filters: FilterExpression{
			Must: []FilterCondition{{Key: "author", Match: &author}},
		},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotBody.CollectionName != "kb" || gotBody.Query != "greeting" || gotBody.Mode != string(ModeHybrid) || gotBody.Limit != 5 {
		t.Errorf("body = %+v", gotBody)
	}
	if gotBody.Filters == nil || len(gotBody.Filters.Must) != 1 || *gotBody.Filters.Must[0].Match != "amira" {
		t.Errorf("filters = %+v", gotBody.Filters)
	}
	if len(results) != 1 || results[0].Score != 0.91 {
		t.Errorf("results = %+v", results)
	}
}

func TestSearch_OmitsEmptyFilters(t *testing.T) {
	var gotRaw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRaw); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	if _, err := c.Search("kb").Query(context.Background(), "anything", nil); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, ok := gotRaw["filters"]; ok {
		t.Error("filters should be omitted when no conditions are set")
	}
}

func TestSearch_UnknownCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, "not_found", "collection missing not found")
	})

	_, err := c.Search("missing").Query(context.Background(), "q", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
