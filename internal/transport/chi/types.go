package chi

import (
	rpc "github.com/intramind/intramind/internal/transport/grpc"
)

// Request and response bodies of the REST surface. Upstream rpc types are
// reused wherever the JSON shape is identical on both wires.

type createCollectionRequest struct {
	CollectionName string            `json:"collectionName"`
	Description    string            `json:"description"`
	MetadataSchema []rpc.FieldSchema `json:"metadataSchema"`
}

// documentRequest is the body of both POST /v1/documents and
// PUT /v1/documents/{id}.
type documentRequest struct {
	DocumentID     string            `json:"documentId"`
	CollectionName string            `json:"collectionName"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata"`
}

// insertDocumentResponse acknowledges a single insert. The full document
// is available via GET; the insert reply stays small.
type insertDocumentResponse struct {
	DocumentID     string `json:"documentId"`
	CollectionName string `json:"collectionName"`
	Created        bool   `json:"created"`
}

type searchRequest struct {
	CollectionName string                `json:"collectionName"`
	Query          string                `json:"query"`
	Mode           string                `json:"mode"`
	Limit          int                   `json:"limit"`
	Filters        *rpc.FilterExpression `json:"filters"`
}

// searchResponse mirrors the upstream reply minus the token accounting,
// which travels in the X-Embedding-Tokens header instead.
type searchResponse struct {
	Results []rpc.SearchResult `json:"results"`
	Count   int                `json:"count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse is the envelope of every non-2xx reply.
type errorResponse struct {
	Error errorInfo `json:"error"`
}
