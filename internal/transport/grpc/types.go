package grpc

// Wire messages for the VectorService RPCs. Field names match the JSON the
// gateway exposes, so the REST layer forwards shapes without remapping.

// FieldSchema declares one typed, filterable metadata field.
type FieldSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateCollectionRequest registers a new collection.
type CreateCollectionRequest struct {
	CollectionName string        `json:"collectionName"`
	Description    string        `json:"description,omitempty"`
	MetadataSchema []FieldSchema `json:"metadataSchema,omitempty"`
}

// GetCollectionRequest fetches a single collection by name.
type GetCollectionRequest struct {
	CollectionName string `json:"collectionName"`
}

// ListCollectionsRequest lists every collection. No parameters yet.
type ListCollectionsRequest struct{}

// ListCollectionsResponse carries all known collections.
type ListCollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
	Count       int              `json:"count"`
}

// DeleteCollectionRequest drops a collection and its documents.
type DeleteCollectionRequest struct {
	CollectionName string `json:"collectionName"`
}

// DeleteCollectionResponse acknowledges a collection delete.
type DeleteCollectionResponse struct {
	Deleted bool `json:"deleted"`
}

// CollectionInfo describes a collection including its live document count.
type CollectionInfo struct {
	CollectionName string        `json:"collectionName"`
	Description    string        `json:"description,omitempty"`
	MetadataSchema []FieldSchema `json:"metadataSchema,omitempty"`
	VectorDim      int           `json:"vectorDim,omitempty"`
	VectorCount    int64         `json:"vectorCount"`
	CreatedAt      string        `json:"createdAt,omitempty"`
}

// UpsertDocumentRequest stores one document. A blank documentId requests a
// server-generated UUID. Replace demands that both the collection and the
// document already exist instead of auto-creating them.
type UpsertDocumentRequest struct {
	CollectionName string            `json:"collectionName"`
	DocumentID     string            `json:"documentId,omitempty"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Replace        bool              `json:"replace,omitempty"`
}

// UpsertDocumentResponse returns the stored document.
type UpsertDocumentResponse struct {
	Document        DocumentInfo `json:"document"`
	Created         bool         `json:"created"`
	EmbeddingTokens int          `json:"embeddingTokens,omitempty"`
}

// GetDocumentRequest fetches one document.
type GetDocumentRequest struct {
	CollectionName string `json:"collectionName"`
	DocumentID     string `json:"documentId"`
}

// ListDocumentsRequest pages through a collection's documents.
type ListDocumentsRequest struct {
	CollectionName string `json:"collectionName"`
	Limit          int    `json:"limit,omitempty"`
	Cursor         string `json:"cursor,omitempty"`
}

// ListDocumentsResponse carries one page of documents. An empty nextCursor
// means the listing is exhausted.
type ListDocumentsResponse struct {
	Documents  []DocumentInfo `json:"documents"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// DeleteDocumentRequest removes one document.
type DeleteDocumentRequest struct {
	CollectionName string `json:"collectionName"`
	DocumentID     string `json:"documentId"`
}

// DeleteDocumentResponse acknowledges a document delete.
type DeleteDocumentResponse struct {
	Deleted bool `json:"deleted"`
}

// DocumentInfo is a stored document without its raw vector. Embeddings
// never cross this wire; they stay between the store and the embedder.
type DocumentInfo struct {
	DocumentID     string            `json:"documentId"`
	CollectionName string            `json:"collectionName"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      string            `json:"createdAt,omitempty"`
	UpdatedAt      string            `json:"updatedAt,omitempty"`
}

// BatchUpsertRequest ingests up to the batch limit of documents at once.
type BatchUpsertRequest struct {
	Items []BatchItem `json:"items"`
}

// BatchItem is one document in a batch. Items may target different
// collections within the same batch.
type BatchItem struct {
	CollectionName string            `json:"collectionName"`
	DocumentID     string            `json:"documentId,omitempty"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// BatchUpsertResponse reports per-item outcomes in input order.
type BatchUpsertResponse struct {
	Results         []BatchResult `json:"results"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	EmbeddingTokens int           `json:"embeddingTokens,omitempty"`
}

// BatchResult is the outcome for a single batch item.
type BatchResult struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// SearchRequest queries a collection. Mode defaults to semantic and limit
// to the server default when left zero.
type SearchRequest struct {
	CollectionName string            `json:"collectionName"`
	Query          string            `json:"query"`
	Mode           string            `json:"mode,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Filters        *FilterExpression `json:"filters,omitempty"`
}

// FilterExpression restricts search to documents matching the boolean
// combination of its condition groups.
type FilterExpression struct {
	Must    []FilterCondition `json:"must,omitempty"`
	Should  []FilterCondition `json:"should,omitempty"`
	MustNot []FilterCondition `json:"mustNot,omitempty"`
}

// FilterCondition matches one declared metadata field. Exactly one of
// match and range must be set.
type FilterCondition struct {
	Key   string       `json:"key"`
	Match *string      `json:"match,omitempty"`
	Range *RangeFilter `json:"range,omitempty"`
}

// RangeFilter bounds a number field. gt/gte and lt/lte are mutually
// exclusive pairs.
type RangeFilter struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// SearchResponse carries scored hits, best first.
type SearchResponse struct {
	Results         []SearchResult `json:"results"`
	Count           int            `json:"count"`
	EmbeddingTokens int            `json:"embeddingTokens,omitempty"`
}

// SearchResult is a single scored hit.
type SearchResult struct {
	DocumentID string            `json:"documentId"`
	Score      float64           `json:"score"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// GetUsageRequest asks for embedding usage over a period: day, month or
// total. Empty means day.
type GetUsageRequest struct {
	Period string `json:"period,omitempty"`
}

// UsageReport is the usage and budget snapshot for one period.
type UsageReport struct {
	Period      string       `json:"period"`
	PeriodStart string       `json:"periodStart,omitempty"`
	PeriodEnd   string       `json:"periodEnd,omitempty"`
	Usage       UsageMetrics `json:"usage"`
	Budget      UsageBudget  `json:"budget"`
}

// UsageMetrics counts embedding work done in the period.
type UsageMetrics struct {
	EmbeddingRequests int `json:"embeddingRequests"`
	Tokens            int `json:"tokens"`
}

// UsageBudget describes the token cap state. A zero limit means unlimited
// and remaining reads -1.
type UsageBudget struct {
	TokensLimit     int    `json:"tokensLimit"`
	TokensRemaining int    `json:"tokensRemaining"`
	IsExhausted     bool   `json:"isExhausted"`
	ResetsAt        string `json:"resetsAt,omitempty"`
}
