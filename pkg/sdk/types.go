package intramind

// FieldType is the declared type of a metadata schema field.
type FieldType string

// Field type constants.
const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
)

// SearchMode controls the search algorithm.
type SearchMode string

// Search mode constants.
const (
	ModeHybrid   SearchMode = "hybrid"
	ModeSemantic SearchMode = "semantic"
	ModeKeyword  SearchMode = "keyword"
)

// FieldSchema declares one filterable metadata field.
type FieldSchema struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// CollectionInfo represents collection metadata.
type CollectionInfo struct {
	CollectionName string        `json:"collectionName"`
	Description    string        `json:"description,omitempty"`
	MetadataSchema []FieldSchema `json:"metadataSchema,omitempty"`
	VectorDim      int           `json:"vectorDim,omitempty"`
	VectorCount    int64         `json:"vectorCount"`
	CreatedAt      string        `json:"createdAt,omitempty"`
}

// Document is a document to store. ID is required for single upserts;
// batch items may leave it empty to have the service assign one.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// DocumentInfo is a stored document as the gateway returns it.
type DocumentInfo struct {
	DocumentID     string            `json:"documentId"`
	CollectionName string            `json:"collectionName"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      string            `json:"createdAt,omitempty"`
	UpdatedAt      string            `json:"updatedAt,omitempty"`
}

// ListResult is a paginated list of documents.
type ListResult struct {
	Documents  []DocumentInfo `json:"documents"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// Batch item status constants.
const (
	BatchStatusSuccess = "success"
	BatchStatusFailed  = "failed"
)

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the item was stored.
func (r BatchResult) OK() bool { return r.Status == BatchStatusSuccess }

// SearchResult is a single scored hit.
type SearchResult struct {
	DocumentID string            `json:"documentId"`
	Score      float64           `json:"score"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// FilterExpression is a set of must/should/mustNot filter conditions.
type FilterExpression struct {
	Must    []FilterCondition `json:"must,omitempty"`
	Should  []FilterCondition `json:"should,omitempty"`
	MustNot []FilterCondition `json:"mustNot,omitempty"`
}

// FilterCondition is a single filter clause. Exactly one of Match and
// Range must be set.
type FilterCondition struct {
	Key   string       `json:"key"`
	Match *string      `json:"match,omitempty"`
	Range *RangeFilter `json:"range,omitempty"`
}

// RangeFilter defines numeric range boundaries.
type RangeFilter struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
	PeriodTotal UsagePeriod = "total"
)

// UsageReport contains embedding usage statistics for a time period.
type UsageReport struct {
	Period      string       `json:"period"`
	PeriodStart string       `json:"periodStart,omitempty"`
	PeriodEnd   string       `json:"periodEnd,omitempty"`
	Usage       UsageMetrics `json:"usage"`
	Budget      BudgetStatus `json:"budget"`
}

// UsageMetrics tracks embedding resource consumption.
type UsageMetrics struct {
	EmbeddingRequests int `json:"embeddingRequests"`
	Tokens            int `json:"tokens"`
}

// BudgetStatus tracks token quota state. A zero limit means unlimited
// and remaining reads -1.
type BudgetStatus struct {
	TokensLimit     int    `json:"tokensLimit"`
	TokensRemaining int    `json:"tokensRemaining"`
	IsExhausted     bool   `json:"isExhausted"`
	ResetsAt        string `json:"resetsAt,omitempty"`
}
