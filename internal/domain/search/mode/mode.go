package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Semantic is the default KNN vector search over embeddings.
	Semantic Mode = "semantic"
	// Keyword is BM25 full-text search.
	Keyword Mode = "keyword"
	// Hybrid fuses semantic and keyword rankings.
	Hybrid Mode = "hybrid"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Semantic || m == Keyword || m == Hybrid
}
