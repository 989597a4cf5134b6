package domain

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model               string
	Dimensions          int
	ContextWindowTokens int
	DistanceMetric      string
	Algorithm           string
	DocumentInstruction string
	QueryInstruction    string
	MaxDocumentSizeKB   int
}

// DefaultVectorConfig returns the default configuration tuned for nomic-embed-text
// served by Ollama. The instruction prefixes are the task prefixes the model
// was trained with; dropping them degrades retrieval quality.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:               "nomic-embed-text",
		Dimensions:          768,
		ContextWindowTokens: 8192,
		DistanceMetric:      "cosine",
		Algorithm:           "hnsw",
		DocumentInstruction: "search_document: ",
		QueryInstruction:    "search_query: ",
		MaxDocumentSizeKB:   160,
	}
}

// KeyPrefix namespaces every key the store writes. It is set once at
// startup, before any repository touches the store, and never changes
// afterwards.
var KeyPrefix = "intramind:"
