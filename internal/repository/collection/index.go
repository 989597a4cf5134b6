package collection

import (
	"fmt"

	"github.com/intramind/intramind/internal/db"
	"github.com/intramind/intramind/internal/domain/collection/field"
)

// buildIndex creates an IndexDefinition from the declared collection fields.
// Documents are JSON: $.content holds the text, $.metadata.* the declared
// fields, $.vector the embedding.
// textSearchEnabled adds a TEXT attribute over $.content for BM25 keyword
// search. Requires Redis 8.4+; valkey-search does not support TEXT.
func buildIndex(
	name string, fields []field.Field, vectorDim int,
	textSearchEnabled bool, hnsw HNSWConfig,
) (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName(name)).
		OnJSON().
		Prefix(collectionPrefix(name))

	if textSearchEnabled {
		b.TextAs("$.content", "__content")
	}

	for _, f := range fields {
		path := "$.metadata." + f.Name()
		switch f.FieldType() {
		case field.String:
			b.TagAs(path, f.Name())
		case field.Number:
			b.NumericAs(path, f.Name())
		default:
			return nil, fmt.Errorf("unknown field type: %s", f.FieldType())
		}
	}

	// Alias "vector": KNN results report the score attribute as __vector_score.
	b.VectorHNSWAs("$.vector", "vector", vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct)

	return b.Build()
}
