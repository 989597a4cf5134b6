package document

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/intramind/intramind/internal/domain"
	domdoc "github.com/intramind/intramind/internal/domain/document"
)

// jsonDoc is the stored JSON document shape.
// The FT index addresses $.content, $.metadata.* and $.vector.
type jsonDoc struct {
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Vector    []float32      `json:"vector,omitempty"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
}

// buildJSONDoc converts a domain Document into the stored shape.
func buildJSONDoc(doc *domdoc.Document) jsonDoc {
	return jsonDoc{
		Content:   doc.Content(),
		Metadata:  metadataToJSON(doc.Metadata()),
		Vector:    doc.Vector(),
		CreatedAt: doc.CreatedAt(),
		UpdatedAt: doc.UpdatedAt(),
	}
}

// metadataToJSON maps metadata values to JSON types. Values that parse as
// numbers are stored as JSON numbers: NUMERIC index attributes skip
// non-number JSON values, so declared number fields must land as numbers.
func metadataToJSON(m map[string]string) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			out[k] = f
			continue
		}
		out[k] = v
	}
	return out
}

// parseJSONGetResult parses a JSON.GET $ response (an array with one root).
func parseJSONGetResult(id string, raw []byte) (domdoc.Document, error) {
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domdoc.Document{}, fmt.Errorf("unmarshal document %s: %w", id, err)
	}
	if len(docs) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return parseDocMap(id, docs[0]), nil
}

// parseDocMap hydrates a domain Document from a decoded JSON map.
func parseDocMap(id string, m map[string]any) domdoc.Document {
	content, _ := m["content"].(string)

	var metadata map[string]string
	if mm, ok := m["metadata"].(map[string]any); ok && len(mm) > 0 {
		metadata = make(map[string]string, len(mm))
		for k, v := range mm {
			switch t := v.(type) {
			case string:
				metadata[k] = t
			case float64:
				metadata[k] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		}
	}

	var vector []float32
	if arr, ok := m["vector"].([]any); ok && len(arr) > 0 {
		vector = make([]float32, 0, len(arr))
		for _, v := range arr {
			if f, ok := v.(float64); ok {
				vector = append(vector, float32(f))
			}
		}
	}

	return domdoc.Reconstruct(id, content, metadata, vector, jsonInt64(m["created_at"]), jsonInt64(m["updated_at"]))
}

func jsonInt64(v any) int64 {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int64(f)
}
