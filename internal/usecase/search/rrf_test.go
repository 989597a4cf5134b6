package search

import (
	"math"
	"testing"

	"github.com/intramind/intramind/internal/domain/search/result"
)

func makeResult(id string) result.Result {
	return result.New(id, 0, "content-"+id, nil)
}

func makeResultWithMetadata(id string, metadata map[string]string) result.Result {
	return result.New(id, 0, "content-"+id, metadata)
}

func TestFuseRRF_DisjointLists(t *testing.T) {
	knn := []result.Result{makeResult("a"), makeResult("b")}
	bm25 := []result.Result{makeResult("c"), makeResult("d")}

	results := fuseRRF(knn, bm25, 10)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	ids := make(map[string]bool)
	for _, r := range results {
		ids[r.ID()] = true
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if !ids[id] {
			t.Errorf("missing result %s", id)
		}
	}
}

func TestFuseRRF_OverlappingLists(t *testing.T) {
	knn := []result.Result{makeResult("a"), makeResult("b"), makeResult("c")}
	bm25 := []result.Result{makeResult("b"), makeResult("d"), makeResult("a")}

	results := fuseRRF(knn, bm25, 10)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	// "a": rank 0 in KNN (1/61) + rank 2 in BM25 (1/63)
	// "b": rank 1 in KNN (1/62) + rank 0 in BM25 (1/61)
	// Both beat the single-list docs "c" and "d".
	if results[0].ID() != "b" {
		t.Errorf("expected 'b' first, got %s", results[0].ID())
	}
	if results[1].ID() != "a" {
		t.Errorf("expected 'a' second, got %s", results[1].ID())
	}
	overlapScore := results[1].Score()
	for _, r := range results[2:] {
		if r.Score() >= overlapScore {
			t.Errorf("single-list doc %s score %f should be below overlap score %f",
				r.ID(), r.Score(), overlapScore)
		}
	}
}

func TestFuseRRF_EmptyInputs(t *testing.T) {
	t.Run("both empty", func(t *testing.T) {
		results := fuseRRF(nil, nil, 10)
		if len(results) != 0 {
			t.Fatalf("expected 0 results, got %d", len(results))
		}
	})
	t.Run("knn empty", func(t *testing.T) {
		bm25 := []result.Result{makeResult("a")}
		results := fuseRRF(nil, bm25, 10)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
	})
	t.Run("bm25 empty", func(t *testing.T) {
		knn := []result.Result{makeResult("a")}
		results := fuseRRF(knn, nil, 10)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
	})
}

func TestFuseRRF_TopKLimiting(t *testing.T) {
	knn := []result.Result{makeResult("a"), makeResult("b"), makeResult("c")}
	bm25 := []result.Result{makeResult("d"), makeResult("e"), makeResult("f")}

	results := fuseRRF(knn, bm25, 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestFuseRRF_SortedByScore(t *testing.T) {
	knn := []result.Result{makeResult("a"), makeResult("b")}
	bm25 := []result.Result{makeResult("c"), makeResult("d")}

	results := fuseRRF(knn, bm25, 10)
	for i := 1; i < len(results); i++ {
		if results[i].Score() > results[i-1].Score() {
			t.Errorf("results not sorted: %f > %f at index %d",
				results[i].Score(), results[i-1].Score(), i)
		}
	}
}

func TestFuseRRF_KNNWinsTies(t *testing.T) {
	// "a" at KNN rank 0 and "z" at BM25 rank 0 tie on 1/61.
	knn := []result.Result{makeResult("a")}
	bm25 := []result.Result{makeResult("z")}

	results := fuseRRF(knn, bm25, 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID() != "a" {
		t.Errorf("expected KNN hit 'a' to win the tie, got %s", results[0].ID())
	}
}

func TestFuseRRF_PreservesKNNPayload(t *testing.T) {
	knn := []result.Result{makeResultWithMetadata("a", map[string]string{"language": "go"})}
	bm25 := []result.Result{makeResult("a")} // same doc, no metadata

	results := fuseRRF(knn, bm25, 10)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Metadata()["language"] != "go" {
		t.Fatalf("expected KNN metadata preserved, got %v", results[0].Metadata())
	}
}

func TestFuseRRF_ScoreFormula(t *testing.T) {
	knn := []result.Result{makeResult("a")}
	bm25 := []result.Result{makeResult("a")}

	results := fuseRRF(knn, bm25, 10)
	// "a" is rank 0 in both: 1/(60+1) + 1/(60+1) = 2/61
	expected := 2.0 / 61.0
	if math.Abs(results[0].Score()-expected) > 1e-10 {
		t.Errorf("expected score %f, got %f", expected, results[0].Score())
	}
}
