package search

import (
	"sort"

	"github.com/intramind/intramind/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges KNN and BM25 results via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// When a document appears in both lists the KNN entry supplies the payload.
// Ordering is fused score desc; exact ties rank KNN hits first, then by id.
func fuseRRF(knn, bm25 []result.Result, topK int) []result.Result {
	type scored struct {
		res   result.Result
		score float64
		inKNN bool
	}
	merged := make(map[string]*scored, len(knn)+len(bm25))
	for rank, r := range knn {
		merged[r.ID()] = &scored{res: r, score: 1.0 / float64(rrfK+rank+1), inKNN: true}
	}
	for rank, r := range bm25 {
		s := 1.0 / float64(rrfK+rank+1)
		if existing, ok := merged[r.ID()]; ok {
			existing.score += s
		} else {
			merged[r.ID()] = &scored{res: r, score: s}
		}
	}

	fused := make([]*scored, 0, len(merged))
	for _, s := range merged {
		fused = append(fused, s)
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		if fused[i].inKNN != fused[j].inKNN {
			return fused[i].inKNN
		}
		return fused[i].res.ID() < fused[j].res.ID()
	})
	if len(fused) > topK {
		fused = fused[:topK]
	}

	results := make([]result.Result, 0, len(fused))
	for _, s := range fused {
		results = append(results, result.New(
			s.res.ID(), s.score, s.res.Content(), s.res.Metadata(),
		))
	}
	return results
}
