package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	sdk "github.com/intramind/intramind/pkg/sdk"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// retriever fans one search per expanded query out to the gateway and
// fuses the ranked lists into a single context set.
type retriever struct {
	searcher GatewaySearcher
	limit    int // per-query list size requested from the gateway
	topK     int // fused context size
	logger   *zap.Logger
}

// retrieve runs the expanded queries concurrently. Individual search
// failures are tolerated as long as at least one query succeeds.
func (r *retriever) retrieve(
	ctx context.Context, collection string, queries []string,
) ([]RetrievedDocument, error) {
	lists := make([][]sdk.SearchResult, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			lists[i], errs[i] = r.searcher.Search(ctx, collection, q, r.limit)
		}(i, q)
	}
	wg.Wait()

	var firstErr error
	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		if firstErr == nil {
			firstErr = err
		}
		r.logger.Warn("Search failed for expanded query",
			zap.String("collection", collection),
			zap.String("query", queries[i]),
			zap.Error(err),
		)
	}
	if failed == len(queries) {
		return nil, fmt.Errorf("all %d searches failed: %w", len(queries), firstErr)
	}

	return fuseLists(lists, r.topK), nil
}

// fuseLists merges per-query result lists via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each list where d appears.
// The earliest list where a document appears supplies the payload
// (the original query runs first). Exact ties order by that list
// index, then by document id.
func fuseLists(lists [][]sdk.SearchResult, topK int) []RetrievedDocument {
	type scored struct {
		doc       sdk.SearchResult
		score     float64
		firstList int
	}
	merged := make(map[string]*scored)
	for li, list := range lists {
		for rank, res := range list {
			s := 1.0 / float64(rrfK+rank+1)
			if existing, ok := merged[res.DocumentID]; ok {
				existing.score += s
			} else {
				merged[res.DocumentID] = &scored{doc: res, score: s, firstList: li}
			}
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
		if fused[i].firstList != fused[j].firstList {
			return fused[i].firstList < fused[j].firstList
		}
		return fused[i].doc.DocumentID < fused[j].doc.DocumentID
	})
	if len(fused) > topK {
		fused = fused[:topK]
	}

	out := make([]RetrievedDocument, 0, len(fused))
	for _, s := range fused {
		out = append(out, RetrievedDocument{
			DocumentID: s.doc.DocumentID,
			Score:      s.score,
			Content:    s.doc.Content,
			Metadata:   s.doc.Metadata,
		})
	}
	return out
}
