package passage

import (
	"sort"

	"github.com/kailas-cloud/sommelier/internal/db"
)

// rrfK is the Reciprocal Rank Fusion constant (Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges KNN and BM25 hits: score(d) = sum of 1/(k + rank) over the lists
// containing d. The KNN entry wins when a key appears in both.
func fuseRRF(knn, bm25 []db.SearchEntry, topK int) []db.SearchEntry {
	type fused struct {
		entry db.SearchEntry
		score float64
	}
	merged := make(map[string]*fused, len(knn)+len(bm25))
	order := make([]string, 0, len(knn)+len(bm25))

	for rank, e := range knn {
		merged[e.Key] = &fused{entry: e, score: 1.0 / float64(rrfK+rank+1)}
		order = append(order, e.Key)
	}
	for rank, e := range bm25 {
		s := 1.0 / float64(rrfK+rank+1)
		if f, ok := merged[e.Key]; ok {
			f.score += s
			continue
		}
		merged[e.Key] = &fused{entry: e, score: s}
		order = append(order, e.Key)
	}

	out := make([]db.SearchEntry, 0, len(order))
	for _, key := range order {
		f := merged[key]
		f.entry.Score = f.score
		out = append(out, f.entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if len(out) > topK {
		out = out[:topK]
	}
	return out
}
