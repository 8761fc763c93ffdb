package passage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/db"
	"github.com/kailas-cloud/sommelier/internal/domain"
	dompassage "github.com/kailas-cloud/sommelier/internal/domain/passage"
	"github.com/kailas-cloud/sommelier/internal/logger"
)

// store is the consumer interface for passage search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SupportsTextSearch(ctx context.Context) bool
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements the pipeline's passage retriever.
type Repo struct {
	store  store
	embed  domain.Embedder
	hybrid bool
}

// New creates a passage repository. With hybrid set, BM25 results are fused in when
// the store supports text search.
func New(s store, embed domain.Embedder, hybrid bool) *Repo {
	return &Repo{store: s, embed: embed, hybrid: hybrid}
}

// EnsureIndex creates the passage index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, dim int) error {
	ok, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check passage index: %w", err)
	}
	if ok {
		return nil
	}
	if err := r.store.CreateIndex(ctx, Index(dim)); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create passage index: %w", err)
	}
	return nil
}

// Search returns up to k passages for text.
func (r *Repo) Search(ctx context.Context, text string, k int) ([]dompassage.Passage, error) {
	if k <= 0 {
		return nil, nil
	}
	emb, err := r.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}

	knn, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		VectorField:  FieldVector,
		Vector:       emb.Embedding,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn: %w", domain.ErrRetrieval, err)
	}
	entries := knn.Entries

	if r.hybrid && r.store.SupportsTextSearch(ctx) {
		bm25, err := r.store.SearchBM25(ctx, &db.TextQuery{
			IndexName:    IndexName,
			TextField:    FieldContent,
			Query:        text,
			TopK:         k,
			ReturnFields: returnFields,
		})
		if err != nil {
			// KNN alone is still a usable answer.
			logger.FromContext(ctx).Warn("BM25 search failed, using KNN only", zap.Error(err))
		} else {
			entries = fuseRRF(entries, bm25.Entries, k)
		}
	}

	out := make([]dompassage.Passage, 0, len(entries))
	for _, e := range entries {
		out = append(out, toPassage(e))
	}
	return out, nil
}

func toPassage(e db.SearchEntry) dompassage.Passage {
	p := dompassage.Passage{
		SourceID: e.Fields[FieldSourceID],
		Content:  e.Fields[FieldContent],
		Metadata: dompassage.Metadata{ContentType: e.Fields[FieldContentType]},
	}
	if p.SourceID == "" {
		p.SourceID = strings.TrimPrefix(e.Key, KeyPrefix)
	}
	if v, err := strconv.ParseBool(e.Fields[FieldAvailable]); err == nil {
		p.Metadata.Availability = dompassage.Bool(v)
	}
	if ts, err := strconv.ParseInt(e.Fields[FieldCreatedAt], 10, 64); err == nil && ts > 0 {
		p.Metadata.CreatedAt = time.Unix(ts, 0).UTC()
	}
	return p
}
