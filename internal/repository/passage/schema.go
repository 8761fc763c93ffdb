// Package passage retrieves knowledge passages from the Valkey/Redis FT index:
// KNN over query embeddings, fused with BM25 via Reciprocal Rank Fusion when the
// server supports text search.
package passage

import (
	"github.com/kailas-cloud/sommelier/internal/db"
	"github.com/kailas-cloud/sommelier/internal/domain"
)

// Hash fields of a stored passage.
const (
	FieldSourceID    = "source_id"
	FieldContent     = "content"
	FieldContentType = "content_type"
	FieldAvailable   = "available"
	FieldCreatedAt   = "created_at"
	FieldVector      = "vector"
)

// Key layout.
var (
	KeyPrefix = domain.KeyPrefix + "passage:"
	IndexName = domain.KeyPrefix + "passages:idx"
)

var returnFields = []string{FieldSourceID, FieldContent, FieldContentType, FieldAvailable, FieldCreatedAt}

// Index returns the FT index definition for passages of the given embedding dimension.
func Index(dim int) *db.IndexDefinition {
	return db.NewIndex(IndexName, KeyPrefix).
		Tag(FieldSourceID).
		Tag(FieldContentType).
		Tag(FieldAvailable).
		Numeric(FieldCreatedAt).
		Text(FieldContent).
		Vector(FieldVector, dim, 16, 200)
}
