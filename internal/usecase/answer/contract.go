package answer

import (
	"context"

	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
	"github.com/kailas-cloud/sommelier/internal/domain/query"
	"github.com/kailas-cloud/sommelier/internal/usecase/conversation"
)

// Retriever returns up to k candidate passages for a search text.
type Retriever interface {
	Search(ctx context.Context, text string, k int) ([]passage.Passage, error)
}

// Classifier classifies a raw question and exposes the active catalog.
type Classifier interface {
	Classify(raw string) intent.Classification
	Catalog() *catalog.Catalog
}

// ContextAssembler builds the context bundle from retrieved candidates.
type ContextAssembler interface {
	Assemble(ctx context.Context, q query.Query, cls intent.Classification, candidates []passage.Passage) bundle.Bundle
}

// ConversationTracker holds per-session clarification state.
type ConversationTracker interface {
	PreviousTurn(sessionID string) (conversation.Turn, bool)
	ResolveFollowUp(q query.Query) (intent.Classification, bool)
	RecordResponse(q query.Query, response string, b bundle.Bundle) bool
	IsClarification(response string) bool
}

// RemoteCache is the optional shared response cache tier.
type RemoteCache interface {
	Get(ctx context.Context, key string) (Response, bool, error)
	Set(ctx context.Context, key string, resp Response) error
}
