// Package bundle holds the context handed to answer synthesis for one request.
package bundle

import (
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
	"github.com/kailas-cloud/sommelier/internal/domain/query"
)

// Sibling records a non-primary variant of the primary entity without its content.
type Sibling struct {
	SourceID  string `json:"source_id"`
	Variant   string `json:"variant"`
	Available bool   `json:"available"`
}

// Bundle is the validated, scored and grouped context for one question.
type Bundle struct {
	Query                    query.Query
	Classification           intent.Classification
	Documents                []passage.Passage
	Siblings                 []Sibling
	MultipleEntitiesDetected bool
	// Variants holds every retrieved variant of each offered entity, keyed by the base
	// name of its representative document. Set only when MultipleEntitiesDetected.
	Variants map[string][]Sibling
}

// Empty returns a bundle without documents for q.
func Empty(q query.Query, cls intent.Classification) Bundle {
	return Bundle{Query: q, Classification: cls, Documents: []passage.Passage{}}
}

// HasDocuments reports whether any knowledge was selected.
func (b Bundle) HasDocuments() bool { return len(b.Documents) > 0 }

// Sources returns the source ids of the selected documents in order.
func (b Bundle) Sources() []string {
	out := make([]string, 0, len(b.Documents))
	for _, d := range b.Documents {
		out = append(out, d.SourceID)
	}
	return out
}
