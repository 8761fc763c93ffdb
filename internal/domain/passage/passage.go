// Package passage models retrieved knowledge passages and their scored, grouped forms.
package passage

import "time"

// Metadata describes a passage as stored by the knowledge corpus.
type Metadata struct {
	ContentType  string
	Availability *bool // nil when the corpus carries no availability flag
	CreatedAt    time.Time
}

// Passage is a unit of retrievable knowledge text. The pipeline treats passages as values
// and never mutates the retriever's copies.
type Passage struct {
	SourceID string
	Content  string
	Metadata Metadata
}

// Scored is a passage annotated by the relevance scorer.
type Scored struct {
	Passage
	Score      int
	EntityName string
	Variant    string
	Available  bool
}

// WithContent returns a copy of p with its content replaced.
func (p Passage) WithContent(content string) Passage {
	p.Content = content
	return p
}

// Bool returns a pointer to v, for building Metadata.Availability.
func Bool(v bool) *bool { return &v }
