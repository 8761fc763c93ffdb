package conversation

import (
	"strings"
	"time"
)

// Phase is the clarification state of one question within a session.
type Phase int

// Phases. A question moves None -> PendingClarification -> Resolved.
const (
	None Phase = iota
	PendingClarification
	Resolved
)

func (p Phase) String() string {
	switch p {
	case PendingClarification:
		return "pending_clarification"
	case Resolved:
		return "resolved"
	default:
		return "none"
	}
}

// Candidate is one option offered to the user by a clarification response.
type Candidate struct {
	Name     string // display name without variant
	Pattern  string // normalized base name, usable as a source filter
	Variant  string
	SourceID string
	// Variants lists every retrieved variant of the entity, the offered one included.
	Variants []string
}

// HasVariant reports whether v is one of the candidate's variants.
func (c Candidate) HasVariant(v string) bool {
	if strings.EqualFold(c.Variant, v) {
		return true
	}
	for _, cv := range c.Variants {
		if strings.EqualFold(cv, v) {
			return true
		}
	}
	return false
}

// State is the clarification state of one normalized question.
type State struct {
	Phase        Phase
	Family       string
	Candidates   []Candidate
	ResolvedWith string
	UpdatedAt    time.Time
}

// Turn is the last answered question of a session.
type Turn struct {
	Query    string // normalized
	Response string
}

type session struct {
	previous *Turn
	// pending is the normalized question awaiting clarification, "" when none.
	pending string
	states  map[string]State
}
