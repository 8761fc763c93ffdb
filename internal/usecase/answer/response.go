package answer

import "github.com/kailas-cloud/sommelier/internal/domain/intent"

// AskInput is one question submitted to the pipeline.
type AskInput struct {
	Query     string
	SessionID string
	RequestID string
}

// Response is the answer to one question.
type Response struct {
	Answer         string         `json:"answer"`
	Sources        []string       `json:"sources"`
	Classification intent.Summary `json:"classification"`
	Clarification  bool           `json:"clarification"`
	FollowUp       bool           `json:"follow_up"`
	Cached         bool           `json:"cached"`
	RequestID      string         `json:"request_id"`
}

// Outcome labels for ask metrics.
const (
	OutcomeAnswered      = "answered"
	OutcomeHandled       = "handled"
	OutcomeClarification = "clarification"
	OutcomeInsufficient  = "insufficient"
	OutcomeApology       = "apology"
	OutcomeCached        = "cached"
)

// Fixed fallback texts.
const (
	DefaultInsufficientKnowledge = "I don't have enough information about that yet. " +
		"Please ask our tasting room team, who will be happy to help."
	DefaultApology = "I'm sorry, I'm having trouble answering right now. Please try again in a moment."
)

func (r Response) clone() Response {
	r.Sources = append([]string(nil), r.Sources...)
	if r.Sources == nil {
		r.Sources = []string{}
	}
	return r
}
