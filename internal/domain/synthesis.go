package domain

import "context"

// Synthesizer turns an assembled prompt into a natural-language answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt Prompt) (SynthesisResult, error)
}

// Prompt is the system instruction plus the user-facing context block.
type Prompt struct {
	System string
	User   string
}

// SynthesisResult carries the generated answer and token usage.
type SynthesisResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
