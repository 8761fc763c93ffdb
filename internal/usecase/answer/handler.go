package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
	"github.com/kailas-cloud/sommelier/internal/domain/query"
	"github.com/kailas-cloud/sommelier/internal/usecase/assemble"
)

// ClarificationQuestion closes every disambiguation response.
const ClarificationQuestion = "Which one would you like to know about?"

// HandlerResult is what a domain handler produced. A result without Answer defers to
// the default synthesis path, which still honors Instruction.
type HandlerResult struct {
	Answer        string
	Sources       []string
	Clarification bool
	// Instruction is an extra system prompt line for the default path.
	Instruction string
	// Volatile marks an answer that depends on the current date and must not be cached.
	Volatile bool
}

// Deferred reports whether the default synthesis path should run.
func (r HandlerResult) Deferred() bool { return r.Answer == "" }

// Handler answers questions of one domain, or defers.
type Handler interface {
	Handle(ctx context.Context, q query.Query, cls intent.Classification, b bundle.Bundle) (HandlerResult, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, q query.Query, cls intent.Classification, b bundle.Bundle) (HandlerResult, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(
	ctx context.Context, q query.Query, cls intent.Classification, b bundle.Bundle,
) (HandlerResult, error) {
	return f(ctx, q, cls, b)
}

// Handlers maps domains to their handler.
type Handlers map[intent.Domain]Handler

// DefaultHandlers wires the product clarification handler, the business-hours handler
// (when hours is non-nil) and instruction handlers for every other domain.
func DefaultHandlers(classifier Classifier, hours HoursSource) Handlers {
	h := Handlers{intent.Product: &ProductHandler{classifier: classifier}}
	for _, d := range intent.Domains() {
		if d == intent.Product {
			continue
		}
		h[d] = InstructionHandler{classifier: classifier}
	}
	if hours != nil {
		h[intent.BusinessHours] = NewHoursHandler(hours, nil)
	}
	return h
}

// ProductHandler asks the user to choose when several distinct wines match a bare
// family question; otherwise it defers with the product instruction.
type ProductHandler struct {
	classifier Classifier
}

// Handle implements Handler.
func (h *ProductHandler) Handle(
	_ context.Context, _ query.Query, cls intent.Classification, b bundle.Bundle,
) (HandlerResult, error) {
	instr := h.classifier.Catalog().InstructionFor(intent.Product)
	if cls.AsksPrice() {
		instr = strings.TrimSpace(instr + " Quote prices exactly as listed and never estimate one.")
	}
	if !b.MultipleEntitiesDetected || len(b.Documents) < 2 {
		return HandlerResult{Instruction: instr}, nil
	}
	return HandlerResult{
		Answer:        clarification(h.familyName(cls), b.Documents),
		Sources:       b.Sources(),
		Clarification: true,
	}, nil
}

func (h *ProductHandler) familyName(cls intent.Classification) string {
	if f, ok := h.classifier.Catalog().Family(cls.Family()); ok && f.Name != "" {
		return f.Name
	}
	return "wines"
}

func clarification(family string, docs []passage.Passage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "We have several %s options:\n", family)
	for i, d := range docs {
		title := assemble.Title(d.Content)
		if title == "" {
			title = d.SourceID
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, title)
	}
	sb.WriteString(ClarificationQuestion)
	return sb.String()
}

// InstructionHandler defers with the catalog's instruction line for the domain.
type InstructionHandler struct {
	classifier Classifier
}

// Handle implements Handler.
func (h InstructionHandler) Handle(
	_ context.Context, _ query.Query, cls intent.Classification, _ bundle.Bundle,
) (HandlerResult, error) {
	return HandlerResult{Instruction: h.classifier.Catalog().InstructionFor(cls.Domain())}, nil
}
