package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
)

const systemPrompt = "You are the tasting room assistant of a family vineyard. " +
	"Answer only from the context passages. If they do not contain the answer, say you do not know. " +
	"Never invent vintages, prices or availability."

// buildPrompt renders the bundle for the synthesizer.
func buildPrompt(b bundle.Bundle, instruction string) domain.Prompt {
	system := systemPrompt
	if instruction != "" {
		system += "\n" + instruction
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nContext:\n", b.Query.Raw())
	for i, d := range b.Documents {
		fmt.Fprintf(&sb, "[%d] %s\n%s\n\n", i+1, d.SourceID, d.Content)
	}
	if len(b.Siblings) > 0 {
		sb.WriteString("Other vintages of this wine:\n")
		for _, s := range b.Siblings {
			status := "available"
			if !s.Available {
				status = "sold out"
			}
			variant := s.Variant
			if variant == "" {
				variant = s.SourceID
			}
			fmt.Fprintf(&sb, "- %s (%s)\n", variant, status)
		}
	}
	return domain.Prompt{System: system, User: strings.TrimRight(sb.String(), "\n")}
}
