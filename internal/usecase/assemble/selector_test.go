package assemble

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

func scoredN(n int) []passage.Scored {
	out := make([]passage.Scored, 0, n)
	for i := range n {
		out = append(out, passage.Scored{
			Passage: passage.Passage{SourceID: fmt.Sprintf("doc-%02d", i)},
			Score:   100 - i,
		})
	}
	return out
}

func TestSelect_DisambiguationMode(t *testing.T) {
	unique := scoredN(7)
	g := Grouped{UniqueEntities: unique, MultipleEntitiesDetected: true}

	got := Select(g, unique, Limits{})
	assert.Len(t, got, DefaultMaxDisambiguationOptions)

	got = Select(g, unique, Limits{MaxDisambiguationOptions: 3})
	assert.Equal(t, []string{"doc-00", "doc-01", "doc-02"}, sources(got))
}

func TestSelect_PrimarySkipsSiblings(t *testing.T) {
	scored := scoredN(6)
	primary := scored[1]
	g := Grouped{
		Primary:  &primary,
		Siblings: []bundle.Sibling{{SourceID: "doc-00"}, {SourceID: "doc-02"}},
	}

	got := Select(g, scored, Limits{})
	assert.Equal(t, []string{"doc-01", "doc-03", "doc-04"}, sources(got))
}

func TestSelect_WithoutPrimary(t *testing.T) {
	scored := scoredN(5)
	got := Select(Grouped{}, scored, Limits{})
	assert.Equal(t, []string{"doc-00", "doc-01", "doc-02"}, sources(got))

	assert.Empty(t, Select(Grouped{}, nil, Limits{}))
}

func TestSelect_PrimaryOnly(t *testing.T) {
	scored := scoredN(1)
	g := Grouped{Primary: &scored[0]}
	got := Select(g, scored, Limits{MaxDocuments: 3})
	require.Len(t, got, 1)
	assert.Equal(t, "doc-00", got[0].SourceID)
}
