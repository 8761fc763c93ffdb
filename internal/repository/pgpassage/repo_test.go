package pgpassage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/sommelier/internal/domain"
)

type row struct {
	sourceID, content string
	contentType       *string
	available         *bool
	createdAt         *time.Time
}

type fakeRows struct {
	rows []row
	i    int
	err  error
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return f.err }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Next() bool {
	if f.i >= len(f.rows) {
		return false
	}
	f.i++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	r := f.rows[f.i-1]
	*dest[0].(*string) = r.sourceID
	*dest[1].(*string) = r.content
	*dest[2].(**string) = r.contentType
	*dest[3].(**bool) = r.available
	*dest[4].(**time.Time) = r.createdAt
	return nil
}

type fakeQuerier struct {
	rows *fakeRows
	err  error
	sql  string
	args []any
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

type fakeEmbedder struct{ err error }

func (e fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

func TestSearch(t *testing.T) {
	product := "product"
	soldOut := false
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	q := &fakeQuerier{rows: &fakeRows{rows: []row{
		{sourceID: "products/dry-rose-2021.md", content: "# Dry Rosé 2021", contentType: &product, available: &soldOut, createdAt: &created},
		{sourceID: "faq/hours.md", content: "Open daily."},
	}}}

	got, err := New(q, fakeEmbedder{}, "").Search(context.Background(), "dry rosé", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Contains(t, q.sql, `FROM "passages" ORDER BY embedding <=> $1 LIMIT $2`)
	require.Len(t, q.args, 2)
	assert.Equal(t, pgvector.NewVector([]float32{1, 0, 0}), q.args[0])
	assert.Equal(t, 5, q.args[1])

	assert.Equal(t, "product", got[0].Metadata.ContentType)
	require.NotNil(t, got[0].Metadata.Availability)
	assert.False(t, *got[0].Metadata.Availability)
	assert.Equal(t, created, got[0].Metadata.CreatedAt)

	assert.Empty(t, got[1].Metadata.ContentType)
	assert.Nil(t, got[1].Metadata.Availability)
}

func TestSearch_CustomTable(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{}}
	_, err := New(q, fakeEmbedder{}, "kb_passages").Search(context.Background(), "x", 3)
	require.NoError(t, err)
	assert.True(t, strings.Contains(q.sql, `"kb_passages"`))
}

func TestSearch_Errors(t *testing.T) {
	_, err := New(&fakeQuerier{}, fakeEmbedder{err: errors.New("401")}, "").Search(context.Background(), "x", 3)
	require.ErrorIs(t, err, domain.ErrRetrieval)

	_, err = New(&fakeQuerier{err: errors.New("conn refused")}, fakeEmbedder{}, "").Search(context.Background(), "x", 3)
	require.ErrorIs(t, err, domain.ErrRetrieval)

	_, err = New(&fakeQuerier{rows: &fakeRows{err: errors.New("broken pipe")}}, fakeEmbedder{}, "").
		Search(context.Background(), "x", 3)
	require.ErrorIs(t, err, domain.ErrRetrieval)
}
