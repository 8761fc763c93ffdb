package answer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
	"github.com/kailas-cloud/sommelier/internal/usecase/assemble"
	"github.com/kailas-cloud/sommelier/internal/usecase/classify"
	"github.com/kailas-cloud/sommelier/internal/usecase/conversation"
	"github.com/kailas-cloud/sommelier/internal/usecase/respcache"
)

type searchCall struct {
	text string
	k    int
}

type fakeRetriever struct {
	mu       sync.Mutex
	passages []passage.Passage
	err      error
	calls    []searchCall
	block    chan struct{}
}

func (f *fakeRetriever) Search(ctx context.Context, text string, k int) ([]passage.Passage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{text: text, k: k})
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func (f *fakeRetriever) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRetriever) last() searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeSynthesizer struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []domain.Prompt
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, p domain.Prompt) (domain.SynthesisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return domain.SynthesisResult{}, f.err
	}
	return domain.SynthesisResult{Text: f.text, TotalTokens: 42}, nil
}

func (f *fakeSynthesizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeRemote struct {
	mu    sync.Mutex
	data  map[string]Response
	err   error
	stats struct{ gets, sets int }
}

func newFakeRemote() *fakeRemote { return &fakeRemote{data: make(map[string]Response)} }

func (f *fakeRemote) Get(_ context.Context, key string) (Response, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.gets++
	if f.err != nil {
		return Response{}, false, f.err
	}
	r, ok := f.data[key]
	return r, ok, nil
}

func (f *fakeRemote) Set(_ context.Context, key string, resp Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.sets++
	if f.err != nil {
		return f.err
	}
	f.data[key] = resp
	return nil
}

var errBackendDown = errors.New("connection refused")

type harness struct {
	svc       *Service
	retriever *fakeRetriever
	synth     *fakeSynthesizer
	tracker   *conversation.Tracker
	cache     *respcache.Cache[Response]
}

type harnessOption func(*Deps, *Config)

func withHandlers(h Handlers) harnessOption {
	return func(d *Deps, _ *Config) { d.Handlers = h }
}

func withRemote(r RemoteCache) harnessOption {
	return func(d *Deps, _ *Config) { d.Remote = r }
}

func newHarness(t *testing.T, passages []passage.Passage, opts ...harnessOption) *harness {
	t.Helper()

	classifier := classify.New(nil)
	tracker, err := conversation.NewTracker(classifier, conversation.Options{})
	require.NoError(t, err)

	h := &harness{
		retriever: &fakeRetriever{passages: passages},
		synth:     &fakeSynthesizer{text: "A lovely wine."},
		tracker:   tracker,
		cache:     respcache.New[Response](respcache.DefaultTTL, respcache.DefaultMaxEntries),
	}
	deps := Deps{
		Classifier:  classifier,
		Retriever:   h.retriever,
		Assembler:   assemble.New(classifier, assemble.Limits{}),
		Tracker:     tracker,
		Cache:       h.cache,
		Synthesizer: h.synth,
		Handlers:    DefaultHandlers(classifier, nil),
	}
	cfg := Config{Backend: "test"}
	for _, o := range opts {
		o(&deps, &cfg)
	}
	h.svc, err = New(deps, cfg)
	require.NoError(t, err)
	return h
}

func product(id, content string) passage.Passage {
	return passage.Passage{SourceID: id, Content: content, Metadata: passage.Metadata{ContentType: "product"}}
}

func roseCorpus() []passage.Passage {
	return []passage.Passage{
		product("products/dry-rose-2021.md", "# Dry Rosé 2021\nStatus: Sold Out\nStrawberry and citrus."),
		product("products/dry-rose-2022.md", "# Dry Rosé 2022\nStatus: Available\nStrawberry and citrus."),
		product("products/sparkling-rose-nv.md", "# Sparkling Rosé NV\nStatus: Available\nFine bubbles."),
		product("products/rose-of-pinot-noir-2023.md", "# Rosé of Pinot Noir 2023\nStatus: In Stock\nCherry blossom."),
	}
}

func reserveCorpus() []passage.Passage {
	return []passage.Passage{
		product("products/reserve-cabernet-franc-2019.md", "# Reserve Cabernet Franc 2019\nStatus: Available\nCedar and plum."),
		product("products/reserve-cabernet-franc-2021.md", "# Reserve Cabernet Franc 2021\nStatus: Available\nBlackberry."),
		product("products/reserve-cabernet-franc-2022.md", "# Reserve Cabernet Franc 2022\nStatus: Available\nViolet."),
		product("products/cabernet-franc-2021.md", "# Estate Cabernet Franc 2021\nStatus: Available\nRed fruit."),
	}
}
