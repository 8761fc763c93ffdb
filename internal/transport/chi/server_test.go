package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/usecase/answer"
	"github.com/kailas-cloud/sommelier/internal/usecase/classify"
	healthuc "github.com/kailas-cloud/sommelier/internal/usecase/health"
	"github.com/kailas-cloud/sommelier/internal/usecase/synthesis"
)

type fakeAsker struct {
	resp answer.Response
	err  error
	in   answer.AskInput
}

func (f *fakeAsker) Ask(_ context.Context, in answer.AskInput) (answer.Response, error) {
	f.in = in
	if f.err != nil {
		return answer.Response{}, f.err
	}
	return f.resp, nil
}

type fakeUsage struct{}

func (fakeUsage) Usage() synthesis.Usage {
	return synthesis.Usage{Provider: "openai", DailyLimit: 1000, DailyUsed: 250, DailyRemaining: 750, Action: "reject"}
}

type fakeHealth struct{ report healthuc.Report }

func (f fakeHealth) Check(context.Context) healthuc.Report { return f.report }

func newTestRouter(t *testing.T, a *fakeAsker, usage usageReader, report healthuc.Report, keys ...string) http.Handler {
	t.Helper()
	s := NewServer(a, classify.New(catalog.Default()), usage, fakeHealth{report: report}, zap.NewNop())
	return NewRouter(s, keys)
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func healthy() healthuc.Report {
	return healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckOK}}
}

func TestAsk_OK(t *testing.T) {
	a := &fakeAsker{resp: answer.Response{
		Answer:  "Our Dry Rosé 2021 is crisp.",
		Sources: []string{"products/dry-rose-2021.md"},
		Cached:  true,
	}}
	h := newTestRouter(t, a, nil, healthy())

	rr := do(h, "POST", "/v1/ask", `{"question":"dry rosé","session_id":"s1"}`, "X-Request-Id", "req-42")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp answer.Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Our Dry Rosé 2021 is crisp.", resp.Answer)
	assert.Equal(t, []string{"products/dry-rose-2021.md"}, resp.Sources)
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))

	assert.Equal(t, "dry rosé", a.in.Query)
	assert.Equal(t, "s1", a.in.SessionID)
	assert.Equal(t, "req-42", a.in.RequestID)
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"bad json", `{"question":`, nil, http.StatusBadRequest, CodeBadRequest},
		{"invalid query", `{"question":"  "}`, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery),
			http.StatusBadRequest, CodeValidationFailed},
		{"unexpected", `{"question":"hi"}`, fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &fakeAsker{err: tt.err}, nil, healthy())

			rr := do(h, "POST", "/v1/ask", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code)

			var errResp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
			assert.Equal(t, tt.wantCode, errResp.Code)
		})
	}
}

func TestAsk_InvalidQueryMessageIsReturned(t *testing.T) {
	err := fmt.Errorf("%w: query too long (max 2048 bytes)", domain.ErrInvalidQuery)
	h := newTestRouter(t, &fakeAsker{err: err}, nil, healthy())

	rr := do(h, "POST", "/v1/ask", `{"question":"x"}`)
	assert.Contains(t, rr.Body.String(), "query too long")
}

func TestClassify(t *testing.T) {
	h := newTestRouter(t, &fakeAsker{}, nil, healthy())

	rr := do(h, "GET", "/v1/classify?q=How+does+the+wine+club+work%3F", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ClassifyResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "How does the wine club work?", resp.Question)
	assert.Equal(t, intent.Membership, resp.Classification.Domain)

	rr = do(h, "GET", "/v1/classify", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUsage(t *testing.T) {
	rr := do(newTestRouter(t, &fakeAsker{}, fakeUsage{}, healthy()), "GET", "/v1/usage", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var u synthesis.Usage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&u))
	assert.Equal(t, int64(750), u.DailyRemaining)

	rr = do(newTestRouter(t, &fakeAsker{}, nil, healthy()), "GET", "/v1/usage", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	rr := do(newTestRouter(t, &fakeAsker{}, nil, healthy(), "secret"), "GET", "/health", "")
	require.Equal(t, http.StatusOK, rr.Code, "health is exempt from auth")
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)

	degraded := healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{"synthesis": healthuc.CheckError}}
	rr = do(newTestRouter(t, &fakeAsker{}, nil, degraded), "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	down := healthuc.Report{Status: healthuc.Unhealthy, Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckError}}
	rr = do(newTestRouter(t, &fakeAsker{}, nil, down), "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouter_AuthAndNotFound(t *testing.T) {
	h := newTestRouter(t, &fakeAsker{resp: answer.Response{Answer: "ok"}}, nil, healthy(), "secret")

	rr := do(h, "POST", "/v1/ask", `{"question":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(h, "POST", "/v1/ask", `{"question":"hi"}`, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, "GET", "/v1/nothing", "", "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map")
	}))

	rr := do(h, "GET", "/", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
	assert.Equal(t, CodeInternalError, errResp.Code)
}
