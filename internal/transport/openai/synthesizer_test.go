package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/domain"
)

func chatServer(t *testing.T, status int, body any, check func(req map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if check != nil {
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			check(req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
}

func newTestSynthesizer(url string) *Synthesizer {
	return NewSynthesizer(&SynthesizerConfig{
		Config: Config{
			APIKey:  "test-key",
			BaseURL: url,
			Model:   "gpt-4o-mini",
			Logger:  zap.NewNop(),
		},
		MaxTokens:   300,
		Temperature: 0.2,
	})
}

func TestSynthesizer_Synthesize(t *testing.T) {
	body := map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": "  Our Dry Rosé 2021 is crisp.\n"},
		}},
		"usage": map[string]any{"prompt_tokens": 800, "completion_tokens": 80, "total_tokens": 880},
	}

	server := chatServer(t, http.StatusOK, body, func(req map[string]any) {
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("expected 2 messages, got %d", len(msgs))
			return
		}
		first, _ := msgs[0].(map[string]any)
		if first["role"] != "system" || first["content"] != "be helpful" {
			t.Errorf("unexpected system message: %v", first)
		}
		if req["max_tokens"] != float64(300) {
			t.Errorf("unexpected max_tokens: %v", req["max_tokens"])
		}
	})
	defer server.Close()

	res, err := newTestSynthesizer(server.URL).Synthesize(context.Background(), domain.Prompt{
		System: "be helpful",
		User:   "Question: dry rosé",
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if res.Text != "Our Dry Rosé 2021 is crisp." {
		t.Errorf("unexpected text %q", res.Text)
	}
	if res.TotalTokens != 880 || res.PromptTokens != 800 || res.CompletionTokens != 80 {
		t.Errorf("unexpected usage: %+v", res)
	}
}

func TestSynthesizer_APIError(t *testing.T) {
	server := chatServer(t, http.StatusServiceUnavailable, map[string]any{
		"error": map[string]any{"message": "overloaded", "type": "server_error"},
	}, nil)
	defer server.Close()

	_, err := newTestSynthesizer(server.URL).Synthesize(context.Background(), domain.Prompt{User: "q"})
	if !errors.Is(err, domain.ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis, got %v", err)
	}
}

func TestSynthesizer_NoChoices(t *testing.T) {
	server := chatServer(t, http.StatusOK, map[string]any{"id": "x", "choices": []any{}}, nil)
	defer server.Close()

	_, err := newTestSynthesizer(server.URL).Synthesize(context.Background(), domain.Prompt{User: "q"})
	if !errors.Is(err, domain.ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis, got %v", err)
	}
}
