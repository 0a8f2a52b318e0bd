package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string, batch int) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: url, APIKeyOptional: true, Model: "test", BatchSize: batch})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestClient_EmbedOpenAIShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float64{0.1, 0.2, 0.3}}},
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	v, err := c.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(v) != 3 || c.Dimension() != 3 {
		t.Errorf("expected 3 dims, got %d (dimension %d)", len(v), c.Dimension())
	}
}

func TestClient_EmbedOllamaShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{1, 2}})
	}))
	defer server.Close()

	v, err := newTestClient(t, server.URL, 0).Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(v) != 2 {
		t.Errorf("expected 2 dims, got %d", len(v))
	}
}

func TestClient_EmbedBatchKeepsOrder(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req struct {
			Input []string `json:"input"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		data := make([]map[string]any, len(req.Input))
		// answer in reverse to exercise index ordering
		for i := range req.Input {
			j := len(req.Input) - 1 - i
			data[i] = map[string]any{"index": j, "embedding": []float64{float64(len(req.Input[j]))}}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 2)
	vs, err := c.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd"})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	for i, v := range vs {
		if v[0] != float64(i+1) {
			t.Errorf("vector %d out of order: %v", i, v)
		}
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 batched calls, got %d", calls)
	}
}

func TestClient_RetriesOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{1}})
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL, 0).Embed(context.Background(), "x"); err != nil {
		t.Fatalf("should succeed after retries: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL, 0).Embed(context.Background(), "x"); err == nil {
		t.Error("should error on 401")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("401 should not be retried, got %d calls", calls)
	}
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("FAQBOT_TEST_EMPTY_KEY", "")
	if _, err := NewClient(Config{APIKeyEnv: "FAQBOT_TEST_EMPTY_KEY"}); err == nil {
		t.Error("should fail without API key")
	}
}

func TestRetryDelay_Capped(t *testing.T) {
	if retryDelay(0) != 200*time.Millisecond {
		t.Errorf("unexpected base delay %v", retryDelay(0))
	}
	if retryDelay(10) != 5*time.Second {
		t.Errorf("delay should cap at 5s, got %v", retryDelay(10))
	}
}
