package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"faqbot/internal/config"
)

func TestGemini_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "hello there") {
			t.Errorf("prompt not sent: %s", body)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi, "},{"text":"friend."}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini("k", "gemini-test", server.URL, 0)
	out, err := g.Generate(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out != "Hi, friend." {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestGemini_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	out, err := NewGemini("k", "", server.URL, 0).Generate(context.Background(), "x")
	if err != nil || out != "" {
		t.Errorf("expected empty output without error, got %q %v", out, err)
	}
}

func TestGemini_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewGemini("k", "", server.URL, 0).Generate(context.Background(), "x")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
	if !strings.Contains(se.Error(), "quota exceeded") {
		t.Errorf("body missing from error: %v", se)
	}
}

func TestOllama_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("stream should be false")
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "answer", Done: true})
	}))
	defer server.Close()

	out, err := NewOllama(server.URL, "m", 0).Generate(context.Background(), "q")
	if err != nil || out != "answer" {
		t.Errorf("unexpected result %q %v", out, err)
	}
}

func TestOllama_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := NewOllama(server.URL, "m", 0).Generate(context.Background(), "q"); err == nil {
		t.Error("should error on 500")
	}
}

func TestNew(t *testing.T) {
	t.Setenv("FAQBOT_TEST_GENAI", "")
	if _, err := New(config.GeneratorConfig{Provider: "gemini", APIKeyEnv: "FAQBOT_TEST_GENAI"}); err == nil {
		t.Error("gemini without key should fail fast")
	}
	t.Setenv("FAQBOT_TEST_GENAI", "key")
	g, err := New(config.GeneratorConfig{Provider: "gemini", APIKeyEnv: "FAQBOT_TEST_GENAI"})
	if err != nil || g.Name() != "gemini" {
		t.Errorf("gemini: %v %v", g, err)
	}
	g, err = New(config.GeneratorConfig{Provider: "ollama"})
	if err != nil || g.Name() != "ollama" {
		t.Errorf("ollama: %v %v", g, err)
	}
	if _, err := New(config.GeneratorConfig{Provider: "gpt"}); err == nil {
		t.Error("unknown provider should error")
	}
}
