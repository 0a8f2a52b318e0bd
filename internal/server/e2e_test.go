package server

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"faqbot/internal/config"
	"faqbot/internal/domain"
	"faqbot/internal/embedding/tfidf"
	"faqbot/internal/fallback"
	"faqbot/internal/index"
	"faqbot/internal/language"
	"faqbot/internal/service"
	"faqbot/internal/vectorstore/memory"
)

var e2eCorpus = []domain.CorpusEntry{
	{Question: "What is diabetes?", Answer: "A metabolic disorder."},
	{Question: "How do I reset my password?", Answer: "Use the Forgot Password link."},
}

type stubGenerator struct{}

func (stubGenerator) Name() string { return "stub" }
func (stubGenerator) Generate(context.Context, string) (string, error) {
	return "Check a local forecast.", nil
}

type spanishDetector struct{}

func (spanishDetector) Detect(_ context.Context, text string) (string, bool, error) {
	if strings.HasPrefix(text, "¿") {
		return "es", true, nil
	}
	return "en", true, nil
}

// phrasebook translates by "source:text" so a wrong source language gets
// no translation.
type phrasebook map[string]string

func (p phrasebook) Translate(_ context.Context, text, source, _ string) (string, error) {
	return p[source+":"+text], nil
}

var spanishPhrases = phrasebook{
	"es:¿Qué es la diabetes?":  "What is diabetes?",
	"en:A metabolic disorder.": "Un trastorno metabólico.",
}

func e2eServer(t *testing.T, lang *language.Adapter) *Server {
	t.Helper()
	ix, err := index.Build(context.Background(), tfidf.NewEmbedder(), memory.NewStorage(), e2eCorpus, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewChatService(ix, fallback.New(stubGenerator{}, 60, quietLogger()), lang, service.DefaultOptions(), quietLogger())
	return New(svc, config.ServerConfig{}, quietLogger())
}

func chat(t *testing.T, s *Server, body string) string {
	t.Helper()
	ts := httptestServer(s)
	defer ts.Close()
	resp, err := http.Post(ts.URL+"/chat/", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out ChatResponse
	decode(t, resp, &out)
	return out.Response
}

func TestEndToEnd_CorpusAnswer(t *testing.T) {
	got := chat(t, e2eServer(t, nil), `{"question":"What is diabetes?"}`)
	if got != "A metabolic disorder." {
		t.Errorf("unexpected response %q", got)
	}
}

func TestEndToEnd_Fallback(t *testing.T) {
	got := chat(t, e2eServer(t, nil), `{"question":"What's the weather today?"}`)
	if got == "" {
		t.Fatal("response must not be empty")
	}
	for _, e := range e2eCorpus {
		if got == e.Answer {
			t.Errorf("fallback returned corpus answer %q", got)
		}
	}
}

func TestEndToEnd_SpanishQuestion(t *testing.T) {
	lang := language.NewAdapter(spanishDetector{}, spanishPhrases, "en", quietLogger())
	got := chat(t, e2eServer(t, lang), `{"question":"¿Qué es la diabetes?","language":"es"}`)
	if got != "Un trastorno metabólico." {
		t.Errorf("unexpected response %q", got)
	}
}

func TestEndToEnd_SpanishQuestionWithDetector(t *testing.T) {
	detector, err := language.NewLinguaDetector(language.DefaultLanguages)
	if err != nil {
		t.Fatal(err)
	}
	lang := language.NewAdapter(detector, spanishPhrases, "en", quietLogger())
	s := e2eServer(t, lang)

	if got := chat(t, s, `{"question":"¿Qué es la diabetes?","language":"es"}`); got != "Un trastorno metabólico." {
		t.Errorf("unexpected response %q", got)
	}
	// no language in the request: only detection can route the query through es>en
	if got := chat(t, s, `{"question":"¿Qué es la diabetes?"}`); got != "A metabolic disorder." {
		t.Errorf("detected Spanish question should match the corpus, got %q", got)
	}
	if got := chat(t, s, `{"question":"What is diabetes?"}`); got != "A metabolic disorder." {
		t.Errorf("English question should match directly, got %q", got)
	}
}
