package domain

import "context"

// CorpusEntry is a single FAQ question/answer pair. Its identity is its
// position in the loaded corpus.
type CorpusEntry struct {
	Question string
	Answer   string
}

// SearchResult is a scored corpus entry returned by a vector store.
type SearchResult struct {
	Index int
	Entry CorpusEntry
	Score float64
}

// MatchResult is the outcome of comparing a query against the corpus.
// Index must not be used for answer lookup when Matched is false.
type MatchResult struct {
	Index   int
	Score   float64
	Matched bool
}

// AnswerSource tells where an answer came from.
type AnswerSource string

const (
	SourceCorpus     AnswerSource = "CORPUS"
	SourceGenerative AnswerSource = "GENERATIVE"
)

// AnswerResult is produced fresh for every request.
type AnswerResult struct {
	Text     string       `json:"text"`
	Source   AnswerSource `json:"source"`
	Language string       `json:"language"`
	// Score and Index describe the best corpus candidate, for diagnostics.
	Score float64 `json:"score"`
	Index int     `json:"index"`
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// VectorStore holds the corpus embedding table and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, entries []CorpusEntry, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}

// Generator produces free text from a prompt using an external model.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// LanguageDetector guesses the ISO 639-1 code of a text.
type LanguageDetector interface {
	Detect(ctx context.Context, text string) (code string, reliable bool, err error)
}

// Translator translates text between two ISO 639-1 languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// ChatService defines the operations exposed by the application core.
type ChatService interface {
	Ask(ctx context.Context, question, language string) AnswerResult
}
