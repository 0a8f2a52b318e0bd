// Package fallback answers questions the corpus does not cover by asking a
// generative model for a short reply.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"faqbot/internal/domain"
	"faqbot/internal/summarizer"
)

// DefaultMaxWords is the word budget given to the model.
const DefaultMaxWords = 60

const (
	emptyResponseText = "Sorry, I couldn't generate a response."
	failurePrefix     = "Error fetching response from the language model: "
)

// ErrEmptyResponse is reported when the model returns no text.
var ErrEmptyResponse = errors.New("fallback: empty model response")

// Result always carries user-facing text. Err is set when Text is one of the
// degraded messages rather than a model answer.
type Result struct {
	Text string
	Err  error
}

// Fallback wraps a generator with the prompt and the word budget.
type Fallback struct {
	generator  domain.Generator
	maxWords   int
	summarizer *summarizer.FrequencySummarizer
	logger     *slog.Logger
}

// New creates a Fallback. A non-positive maxWords uses DefaultMaxWords.
func New(generator domain.Generator, maxWords int, logger *slog.Logger) *Fallback {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{
		generator:  generator,
		maxWords:   maxWords,
		summarizer: summarizer.NewFrequencySummarizer(),
		logger:     logger,
	}
}

// Prompt renders the instruction sent to the model.
func Prompt(question string, maxWords int) string {
	return fmt.Sprintf("Answer the following question in %d words or less: %s", maxWords, question)
}

// Generate asks the model to answer question. It never returns empty text.
func (f *Fallback) Generate(ctx context.Context, question string) Result {
	text, err := f.generator.Generate(ctx, Prompt(question, f.maxWords))
	if err != nil {
		f.logger.Warn("generative fallback failed", "provider", f.generator.Name(), "error", err)
		return Result{
			Text: failurePrefix + err.Error(),
			Err:  fmt.Errorf("fallback: %s: %w", f.generator.Name(), err),
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		f.logger.Warn("generative fallback returned no text", "provider", f.generator.Name())
		return Result{Text: emptyResponseText, Err: ErrEmptyResponse}
	}
	if n := summarizer.WordCount(text); n > f.maxWords {
		f.logger.Debug("compressing generated answer", "words", n, "max_words", f.maxWords)
		text = f.summarizer.Compress(text, f.maxWords)
	}
	return Result{Text: text}
}
