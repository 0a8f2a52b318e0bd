package service

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"faqbot/internal/domain"
	"faqbot/internal/fallback"
	"faqbot/internal/index"
	"faqbot/internal/language"
	"faqbot/internal/similarity"
)

const tracerName = "faqbot/service"

// Options tunes the orchestrator.
type Options struct {
	Threshold float64
	// CorpusLanguage is the language the FAQ is written in.
	CorpusLanguage string
	// DefaultLanguage is used when a request names no language.
	DefaultLanguage string
}

// DefaultOptions returns the stock matching settings.
func DefaultOptions() Options {
	return Options{
		Threshold:       similarity.DefaultThreshold,
		CorpusLanguage:  language.DefaultCode,
		DefaultLanguage: language.DefaultCode,
	}
}

// ChatServiceImpl answers a question from the corpus when it is close enough
// to a known question and from the generative fallback otherwise.
type ChatServiceImpl struct {
	index    *index.Index
	fallback *fallback.Fallback
	// lang is nil when the language layer is disabled.
	lang   *language.Adapter
	opts   Options
	logger *slog.Logger
}

func NewChatService(ix *index.Index, fb *fallback.Fallback, lang *language.Adapter, opts Options, logger *slog.Logger) *ChatServiceImpl {
	if opts.CorpusLanguage == "" {
		opts.CorpusLanguage = language.DefaultCode
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = language.DefaultCode
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatServiceImpl{
		index:    ix,
		fallback: fb,
		lang:     lang,
		opts:     opts,
		logger:   logger,
	}
}

// Ask resolves one question. It never fails; degraded paths still produce text.
func (s *ChatServiceImpl) Ask(ctx context.Context, question, lang string) domain.AnswerResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "chat.ask")
	defer span.End()

	question = strings.TrimSpace(question)
	requested := language.Normalize(lang)
	if requested == "" {
		requested = language.Normalize(s.opts.DefaultLanguage)
	}
	corpusLang := language.Normalize(s.opts.CorpusLanguage)

	query := question
	if s.lang != nil {
		source := s.lang.Detect(ctx, question, requested)
		span.SetAttributes(attribute.String("faqbot.language.source", source))
		if source != corpusLang {
			query = s.lang.Translate(ctx, question, source, corpusLang)
		}
	}

	match := domain.MatchResult{Index: -1}
	vec, err := s.index.EmbedQuery(ctx, query)
	if err == nil {
		match, err = s.index.Match(ctx, vec, s.opts.Threshold)
	}
	if err != nil {
		s.logger.Warn("similarity lookup failed, using generative fallback", "error", err)
		span.RecordError(err)
		match = domain.MatchResult{Index: -1}
	}

	result := domain.AnswerResult{Score: match.Score, Index: match.Index}
	entry, ok := s.index.Entry(match.Index)
	if match.Matched && ok {
		result.Text = entry.Answer
		result.Source = domain.SourceCorpus
	} else {
		gen := s.fallback.Generate(ctx, query)
		if gen.Err != nil {
			span.SetStatus(codes.Error, gen.Err.Error())
		}
		result.Text = gen.Text
		result.Source = domain.SourceGenerative
	}

	result.Language = corpusLang
	if s.lang != nil && requested != corpusLang {
		result.Text = s.lang.Translate(ctx, result.Text, corpusLang, requested)
		result.Language = requested
	}

	span.SetAttributes(
		attribute.String("faqbot.answer.source", string(result.Source)),
		attribute.Float64("faqbot.match.score", match.Score),
		attribute.Int("faqbot.match.index", match.Index),
		attribute.String("faqbot.language.requested", requested),
	)
	s.logger.Info("question answered",
		"source", result.Source,
		"score", match.Score,
		"index", match.Index,
		"language", result.Language,
	)
	return result
}
