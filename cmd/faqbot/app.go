package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"faqbot/internal/config"
	"faqbot/internal/corpus"
	"faqbot/internal/domain"
	"faqbot/internal/embedding"
	"faqbot/internal/fallback"
	"faqbot/internal/index"
	"faqbot/internal/language"
	"faqbot/internal/llm"
	"faqbot/internal/service"
	"faqbot/internal/vectorstore"
)

// app holds the assembled components for one process.
type app struct {
	service    domain.ChatService
	closeStore func() error
}

// newApp loads the corpus and builds every component. Any failure here stops
// startup: a missing API key, a missing dataset or an unreachable store.
func newApp(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*app, error) {
	generator, err := llm.New(cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	entries, err := corpus.Load(cfg.Corpus.Paths)
	if err != nil {
		return nil, err
	}
	logger.Info("corpus loaded", "entries", len(entries), "sources", len(cfg.Corpus.Paths))

	embedder, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	store, closeStore, err := vectorstore.New(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}
	ix, err := index.Build(ctx, embedder, store, entries, logger)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	var lang *language.Adapter
	if cfg.Language.Enabled {
		langCfg := cfg.Language
		if len(langCfg.Languages) == 0 {
			langCfg.Languages = language.DefaultLanguages
		}
		langCfg.Languages = append([]string{cfg.Corpus.Language}, langCfg.Languages...)
		lang, err = language.New(langCfg, generator, logger)
		if err != nil {
			_ = closeStore()
			return nil, fmt.Errorf("language layer: %w", err)
		}
	}

	svc := service.NewChatService(ix,
		fallback.New(generator, cfg.Generator.MaxWords, logger),
		lang,
		service.Options{
			Threshold:       cfg.Matcher.Threshold,
			CorpusLanguage:  cfg.Corpus.Language,
			DefaultLanguage: cfg.Language.Default,
		},
		logger,
	)
	return &app{service: svc, closeStore: closeStore}, nil
}

func (a *app) Close() error { return a.closeStore() }

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
