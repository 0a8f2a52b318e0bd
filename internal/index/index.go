// Package index builds the corpus embedding table once at startup and
// answers nearest-question lookups against it.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"faqbot/internal/corpus"
	"faqbot/internal/domain"
	"faqbot/internal/similarity"
)

// searchDepth is how many store candidates are fetched per query. Only the
// best one is used, the rest let Best break ties that the store left unordered.
// When every candidate ties, Match widens the search to the whole corpus.
const searchDepth = 5

// Index owns the corpus and its embedding table. It is read-only after Build.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorStore
	entries  []domain.CorpusEntry
	logger   *slog.Logger
}

// Build prepares the embedder on the corpus questions, embeds every question
// and stores the vectors in corpus order. Queries must be embedded with the
// same embedder, which EmbedQuery guarantees.
func Build(ctx context.Context, embedder domain.Embedder, store domain.VectorStore, entries []domain.CorpusEntry, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(entries) == 0 {
		return nil, errors.New("index: empty corpus")
	}
	questions := corpus.Questions(entries)
	if err := embedder.Prepare(questions); err != nil {
		return nil, fmt.Errorf("index: prepare %s embedder: %w", embedder.Name(), err)
	}
	vectors, err := embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("index: embed corpus: %w", err)
	}
	if len(vectors) != len(entries) {
		return nil, fmt.Errorf("index: embedder returned %d vectors for %d questions", len(vectors), len(entries))
	}
	dim := embedder.Dimension()
	if dim == 0 {
		dim = len(vectors[0])
	}
	if err := store.Init(ctx, dim); err != nil {
		return nil, fmt.Errorf("index: init store: %w", err)
	}
	if err := store.Upsert(ctx, entries, vectors); err != nil {
		return nil, fmt.Errorf("index: store vectors: %w", err)
	}
	logger.Info("embedding index built",
		"entries", len(entries),
		"dimension", dim,
		"embedder", embedder.Name(),
	)
	return &Index{embedder: embedder, store: store, entries: entries, logger: logger}, nil
}

// EmbedQuery embeds text with the embedder the corpus was built with.
func (ix *Index) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return ix.embedder.Embed(ctx, text)
}

// Match finds the corpus question closest to vector. Ties go to the lowest
// corpus index.
func (ix *Index) Match(ctx context.Context, vector []float64, threshold float64) (domain.MatchResult, error) {
	results, err := ix.store.Search(ctx, vector, searchDepth)
	if err != nil {
		return domain.MatchResult{Index: -1}, fmt.Errorf("index: search: %w", err)
	}
	if len(results) >= searchDepth && len(ix.entries) > len(results) && allTied(results) {
		// a tied entry with a lower index may have been cut off
		results, err = ix.store.Search(ctx, vector, len(ix.entries))
		if err != nil {
			return domain.MatchResult{Index: -1}, fmt.Errorf("index: search: %w", err)
		}
	}
	_, m := similarity.Best(results, threshold)
	if m.Index >= len(ix.entries) {
		return domain.MatchResult{Index: -1}, fmt.Errorf("index: store returned unknown row %d", m.Index)
	}
	return m, nil
}

func allTied(results []domain.SearchResult) bool {
	for _, r := range results[1:] {
		if r.Score != results[0].Score {
			return false
		}
	}
	return true
}

// Entry returns the corpus entry at i.
func (ix *Index) Entry(i int) (domain.CorpusEntry, bool) {
	if i < 0 || i >= len(ix.entries) {
		return domain.CorpusEntry{}, false
	}
	return ix.entries[i], true
}

// Len returns the corpus size.
func (ix *Index) Len() int { return len(ix.entries) }
