package memory

import (
	"context"
	"errors"
	"sync"

	"faqbot/internal/domain"
	"faqbot/internal/similarity"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Rows are kept in insertion order, so a row's position is its corpus index.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	entries   []domain.CorpusEntry
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.entries = nil
	return nil
}

func (s *Storage) Upsert(_ context.Context, entries []domain.CorpusEntry, vectors [][]float64) error {
	if len(entries) != len(vectors) {
		return errors.New("entries and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.entries = append(s.entries, entries...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK most similar rows. Equal scores keep corpus order.
func (s *Storage) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	ranked := similarity.Rank(vector, s.vectors)
	if topK > len(ranked) {
		topK = len(ranked)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, r := range ranked[:topK] {
		results = append(results, domain.SearchResult{Index: r.Index, Entry: s.entries[r.Index], Score: r.Score})
	}
	return results, nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.entries = nil
	return nil
}

// Len reports the number of stored rows.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}
