package memory

import (
	"context"
	"testing"

	"faqbot/internal/domain"
)

func seeded(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	ctx := context.Background()
	if err := s.Init(ctx, 2); err != nil {
		t.Fatal(err)
	}
	entries := []domain.CorpusEntry{{Question: "q0"}, {Question: "q1"}, {Question: "q2"}}
	vectors := [][]float64{{0, 1}, {1, 0}, {1, 0}}
	if err := s.Upsert(ctx, entries, vectors); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStorage_SearchOrderAndTies(t *testing.T) {
	s := seeded(t)
	res, err := s.Search(context.Background(), []float64{1, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res))
	}
	if res[0].Index != 1 || res[1].Index != 2 || res[2].Index != 0 {
		t.Errorf("unexpected order: %+v", res)
	}
	if res[0].Entry.Question != "q1" || res[0].Score != 1 {
		t.Errorf("unexpected top result: %+v", res[0])
	}
}

func TestStorage_SearchIsCosineNotDot(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	_ = s.Init(ctx, 2)
	_ = s.Upsert(ctx, []domain.CorpusEntry{{}}, [][]float64{{3, 0}})
	res, _ := s.Search(ctx, []float64{5, 0}, 1)
	if res[0].Score != 1 {
		t.Errorf("expected cosine 1 for unnormalized vectors, got %f", res[0].Score)
	}
}

func TestStorage_Validation(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	if err := s.Init(ctx, 0); err == nil {
		t.Error("zero dimension should error")
	}
	_ = s.Init(ctx, 2)
	if err := s.Upsert(ctx, []domain.CorpusEntry{{}}, nil); err == nil {
		t.Error("length mismatch should error")
	}
	if err := s.Upsert(ctx, []domain.CorpusEntry{{}}, [][]float64{{1, 2, 3}}); err == nil {
		t.Error("dimension mismatch should error")
	}
}

func TestStorage_ClearAndEmptySearch(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
	res, err := s.Search(ctx, []float64{1, 0}, 5)
	if err != nil || len(res) != 0 {
		t.Errorf("expected no results, got %v %v", res, err)
	}
}
