package similarity

import (
	"math"
	"testing"

	"faqbot/internal/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"scaled", []float64{1, 1}, []float64{3, 3}, 1},
		{"length_mismatch", []float64{1}, []float64{1, 0}, 0},
		{"empty", nil, nil, 0},
		{"zero_vector", []float64{0, 0}, []float64{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMatch_PicksBest(t *testing.T) {
	table := [][]float64{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}}
	res := Match([]float64{0, 1, 0}, table, 0.8)
	if res.Index != 1 || !res.Matched {
		t.Errorf("expected match on index 1, got %+v", res)
	}
}

func TestMatch_TieBreakLowestIndex(t *testing.T) {
	table := [][]float64{{0, 0, 1}, {1, 0, 0}, {1, 0, 0}}
	for i := 0; i < 10; i++ {
		res := Match([]float64{1, 0, 0}, table, 0.8)
		if res.Index != 1 {
			t.Fatalf("tie should resolve to index 1, got %d", res.Index)
		}
	}
}

func TestMatch_BelowThreshold(t *testing.T) {
	table := [][]float64{{1, 0}, {0, 1}}
	res := Match([]float64{1, 1}, table, 0.8)
	if res.Matched {
		t.Errorf("score %.3f should not match at 0.8", res.Score)
	}
	if res.Index != 0 {
		t.Errorf("best candidate should still be reported, got %d", res.Index)
	}
}

func TestMatch_ThresholdInclusive(t *testing.T) {
	res := Match([]float64{1, 0}, [][]float64{{1, 0}}, 1.0)
	if !res.Matched {
		t.Error("score equal to threshold should match")
	}
}

func TestMatch_EmptyTable(t *testing.T) {
	res := Match([]float64{1}, nil, 0.5)
	if res.Index != -1 || res.Matched {
		t.Errorf("unexpected result on empty table: %+v", res)
	}
}

func TestMatch_ZeroQueryNeverMatches(t *testing.T) {
	res := Match([]float64{0, 0}, [][]float64{{1, 0}}, 0)
	if res.Score != 0 {
		t.Errorf("zero query should score 0, got %f", res.Score)
	}
	if res.Matched {
		t.Error("zero score must not match even at threshold 0")
	}
	if res := Match([]float64{1, 0}, [][]float64{{-1, 0}}, -1); res.Matched {
		t.Error("negative score must not match")
	}
}

func TestRank_StableTies(t *testing.T) {
	table := [][]float64{{0, 1}, {1, 0}, {1, 0}, {1, 0}}
	ranked := Rank([]float64{1, 0}, table)
	want := []int{1, 2, 3, 0}
	for i, w := range want {
		if ranked[i].Index != w {
			t.Fatalf("rank %d: got index %d, want %d (%v)", i, ranked[i].Index, w, ranked)
		}
	}
}

func TestBest_TieBreakOnUnorderedResults(t *testing.T) {
	results := []domain.SearchResult{
		{Index: 7, Score: 0.9},
		{Index: 3, Score: 0.9},
		{Index: 1, Score: 0.5},
	}
	r, m := Best(results, 0.8)
	if r.Index != 3 || m.Index != 3 || !m.Matched {
		t.Errorf("expected index 3 matched, got %+v %+v", r, m)
	}
}

func TestBest_Empty(t *testing.T) {
	_, m := Best(nil, 0.8)
	if m.Index != -1 || m.Matched {
		t.Errorf("unexpected result: %+v", m)
	}
}

func TestBest_NonPositiveScoreNeverMatches(t *testing.T) {
	_, m := Best([]domain.SearchResult{{Index: 0, Score: 0}}, 0)
	if m.Matched {
		t.Errorf("zero score should not match: %+v", m)
	}
}
