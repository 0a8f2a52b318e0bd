// Package similarity scores query embeddings against the corpus table.
//
// Match is the reference flat scan over every corpus vector, which is fine for
// FAQ sized corpora and nothing larger. Vector stores rank with Rank or their
// own search, and Best applies the same acceptance and tie-break rules to
// whatever they return.
//
// A match needs a positive score, so a query sharing nothing with the corpus
// never matches whatever the threshold.
package similarity

import (
	"math"
	"sort"

	"faqbot/internal/domain"
)

// DefaultThreshold is the minimum cosine score accepted as a corpus match.
const DefaultThreshold = 0.80

// Scored is a corpus position with its similarity to the query.
type Scored struct {
	Index int
	Score float64
}

// Cosine returns the cosine similarity of a and b. Mismatched, empty or
// zero-magnitude vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push identical vectors just past 1
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// Match finds the table entry most similar to query. Ties go to the lowest
// index. An empty table yields Index -1 and no match.
func Match(query []float64, table [][]float64, threshold float64) domain.MatchResult {
	res := domain.MatchResult{Index: -1}
	for i, v := range table {
		s := Cosine(query, v)
		if res.Index < 0 || s > res.Score {
			res.Index = i
			res.Score = s
		}
	}
	res.Matched = res.Index >= 0 && accepted(res.Score, threshold)
	return res
}

func accepted(score, threshold float64) bool {
	return score > 0 && score >= threshold
}

// Rank scores every table entry, best first. Equal scores keep corpus order.
func Rank(query []float64, table [][]float64) []Scored {
	out := make([]Scored, len(table))
	for i, v := range table {
		out[i] = Scored{Index: i, Score: Cosine(query, v)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Best picks the top candidate from store results, which may come back in
// any order for equal scores.
func Best(results []domain.SearchResult, threshold float64) (domain.SearchResult, domain.MatchResult) {
	best := -1
	for i, r := range results {
		if best < 0 || r.Score > results[best].Score ||
			(r.Score == results[best].Score && r.Index < results[best].Index) {
			best = i
		}
	}
	if best < 0 {
		return domain.SearchResult{Index: -1}, domain.MatchResult{Index: -1}
	}
	r := results[best]
	return r, domain.MatchResult{Index: r.Index, Score: r.Score, Matched: accepted(r.Score, threshold)}
}
