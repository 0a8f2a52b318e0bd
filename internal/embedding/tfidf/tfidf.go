// Package tfidf embeds text as smoothed TF-IDF vectors over the vocabulary of
// the corpus questions.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Embedder is a TF-IDF vectorizer fitted on the corpus questions.
//
// Vectors have one slot per vocabulary term plus a trailing unknown slot.
// Corpus questions are zero in the unknown slot; every query token outside the
// vocabulary adds weight there, so unfamiliar words lower the cosine against
// every corpus question instead of vanishing.
//
// It is read-only after Prepare and safe for concurrent Embed calls.
type Embedder struct {
	terms     map[string]int
	idf       []float64
	unseenIDF float64
	tok       tokenizer
	prepared  bool
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{tok: newTokenizer()}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare fits the vocabulary and inverse document frequencies on corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		for term := range e.tok.set(text) {
			df[term]++
		}
	}
	if len(df) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	// sorted so dimensions are stable across runs
	sort.Strings(vocab)

	n := float64(len(corpus))
	e.terms = make(map[string]int, len(vocab))
	e.idf = make([]float64, len(vocab))
	for i, term := range vocab {
		e.terms[term] = i
		e.idf[i] = smoothIDF(n, df[term])
	}
	e.unseenIDF = smoothIDF(n, 0)
	e.prepared = true
	return nil
}

// smoothIDF is ln((1+n)/(1+df)) + 1. A term seen in no document gets ln(1+n)+1.
func smoothIDF(n float64, df int) float64 {
	return math.Log((1+n)/(1+float64(df))) + 1
}

// Dimension is the vocabulary size plus the unknown slot.
func (e *Embedder) Dimension() int {
	if !e.prepared {
		return 0
	}
	return len(e.idf) + 1
}

// Embed computes the L2-normalized TF-IDF vector for text. Text made only of
// stopwords yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	unknown := len(e.idf)
	vec := make([]float64, unknown+1)
	tokens := e.tok.split(text)
	if len(tokens) == 0 {
		return vec, nil
	}
	counts := make(map[int]int)
	for _, t := range tokens {
		if i, ok := e.terms[t]; ok {
			counts[i]++
		} else {
			counts[unknown]++
		}
	}
	total := float64(len(tokens))
	for i, c := range counts {
		weight := e.unseenIDF
		if i != unknown {
			weight = e.idf[i]
		}
		vec[i] = float64(c) / total * weight
	}
	normalize(vec)
	return vec, nil
}

// EmbedBatch embeds texts in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// tokenizer lower-cases text, splits it into Unicode words and numbers and
// drops English stopwords.
type tokenizer struct {
	word *regexp.Regexp
	stop map[string]struct{}
}

func newTokenizer() tokenizer {
	stop := make(map[string]struct{})
	for _, w := range strings.Fields(stopwords) {
		stop[w] = struct{}{}
	}
	return tokenizer{
		word: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stop: stop,
	}
}

func (t tokenizer) split(text string) []string {
	var out []string
	for _, w := range t.word.FindAllString(strings.ToLower(text), -1) {
		if _, skip := t.stop[w]; !skip {
			out = append(out, w)
		}
	}
	return out
}

func (t tokenizer) set(text string) map[string]struct{} {
	seen := make(map[string]struct{})
	for _, w := range t.split(text) {
		seen[w] = struct{}{}
	}
	return seen
}

const stopwords = `
a an the and or but if then else for to of in on at by with as
is are was were be been being it this that these those
from up down over under again further than so such into about
between through during before after above below out off own same
too very can will just don should now
i me my you your do does did please
`
