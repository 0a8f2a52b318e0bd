// Package corpus loads the FAQ question/answer pairs from CSV files.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"faqbot/internal/domain"
)

const (
	questionColumn = "question"
	answerColumn   = "answer"
)

// LoadError reports why a corpus source could not be loaded.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return "corpus: " + e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("corpus: %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corpus: %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads every source in order and concatenates their rows.
// Duplicate questions are kept; each one is matchable on its own.
func Load(paths []string) ([]domain.CorpusEntry, error) {
	if len(paths) == 0 {
		return nil, &LoadError{Reason: "no corpus sources configured"}
	}
	var entries []domain.CorpusEntry
	for _, p := range paths {
		rows, err := loadFile(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rows...)
	}
	if len(entries) == 0 {
		return nil, &LoadError{Reason: "corpus is empty"}
	}
	return entries, nil
}

func loadFile(path string) ([]domain.CorpusEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Path: path, Reason: "file not found", Err: err}
		}
		return nil, &LoadError{Path: path, Reason: "cannot open", Err: err}
	}
	defer f.Close()
	rows, err := Read(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Reason: "malformed csv", Err: err}
	}
	return rows, nil
}

// Read parses a single CSV stream with a header row containing at least
// the question and answer columns.
func Read(r io.Reader) ([]domain.CorpusEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Reason: "missing header row"}
		}
		return nil, err
	}
	qi, ai := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case questionColumn:
			if qi < 0 {
				qi = i
			}
		case answerColumn:
			if ai < 0 {
				ai = i
			}
		}
	}
	if qi < 0 {
		return nil, &LoadError{Reason: "missing required column \"question\""}
	}
	if ai < 0 {
		return nil, &LoadError{Reason: "missing required column \"answer\""}
	}
	var out []domain.CorpusEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, domain.CorpusEntry{
			Question: field(rec, qi),
			Answer:   field(rec, ai),
		})
	}
	return out, nil
}

// field returns an empty string for short rows, like a missing cell.
func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

// Questions returns the question column in corpus order.
func Questions(entries []domain.CorpusEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Question
	}
	return out
}

// Answers returns the answer column in corpus order.
func Answers(entries []domain.CorpusEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Answer
	}
	return out
}
