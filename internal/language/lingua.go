package language

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// DefaultLanguages are the candidates the detector chooses between when none
// are configured.
var DefaultLanguages = []string{"en", "es", "fr", "de"}

// LinguaDetector picks among a fixed set of candidate languages. Restricting
// the set keeps short questions such as "¿Qué es la diabetes?" stable.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector over the given ISO 639-1 codes.
// At least two distinct known languages are required.
func NewLinguaDetector(codes []string) (*LinguaDetector, error) {
	langs, err := linguaLanguages(codes)
	if err != nil {
		return nil, err
	}
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build(),
	}, nil
}

// Detect returns the best candidate. Text the model cannot tell apart is
// reported as unreliable with an empty code.
func (d *LinguaDetector) Detect(_ context.Context, text string) (string, bool, error) {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false, nil
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true, nil
}

func linguaLanguages(codes []string) ([]lingua.Language, error) {
	known := make(map[string]lingua.Language)
	for _, l := range lingua.AllLanguages() {
		known[strings.ToLower(l.IsoCode639_1().String())] = l
	}
	seen := make(map[lingua.Language]struct{})
	var out []lingua.Language
	for _, c := range codes {
		code := Normalize(c)
		l, ok := known[code]
		if !ok {
			return nil, fmt.Errorf("language: unsupported language code %q", c)
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("language: detection needs at least two languages, got %v", codes)
	}
	return out, nil
}
