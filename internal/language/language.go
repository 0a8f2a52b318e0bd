// Package language detects the language of a question and translates text
// between languages. Every failure degrades to a safe default so callers
// never have to handle errors from this layer.
package language

import (
	"context"
	"log/slog"
	"strings"

	textlang "golang.org/x/text/language"

	"faqbot/internal/domain"
)

// DefaultCode is used when a language cannot be determined.
const DefaultCode = "en"

// Adapter combines a detector and a translator.
type Adapter struct {
	detector    domain.LanguageDetector
	translator  domain.Translator
	defaultCode string
	logger      *slog.Logger
}

// NewAdapter creates an Adapter. An empty defaultCode uses DefaultCode.
func NewAdapter(detector domain.LanguageDetector, translator domain.Translator, defaultCode string, logger *slog.Logger) *Adapter {
	if defaultCode == "" {
		defaultCode = DefaultCode
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		detector:    detector,
		translator:  translator,
		defaultCode: Normalize(defaultCode),
		logger:      logger,
	}
}

// Detect returns the ISO 639-1 code of text. When text is blank, the detector
// fails or its guess is unreliable, it returns fallback (usually the language
// the caller asked for), or the default code if fallback is empty.
func (a *Adapter) Detect(ctx context.Context, text, fallback string) string {
	if fallback = Normalize(fallback); fallback == "" {
		fallback = a.defaultCode
	}
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	code, reliable, err := a.detector.Detect(ctx, text)
	if err != nil {
		a.logger.Warn("language detection failed", "error", err)
		return fallback
	}
	if !reliable || code == "" {
		a.logger.Debug("language detection unreliable", "guess", code, "fallback", fallback)
		return fallback
	}
	return Normalize(code)
}

// Translate converts text from source to target. Identical languages or blank
// text skip the provider. A provider error or an empty translation returns
// text unchanged.
func (a *Adapter) Translate(ctx context.Context, text, source, target string) string {
	src, dst := Normalize(source), Normalize(target)
	if src == dst || strings.TrimSpace(text) == "" {
		return text
	}
	out, err := a.translator.Translate(ctx, text, src, dst)
	if err != nil {
		a.logger.Warn("translation failed", "source", src, "target", dst, "error", err)
		return text
	}
	if strings.TrimSpace(out) == "" {
		a.logger.Warn("translation returned no text", "source", src, "target", dst)
		return text
	}
	return out
}

// Normalize reduces a language tag such as "es-MX" or " EN " to its base
// ISO 639-1 code. Unparseable input is lower-cased and trimmed.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return code
	}
	tag, err := textlang.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	return base.String()
}
