package language

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"faqbot/internal/config"
	"faqbot/internal/domain"
)

// New builds an Adapter from cfg. The detector always considers the default
// language besides cfg.Languages. The llm translator reuses generator.
func New(cfg config.LanguageConfig, generator domain.Generator, logger *slog.Logger) (*Adapter, error) {
	var detector domain.LanguageDetector
	switch cfg.Detector {
	case "", "lingua":
		codes := cfg.Languages
		if len(codes) == 0 {
			codes = DefaultLanguages
		}
		d, err := NewLinguaDetector(append([]string{cfg.Default}, codes...))
		if err != nil {
			return nil, err
		}
		detector = d
	default:
		return nil, fmt.Errorf("unknown language detector: %s", cfg.Detector)
	}

	var translator domain.Translator
	switch cfg.Translator.Type {
	case "", "libretranslate":
		key := ""
		if cfg.Translator.APIKeyEnv != "" {
			key = os.Getenv(cfg.Translator.APIKeyEnv)
		}
		translator = NewLibreTranslate(cfg.Translator.URL, key, time.Duration(cfg.Translator.TimeoutSecs)*time.Second)
	case "llm":
		if generator == nil {
			return nil, fmt.Errorf("llm translator needs a generator")
		}
		translator = NewGeneratorTranslator(generator)
	default:
		return nil, fmt.Errorf("unknown translator type: %s", cfg.Translator.Type)
	}
	return NewAdapter(detector, translator, cfg.Default, logger), nil
}
