// Package llm holds the text generation providers used for the generative
// fallback and for prompted translation.
package llm

import (
	"fmt"
	"os"
	"time"

	"faqbot/internal/config"
	"faqbot/internal/domain"
)

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Body)
}

// New builds the generator named by cfg.Provider. A provider that needs an
// API key fails here when the key is missing, so startup stops early.
func New(cfg config.GeneratorConfig) (domain.Generator, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch cfg.Provider {
	case "", "gemini":
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("missing API key: set %s", cfg.APIKeyEnv)
		}
		return NewGemini(key, cfg.Model, cfg.BaseURL, timeout), nil
	case "ollama":
		return NewOllama(cfg.BaseURL, cfg.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
}

func truncate(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
