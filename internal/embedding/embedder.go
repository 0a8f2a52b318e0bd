// Package embedding selects the text embedder used for the corpus and queries.
package embedding

import (
	"fmt"
	"strings"
	"time"

	"faqbot/internal/config"
	"faqbot/internal/domain"
	"faqbot/internal/embedding/openai"
	"faqbot/internal/embedding/tfidf"
)

// New builds the embedder named by cfg.Type.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "", "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai":
		o := cfg.OpenAI
		if o == nil {
			o = &config.OpenAIEmbedderConfig{}
		}
		return openai.NewClient(openai.Config{
			BaseURL:   o.BaseURL,
			APIKeyEnv: o.APIKeyEnv,
			// local OpenAI-compatible servers run without a key
			APIKeyOptional: o.BaseURL != "" && !strings.Contains(o.BaseURL, "api.openai.com"),
			Model:          o.Model,
			Timeout:        time.Duration(o.TimeoutSecs) * time.Second,
			BatchSize:      o.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unknown embedder type: %s", cfg.Type)
	}
}
