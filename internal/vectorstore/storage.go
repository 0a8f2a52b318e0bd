// Package vectorstore selects the backend that holds the corpus embedding table.
package vectorstore

import (
	"fmt"
	"os"
	"time"

	"faqbot/internal/config"
	"faqbot/internal/domain"
	"faqbot/internal/vectorstore/memory"
	"faqbot/internal/vectorstore/qdrant"
)

// New builds the store named by cfg.Type. The returned closer releases
// any connection held by the store.
func New(cfg config.VectorStoreConfig) (domain.VectorStore, func() error, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.NewStorage(), func() error { return nil }, nil
	case "qdrant":
		q := cfg.Qdrant
		if q == nil {
			return nil, nil, fmt.Errorf("vector_store.qdrant config missing")
		}
		key := ""
		if q.APIKeyEnv != "" {
			key = os.Getenv(q.APIKeyEnv)
		}
		s, err := qdrant.NewStorage(qdrant.Config{
			Addr:       q.Addr,
			APIKey:     key,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store type: %s", cfg.Type)
	}
}
