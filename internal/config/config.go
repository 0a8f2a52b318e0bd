package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CorpusConfig lists the FAQ CSV sources and the language they are written in.
type CorpusConfig struct {
	Paths    []string `yaml:"paths"`
	Language string   `yaml:"language"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	Addr        string `yaml:"addr"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// MatcherConfig holds the similarity threshold.
type MatcherConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// GeneratorConfig configures the generative fallback.
type GeneratorConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxWords    int    `yaml:"max_words"`
}

// TranslatorConfig selects and configures the translation provider.
type TranslatorConfig struct {
	Type        string `yaml:"type"`
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LanguageConfig configures the optional detection/translation layer.
type LanguageConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Default    string           `yaml:"default"`
	Detector   string           `yaml:"detector"`
	// Languages are the candidates the detector chooses between.
	Languages  []string         `yaml:"languages"`
	Translator TranslatorConfig `yaml:"translator"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port              int     `yaml:"port"`
	CORSOrigin        string  `yaml:"cors_origin"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig configures OTLP trace export. An empty endpoint disables export.
type TracingConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	ServiceName  string  `yaml:"service_name"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus      CorpusConfig      `yaml:"corpus"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Matcher     MatcherConfig     `yaml:"matcher"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Language    LanguageConfig    `yaml:"language"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Tracing     TracingConfig     `yaml:"tracing"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			return cfg, applyEnv(cfg)
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, applyEnv(cfg)
}

// LoadDefault tries ./config.yaml first, then ~/.config/faqbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/faqbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, applyEnv(cfg)
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports configuration errors that must stop startup.
func (c *AppConfig) Validate() error {
	var errs []error
	if len(c.Corpus.Paths) == 0 {
		errs = append(errs, errors.New("corpus.paths: at least one CSV path is required"))
	}
	if c.Matcher.Threshold <= 0 || c.Matcher.Threshold > 1 {
		errs = append(errs, fmt.Errorf("matcher.threshold: %v is outside (0, 1]", c.Matcher.Threshold))
	}
	if c.Generator.MaxWords < 1 {
		errs = append(errs, fmt.Errorf("generator.max_words: %d must be at least 1", c.Generator.MaxWords))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d is outside 1..65535", c.Server.Port))
	}
	if c.Server.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("server.requests_per_second: must not be negative"))
	}
	errs = append(errs, oneOf("embedder.type", c.Embedder.Type, "tfidf", "openai"))
	errs = append(errs, oneOf("vector_store.type", c.VectorStore.Type, "memory", "qdrant"))
	errs = append(errs, oneOf("generator.provider", c.Generator.Provider, "gemini", "ollama"))
	errs = append(errs, oneOf("log.format", c.Log.Format, "json", "text"))
	if c.Language.Enabled {
		errs = append(errs, oneOf("language.detector", c.Language.Detector, "lingua"))
		errs = append(errs, oneOf("language.translator.type", c.Language.Translator.Type, "libretranslate", "llm"))
	}
	return errors.Join(errs...)
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unknown value %q (want one of %s)", field, value, strings.Join(allowed, ", "))
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "faqbot", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Corpus: CorpusConfig{
			Paths:    []string{"app/diabetes_faq.csv", "app/app_faq.csv"},
			Language: "en",
		},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Matcher:     MatcherConfig{Threshold: 0.80},
		Generator: GeneratorConfig{
			Provider:    "gemini",
			Model:       "gemini-1.5-pro-latest",
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
			APIKeyEnv:   "GENAI_API_KEY",
			TimeoutSecs: 30,
			MaxWords:    60,
		},
		Language: LanguageConfig{
			Default:   "en",
			Detector:  "lingua",
			Languages: []string{"en", "es", "fr", "de"},
			Translator: TranslatorConfig{
				Type:        "libretranslate",
				URL:         "http://localhost:5000",
				APIKeyEnv:   "LIBRETRANSLATE_API_KEY",
				TimeoutSecs: 10,
			},
		},
		Server:  ServerConfig{Port: 8000, CORSOrigin: "*", Burst: 10},
		Log:     LogConfig{Level: "info", Format: "json"},
		Tracing: TracingConfig{ServiceName: "faqbot", SampleRate: 1},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Corpus.Language == "" {
		cfg.Corpus.Language = "en"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
		if o.BatchSize == 0 {
			o.BatchSize = 32
		}
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		q := cfg.VectorStore.Qdrant
		if q.Addr == "" {
			q.Addr = "localhost:6334"
		}
		if q.Collection == "" {
			q.Collection = "faq"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 10
		}
	}
	if cfg.Generator.Provider == "ollama" {
		if cfg.Generator.BaseURL == "" || strings.Contains(cfg.Generator.BaseURL, "googleapis.com") {
			cfg.Generator.BaseURL = "http://localhost:11434"
		}
		if cfg.Generator.Model == "" || strings.HasPrefix(cfg.Generator.Model, "gemini") {
			cfg.Generator.Model = "llama3"
		}
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 30
	}
	if cfg.Language.Default == "" {
		cfg.Language.Default = "en"
	}
	if cfg.Language.Detector == "" {
		cfg.Language.Detector = "lingua"
	}
	if cfg.Language.Translator.TimeoutSecs == 0 {
		cfg.Language.Translator.TimeoutSecs = 10
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = 10
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "faqbot"
	}
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("FAQ_PATHS"); v != "" {
		var paths []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		cfg.Corpus.Paths = paths
	}
	if v := os.Getenv("FAQ_THRESHOLD"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FAQ_THRESHOLD: %w", err)
		}
		cfg.Matcher.Threshold = t
	}
	if v := os.Getenv("FAQ_MAX_WORDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FAQ_MAX_WORDS: %w", err)
		}
		cfg.Generator.MaxWords = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.OTLPEndpoint = v
	}
	return nil
}
