package testsupport

import (
	"path/filepath"
	"testing"

	"teachassist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The LLM API key is left empty so services fall back to the offline
// fixture provider; use WithLLMKey when a test exercises the HTTP client.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.UploadDir = filepath.Join(base, "uploads")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.LLM.APIKey = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithLLMKey sets the LLM API key and base URL on the test config.
func WithLLMKey(key, baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.LLM.APIKey = key
		cfg.LLM.BaseURL = baseURL
	}
}

// WithTranslationLanguage overrides the default translation target.
func WithTranslationLanguage(lang string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Generation.TranslationLanguage = lang
	}
}
