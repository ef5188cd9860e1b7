package config

import (
	"fmt"
	"os"
	"strconv"
)

// Provider identifies which extraction backend produces structured statements.
type Provider string

const (
	// ProviderGemini uses the Gemini model as the primary extractor.
	ProviderGemini Provider = "gemini"
	// ProviderOffline skips the model entirely and uses heuristic extraction.
	ProviderOffline Provider = "offline"
)

// Config holds the application configuration.
type Config struct {
	// Port is the HTTP server port.
	Port string

	// LLMProvider selects the primary extraction backend.
	LLMProvider Provider

	// GeminiModel is the model name used for statement extraction.
	GeminiModel string

	// MaxPromptChars caps how much raw statement text is sent to the model.
	MaxPromptChars int

	// AuditLogDir is where per-statement audit logs are written as JSONL.
	AuditLogDir string

	// GCSBucket, when set, enables uploading audit logs and exports to GCS.
	GCSBucket string
}

// Load reads configuration from environment variables, applying defaults
// that allow fully offline operation with no credentials configured.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LLMProvider:    Provider(getEnv("LLM_PROVIDER", string(ProviderOffline))),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		MaxPromptChars: 15000,
		AuditLogDir:    getEnv("AUDIT_LOG_DIR", "."),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
	}

	if v := os.Getenv("MAX_PROMPT_CHARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid MAX_PROMPT_CHARS %q: %w", v, err)
		}
		cfg.MaxPromptChars = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOffline:
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q (want %q or %q)",
			c.LLMProvider, ProviderGemini, ProviderOffline)
	}

	if c.MaxPromptChars <= 0 {
		return fmt.Errorf("config: MAX_PROMPT_CHARS must be positive, got %d", c.MaxPromptChars)
	}

	if c.LLMProvider == ProviderGemini && os.Getenv("GOOGLE_API_KEY") == "" && os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("config: LLM_PROVIDER=gemini requires GOOGLE_API_KEY or GEMINI_API_KEY")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
