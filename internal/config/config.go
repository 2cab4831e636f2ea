package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	ReaderAPIKey string

	// Synopsis generation; disabled when the key is empty.
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	// Catalog and downloads
	GutendexURL      string
	FetchTimeout     time.Duration
	MaxDocumentBytes int64

	// Upload limits
	MaxUploadBytes int64

	// Document cache
	CacheTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ReaderAPIKey: os.Getenv("READER_API_KEY"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AnthropicBaseURL: envOr("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),

		GutendexURL:      envOr("GUTENDEX_URL", "https://gutendex.com"),
		FetchTimeout:     envDuration("FETCH_TIMEOUT", 30*time.Second),
		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", 20971520), // 20MB

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		CacheTTL: envDuration("CACHE_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 20971520
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ReaderAPIKey == "" {
		return fmt.Errorf("READER_API_KEY is required")
	}
	return nil
}

// SynopsisEnabled reports whether an Anthropic key is configured.
func (c Config) SynopsisEnabled() bool {
	return c.AnthropicAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
