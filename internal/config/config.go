package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Database  DatabaseConfig  `toml:"database"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Prompt    PromptConfig    `toml:"prompt"`
	Observer  ObserverConfig  `toml:"observer"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	Path   string `toml:"path"`   // sqlite file path
	URL    string `toml:"url"`    // postgres connection string
}

type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

type RetrievalConfig struct {
	TopK     int     `toml:"top_k"`
	MinScore float64 `toml:"min_score"`
}

type PromptConfig struct {
	System string `toml:"system"`
}

type ObserverConfig struct {
	Enabled bool                       `toml:"enabled"`
	Pricing map[string]ObserverPricing `toml:"pricing"`
}

type ObserverPricing struct {
	Input  float64 `toml:"input"`
	Output float64 `toml:"output"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8080", AllowedOrigins: []string{"*"}},
		LLM:       LLMConfig{Provider: "openai", Model: "gpt-4o-mini"},
		Embedding: EmbeddingConfig{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 1536},
		Database:  DatabaseConfig{Driver: "sqlite", Path: "advisor.db"},
		Chunking:  ChunkingConfig{Size: 800, Overlap: 120},
		Retrieval: RetrievalConfig{TopK: 4, MinScore: 0.60},
		Prompt:    PromptConfig{System: advisor.DefaultSystemPrompt},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "advisor.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("ADVISOR_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ADVISOR_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("ADVISOR_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ADVISOR_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("ADVISOR_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("ADVISOR_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("ADVISOR_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}
	if v := os.Getenv("ADVISOR_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("ADVISOR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ADVISOR_DB_URL"); v != "" {
		cfg.Database.URL = v
	}
	if os.Getenv("ADVISOR_OBSERVER_ENABLED") == "true" || os.Getenv("ADVISOR_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	// Fallbacks
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = cfg.LLM.APIKey
	}

	return cfg
}

// Validate rejects configurations that would fail mid-pipeline. Errors
// carry the offending field as *advisor.ErrConfig.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return &advisor.ErrConfig{Field: "server.addr", Message: "must not be empty"}
	}
	if c.Chunking.Size <= 0 {
		return &advisor.ErrConfig{Field: "chunking.size", Message: "must be positive"}
	}
	if c.Chunking.Overlap < 0 {
		return &advisor.ErrConfig{Field: "chunking.overlap", Message: "must not be negative"}
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return &advisor.ErrConfig{Field: "chunking.overlap", Message: "must be smaller than chunk size"}
	}
	if c.Retrieval.TopK <= 0 {
		return &advisor.ErrConfig{Field: "retrieval.top_k", Message: "must be positive"}
	}
	if c.Retrieval.MinScore < 0 || c.Retrieval.MinScore > 1 {
		return &advisor.ErrConfig{Field: "retrieval.min_score", Message: "must be in [0, 1]"}
	}
	if c.Embedding.Dimensions <= 0 {
		return &advisor.ErrConfig{Field: "embedding.dimensions", Message: "must be positive"}
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return &advisor.ErrConfig{Field: "database.path", Message: "required for sqlite"}
		}
	case "postgres":
		if c.Database.URL == "" {
			return &advisor.ErrConfig{Field: "database.url", Message: "required for postgres"}
		}
	default:
		return &advisor.ErrConfig{Field: "database.driver", Message: "must be sqlite or postgres"}
	}
	return nil
}
