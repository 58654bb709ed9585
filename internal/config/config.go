package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Index     IndexConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Retrieval RetrievalConfig
	Analytics AnalyticsConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// IndexConfig points at the Postgres/pgvector product index.
type IndexConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LLMConfig struct {
	Provider      string // openai, anthropic, ollama
	Model         string
	OpenAIKey     string
	OpenAIBaseURL string // set to the OpenRouter endpoint to use OpenRouter models
	AnthropicKey  string
	OllamaURL     string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
}

type RetrievalConfig struct {
	TopK           int
	EmbeddingModel string
	EmbeddingDim   int
	Timeout        time.Duration
	ContextBudget  int // max tokens of formatted context passed to the model
}

type AnalyticsConfig struct {
	DatasetPath   string
	TopCategories int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("INDEX_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid INDEX_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("INDEX_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid INDEX_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
	}

	llmTimeout, err := getEnvDuration("LLM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}

	topK, err := getEnvInt("RETRIEVAL_TOP_K", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_TOP_K: %w", err)
	}

	embeddingDim, err := getEnvInt("EMBEDDING_DIM", 384)
	if err != nil {
		return nil, fmt.Errorf("invalid EMBEDDING_DIM: %w", err)
	}

	retrievalTimeout, err := getEnvDuration("RETRIEVAL_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_TIMEOUT: %w", err)
	}

	contextBudget, err := getEnvInt("CONTEXT_TOKEN_BUDGET", 2048)
	if err != nil {
		return nil, fmt.Errorf("invalid CONTEXT_TOKEN_BUDGET: %w", err)
	}

	topCategories, err := getEnvInt("ANALYTICS_TOP_CATEGORIES", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_TOP_CATEGORIES: %w", err)
	}

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getEnvInt("RATE_LIMIT_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Index: IndexConfig{
			URL:      getEnv("INDEX_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			Provider:      getEnv("LLM_PROVIDER", "openai"),
			Model:         getEnv("LLM_MODEL", "nousresearch/nous-hermes-2-mixtral-8x7b-dpo"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:  getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:     getEnv("OLLAMA_URL", ""),
			Temperature:   temperature,
			MaxTokens:     maxTokens,
			Timeout:       llmTimeout,
		},
		Retrieval: RetrievalConfig{
			TopK:           topK,
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDim:   embeddingDim,
			Timeout:        retrievalTimeout,
			ContextBudget:  contextBudget,
		},
		Analytics: AnalyticsConfig{
			DatasetPath:   getEnv("ANALYTICS_DATASET_PATH", "data/intern_data_ikarus.csv"),
			TopCategories: topCategories,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate rejects configurations the pipeline would misbehave under.
// Out-of-range generation options are rejected, never clamped.
func (c *Config) Validate() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("LLM_TEMPERATURE must be in [0,1], got %g", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be > 0, got %d", c.LLM.MaxTokens)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be >= 1, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.EmbeddingDim < 1 {
		return fmt.Errorf("EMBEDDING_DIM must be >= 1, got %d", c.Retrieval.EmbeddingDim)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
