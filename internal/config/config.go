package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Session
	SessionSecret  string
	SessionIdleTTL time.Duration

	// Language model
	LLMProvider     string
	LLMAPIKey       string
	LLMModel        string
	MaxOutputTokens int
	Temperature     float64

	// Generation
	GenerationBatches int
	QuestionsPerBatch int
	BatchDelay        time.Duration
	RateLimitBackoff  time.Duration
	MinContentChars   int

	// Uploads
	MaxUploadBytes int64
	WorkerCount    int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini))

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		SessionSecret:     getEnvOrDefault("SESSION_SECRET", ""),
		SessionIdleTTL:    getEnvAsDurationOrDefault("SESSION_IDLE_TTL", 2*time.Hour),
		LLMProvider:       provider,
		LLMModel:          getEnvOrDefault("LLM_MODEL", defaultModel(provider)),
		MaxOutputTokens:   getEnvAsIntOrDefault("LLM_MAX_OUTPUT_TOKENS", 1024),
		Temperature:       getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.7),
		GenerationBatches: getEnvAsIntOrDefault("GENERATION_BATCHES", 5),
		QuestionsPerBatch: getEnvAsIntOrDefault("QUESTIONS_PER_BATCH", 10),
		BatchDelay:        getEnvAsDurationOrDefault("GENERATION_BATCH_DELAY", 15*time.Second),
		RateLimitBackoff:  getEnvAsDurationOrDefault("RATE_LIMIT_BACKOFF", 20*time.Second),
		MinContentChars:   getEnvAsIntOrDefault("MIN_CONTENT_CHARS", 100),
		MaxUploadBytes:    int64(getEnvAsIntOrDefault("MAX_UPLOAD_BYTES", 20*1024*1024)),
		WorkerCount:       getEnvAsIntOrDefault("WORKER_COUNT", 2),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	switch provider {
	case ProviderAnthropic:
		cfg.LLMAPIKey = mustGetEnv("ANTHROPIC_API_KEY")
	default:
		cfg.LLMAPIKey = mustGetEnv("GEMINI_API_KEY")
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		log.Println("WARNING: SESSION_SECRET not set, using a per-process secret")
	}

	return cfg
}

// Validate rejects settings the generation pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.GenerationBatches <= 0 {
		return fmt.Errorf("GENERATION_BATCHES must be positive, got %d", c.GenerationBatches)
	}
	if c.QuestionsPerBatch <= 0 {
		return fmt.Errorf("QUESTIONS_PER_BATCH must be positive, got %d", c.QuestionsPerBatch)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("LLM_MAX_OUTPUT_TOKENS must be positive, got %d", c.MaxOutputTokens)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.BatchDelay < 0 || c.RateLimitBackoff < 0 {
		return fmt.Errorf("generation delays must not be negative")
	}
	return nil
}

func defaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return "claude-3-5-haiku-latest"
	}
	return "gemini-1.5-flash"
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate session secret: %v", err))
	}
	return hex.EncodeToString(b)
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
