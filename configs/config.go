package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
	// Endpoint overrides the Cloudflare endpoint, e.g. for another
	// S3-compatible store.
	Endpoint string
}

// Enabled reports whether enough is configured to upload exports.
func (r R2) Enabled() bool {
	return r.AccessKey != "" && r.SecretKey != "" && r.BucketName != "" && (r.AccountID != "" || r.Endpoint != "")
}

type Model struct {
	Provider      string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Orchestrate   string
	Social        string
	Text          string
	Video         string
}

type Pipeline struct {
	Mode               string
	VideoFailurePolicy string
	ResolveConcurrency int
	TextMaxChars       int
	FetchTimeout       time.Duration
	VideoPollInterval  time.Duration
	VideoPollTimeout   time.Duration
	ScratchDir         string
	ScratchMaxAge      time.Duration
}

type Config struct {
	Port          string
	Model         Model
	Pipeline      Pipeline
	PostgresURI   string
	RedisURI      string
	YoutubeAPIKey string
	FrontendURL   string
	R2            R2
	SecretKey     string
	LogLevel      string
}

func LoadConfig() *Config {
	return &Config{
		Port: getEnv("PORT", "3000"),
		Model: Model{
			Provider:      getEnv("MODEL_PROVIDER", "gemini"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			Orchestrate:   getEnv("ORCHESTRATE_MODEL", "gemini-2.0-flash"),
			Social:        getEnv("SOCIAL_MODEL", "gemini-2.0-flash"),
			Text:          getEnv("TEXT_MODEL", "gemini-2.0-flash"),
			Video:         getEnv("VIDEO_MODEL", "gemini-2.0-flash"),
		},
		Pipeline: Pipeline{
			Mode:               getEnv("ORCHESTRATE_MODE", "resolved"),
			VideoFailurePolicy: getEnv("VIDEO_FAILURE_POLICY", "degrade"),
			ResolveConcurrency: getEnvInt("RESOLVE_CONCURRENCY", 1),
			TextMaxChars:       getEnvInt("TEXT_SOURCE_MAX_CHARS", 12000),
			FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 20*time.Second),
			VideoPollInterval:  getEnvDuration("VIDEO_POLL_INTERVAL", 2*time.Second),
			VideoPollTimeout:   getEnvDuration("VIDEO_POLL_TIMEOUT", 5*time.Minute),
			ScratchDir:         getEnv("SCRATCH_DIR", os.TempDir()),
			ScratchMaxAge:      getEnvDuration("SCRATCH_MAX_AGE", time.Hour),
		},
		PostgresURI:   getEnv("POSTGRES_URI", ""),
		RedisURI:      getEnv("REDIS_URI", ""),
		YoutubeAPIKey: getEnv("YOUTUBE_API_KEY", ""),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
			Endpoint:   getEnv("R2_ENDPOINT", ""),
		},
		SecretKey: getEnv("SECRET_KEY", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
