package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	LLMBaseURL   string
	LLMAPIKey    string
	LLMModel     string
	LLMTimeoutMS int

	ExpectedStandard  float64
	FrictionThreshold float64

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		LLMBaseURL:             envDefault("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:              envDefault("LLM_API_KEY", "ollama"),
		LLMModel:               envDefault("LLM_MODEL", "llama3.2:3b"),
		LLMTimeoutMS:           envIntDefault("LLM_TIMEOUT_MS", 15000),
		ExpectedStandard:       envFloatDefault("EXPECTED_STANDARD", 10.0),
		FrictionThreshold:      envFloatDefault("FRICTION_THRESHOLD", 5.0),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return parsed
}

func (c Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.LLMTimeoutMS) * time.Millisecond
}

func (c Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
