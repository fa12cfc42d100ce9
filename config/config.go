// Package config reads gateway settings from the environment (optionally a
// .env file) and the keyword lists from a YAML file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSystemPrompt = `You are VicAI — friendly, helpful, safe, and supportive.
Never generate harmful, illegal, or unsafe instructions.
Always stay positive and respectful.`

// Config holds every tunable of the gateway.
type Config struct {
	Port    string
	GinMode string

	// Generator
	Provider     string // "openai" or "rulebased"
	LLMURL       string
	LLMKey       string
	LLMModel     string
	LLMTimeout   time.Duration
	HistoryTurns int
	SystemPrompt string

	// Request limits
	MaxMessageChars int
	ClientIPHeader  string

	// Rate limiting
	RateLimitStore  string // "memory" or "postgres"
	RateLimitWindow time.Duration

	KeywordsFile string
	AuditEnabled bool

	// Admin
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	DB DBConfig
}

// DBConfig is the PostgreSQL connection, same variables as psql tooling.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:    env("PORT", "8080"),
		GinMode: env("GIN_MODE", "release"),

		Provider:     strings.ToLower(env("LLM_PROVIDER", "openai")),
		LLMURL:       strings.TrimRight(env("LLM_API_URL", "http://localhost:1234/v1"), "/"),
		LLMKey:       os.Getenv("LLM_API_KEY"),
		LLMModel:     env("LLM_MODEL", "llama-3.1-8b-instruct"),
		LLMTimeout:   envDuration("LLM_API_TIMEOUT", 30*time.Second),
		HistoryTurns: envInt("LLM_HISTORY_TURNS", 0),
		SystemPrompt: env("SYSTEM_PROMPT", defaultSystemPrompt),

		MaxMessageChars: envInt("MAX_MESSAGE_CHARS", 2000),
		ClientIPHeader:  env("CLIENT_IP_HEADER", "CF-Connecting-IP"),

		RateLimitStore:  strings.ToLower(env("RATE_LIMIT_STORE", "memory")),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", 3*time.Second),

		KeywordsFile: os.Getenv("KEYWORDS_FILE"),
		AuditEnabled: envBool("AUDIT_ENABLED", false),

		JWTSecret:         os.Getenv("JWT_SECRET_KEY"),
		AdminEmail:        env("ADMIN_EMAIL", "admin@example.com"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		DB: DBConfig{
			Host:     env("PG_HOST", "localhost"),
			Port:     env("PG_PORT", "5432"),
			User:     env("PG_USER", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: env("PG_DATABASE", "vicai"),
			SSLMode:  env("PG_SSL_MODE", "disable"),
		},
	}
}

// NeedsDatabase reports whether any component is backed by PostgreSQL.
func (c *Config) NeedsDatabase() bool {
	return c.RateLimitStore == "postgres" || c.AuditEnabled
}

// AdminEnabled reports whether the admin API can authenticate anyone.
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != "" && c.JWTSecret != ""
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// envDuration accepts Go durations ("3s") or plain seconds ("3").
func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
