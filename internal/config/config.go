package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	SaveWorkerCount    int
	SaveQueueSize      int
	CheckpointSeconds  int
	StaleSessionHours  int
	MaxCardsPerSession int
	MaxNewCardsPerDay  int
	ShuffleCards       bool
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:leitnerbox.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		SaveWorkerCount:    envIntOr("SAVE_WORKER_COUNT", 1),
		SaveQueueSize:      envIntOr("SAVE_QUEUE_SIZE", 64),
		CheckpointSeconds:  envIntOr("CHECKPOINT_SECONDS", 30),
		StaleSessionHours:  envIntOr("STALE_SESSION_HOURS", 24),
		MaxCardsPerSession: envIntOr("MAX_CARDS_PER_SESSION", 20),
		MaxNewCardsPerDay:  envIntOr("MAX_NEW_CARDS_PER_DAY", 20),
		ShuffleCards:       envBoolOr("SHUFFLE_CARDS", true),
	}
}

// Validate checks the configuration, collecting every problem into a single
// error.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel))
	}
	if c.SaveWorkerCount < 1 {
		problems = append(problems, "SAVE_WORKER_COUNT must be at least 1")
	}
	if c.SaveQueueSize < 1 {
		problems = append(problems, "SAVE_QUEUE_SIZE must be at least 1")
	}
	if c.CheckpointSeconds < 1 {
		problems = append(problems, "CHECKPOINT_SECONDS must be at least 1")
	}
	if c.StaleSessionHours < 1 {
		problems = append(problems, "STALE_SESSION_HOURS must be at least 1")
	}
	if c.MaxCardsPerSession < 1 {
		problems = append(problems, "MAX_CARDS_PER_SESSION must be at least 1")
	}
	if c.MaxNewCardsPerDay < 0 {
		problems = append(problems, "MAX_NEW_CARDS_PER_DAY cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
