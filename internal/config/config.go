package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	ServiceName     string
	Env             string
	HTTPAddr        string
	Store           string
	DatabaseURL     string
	LogFile         string
	ShutdownTimeout time.Duration
}

// Load reads the environment, after merging in the given dotenv files (".env" when
// none are given). Missing files are ignored; variables already set win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := Config{
		ServiceName: getenvDefault("SERVICE_NAME", "minishop"),
		Env:         getenvDefault("ENV", "dev"),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		Store:       getenvDefault("STORE", StoreMemory),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	timeout, err := time.ParseDuration(getenvDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("config: SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("config: DATABASE_URL is required when STORE=postgres")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STORE %q", cfg.Store)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
