package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath         string
	HTTPAddr             string
	MigrationsPath       string
	PokeAPIBaseURL       string
	PokeAPIRatePerSecond float64
	CatalogNamesFile     string
	CatalogLocale        string
	ReconcileInterval    time.Duration
}

// Load reads .env if present, then the environment. Unset variables keep
// their defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DatabasePath:      getEnv("DATABASE_PATH", "creature_cup.db"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "file://migrations"),
		PokeAPIBaseURL:    getEnv("POKEAPI_BASE_URL", "https://pokeapi.co/api/v2"),
		CatalogNamesFile:  os.Getenv("CATALOG_NAMES_FILE"),
		CatalogLocale:     getEnv("CATALOG_LOCALE", "ko"),
		ReconcileInterval: 5 * time.Minute,
	}

	var err error
	if cfg.PokeAPIRatePerSecond, err = getFloat("POKEAPI_RATE_PER_SECOND", 10); err != nil {
		return nil, err
	}
	if v := os.Getenv("RECONCILE_INTERVAL"); v != "" {
		cfg.ReconcileInterval, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RECONCILE_INTERVAL %q: %w", v, err)
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
