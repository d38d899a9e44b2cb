package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	OMDBAPIKey        string
	OMDBBaseURL       string
	OMDBTimeoutSecs   int
	OMDBDelayMillis   int
	DBURL             string
	DBMaxConns        int
	DBConnTimeoutSecs int
	DBStatementCache  int
	MoviesCSV         string
	RatingsCSV        string
	ProgressEvery     int
	LogLevel          string
	LogFormat         string
}

// Load reads an optional .env file, then configuration from environment
// variables, applying defaults and validation. Variables already set in the
// environment win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		OMDBAPIKey:        os.Getenv("OMDB_API_KEY"),
		OMDBBaseURL:       getEnv("OMDB_BASE_URL", "http://www.omdbapi.com/"),
		OMDBTimeoutSecs:   getEnvInt("OMDB_TIMEOUT_SECS", 5),
		OMDBDelayMillis:   getEnvInt("OMDB_DELAY_MS", 1000),
		DBURL:             os.Getenv("DB_URL"),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 4),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		MoviesCSV:         getEnv("MOVIES_CSV", "movies.csv"),
		RatingsCSV:        getEnv("RATINGS_CSV", "ratings.csv"),
		ProgressEvery:     getEnvInt("PROGRESS_EVERY", 500),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	if cfg.OMDBAPIKey == "" {
		return Config{}, fmt.Errorf("OMDB_API_KEY is required")
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.OMDBTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("OMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.OMDBDelayMillis < 0 {
		return Config{}, fmt.Errorf("OMDB_DELAY_MS must be non-negative")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBConnTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("DB_CONN_TIMEOUT_SECS must be positive")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.ProgressEvery <= 0 {
		return Config{}, fmt.Errorf("PROGRESS_EVERY must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
