package config

import (
	"os"

	"github.com/joho/godotenv"
)

// DefaultModel is the model used when neither flag nor env overrides it.
const DefaultModel = "llama-3.1-sonar-large-128k-online"

// Config carries the environment-derived settings. CLI flags take precedence
// over everything here; that merge happens in cmd.
type Config struct {
	APIKey   string // PERPLEXITY_API_KEY
	Model    string // PLEXSEARCH_MODEL
	Endpoint string // PLEXSEARCH_ENDPOINT, empty = hosted default
	NoStream bool   // PLEXSEARCH_NO_STREAM, or a dumb terminal
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present, without overriding variables that
// are already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIKey:   getEnv("PERPLEXITY_API_KEY", ""),
		Model:    getEnv("PLEXSEARCH_MODEL", DefaultModel),
		Endpoint: getEnv("PLEXSEARCH_ENDPOINT", ""),
		NoStream: getEnvBool("PLEXSEARCH_NO_STREAM") || insideDumbTerminal(),
	}
}

// insideDumbTerminal reports whether the host environment cannot render
// incremental output (Emacs shells, some CI); streaming is forced off there.
func insideDumbTerminal() bool {
	return os.Getenv("TERM") == "dumb"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}
