package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings carries the runtime configuration for the form engine.
type Settings struct {
	// Base URL of the collaborator backend (terminal registry, catalogs,
	// geofence verification, inspection persistence).
	BackendBaseURL string
	// Port the facade listens on.
	Port string
	// Timeout applied to every backend call.
	HTTPTimeout time.Duration
	// Timeout for device location capture.
	GeoTimeout time.Duration
}

// Load reads .env (when present) and the environment.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return Settings{
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
		Port:           getEnv("PORT", "8080"),
		HTTPTimeout:    durationEnv("HTTP_TIMEOUT_SECONDS", 30*time.Second),
		GeoTimeout:     durationEnv("GEO_TIMEOUT_SECONDS", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		log.Printf("Invalid %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return time.Duration(secs) * time.Second
}
