package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the server-level settings. Simulation tuning lives in the
// optional YAML file referenced by TuningPath; see LoadTuning.
type Config struct {
	Addr       string
	TuningPath string
}

// Load reads an optional .env file and the environment. A missing .env is
// fine; explicit environment variables always win.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:       getEnv("FUNAMBOARD_ADDR", ":8080"),
		TuningPath: getEnv("FUNAMBOARD_TUNING", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
