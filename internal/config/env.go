package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; godotenv never overrides a variable that is
// already set, so earlier files win over later ones and the process
// environment wins over both.
var envFiles = []string{".env.local", ".env"}

func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("Failed to load environment file", slog.String("file", f), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("file", f))
	}
}
