package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local from dir when present. Variables
// already set in the process environment are not overwritten.
func loadEnvFiles(dir string) {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", logfields.File(path), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.File(path))
	}
}
