package config

import (
	"os"

	"github.com/joho/godotenv"

	"rektwatch/internal/platform/logger"
)

// LoadDotEnv overlays .env then .env.local onto the process environment.
// Missing files are skipped; returns the files actually loaded.
func LoadDotEnv(files ...string) []string {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	loaded := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Overload(f); err != nil {
			logger.Get().Warn().Err(err).Str("file", f).Msg("dotenv load failed")
			continue
		}
		loaded = append(loaded, f)
	}
	if len(loaded) == 0 {
		logger.Get().Debug().Msg("no env files loaded; using process environment")
	} else {
		logger.Get().Debug().Strs("files", loaded).Msg("env files loaded")
	}
	return loaded
}
