package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// ConfigFileName is the project config file name
	ConfigFileName = "richness.yaml"

	// EnvConfig overrides the config file location
	EnvConfig = "RICHNESS_CONFIG"
	// EnvDataDir rebases relative input/output paths
	EnvDataDir = "RICHNESS_DATA_DIR"
	// EnvLogMode selects dev or prod logging
	EnvLogMode = "RICHNESS_LOG_MODE"
	// EnvOutput overrides output.path
	EnvOutput = "RICHNESS_OUTPUT"
)

// LoadEnv loads .env from the working directory when present
func LoadEnv() {
	_ = godotenv.Load()
}

// FindConfig walks up from the working directory looking for richness.yaml
func FindConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// DefaultConfigPath returns ./richness.yaml
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(cwd, ConfigFileName)
}
