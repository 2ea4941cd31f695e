package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
)

// LoadAllEnvs loads every *.env file in envDir in alphabetical order.
// Later files override earlier ones and the process environment.
func LoadAllEnvs(envDir string) ([]string, error) {
	if envDir == "" {
		envDir = EnvDirName
	}
	info, err := os.Stat(envDir)
	if err != nil {
		return nil, fmt.Errorf("env directory not found: %s: %w", envDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("env path is not a directory: %s", envDir)
	}

	files, err := filepath.Glob(filepath.Join(envDir, "*.env"))
	if err != nil {
		return nil, fmt.Errorf("list env files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := godotenv.Overload(file); err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return files, nil
}

// AutoLoadEnvs runs LoadAllEnvs only when AUTO_LOAD_DOTENV=1.
func AutoLoadEnvs() ([]string, error) {
	if os.Getenv("AUTO_LOAD_DOTENV") != "1" {
		return nil, nil
	}
	return LoadAllEnvs(envOrDefault("ENV_DIR", EnvDirName))
}
