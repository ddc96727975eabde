package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PROJECTED_*)
// 2. Config file (.projected/config.yml or .projected/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".projected")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("PROJECTED")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., PROJECTED_EXTRACT_WORKERS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("extract.workers")
	v.BindEnv("extract.cache_entries")
	v.BindEnv("extract.fail_fast")
	v.BindEnv("render.output_dir")
	v.BindEnv("render.annotate_lines")
	v.BindEnv("git.remote")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.sources", defaults.Paths.Sources)
	v.SetDefault("paths.templates", defaults.Paths.Templates)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("extract.workers", defaults.Extract.Workers)
	v.SetDefault("extract.cache_entries", defaults.Extract.CacheEntries)
	v.SetDefault("extract.fail_fast", defaults.Extract.FailFast)

	v.SetDefault("render.output_dir", defaults.Render.OutputDir)
	v.SetDefault("render.annotate_lines", defaults.Render.AnnotateLines)

	v.SetDefault("git.remote", defaults.Git.Remote)
}

// LoadConfig is a convenience function that creates a loader and loads
// config from the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
