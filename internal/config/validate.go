package config

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSourcePatterns indicates the source pattern list is empty
	ErrNoSourcePatterns = errors.New("no source patterns configured")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidCacheEntries indicates a negative cache capacity
	ErrInvalidCacheEntries = errors.New("invalid cache capacity")

	// ErrEmptyOutputDir indicates a missing render output directory
	ErrEmptyOutputDir = errors.New("empty render output directory")

	// ErrEmptyRemote indicates a missing git remote name
	ErrEmptyRemote = errors.New("empty git remote")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Paths.Sources) == 0 {
		errs = append(errs, ErrNoSourcePatterns)
	}
	if cfg.Extract.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Extract.Workers))
	}
	if cfg.Extract.CacheEntries < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidCacheEntries, cfg.Extract.CacheEntries))
	}
	if cfg.Render.OutputDir == "" {
		errs = append(errs, ErrEmptyOutputDir)
	}
	if cfg.Git.Remote == "" {
		errs = append(errs, ErrEmptyRemote)
	}

	return errors.Join(errs...)
}
