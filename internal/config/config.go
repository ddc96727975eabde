package config

// Config represents the complete projected-source configuration.
// It can be loaded from .projected/config.yml with environment variable
// overrides.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Git     GitConfig     `yaml:"git" mapstructure:"git"`
}

// PathsConfig defines which files to analyze and which to ignore.
type PathsConfig struct {
	Sources   []string `yaml:"sources" mapstructure:"sources"`     // glob patterns for C/C++ sources
	Templates []string `yaml:"templates" mapstructure:"templates"` // glob patterns for doc templates
	Ignore    []string `yaml:"ignore" mapstructure:"ignore"`       // glob patterns to ignore
}

// ExtractConfig tunes the per-file analysis pipeline.
type ExtractConfig struct {
	Workers      int  `yaml:"workers" mapstructure:"workers"`             // parallel file analyses; 0 means NumCPU
	CacheEntries int  `yaml:"cache_entries" mapstructure:"cache_entries"` // in-memory analysis cache capacity
	FailFast     bool `yaml:"fail_fast" mapstructure:"fail_fast"`         // stop scheduling new files after the first fatal file error
}

// RenderConfig controls template rendering output.
type RenderConfig struct {
	OutputDir     string `yaml:"output_dir" mapstructure:"output_dir"`         // where rendered documents are written
	AnnotateLines bool   `yaml:"annotate_lines" mapstructure:"annotate_lines"` // append post-strip line annotations to snippets
}

// GitConfig controls permalink generation.
type GitConfig struct {
	Remote string `yaml:"remote" mapstructure:"remote"` // remote whose URL permalinks point at
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Sources: []string{
				"**/*.c",
				"**/*.cc",
				"**/*.cpp",
				"**/*.cxx",
				"**/*.h",
				"**/*.hh",
				"**/*.hpp",
			},
			Templates: []string{
				"**/*.md.tmpl",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"cmake-build-*/**",
				"third_party/**",
			},
		},
		Extract: ExtractConfig{
			Workers:      0,
			CacheEntries: 1024,
			FailFast:     false,
		},
		Render: RenderConfig{
			OutputDir:     "docs",
			AnnotateLines: false,
		},
		Git: GitConfig{
			Remote: "origin",
		},
	}
}
