package files

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks a project tree and splits files into C/C++ sources to
// analyze and documentation templates to render, honoring ignore rules.
type Discovery struct {
	rootDir          string
	sourcePatterns   []compiledPattern
	templatePatterns []compiledPattern
	ignorePatterns   []compiledPattern
}

// NewDiscovery compiles the glob patterns and returns a discovery
// instance rooted at rootDir.
func NewDiscovery(rootDir string, sourcePatterns, templatePatterns, ignorePatterns []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.sourcePatterns, err = compilePatterns(sourcePatterns); err != nil {
		return nil, err
	}
	if d.templatePatterns, err = compilePatterns(templatePatterns); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}
	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	var out []compiledPattern
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// Discover walks the tree and returns source files and template files.
func (d *Discovery) Discover() (sourceFiles []string, templateFiles []string, err error) {
	sourceFiles = []string{}
	templateFiles = []string{}

	err = filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}

		// Normalize path separators for glob matching
		relPath = filepath.ToSlash(relPath)

		if d.shouldIgnore(relPath) {
			return nil
		}

		if matchesAnyPattern(relPath, d.sourcePatterns) {
			sourceFiles = append(sourceFiles, path)
			return nil
		}
		if matchesAnyPattern(relPath, d.templatePatterns) {
			templateFiles = append(templateFiles, path)
			return nil
		}
		return nil
	})

	return sourceFiles, templateFiles, err
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	// Always ignore VCS metadata
	if strings.HasPrefix(relPath, ".git/") || relPath == ".git" {
		return true
	}

	if matchesAnyPattern(relPath, d.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "build" should match pattern "build/**"
	return matchesAnyPattern(relPath+"/**", d.ignorePatterns)
}

func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	return false
}
