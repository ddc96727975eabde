package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter"

	"github.com/mvp-joe/projected-source/internal/config"
	"github.com/mvp-joe/projected-source/internal/cppscan"
)

// FileResult pairs one source file with its analysis or failure. A failed
// file never aborts the run; other files proceed independently.
type FileResult struct {
	Path     string
	Analysis *cppscan.FileAnalysis
	Err      error
}

// RunSummary aggregates one extraction run.
type RunSummary struct {
	RunID        string
	Files        int
	Failed       int
	CacheHits    int
	Declarations int
	Regions      int
	Duration     time.Duration
	Results      []FileResult
}

// Runner analyzes source files in parallel. Analyses are cached in
// memory keyed by path plus content hash, so unchanged files are free on
// repeated runs within one process (watch mode, MCP serving).
type Runner struct {
	workers  int
	failFast bool

	cache    otter.Cache[string, *cppscan.FileAnalysis]
	hasCache bool
	hits     atomic.Int64
}

// NewRunner builds a runner from the extract configuration.
func NewRunner(cfg config.ExtractConfig) (*Runner, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	r := &Runner{workers: workers, failFast: cfg.FailFast}

	if cfg.CacheEntries > 0 {
		cache, err := otter.MustBuilder[string, *cppscan.FileAnalysis](cfg.CacheEntries).
			Cost(func(key string, value *cppscan.FileAnalysis) uint32 { return 1 }).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build analysis cache: %w", err)
		}
		r.cache = cache
		r.hasCache = true
	}
	return r, nil
}

// Close releases the cache.
func (r *Runner) Close() {
	if r.hasCache {
		r.cache.Close()
	}
}

// CacheHits returns the number of cache hits since the runner was built.
func (r *Runner) CacheHits() int { return int(r.hits.Load()) }

func cacheKey(path string, content []byte) string {
	sum := sha256.Sum256(content)
	return path + ":" + hex.EncodeToString(sum[:])
}

// AnalyzeFile analyzes a single file, consulting the cache first.
func (r *Runner) AnalyzeFile(path string) (*cppscan.FileAnalysis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	key := cacheKey(path, content)
	if r.hasCache {
		if analysis, ok := r.cache.Get(key); ok {
			r.hits.Add(1)
			return analysis, nil
		}
	}

	analysis, err := cppscan.Analyze(path, string(content))
	if err != nil {
		return nil, err
	}
	if r.hasCache {
		r.cache.Set(key, analysis)
	}
	return analysis, nil
}

// Run analyzes all paths with a bounded worker pool. Results come back in
// input order. The context cancels scheduling of not-yet-started files;
// in-flight analyses always finish (a single file's pass does no I/O).
func (r *Runner) Run(ctx context.Context, paths []string, reporter ProgressReporter) *RunSummary {
	if reporter == nil {
		reporter = NoopReporter{}
	}

	start := time.Now()
	summary := &RunSummary{
		RunID:   uuid.New().String(),
		Files:   len(paths),
		Results: make([]FileResult, len(paths)),
	}
	reporter.OnAnalysisStart(len(paths))

	var stop atomic.Bool
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				analysis, err := r.AnalyzeFile(path)
				summary.Results[i] = FileResult{Path: path, Analysis: analysis, Err: err}
				if err != nil && r.failFast {
					stop.Store(true)
				}
				reporter.OnFileAnalyzed(path)
			}
		}()
	}

schedule:
	for i := range paths {
		if stop.Load() {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			break schedule
		}
	}
	close(jobs)
	wg.Wait()

	for i := range summary.Results {
		res := &summary.Results[i]
		if res.Path == "" {
			// Never scheduled (cancelled or fail-fast).
			res.Path = paths[i]
			res.Err = context.Canceled
			summary.Failed++
			continue
		}
		if res.Err != nil {
			summary.Failed++
			continue
		}
		summary.Declarations += len(res.Analysis.Declarations)
		summary.Regions += len(res.Analysis.Regions)
	}
	summary.CacheHits = r.CacheHits()
	summary.Duration = time.Since(start)
	reporter.OnAnalysisComplete(summary)
	return summary
}
