package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/projected-source/internal/extract"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet   bool
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(sourceFiles, templateFiles int) {
	if c.quiet {
		return
	}
	log.Printf("Found %d source files and %d templates\n", sourceFiles, templateFiles)
}

func (c *CLIProgressReporter) OnAnalysisStart(totalFiles int) {
	if c.quiet {
		return
	}
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Analyzing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnFileAnalyzed(path string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnAnalysisComplete(summary *extract.RunSummary) {
	if c.quiet {
		return
	}
	fmt.Printf("✓ Analyzed %d files in %.1fs: %d declarations, %d marker regions",
		summary.Files, summary.Duration.Seconds(), summary.Declarations, summary.Regions)
	if summary.CacheHits > 0 {
		fmt.Printf(" (%d cached)", summary.CacheHits)
	}
	fmt.Println()
	if summary.Failed > 0 {
		fmt.Printf("✗ %d file(s) failed\n", summary.Failed)
	}
}
