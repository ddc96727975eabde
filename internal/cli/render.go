package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/projected-source/internal/config"
	"github.com/mvp-joe/projected-source/internal/extract"
	"github.com/mvp-joe/projected-source/internal/files"
	"github.com/mvp-joe/projected-source/internal/git"
	"github.com/mvp-joe/projected-source/internal/render"
)

var (
	renderWatch         bool
	renderQuiet         bool
	renderRepoPath      string
	renderCoverageSince string
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render [input] [output]",
	Short: "Render documentation templates with extracted code snippets",
	Long: `Render executes *.md.tmpl documentation templates, replacing the
code-extraction calls ({{ function ... }}, {{ marker ... }}, {{ lines ... }})
with snippets pulled from the analyzed C/C++ sources.

Input is a template file or a directory to search for templates (default:
the current directory). Output is a directory, "-" for stdout, or omitted
to render next to each template (x.md.tmpl becomes x.md).

Examples:
  # Render every template under the current directory, in place
  projected-source render

  # Render one template to stdout
  projected-source render docs/api.md.tmpl -

  # Re-render on source or template changes
  projected-source render --watch`,
	Args: cobra.MaximumNArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false, "Watch sources and templates, re-render on change")
	renderCmd.Flags().BoolVarP(&renderQuiet, "quiet", "q", false, "Disable progress bars and non-error output")
	renderCmd.Flags().StringVarP(&renderRepoPath, "repo-path", "r", "", "Repository root (default: working directory)")
	renderCmd.Flags().StringVar(&renderCoverageSince, "coverage-since", "", `Report changed code the rendered docs do not cover, diffed against this git ref ("auto" detects the branch base)`)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	rootDir := renderRepoPath
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		rootDir = wd
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	input := rootDir
	if len(args) > 0 {
		input = args[0]
	}
	output := ""
	if len(args) > 1 {
		output = args[1]
	}

	runner, err := extract.NewRunner(cfg.Extract)
	if err != nil {
		return fmt.Errorf("failed to create extraction runner: %w", err)
	}
	defer runner.Close()

	ops := git.NewOperations()
	worktree := ops.GetWorktreeRoot(rootDir)
	permalinker := git.NewPermalinker(ops, worktree, cfg.Git.Remote)

	renderer := render.NewRenderer(rootDir, runner, permalinker, cfg.Render.AnnotateLines)

	var changes *git.ChangesSet
	if renderCoverageSince != "" {
		base := renderCoverageSince
		if base == "auto" {
			base = ops.DetectBaseRef(worktree)
		}
		changes, err = git.ChangesSetFromDiff(ops, worktree, base)
		if err != nil {
			return err
		}
		renderer.SetClaimFunc(changes.Subtract)
	}

	templates, err := collectTemplates(input, cfg)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		return fmt.Errorf("no templates found under %s", input)
	}

	reportCoverage := func() {
		if changes == nil {
			return
		}
		if changes.IsComplete() {
			if !renderQuiet {
				fmt.Println("All changed code is covered by the rendered docs")
			}
			return
		}
		fmt.Fprintf(os.Stderr, "Warning: %d changed region(s) not covered by any snippet:\n", changes.Len())
		for _, region := range changes.Uncovered() {
			fmt.Fprintf(os.Stderr, "  %s\n", region)
		}
	}

	if output == "-" {
		if renderWatch {
			return fmt.Errorf("--watch cannot render to stdout")
		}
		for _, tp := range templates {
			rendered, err := renderer.RenderString(tp, nil)
			if err != nil {
				return err
			}
			fmt.Print(rendered)
		}
		reportCoverage()
		return nil
	}

	renderAll := func() error {
		var bar *progressbar.ProgressBar
		if !renderQuiet && len(templates) > 1 {
			bar = newRenderBar(len(templates))
		}
		var firstErr error
		for _, tp := range templates {
			outDir := output
			if outDir == "" {
				outDir = filepath.Dir(tp)
			}
			outPath, err := renderer.RenderFile(tp, outDir, nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", tp, err)
				if firstErr == nil {
					firstErr = err
				}
			} else if !renderQuiet && bar == nil {
				fmt.Printf("✓ %s\n", outPath)
			}
			if bar != nil {
				bar.Add(1)
			}
		}
		return firstErr
	}

	err = renderAll()
	reportCoverage()
	if err != nil && !renderWatch {
		return err
	}

	if !renderWatch {
		return nil
	}

	watcher, err := render.NewWatcher([]string{rootDir}, watchExtensions())
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	watcher.Start(ctx, func(changed []string) {
		if !renderQuiet {
			fmt.Fprintf(os.Stderr, "%d file(s) changed, re-rendering...\n", len(changed))
		}
		if err := renderAll(); err != nil {
			fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		}
	})

	if !renderQuiet {
		fmt.Fprintln(os.Stderr, "Watching for changes (Ctrl+C to stop)...")
	}
	<-ctx.Done()
	return nil
}

// collectTemplates resolves the input argument to template paths: a
// single file as-is, a directory via the configured template patterns.
func collectTemplates(input string, cfg *config.Config) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", input, err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	discovery, err := files.NewDiscovery(input, nil, cfg.Paths.Templates, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid template patterns: %w", err)
	}
	_, templates, err := discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("template discovery failed: %w", err)
	}
	return templates, nil
}

// watchExtensions covers C/C++ sources plus templates.
func watchExtensions() []string {
	return []string{".c", ".cc", ".cpp", ".cxx", ".h", ".hh", ".hpp", ".ipp", ".tmpl"}
}

func newRenderBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Rendering templates"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}
