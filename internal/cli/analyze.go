package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/projected-source/internal/config"
	"github.com/mvp-joe/projected-source/internal/cppscan"
	"github.com/mvp-joe/projected-source/internal/extract"
	"github.com/mvp-joe/projected-source/internal/files"
)

var (
	analyzeJSON  bool
	analyzeQuiet bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Analyze C/C++ sources and report declarations and markers",
	Long: `Analyze runs the structural analyzer over C/C++ sources and reports the
functions, methods, operators, templates, and //@@start/@@end marker
regions it recognizes, along with any diagnostics.

Without arguments, sources are discovered from the configured glob
patterns in .projected/config.yml.

Examples:
  # Analyze everything the configuration covers
  projected-source analyze

  # Analyze specific files
  projected-source analyze src/engine.cpp src/engine.h

  # Machine-readable output
  projected-source analyze --json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit JSON instead of human-readable output")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling analysis...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	quiet := analyzeQuiet || analyzeJSON
	progress := NewCLIProgressReporter(quiet)

	paths := args
	if len(paths) == 0 {
		progress.OnDiscoveryStart()
		discovery, err := files.NewDiscovery(rootDir, cfg.Paths.Sources, cfg.Paths.Templates, cfg.Paths.Ignore)
		if err != nil {
			return fmt.Errorf("invalid path patterns: %w", err)
		}
		sources, templates, err := discovery.Discover()
		if err != nil {
			return fmt.Errorf("file discovery failed: %w", err)
		}
		progress.OnDiscoveryComplete(len(sources), len(templates))
		paths = sources
	}

	runner, err := extract.NewRunner(cfg.Extract)
	if err != nil {
		return fmt.Errorf("failed to create extraction runner: %w", err)
	}
	defer runner.Close()

	summary := runner.Run(ctx, paths, progress)
	if ctx.Err() != nil {
		return fmt.Errorf("analysis cancelled")
	}

	if analyzeJSON {
		if err := printJSONSummary(summary); err != nil {
			return err
		}
	} else {
		printSummary(summary, verbose)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed analysis", summary.Failed)
	}
	return nil
}

// fileReport is the per-file JSON shape of analyze --json.
type fileReport struct {
	Path         string             `json:"path"`
	Error        string             `json:"error,omitempty"`
	Declarations []declReport       `json:"declarations,omitempty"`
	Regions      []regionReport     `json:"regions,omitempty"`
	Diagnostics  []diagnosticReport `json:"diagnostics,omitempty"`
}

type declReport struct {
	Name      string `json:"qualified_name"`
	Kind      string `json:"kind"`
	Signature string `json:"signature"`
	Key       string `json:"signature_key,omitempty"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

type regionReport struct {
	ID        string `json:"id"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Depth     int    `json:"depth"`
}

type diagnosticReport struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func buildFileReport(result extract.FileResult) fileReport {
	report := fileReport{Path: result.Path}
	if result.Err != nil {
		report.Error = result.Err.Error()
		return report
	}
	for _, d := range result.Analysis.Declarations {
		report.Declarations = append(report.Declarations, declReport{
			Name:      d.QualifiedName,
			Kind:      d.Kind.String(),
			Signature: d.Signature,
			Key:       string(d.SignatureKey),
			StartLine: d.Span.StartLine,
			EndLine:   d.Span.EndLine,
		})
	}
	for _, region := range result.Analysis.Regions {
		report.Regions = append(report.Regions, regionReport{
			ID:        region.ID,
			StartLine: region.StartLine,
			EndLine:   region.EndLine,
			Depth:     region.Depth,
		})
	}
	for _, diag := range result.Analysis.Diagnostics {
		report.Diagnostics = append(report.Diagnostics, diagnosticReport{
			Kind:    diag.Kind.String(),
			Line:    diag.Line,
			Message: diag.Message,
		})
	}
	return report
}

func printJSONSummary(summary *extract.RunSummary) error {
	reports := make([]fileReport, 0, len(summary.Results))
	for _, result := range summary.Results {
		reports = append(reports, buildFileReport(result))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		RunID string       `json:"run_id"`
		Files []fileReport `json:"files"`
	}{RunID: summary.RunID, Files: reports})
}

func printSummary(summary *extract.RunSummary, listDeclarations bool) {
	for _, result := range summary.Results {
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Err)
			continue
		}
		for _, diag := range result.Analysis.Diagnostics {
			fmt.Fprintf(os.Stderr, "  %s:%d: %s\n", result.Path, diag.Line, diag.Message)
		}
		if listDeclarations {
			for _, d := range result.Analysis.Declarations {
				fmt.Printf("%s:%d-%d %s [%s]%s\n",
					result.Path, d.Span.StartLine, d.Span.EndLine,
					d.QualifiedName, d.Kind, keySuffix(d))
			}
			for _, region := range result.Analysis.Regions {
				fmt.Printf("%s:%d-%d marker %q\n",
					result.Path, region.StartLine, region.EndLine, region.ID)
			}
		}
	}
}

func keySuffix(d cppscan.Declaration) string {
	if d.SignatureKey == "" {
		return ""
	}
	return " " + string(d.SignatureKey)
}
