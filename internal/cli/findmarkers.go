package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/projected-source/internal/git"
)

var (
	findMarkersSince    string
	findMarkersRemove   bool
	findMarkersRepoPath string
)

// findMarkersCmd represents the find-markers command
var findMarkersCmd = &cobra.Command{
	Use:   "find-markers",
	Short: "Find //@@start and //@@end markers in changed C/C++ files",
	Long: `Find-markers scans the files changed since a git ref for the marker
comments used by projected-source. Useful for cleaning up markers after
documentation is finalized.

Examples:
  projected-source find-markers --since origin/dev
  projected-source find-markers --since HEAD~5 --remove`,
	RunE: runFindMarkers,
}

func init() {
	rootCmd.AddCommand(findMarkersCmd)
	findMarkersCmd.Flags().StringVar(&findMarkersSince, "since", "", "Git ref to diff against (e.g., origin/dev, HEAD~5, commit hash)")
	findMarkersCmd.Flags().BoolVar(&findMarkersRemove, "remove", false, "Remove marker comments that are on their own line")
	findMarkersCmd.Flags().StringVarP(&findMarkersRepoPath, "repo-path", "r", "", "Repository root path (default: working directory)")
	findMarkersCmd.MarkFlagRequired("since")
}

// markerHit is one full-line marker comment found in a file.
type markerHit struct {
	Line int
	Kind string // "start" or "end"
	ID   string
}

var markerLineRe = regexp.MustCompile(`^\s*//@@(start|end)[ \t]+([A-Za-z0-9_-]+)[ \t]*$`)

var cppExtensions = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true,
	".h": true, ".hh": true, ".hpp": true, ".hxx": true, ".ipp": true,
}

func runFindMarkers(cmd *cobra.Command, args []string) error {
	repoPath := findMarkersRepoPath
	if repoPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		repoPath = wd
	}

	ops := git.NewOperations()
	changed, err := ops.ChangedFilesSince(repoPath, findMarkersSince)
	if err != nil {
		return fmt.Errorf("git diff failed: %w", err)
	}

	var candidates []string
	for _, rel := range changed {
		if cppExtensions[strings.ToLower(filepath.Ext(rel))] {
			candidates = append(candidates, rel)
		}
	}
	if len(candidates) == 0 {
		fmt.Printf("No C/C++ files changed since %s\n", findMarkersSince)
		return nil
	}

	fmt.Printf("Scanning %d file(s) for markers...\n\n", len(candidates))

	byFile := map[string][]markerHit{}
	total := 0
	for _, rel := range candidates {
		path := filepath.Join(repoPath, rel)
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // deleted since the ref
			}
			fmt.Fprintf(os.Stderr, "Could not read %s: %v\n", path, err)
			continue
		}
		hits := scanMarkerLines(string(content))
		if len(hits) > 0 {
			byFile[rel] = hits
			total += len(hits)
		}
	}

	if total == 0 {
		fmt.Println("No markers found in changed files")
		return nil
	}

	fmt.Printf("Found %d marker(s):\n\n", total)
	paths := make([]string, 0, len(byFile))
	for rel := range byFile {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	for _, rel := range paths {
		fmt.Printf("%s:\n", rel)
		for _, hit := range byFile[rel] {
			fmt.Printf("  %4d: //@@%s %s\n", hit.Line, hit.Kind, hit.ID)
		}
		fmt.Println()
	}

	if !findMarkersRemove {
		return nil
	}

	fmt.Printf("Removing markers...\n\n")
	removed := 0
	for _, rel := range paths {
		path := filepath.Join(repoPath, rel)
		count, err := removeMarkerLines(path, byFile[rel])
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", rel, err)
			continue
		}
		removed += count
		fmt.Printf("✓ %s: removed %d marker(s)\n", rel, count)
	}
	fmt.Printf("\nRemoved %d marker(s) total\n", removed)
	return nil
}

// scanMarkerLines finds full-line marker comments, in line order.
func scanMarkerLines(content string) []markerHit {
	var hits []markerHit
	for i, line := range strings.Split(content, "\n") {
		if m := markerLineRe.FindStringSubmatch(line); m != nil {
			hits = append(hits, markerHit{Line: i + 1, Kind: m[1], ID: m[2]})
		}
	}
	return hits
}

// removeMarkerLines rewrites the file with the marker lines dropped and
// returns how many lines were removed.
func removeMarkerLines(path string, hits []markerHit) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	drop := make(map[int]bool, len(hits))
	for _, hit := range hits {
		drop[hit.Line] = true
	}

	lines := strings.Split(string(content), "\n")
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !drop[i+1] {
			kept = append(kept, line)
		}
	}

	removed := len(lines) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	// Join round-trips the split exactly, so a file without a final
	// newline stays without one.
	out := strings.Join(kept, "\n")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return 0, err
	}
	return removed, nil
}
