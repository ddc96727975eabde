package git

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeRegion is one contiguous run of changed lines in a file.
type ChangeRegion struct {
	Path      string
	StartLine int
	EndLine   int
}

func (r ChangeRegion) String() string {
	if r.StartLine == r.EndLine {
		return fmt.Sprintf("%s:%d", r.Path, r.StartLine)
	}
	return fmt.Sprintf("%s:%d-%d", r.Path, r.StartLine, r.EndLine)
}

type lineRange struct {
	start, end int
}

// ChangesSet tracks which changed lines of a repository are covered by
// documentation. It starts out holding the working-side lines of every
// diff hunk; each embedded snippet subtracts the span it displays, and
// whatever remains at the end is the changes the documentation missed.
type ChangesSet struct {
	// Per file: sorted, non-overlapping, non-adjacent ranges.
	regions map[string][]lineRange
}

// NewChangesSet returns an empty set.
func NewChangesSet() *ChangesSet {
	return &ChangesSet{regions: map[string][]lineRange{}}
}

// ChangesSetFromDiff builds the set from "git diff <base>..HEAD". A base
// containing ".." is used as the range verbatim.
func ChangesSetFromDiff(ops Operations, projectPath, base string) (*ChangesSet, error) {
	diff, err := ops.DiffSince(projectPath, base)
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	cs := NewChangesSet()
	cs.AddDiff(diff)
	return cs, nil
}

// AddDiff folds a unified diff into the set. Every line of a hunk's new
// side counts as changed, context included: touching any part of a hunk
// means the surrounding code should be re-documented too.
func (c *ChangesSet) AddDiff(diff string) {
	path := ""
	newLine := 0
	inHunk := false
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			path = strings.TrimPrefix(line, "+++ b/")
			inHunk = false
			continue
		}
		if m := hunkRe.FindStringSubmatch(line); m != nil {
			newLine = atoiDefault(m[3], 0)
			inHunk = path != "" && path != "/dev/null"
			continue
		}
		if !inHunk {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, " "):
			c.Add(path, newLine, newLine)
			newLine++
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, `\`):
			// Removed lines and "\ No newline" have no new-side number.
		default:
			inHunk = false
		}
	}
}

// Add marks [startLine, endLine] of the file as changed, merging with
// overlapping or adjacent ranges.
func (c *ChangesSet) Add(path string, startLine, endLine int) {
	if endLine < startLine {
		return
	}
	ranges := append(c.regions[path], lineRange{startLine, endLine})
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end+1 {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	c.regions[path] = merged
}

// Subtract removes [startLine, endLine] of the file from the set,
// splitting ranges that extend past either end.
func (c *ChangesSet) Subtract(path string, startLine, endLine int) {
	ranges, ok := c.regions[path]
	if !ok || endLine < startLine {
		return
	}
	var kept []lineRange
	for _, r := range ranges {
		if r.end < startLine || r.start > endLine {
			kept = append(kept, r)
			continue
		}
		if r.start < startLine {
			kept = append(kept, lineRange{r.start, startLine - 1})
		}
		if r.end > endLine {
			kept = append(kept, lineRange{endLine + 1, r.end})
		}
	}
	if len(kept) == 0 {
		delete(c.regions, path)
		return
	}
	c.regions[path] = kept
}

// Uncovered returns the remaining regions, ordered by path then line.
func (c *ChangesSet) Uncovered() []ChangeRegion {
	var out []ChangeRegion
	for _, path := range c.Files() {
		for _, r := range c.regions[path] {
			out = append(out, ChangeRegion{Path: path, StartLine: r.start, EndLine: r.end})
		}
	}
	return out
}

// Files returns the paths with remaining regions, sorted.
func (c *ChangesSet) Files() []string {
	paths := make([]string, 0, len(c.regions))
	for path := range c.regions {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// IsComplete reports whether every changed line has been subtracted.
func (c *ChangesSet) IsComplete() bool { return len(c.regions) == 0 }

// Len returns the number of remaining regions.
func (c *ChangesSet) Len() int {
	n := 0
	for _, ranges := range c.regions {
		n += len(ranges)
	}
	return n
}
