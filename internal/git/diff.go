package git

import (
	"regexp"
	"strconv"
	"strings"
)

// Hunk is one "@@ -a,b +c,d @@" header from a unified diff.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

var hunkRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseDiffHunks extracts the hunk headers from raw git diff output.
func ParseDiffHunks(diff string) []Hunk {
	var hunks []Hunk
	for _, line := range strings.Split(diff, "\n") {
		m := hunkRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		hunks = append(hunks, Hunk{
			OldStart: atoiDefault(m[1], 0),
			OldCount: atoiDefault(m[2], 1),
			NewStart: atoiDefault(m[3], 0),
			NewCount: atoiDefault(m[4], 1),
		})
	}
	return hunks
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// buildLineMapping walks the diff body and maps working-copy line numbers
// to committed line numbers. Added lines map to 0 (no committed
// counterpart).
func buildLineMapping(diff string) map[int]int {
	mapping := map[int]int{}

	oldLine, newLine := 0, 0
	inHunk := false
	for _, line := range strings.Split(diff, "\n") {
		if m := hunkRe.FindStringSubmatch(line); m != nil {
			oldLine = atoiDefault(m[1], 0)
			newLine = atoiDefault(m[3], 0)
			inHunk = true
			continue
		}
		if !inHunk {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			mapping[newLine] = 0
			newLine++
		case strings.HasPrefix(line, "-"):
			oldLine++
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file"
		default:
			// Context line, present in both versions.
			mapping[newLine] = oldLine
			oldLine++
			newLine++
		}
	}
	return mapping
}

// MapLineToCommitted maps a working-copy line number to the committed
// (HEAD) version using the file's diff. Added lines resolve to the
// nearest committed line above them; lines outside any hunk shift by the
// accumulated hunk offsets.
func MapLineToCommitted(line int, diff string) int {
	mapping := buildLineMapping(diff)

	if old, ok := mapping[line]; ok {
		if old != 0 {
			return old
		}
		// An added line: walk up to the nearest line that survives.
		for check := line - 1; check > 0; check-- {
			if old, ok := mapping[check]; ok && old != 0 {
				return old
			}
		}
		return 1
	}

	offset := 0
	for _, h := range ParseDiffHunks(diff) {
		if line < h.NewStart {
			break
		}
		offset += h.OldCount - h.NewCount
	}
	return line + offset
}
