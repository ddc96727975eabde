package cppscan

import (
	"sort"
	"strings"
)

// Region is a named source span delimited by a //@@start <id> and
// //@@end <id> marker pair. StartLine and EndLine cover the content only
// (marker lines excluded); an empty region has StartLine > EndLine.
type Region struct {
	ID string

	StartLine int
	EndLine   int

	// Text is the content lines verbatim, newline-joined, without the
	// marker lines and without a trailing newline. Re-inserting Text
	// between the marker lines reproduces the original file exactly.
	Text string

	MarkerStartLine int
	MarkerEndLine   int

	// Depth is how many enclosing regions were open at the start marker.
	Depth int
}

// extractRegions validates marker pairing over the token stream and cuts
// a Region per id. Marker problems are fatal for the file: the returned
// error names the offending id and nothing else is produced.
func extractRegions(src string, toks []Token) ([]Region, error) {
	lines := strings.Split(src, "\n")

	type open struct {
		id   string
		line int
	}
	var stack []open
	seen := map[string]bool{}
	var regions []Region

	for _, t := range toks {
		if t.Kind != TokenMarkerComment {
			continue
		}
		m := markerCommentRe.FindStringSubmatch(t.Text)
		if m == nil {
			continue
		}
		kind, id := m[1], m[2]
		switch kind {
		case "start":
			if seen[id] {
				return nil, &MarkerError{ID: id, Line: t.StartLine, Reason: "region id opened more than once"}
			}
			seen[id] = true
			stack = append(stack, open{id: id, line: t.StartLine})
		case "end":
			if len(stack) == 0 {
				return nil, &MarkerError{ID: id, Line: t.StartLine, Reason: "end marker without a matching start"}
			}
			top := stack[len(stack)-1]
			if top.id != id {
				return nil, &MarkerError{ID: id, Line: t.StartLine, Reason: "end marker crosses open region " + top.id}
			}
			stack = stack[:len(stack)-1]

			start, end := top.line+1, t.StartLine-1
			text := ""
			if start <= end && start-1 < len(lines) {
				last := end
				if last > len(lines) {
					last = len(lines)
				}
				text = strings.Join(lines[start-1:last], "\n")
			}
			regions = append(regions, Region{
				ID:              id,
				StartLine:       start,
				EndLine:         end,
				Text:            text,
				MarkerStartLine: top.line,
				MarkerEndLine:   t.StartLine,
				Depth:           len(stack),
			})
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, &MarkerError{ID: top.id, Line: top.line, Reason: "start marker is never closed"}
	}

	sort.Slice(regions, func(i, j int) bool {
		return regions[i].MarkerStartLine < regions[j].MarkerStartLine
	})
	return regions, nil
}

// markerLines returns the 1-based line numbers of every marker comment,
// sorted ascending. These are the lines the line map treats as stripped.
func markerLines(toks []Token) []int {
	var out []int
	for _, t := range toks {
		if t.Kind == TokenMarkerComment {
			out = append(out, t.StartLine)
		}
	}
	sort.Ints(out)
	return out
}
