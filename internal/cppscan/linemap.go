package cppscan

import "sort"

// LineMap maps original line numbers to output line numbers after marker
// lines are stripped. The mapping is monotonic non-decreasing and total:
// Map(n) <= n for every n. A stripped line itself maps to the output line
// of the nearest surviving line above it.
type LineMap struct {
	stripped []int // sorted ascending
}

func newLineMap(stripped []int) *LineMap {
	s := make([]int, len(stripped))
	copy(s, stripped)
	sort.Ints(s)
	return &LineMap{stripped: s}
}

// Map returns the output line for an original line.
func (m *LineMap) Map(line int) int {
	removed := sort.SearchInts(m.stripped, line+1)
	return line - removed
}

// MapSpan maps both endpoints of a span.
func (m *LineMap) MapSpan(s Span) Span {
	return Span{StartLine: m.Map(s.StartLine), EndLine: m.Map(s.EndLine)}
}

// IsStripped reports whether the original line is removed by stripping.
func (m *LineMap) IsStripped(line int) bool {
	i := sort.SearchInts(m.stripped, line)
	return i < len(m.stripped) && m.stripped[i] == line
}

// StrippedCount returns how many lines the map removes.
func (m *LineMap) StrippedCount() int { return len(m.stripped) }
