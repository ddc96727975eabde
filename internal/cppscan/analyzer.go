package cppscan

import (
	"fmt"
	"sort"
	"strings"
)

// FileAnalysis is the complete result of analyzing one source file. All
// slices are owned by the analysis and never shared between files.
type FileAnalysis struct {
	Path string

	Declarations []Declaration
	Scopes       []Scope
	Regions      []Region
	LineMap      *LineMap
	Diagnostics  []Diagnostic

	// SkippedSpans counts token sequences the recognizer could not
	// classify and skipped over.
	SkippedSpans int

	src string
}

// Analyze runs the full pipeline over one file's content: scan, scope
// tracking and declaration recognition, marker extraction, overload
// disambiguation, and line-map construction. Marker pairing problems are
// fatal for the file and returned as an error wrapping *MarkerError;
// everything else degrades to diagnostics on a usable result.
func Analyze(path, src string) (*FileAnalysis, error) {
	toks, diags := scanTokens(src)

	regions, err := extractRegions(src, toks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	decls, scopes, rdiags, skipped := recognize(toks)
	diags = append(diags, rdiags...)
	diags = append(diags, disambiguate(decls)...)
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Line < diags[j].Line })

	return &FileAnalysis{
		Path:         path,
		Declarations: decls,
		Scopes:       scopes,
		Regions:      regions,
		LineMap:      newLineMap(markerLines(toks)),
		Diagnostics:  diags,
		SkippedSpans: skipped,
		src:          src,
	}, nil
}

// Region returns the named marker region.
func (a *FileAnalysis) Region(id string) (Region, bool) {
	for _, r := range a.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// DeclarationContaining returns the innermost declaration whose span
// contains the line, or nil.
func (a *FileAnalysis) DeclarationContaining(line int) *Declaration {
	var best *Declaration
	for i := range a.Declarations {
		d := &a.Declarations[i]
		if !d.Span.ContainsLine(line) {
			continue
		}
		if best == nil || best.Span.Contains(d.Span) {
			best = d
		}
	}
	return best
}

// RegionsWithin returns the marker regions whose markers both lie inside
// the declaration's span, in source order.
func (a *FileAnalysis) RegionsWithin(d *Declaration) []Region {
	var out []Region
	for _, r := range a.Regions {
		if d.Span.ContainsLine(r.MarkerStartLine) && d.Span.ContainsLine(r.MarkerEndLine) {
			out = append(out, r)
		}
	}
	return out
}

// DeclarationsNamed returns every declaration with the qualified name, in
// source order.
func (a *FileAnalysis) DeclarationsNamed(qualified string) []*Declaration {
	var out []*Declaration
	for i := range a.Declarations {
		if a.Declarations[i].QualifiedName == qualified {
			out = append(out, &a.Declarations[i])
		}
	}
	return out
}

// DeclarationByKey resolves a qualified name plus SignatureKey to one
// declaration. An empty key matches only when the name is unambiguous.
func (a *FileAnalysis) DeclarationByKey(qualified string, key SignatureKey) (*Declaration, bool) {
	matches := a.DeclarationsNamed(qualified)
	if key == "" {
		if len(matches) == 1 {
			return matches[0], true
		}
		return nil, false
	}
	for _, d := range matches {
		if d.SignatureKey == key || signatureKeyFor(d) == key {
			return d, true
		}
	}
	return nil, false
}

// SourceSpan returns the raw text of the span's lines, newline-joined,
// without a trailing newline.
func (a *FileAnalysis) SourceSpan(s Span) string {
	if s.StartLine > s.EndLine {
		return ""
	}
	lines := strings.Split(a.src, "\n")
	start, end := s.StartLine, s.EndLine
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// StrippedSpan returns the span's text with marker lines removed, the
// form embedded snippets use. Pair it with LineMap.MapSpan to number
// the surviving lines.
func (a *FileAnalysis) StrippedSpan(s Span) string {
	if s.StartLine > s.EndLine {
		return ""
	}
	lines := strings.Split(a.src, "\n")
	start, end := s.StartLine, s.EndLine
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	var out []string
	for i := start; i <= end; i++ {
		if a.LineMap.IsStripped(i) {
			continue
		}
		out = append(out, lines[i-1])
	}
	return strings.Join(out, "\n")
}

// StrippedSource returns the file content with all marker lines removed,
// the rendering that LineMap output lines refer to.
func (a *FileAnalysis) StrippedSource() string {
	lines := strings.Split(a.src, "\n")
	out := make([]string, 0, len(lines))
	for i, l := range lines {
		if a.LineMap.IsStripped(i + 1) {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
