package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/mvp-joe/projected-source/internal/cppscan"
	"github.com/mvp-joe/projected-source/internal/extract"
)

// Permalinker is the subset of git integration the renderer needs. A nil
// permalinker degrades snippet headers to plain path references.
type Permalinker interface {
	Permalink(path string, startLine, endLine int) string
}

// Renderer executes documentation templates, exposing code-extraction
// functions to the template body. Each extraction goes through the
// analysis runner so repeated references to a file cost one pass.
type Renderer struct {
	root          string
	runner        *extract.Runner
	permalinker   Permalinker
	annotateLines bool
	extraFuncs    template.FuncMap
	claim         func(path string, startLine, endLine int)
}

// NewRenderer builds a renderer rooted at the project directory.
func NewRenderer(root string, runner *extract.Runner, permalinker Permalinker, annotateLines bool) *Renderer {
	return &Renderer{
		root:          root,
		runner:        runner,
		permalinker:   permalinker,
		annotateLines: annotateLines,
		extraFuncs:    template.FuncMap{},
	}
}

// AddFunc registers a project-specific template function alongside the
// built-in extraction functions. Must be called before rendering.
func (r *Renderer) AddFunc(name string, fn any) {
	r.extraFuncs[name] = fn
}

// SetClaimFunc installs a callback invoked with the file line span of
// every embedded snippet, used for change-coverage tracking.
func (r *Renderer) SetClaimFunc(fn func(path string, startLine, endLine int)) {
	r.claim = fn
}

// FuncMap returns the code-extraction functions available to templates.
func (r *Renderer) FuncMap() template.FuncMap {
	funcs := template.FuncMap{
		"function":       r.fnFunction,
		"overload":       r.fnOverload,
		"struct":         r.fnStruct,
		"macro":          r.fnMacro,
		"marker":         r.fnMarker,
		"functionMarker": r.fnFunctionMarker,
		"lines":          r.fnLines,
		"permalink":      r.fnPermalink,
		"markerIDs":      r.fnMarkerIDs,
	}
	for name, fn := range r.extraFuncs {
		funcs[name] = fn
	}
	return funcs
}

// RenderString renders one template file and returns the output text.
func (r *Renderer) RenderString(templatePath string, data any) (string, error) {
	name := filepath.Base(templatePath)
	tmpl, err := template.New(name).Funcs(r.FuncMap()).ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", templatePath, err)
	}
	return sb.String(), nil
}

// RenderFile renders one template file. The output name strips the
// trailing ".tmpl" ("api.md.tmpl" becomes "api.md").
func (r *Renderer) RenderFile(templatePath, outputDir string, data any) (string, error) {
	rendered, err := r.RenderString(templatePath, data)
	if err != nil {
		return "", err
	}

	outName := strings.TrimSuffix(filepath.Base(templatePath), ".tmpl")
	outPath := filepath.Join(outputDir, outName)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}

// RenderAll renders every template, continuing past per-template
// failures. It returns the written output paths and a combined error.
func (r *Renderer) RenderAll(templatePaths []string, outputDir string, data any) ([]string, error) {
	var outputs []string
	var errs []error
	for _, tp := range templatePaths {
		out, err := r.RenderFile(tp, outputDir, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outputs = append(outputs, out)
	}
	if len(errs) > 0 {
		return outputs, fmt.Errorf("%d template(s) failed: %v", len(errs), errs)
	}
	return outputs, nil
}

func (r *Renderer) analyze(path string) (*cppscan.FileAnalysis, string, error) {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(r.root, resolved)
	}
	analysis, err := r.runner.AnalyzeFile(resolved)
	if err != nil {
		return nil, "", err
	}
	return analysis, path, nil
}

// fnFunction extracts a declaration by qualified name. The name must be
// unambiguous in the file; overloaded names need fnOverload.
func (r *Renderer) fnFunction(path, qualifiedName string) (string, error) {
	analysis, rel, err := r.analyze(path)
	if err != nil {
		return "", err
	}
	matches := analysis.DeclarationsNamed(qualifiedName)
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no declaration named %q in %s", qualifiedName, path)
	case 1:
		return r.snippet(rel, analysis, matches[0].Span), nil
	default:
		keys := make([]string, len(matches))
		for i, d := range matches {
			keys[i] = string(d.SignatureKey)
		}
		return "", fmt.Errorf("%q is overloaded in %s; pick a signature key: %s",
			qualifiedName, path, strings.Join(keys, ", "))
	}
}

// fnOverload extracts one overload by qualified name plus signature key.
// A partial key matches by substring when no exact key does.
func (r *Renderer) fnOverload(path, qualifiedName, key string) (string, error) {
	analysis, rel, err := r.analyze(path)
	if err != nil {
		return "", err
	}
	if d, ok := analysis.DeclarationByKey(qualifiedName, cppscan.SignatureKey(key)); ok {
		return r.snippet(rel, analysis, d.Span), nil
	}
	for _, d := range analysis.DeclarationsNamed(qualifiedName) {
		if strings.Contains(string(d.SignatureKey), key) {
			return r.snippet(rel, analysis, d.Span), nil
		}
	}
	return "", fmt.Errorf("no overload of %q matching %q in %s", qualifiedName, key, path)
}

// fnStruct extracts a class or struct body by qualified name. Template
// classes carry their template prefix; plain classes come from the
// scope record.
func (r *Renderer) fnStruct(path, qualifiedName string) (string, error) {
	analysis, rel, err := r.analyze(path)
	if err != nil {
		return "", err
	}
	for _, d := range analysis.DeclarationsNamed(qualifiedName) {
		if d.Kind == cppscan.DeclTemplateClass {
			return r.snippet(rel, analysis, d.Span), nil
		}
	}
	for _, sc := range analysis.Scopes {
		if sc.Kind != cppscan.ScopeClass && sc.Kind != cppscan.ScopeStruct {
			continue
		}
		if sc.QualifiedName() == qualifiedName && sc.CloseLine > 0 {
			span := cppscan.Span{StartLine: sc.OpenLine, EndLine: sc.CloseLine}
			return r.snippet(rel, analysis, span), nil
		}
	}
	return "", fmt.Errorf("no class or struct named %q in %s", qualifiedName, path)
}

// fnMacro extracts a macro-defined function body by name.
func (r *Renderer) fnMacro(path, name string) (string, error) {
	analysis, rel, err := r.analyze(path)
	if err != nil {
		return "", err
	}
	for _, d := range analysis.DeclarationsNamed(name) {
		if d.Kind == cppscan.DeclMacroFunction {
			return r.snippet(rel, analysis, d.Span), nil
		}
	}
	return "", fmt.Errorf("no macro-defined function named %q in %s", name, path)
}

// fnMarker extracts a marker region by id.
func (r *Renderer) fnMarker(path, id string) (string, error) {
	analysis, rel, err := r.analyze(path)
	if err != nil {
		return "", err
	}
	region, ok := analysis.Region(id)
	if !ok {
		return "", fmt.Errorf("no marker region %q in %s", id, path)
	}
	return r.regionSnippet(rel, analysis, region), nil
}

// fnFunctionMarker extracts a marker region scoped to a named function,
// guarding against the same id reused elsewhere in the file.
func (r *Renderer) fnFunctionMarker(path, qualifiedName, id string) (string, error) {
	analysis, rel, err := r.analyze(path)
	if err != nil {
		return "", err
	}
	matches := analysis.DeclarationsNamed(qualifiedName)
	if len(matches) == 0 {
		return "", fmt.Errorf("no declaration named %q in %s", qualifiedName, path)
	}
	for _, d := range matches {
		for _, region := range analysis.RegionsWithin(d) {
			if region.ID == id {
				return r.regionSnippet(rel, analysis, region), nil
			}
		}
	}
	return "", fmt.Errorf("no marker region %q inside %q in %s", id, qualifiedName, path)
}

// fnLines extracts a raw line range.
func (r *Renderer) fnLines(path string, startLine, endLine int) (string, error) {
	analysis, rel, err := r.analyze(path)
	if err != nil {
		return "", err
	}
	if startLine < 1 || endLine < startLine {
		return "", fmt.Errorf("invalid line range %d-%d for %s", startLine, endLine, path)
	}
	return r.snippet(rel, analysis, cppscan.Span{StartLine: startLine, EndLine: endLine}), nil
}

// fnPermalink emits just the link header for a line range.
func (r *Renderer) fnPermalink(path string, startLine, endLine int) string {
	return r.header(path, startLine, endLine)
}

// fnMarkerIDs lists the marker region ids of a file, in source order.
func (r *Renderer) fnMarkerIDs(path string) ([]string, error) {
	analysis, _, err := r.analyze(path)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(analysis.Regions))
	for i, region := range analysis.Regions {
		ids[i] = region.ID
	}
	return ids, nil
}

func (r *Renderer) header(path string, startLine, endLine int) string {
	if r.permalinker != nil {
		return r.permalinker.Permalink(path, startLine, endLine)
	}
	if startLine > 0 {
		if endLine > startLine {
			return fmt.Sprintf("`%s:%d-%d`", filepath.ToSlash(path), startLine, endLine)
		}
		return fmt.Sprintf("`%s:%d`", filepath.ToSlash(path), startLine)
	}
	return fmt.Sprintf("`%s`", filepath.ToSlash(path))
}

func (r *Renderer) snippet(path string, analysis *cppscan.FileAnalysis, span cppscan.Span) string {
	return r.block(path, analysis, span)
}

func (r *Renderer) regionSnippet(path string, analysis *cppscan.FileAnalysis, region cppscan.Region) string {
	span := cppscan.Span{StartLine: region.StartLine, EndLine: region.EndLine}
	return r.block(path, analysis, span)
}

// block formats the markdown output: permalink header, then a fenced
// code block. The body has marker lines stripped; line annotations use
// the LineMap's post-strip numbering so they match the stripped body.
// The header keeps original file lines, which the permalinker maps to
// committed lines itself.
func (r *Renderer) block(path string, analysis *cppscan.FileAnalysis, span cppscan.Span) string {
	if r.claim != nil {
		r.claim(filepath.ToSlash(path), span.StartLine, span.EndLine)
	}
	header := r.header(path, span.StartLine, span.EndLine)
	body := analysis.StrippedSpan(span)
	if r.annotateLines {
		first := span.StartLine
		for first < span.EndLine && analysis.LineMap.IsStripped(first) {
			first++
		}
		body = annotate(body, analysis.LineMap.Map(first))
	}
	return fmt.Sprintf("%s\n```%s\n%s\n```", header, languageFor(path), body)
}

// annotate prefixes each line with its line number.
func annotate(text string, startLine int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = fmt.Sprintf("%4d %s", startLine+i, line)
	}
	return strings.Join(out, "\n")
}

var languageByExt = map[string]string{
	".c":   "c",
	".cc":  "cpp",
	".cpp": "cpp",
	".cxx": "cpp",
	".h":   "cpp",
	".hh":  "cpp",
	".hpp": "cpp",
	".ipp": "cpp",
}

func languageFor(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "text"
}
