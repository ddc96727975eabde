package cppscan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeFixture(t *testing.T, name string) *FileAnalysis {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	analysis, err := Analyze(path, string(data))
	require.NoError(t, err)
	return analysis
}

func TestAnalyze_Sample(t *testing.T) {
	t.Parallel()

	a := analyzeFixture(t, "sample.cpp")

	assert.Zero(t, a.SkippedSpans)
	require.Len(t, a.Diagnostics, 1, "only the macro heuristic should fire")
	assert.Equal(t, DiagMacroHeuristic, a.Diagnostics[0].Kind)

	names := map[string]bool{}
	for _, d := range a.Declarations {
		names[d.QualifiedName] = true
	}
	for _, want := range []string{
		"MyNamespace::NamespacedClass::NamespacedClass",
		"MyNamespace::NamespacedClass::getValue",
		"MyNamespace::NamespacedClass::staticMethod",
		"functionWithMarkers",
		"templateAdd",
		"process",
		"testFunc",
	} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestAnalyze_RegionAttribution(t *testing.T) {
	t.Parallel()

	a := analyzeFixture(t, "sample.cpp")

	setup, ok := a.Region("setup")
	require.True(t, ok)
	assert.Equal(t, "    int temp = a + b;", setup.Text)

	owner := a.DeclarationContaining(setup.StartLine)
	require.NotNil(t, owner)
	assert.Equal(t, "functionWithMarkers", owner.QualifiedName)

	regions := a.RegionsWithin(owner)
	require.Len(t, regions, 2)
	assert.Equal(t, "setup", regions[0].ID)
	assert.Equal(t, "compute", regions[1].ID)
}

func TestAnalyze_LineMapAgainstStrippedSource(t *testing.T) {
	t.Parallel()

	a := analyzeFixture(t, "sample.cpp")
	assert.Equal(t, 4, a.LineMap.StrippedCount())

	stripped := strings.Split(a.StrippedSource(), "\n")
	assert.NotContains(t, a.StrippedSource(), "//@@")

	// Every surviving line lands at its mapped position.
	original := strings.Split(a.SourceSpan(Span{StartLine: 1, EndLine: 1<<30 - 1}), "\n")
	for i, line := range original {
		orig := i + 1
		if a.LineMap.IsStripped(orig) {
			continue
		}
		out := a.LineMap.Map(orig)
		require.LessOrEqual(t, out, len(stripped))
		assert.Equal(t, line, stripped[out-1], "original line %d", orig)
	}
}

func TestAnalyze_OverloadLookup(t *testing.T) {
	t.Parallel()

	a := analyzeFixture(t, "sample.cpp")

	// Ambiguous without a key.
	_, ok := a.DeclarationByKey("process", "")
	assert.False(t, ok)

	d, ok := a.DeclarationByKey("process", "(std::string)")
	require.True(t, ok)
	assert.Equal(t, []string{"std::string name"}, d.Params)

	// Unique names resolve with an empty key.
	fn, ok := a.DeclarationByKey("functionWithMarkers", "")
	require.True(t, ok)
	assert.Equal(t, DeclFreeFunction, fn.Kind)
}

func TestAnalyze_TemplateSpecializationCoexists(t *testing.T) {
	t.Parallel()

	a := analyzeFixture(t, "sample.cpp")

	adds := a.DeclarationsNamed("templateAdd")
	require.Len(t, adds, 2)

	kinds := map[DeclKind]bool{}
	for _, d := range adds {
		kinds[d.Kind] = true
	}
	assert.True(t, kinds[DeclTemplateFunction])
	assert.True(t, kinds[DeclTemplateSpecialization])
}

func TestAnalyze_MarkerErrorIsFatalForFile(t *testing.T) {
	t.Parallel()

	_, err := Analyze("broken.cpp", "//@@start open\nint x;\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.cpp")
	assert.Contains(t, err.Error(), "open")
}

func TestAnalyze_SourceSpan(t *testing.T) {
	t.Parallel()

	a, err := Analyze("t.cpp", "one\ntwo\nthree\n")
	require.NoError(t, err)

	assert.Equal(t, "two\nthree", a.SourceSpan(Span{StartLine: 2, EndLine: 3}))
	assert.Equal(t, "", a.SourceSpan(Span{StartLine: 3, EndLine: 2}))
}
