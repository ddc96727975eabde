package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/projected-source/internal/config"
	"github.com/mvp-joe/projected-source/internal/extract"
)

const engineSource = `namespace engine {

int start(int mode) {
    //@@start init
    int state = mode * 2;
    //@@end init
    return state;
}

void configure(int level) {}
void configure(double ratio) {}

}
`

func newTestService(t *testing.T) *Service {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "src", "engine.cpp"), []byte(engineSource), 0o644))

	runner, err := extract.NewRunner(config.ExtractConfig{Workers: 1, CacheEntries: 16})
	require.NoError(t, err)
	t.Cleanup(runner.Close)

	return NewService(root, runner)
}

func callRequest(args interface{}) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{Arguments: args},
	}
}

// decodeResult parses the JSON text payload of a successful tool result.
func decodeResult(t *testing.T, result *mcpgo.CallToolResult, out interface{}) {
	t.Helper()
	require.False(t, result.IsError)
	textContent, ok := mcpgo.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), out))
}

func errorText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	require.True(t, result.IsError)
	textContent, ok := mcpgo.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	return textContent.Text
}

func TestRegistration(t *testing.T) {
	t.Parallel()

	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	svc := newTestService(t)

	require.NotPanics(t, func() {
		AddExtractFunctionTool(mcpServer, svc)
		AddExtractMarkerTool(mcpServer, svc)
		AddExtractLinesTool(mcpServer, svc)
		AddListMarkersTool(mcpServer, svc)
		AddListDeclarationsTool(mcpServer, svc)
	})
}

func TestExtractFunctionHandler(t *testing.T) {
	t.Parallel()

	handler := createExtractFunctionHandler(newTestService(t))

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"path": "src/engine.cpp",
		"name": "engine::start",
	}))
	require.NoError(t, err)

	var response SnippetResponse
	decodeResult(t, result, &response)
	assert.Equal(t, "engine::start", response.Name)
	assert.Equal(t, "free-function", response.Kind)
	assert.Equal(t, 3, response.StartLine)
	assert.Equal(t, 8, response.EndLine)
	assert.Contains(t, response.Snippet, "int state = mode * 2;")

	// Marker lines are stripped; two precede the closing brace, so the
	// post-strip span ends at 6.
	assert.NotContains(t, response.Snippet, "//@@")
	assert.Equal(t, 3, response.StrippedStart)
	assert.Equal(t, 6, response.StrippedEnd)
}

func TestExtractFunctionHandler_Overloaded(t *testing.T) {
	t.Parallel()

	handler := createExtractFunctionHandler(newTestService(t))

	// No signature key: the error lists the candidates.
	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"path": "src/engine.cpp",
		"name": "engine::configure",
	}))
	require.NoError(t, err)
	msg := errorText(t, result)
	assert.Contains(t, msg, "overloaded")
	assert.Contains(t, msg, "(int)")
	assert.Contains(t, msg, "(double)")

	// Exact key picks one overload.
	result, err = handler(context.Background(), callRequest(map[string]interface{}{
		"path":      "src/engine.cpp",
		"name":      "engine::configure",
		"signature": "(double)",
	}))
	require.NoError(t, err)

	var response SnippetResponse
	decodeResult(t, result, &response)
	assert.Contains(t, response.Snippet, "double ratio")

	// Partial keys match by substring.
	result, err = handler(context.Background(), callRequest(map[string]interface{}{
		"path":      "src/engine.cpp",
		"name":      "engine::configure",
		"signature": "int",
	}))
	require.NoError(t, err)
	decodeResult(t, result, &response)
	assert.Contains(t, response.Snippet, "int level")
}

func TestExtractFunctionHandler_BadArguments(t *testing.T) {
	t.Parallel()

	handler := createExtractFunctionHandler(newTestService(t))

	result, err := handler(context.Background(), callRequest("not a map"))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "invalid arguments format")

	result, err = handler(context.Background(), callRequest(map[string]interface{}{
		"name": "engine::start",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "path parameter is required")

	result, err = handler(context.Background(), callRequest(map[string]interface{}{
		"path": "src/engine.cpp",
		"name": "engine::missing",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "no declaration named")
}

func TestExtractMarkerHandler(t *testing.T) {
	t.Parallel()

	handler := createExtractMarkerHandler(newTestService(t))

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"path": "src/engine.cpp",
		"id":   "init",
	}))
	require.NoError(t, err)

	var response SnippetResponse
	decodeResult(t, result, &response)
	assert.Equal(t, "init", response.MarkerID)
	assert.Contains(t, response.Snippet, "int state = mode * 2;")
	assert.NotContains(t, response.Snippet, "//@@")
}

func TestExtractMarkerHandler_FunctionScope(t *testing.T) {
	t.Parallel()

	handler := createExtractMarkerHandler(newTestService(t))

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"path":     "src/engine.cpp",
		"id":       "init",
		"function": "engine::start",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = handler(context.Background(), callRequest(map[string]interface{}{
		"path":     "src/engine.cpp",
		"id":       "init",
		"function": "engine::configure",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "no marker region")
}

func TestExtractLinesHandler(t *testing.T) {
	t.Parallel()

	handler := createExtractLinesHandler(newTestService(t))

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"path":       "src/engine.cpp",
		"start_line": float64(1),
	}))
	require.NoError(t, err)

	var response SnippetResponse
	decodeResult(t, result, &response)
	assert.Equal(t, 1, response.StartLine)
	assert.Equal(t, 1, response.EndLine)
	assert.Equal(t, "namespace engine {", response.Snippet)

	result, err = handler(context.Background(), callRequest(map[string]interface{}{
		"path":       "src/engine.cpp",
		"start_line": float64(5),
		"end_line":   float64(2),
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "invalid line range")
}

func TestListMarkersHandler(t *testing.T) {
	t.Parallel()

	handler := createListMarkersHandler(newTestService(t))

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"path": "src/engine.cpp",
	}))
	require.NoError(t, err)

	var response ListMarkersResponse
	decodeResult(t, result, &response)
	require.Equal(t, 1, response.Total)
	assert.Equal(t, "init", response.Markers[0].ID)
	assert.Equal(t, 0, response.Markers[0].Depth)
	assert.Equal(t, "engine::start", response.Markers[0].Function)
}

func TestListDeclarationsHandler(t *testing.T) {
	t.Parallel()

	handler := createListDeclarationsHandler(newTestService(t))

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"path": "src/engine.cpp",
	}))
	require.NoError(t, err)

	var response ListDeclarationsResponse
	decodeResult(t, result, &response)
	assert.Equal(t, 3, response.Total)

	result, err = handler(context.Background(), callRequest(map[string]interface{}{
		"path": "src/engine.cpp",
		"name": "engine::configure",
	}))
	require.NoError(t, err)
	decodeResult(t, result, &response)
	require.Equal(t, 2, response.Total)
	keys := []string{response.Declarations[0].Key, response.Declarations[1].Key}
	assert.ElementsMatch(t, []string{"(int)", "(double)"}, keys)
}
