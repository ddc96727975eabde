package mcp

import (
	"path/filepath"

	"github.com/mvp-joe/projected-source/internal/cppscan"
)

// Analyzer is the subset of the extraction runner the MCP tools need.
type Analyzer interface {
	AnalyzeFile(path string) (*cppscan.FileAnalysis, error)
}

// Service resolves tool paths against the project root and runs analyses.
type Service struct {
	root     string
	analyzer Analyzer
}

// NewService creates a tool service rooted at the project directory.
func NewService(root string, analyzer Analyzer) *Service {
	return &Service{root: root, analyzer: analyzer}
}

func (s *Service) analyze(path string) (*cppscan.FileAnalysis, error) {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(s.root, resolved)
	}
	return s.analyzer.AnalyzeFile(resolved)
}

// SnippetResponse is the JSON payload for extraction tools. Snippets
// have marker comment lines stripped; start/end lines refer to the file
// on disk, stripped_start/end_line to a rendering with markers removed.
type SnippetResponse struct {
	Path          string `json:"path"`
	Name          string `json:"name,omitempty"`
	Kind          string `json:"kind,omitempty"`
	Signature     string `json:"signature,omitempty"`
	Key           string `json:"signature_key,omitempty"`
	MarkerID      string `json:"marker_id,omitempty"`
	StartLine     int    `json:"start_line"`
	EndLine       int    `json:"end_line"`
	StrippedStart int    `json:"stripped_start_line,omitempty"`
	StrippedEnd   int    `json:"stripped_end_line,omitempty"`
	Snippet       string `json:"snippet"`
}

// MarkerInfo describes one marker region without its content.
type MarkerInfo struct {
	ID        string `json:"id"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Depth     int    `json:"depth"`
	Function  string `json:"function,omitempty"`
}

// ListMarkersResponse is the JSON payload for list_markers.
type ListMarkersResponse struct {
	Path    string       `json:"path"`
	Markers []MarkerInfo `json:"markers"`
	Total   int          `json:"total"`
}

// DeclarationInfo describes one declaration without its content.
type DeclarationInfo struct {
	Name      string `json:"name"`
	Qualified string `json:"qualified_name"`
	Kind      string `json:"kind"`
	Signature string `json:"signature"`
	Key       string `json:"signature_key,omitempty"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// ListDeclarationsResponse is the JSON payload for list_declarations.
type ListDeclarationsResponse struct {
	Path         string            `json:"path"`
	Declarations []DeclarationInfo `json:"declarations"`
	Total        int               `json:"total"`
}
