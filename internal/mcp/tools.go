package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/projected-source/internal/cppscan"
)

// AddExtractFunctionTool registers the extract_function tool with an MCP
// server. This function is composable - it can be combined with other
// tool registrations.
func AddExtractFunctionTool(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"extract_function",
		mcp.WithDescription("Extract a C/C++ function, method, or operator by qualified name. Overloaded names need a signature key (e.g. '(int,int)') to pick one overload."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Source file path, relative to the project root")),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Qualified declaration name (e.g. 'MyNamespace::MyClass::getValue')")),
		mcp.WithString("signature",
			mcp.Description("Signature key selecting one overload. Partial keys match by substring.")),
	)

	s.AddTool(tool, createExtractFunctionHandler(svc))
}

func createExtractFunctionHandler(svc *Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, err := parseStringArg(argsMap, "path", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, err := parseStringArg(argsMap, "name", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		key, _ := parseStringArg(argsMap, "signature", false)

		analysis, err := svc.analyze(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		decl, ok := resolveDeclaration(analysis, name, key)
		if !ok {
			matches := analysis.DeclarationsNamed(name)
			if len(matches) > 1 && key == "" {
				keys := make([]string, len(matches))
				for i, d := range matches {
					keys[i] = string(d.SignatureKey)
				}
				return mcp.NewToolResultError(fmt.Sprintf(
					"%q is overloaded in %s; pick a signature key: %s",
					name, path, strings.Join(keys, ", "))), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("no declaration named %q in %s", name, path)), nil
		}

		stripped := analysis.LineMap.MapSpan(decl.Span)
		response := &SnippetResponse{
			Path:          path,
			Name:          decl.QualifiedName,
			Kind:          decl.Kind.String(),
			Signature:     decl.Signature,
			Key:           string(decl.SignatureKey),
			StartLine:     decl.Span.StartLine,
			EndLine:       decl.Span.EndLine,
			StrippedStart: stripped.StartLine,
			StrippedEnd:   stripped.EndLine,
			Snippet:       analysis.StrippedSpan(decl.Span),
		}
		return marshalResult(response)
	}
}

// AddExtractMarkerTool registers the extract_marker tool with an MCP server.
func AddExtractMarkerTool(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"extract_marker",
		mcp.WithDescription("Extract the content of a //@@start/@@end marker region by id. Marker comment lines are stripped from the returned snippet."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Source file path, relative to the project root")),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Marker region id")),
		mcp.WithString("function",
			mcp.Description("Qualified function name the region must lie inside")),
	)

	s.AddTool(tool, createExtractMarkerHandler(svc))
}

func createExtractMarkerHandler(svc *Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, err := parseStringArg(argsMap, "path", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := parseStringArg(argsMap, "id", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		function, _ := parseStringArg(argsMap, "function", false)

		analysis, err := svc.analyze(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		region, ok := analysis.Region(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no marker region %q in %s", id, path)), nil
		}
		if function != "" {
			if !regionInFunction(analysis, region, function) {
				return mcp.NewToolResultError(fmt.Sprintf(
					"no marker region %q inside %q in %s", id, function, path)), nil
			}
		}

		span := cppscan.Span{StartLine: region.StartLine, EndLine: region.EndLine}
		stripped := analysis.LineMap.MapSpan(span)
		response := &SnippetResponse{
			Path:          path,
			MarkerID:      region.ID,
			StartLine:     region.StartLine,
			EndLine:       region.EndLine,
			StrippedStart: stripped.StartLine,
			StrippedEnd:   stripped.EndLine,
			Snippet:       analysis.StrippedSpan(span),
		}
		return marshalResult(response)
	}
}

// AddListMarkersTool registers the list_markers tool with an MCP server.
func AddListMarkersTool(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_markers",
		mcp.WithDescription("List the //@@start/@@end marker regions of a source file, in source order, with the qualified name of the enclosing function when there is one."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Source file path, relative to the project root")),
	)

	s.AddTool(tool, createListMarkersHandler(svc))
}

func createListMarkersHandler(svc *Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, err := parseStringArg(argsMap, "path", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		analysis, err := svc.analyze(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		markers := make([]MarkerInfo, 0, len(analysis.Regions))
		for _, region := range analysis.Regions {
			info := MarkerInfo{
				ID:        region.ID,
				StartLine: region.StartLine,
				EndLine:   region.EndLine,
				Depth:     region.Depth,
			}
			if d := analysis.DeclarationContaining(region.MarkerStartLine); d != nil {
				info.Function = d.QualifiedName
			}
			markers = append(markers, info)
		}

		response := &ListMarkersResponse{Path: path, Markers: markers, Total: len(markers)}
		return marshalResult(response)
	}
}

// AddListDeclarationsTool registers the list_declarations tool with an MCP server.
func AddListDeclarationsTool(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_declarations",
		mcp.WithDescription("List the functions, methods, operators, and templates recognized in a source file, with signatures, spans, and overload signature keys."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Source file path, relative to the project root")),
		mcp.WithString("name",
			mcp.Description("Restrict the listing to declarations with this qualified name")),
	)

	s.AddTool(tool, createListDeclarationsHandler(svc))
}

func createListDeclarationsHandler(svc *Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, err := parseStringArg(argsMap, "path", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, _ := parseStringArg(argsMap, "name", false)

		analysis, err := svc.analyze(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var decls []*cppscan.Declaration
		if name != "" {
			decls = analysis.DeclarationsNamed(name)
		} else {
			for i := range analysis.Declarations {
				decls = append(decls, &analysis.Declarations[i])
			}
		}

		infos := make([]DeclarationInfo, 0, len(decls))
		for _, d := range decls {
			infos = append(infos, DeclarationInfo{
				Name:      d.Name,
				Qualified: d.QualifiedName,
				Kind:      d.Kind.String(),
				Signature: d.Signature,
				Key:       string(d.SignatureKey),
				StartLine: d.Span.StartLine,
				EndLine:   d.Span.EndLine,
			})
		}

		response := &ListDeclarationsResponse{Path: path, Declarations: infos, Total: len(infos)}
		return marshalResult(response)
	}
}

// AddExtractLinesTool registers the extract_lines tool with an MCP server.
func AddExtractLinesTool(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"extract_lines",
		mcp.WithDescription("Extract a raw line range from a source file. Line numbers are 1-based and inclusive."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Source file path, relative to the project root")),
		mcp.WithNumber("start_line",
			mcp.Required(),
			mcp.Description("First line of the range")),
		mcp.WithNumber("end_line",
			mcp.Description("Last line of the range (default: start_line)")),
	)

	s.AddTool(tool, createExtractLinesHandler(svc))
}

func createExtractLinesHandler(svc *Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, err := parseStringArg(argsMap, "path", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		startLine := parseIntArg(argsMap, "start_line", 0)
		endLine := parseIntArg(argsMap, "end_line", startLine)
		if startLine < 1 || endLine < startLine {
			return mcp.NewToolResultError(fmt.Sprintf("invalid line range %d-%d", startLine, endLine)), nil
		}

		analysis, err := svc.analyze(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		span := cppscan.Span{StartLine: startLine, EndLine: endLine}
		response := &SnippetResponse{
			Path:      path,
			StartLine: startLine,
			EndLine:   endLine,
			Snippet:   analysis.SourceSpan(span),
		}
		return marshalResult(response)
	}
}

// resolveDeclaration picks a declaration by name, using the signature key
// to break overload ties. A partial key matches by substring when no
// exact key does.
func resolveDeclaration(analysis *cppscan.FileAnalysis, name, key string) (*cppscan.Declaration, bool) {
	if d, ok := analysis.DeclarationByKey(name, cppscan.SignatureKey(key)); ok {
		return d, true
	}
	if key != "" {
		for _, d := range analysis.DeclarationsNamed(name) {
			if strings.Contains(string(d.SignatureKey), key) {
				return d, true
			}
		}
	}
	return nil, false
}

func regionInFunction(analysis *cppscan.FileAnalysis, region cppscan.Region, function string) bool {
	for _, d := range analysis.DeclarationsNamed(function) {
		for _, within := range analysis.RegionsWithin(d) {
			if within.ID == region.ID && within.MarkerStartLine == region.MarkerStartLine {
				return true
			}
		}
	}
	return false
}

func marshalResult(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
