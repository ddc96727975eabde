package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/projected-source/internal/config"
	"github.com/mvp-joe/projected-source/internal/extract"
)

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	runner *extract.Runner
	mcp    *server.MCPServer
}

// NewMCPServer creates an MCP server exposing extraction tools over the
// project rooted at root.
func NewMCPServer(root string, cfg *config.Config) (*MCPServer, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	runner, err := extract.NewRunner(cfg.Extract)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction runner: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"projected-source",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	svc := NewService(root, runner)
	AddExtractFunctionTool(mcpServer, svc)
	AddExtractMarkerTool(mcpServer, svc)
	AddExtractLinesTool(mcpServer, svc)
	AddListMarkersTool(mcpServer, svc)
	AddListDeclarationsTool(mcpServer, svc)

	return &MCPServer{
		runner: runner,
		mcp:    mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *MCPServer) Close() error {
	if s.runner != nil {
		s.runner.Close()
	}
	return nil
}
