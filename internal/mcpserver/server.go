// Package mcpserver exposes the command surface to MCP-speaking agents over
// stdio, one tool per command-table row that makes sense as an
// agent-invoked action.
package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Boswecw/cortex-local/internal/command"
)

// Server wraps a command.Surface behind an MCP tool server.
type Server struct {
	surface *command.Surface
	mcp     *server.MCPServer
}

// New builds a Server and registers every tool against surface.
func New(surface *command.Surface) *Server {
	mcpServer := server.NewMCPServer(
		"cortex",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	addSearchFilesTool(mcpServer, surface)
	addSemanticSearchTool(mcpServer, surface)
	addFindSimilarFilesTool(mcpServer, surface)
	addGetFileDetailTool(mcpServer, surface)
	addExportPackageTool(mcpServer, surface)
	addGetIndexStatusTool(mcpServer, surface)

	return &Server{surface: surface, mcp: mcpServer}
}

// Serve starts the MCP server on stdio and blocks until SIGINT/SIGTERM or a
// server error.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
