package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dgallion1/folio/internal/documents"
	"github.com/dgallion1/folio/internal/export"
	"github.com/dgallion1/folio/internal/store"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Server exposes stored documents as read-only MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	docs      *documents.Service
}

// NewServer creates a new MCP server with document tools.
func NewServer(config Config, docs *documents.Service) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		docs:      docs,
	}

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List saved documents, newest first. Returns id, title, slug, page count and timestamps as JSON."),
	)
	mcpServer.AddTool(listTool, s.listDocumentsHandler)

	getTool := mcp.NewTool("get_document",
		mcp.WithDescription("Get a saved document by ID. Returns its pages in markdown format, separated by horizontal rules."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID to retrieve"),
		),
	)
	mcpServer.AddTool(getTool, s.getDocumentHandler)

	return s
}

func (s *Server) listDocumentsHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.docs.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list documents failed: %v", err)), nil
	}

	result, err := json.Marshal(list)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal documents: %v", err)), nil
	}

	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) getDocumentHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	doc, err := s.docs.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("document not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get document failed: %v", err)), nil
	}

	md, err := export.Markdown(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to convert document: %v", err)), nil
	}

	return mcp.NewToolResultText(md), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
