// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dev Architect tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/devarchitect/internal/apperr"
	"github.com/starford/devarchitect/internal/architectservice"
	"github.com/starford/devarchitect/internal/treeview"
)

const (
	contractURI = "devarchitect://document-format"
	historyURI  = "devarchitect://history"
)

// Server wraps the MCP server with Dev Architect tools.
type Server struct {
	mcp *server.MCPServer
	svc *architectservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *architectservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Dev Architect",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("generate_architecture",
		mcp.WithDescription("Generate a tech stack, folder structure, and roadmap for an application idea. "+
			"The result is saved to history. Read the devarchitect://document-format resource for the shape."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Free-text application idea, e.g. 'A blog platform'")),
	), s.generateArchitecture)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the architecture document format contract."),
	), s.getDocumentContract)

	s.mcp.AddTool(mcp.NewTool("list_history",
		mcp.WithDescription("List saved generations, newest first (id, timestamp, title)."),
	), s.listHistory)

	s.mcp.AddTool(mcp.NewTool("get_history_entry",
		mcp.WithDescription("Read one saved generation including its full document."),
		mcp.WithString("id", mcp.Required(), mcp.Description("History entry id from list_history")),
	), s.getHistoryEntry)

	s.mcp.AddTool(mcp.NewTool("render_tree",
		mcp.WithDescription("Render the folder structure of a saved generation as an indented text tree."),
		mcp.WithString("id", mcp.Required(), mcp.Description("History entry id")),
		mcp.WithString("collapsed", mcp.Description("Optional comma-separated row paths to collapse, e.g. '0/1,2'")),
	), s.renderTree)

	s.mcp.AddTool(mcp.NewTool("export_markdown",
		mcp.WithDescription("Export a saved generation as a Markdown architecture document."),
		mcp.WithString("id", mcp.Required(), mcp.Description("History entry id")),
	), s.exportMarkdown)

	s.mcp.AddTool(mcp.NewTool("clear_history",
		mcp.WithDescription("Delete every saved generation. This cannot be undone."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to clear")),
	), s.clearHistory)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Document Format Contract",
			mcp.WithResourceDescription("Shape of generated architecture documents and history entries."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(historyURI, "Generation History",
			mcp.WithResourceDescription("Saved generations, newest first."),
			mcp.WithMIMEType("application/json"),
		),
		s.readHistoryResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) generateArchitecture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Generate(ctx, prompt)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(doc)
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) listHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := s.svc.Summaries(ctx)
	if len(entries) == 0 {
		return mcp.NewToolResultText("history is empty"), nil
	}
	return jsonResult(entries)
}

func (s *Server) getHistoryEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := s.svc.Entry(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(e)
}

func (s *Server) renderTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := s.svc.Entry(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	view := treeview.Render(e.Data.FolderStructure, treeview.Options{
		Expand: treeview.ParseCollapsed(req.GetString("collapsed", "")),
	})
	return mcp.NewToolResultText(view.String()), nil
}

func (s *Server) exportMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	art, err := s.svc.ExportEntry(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(art.Content), nil
}

func (s *Server) clearHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !req.GetBool("confirm", false) {
		return mcp.NewToolResultError("confirm must be true to clear history"), nil
	}
	n := len(s.svc.Summaries(ctx))
	if err := s.svc.ClearHistory(ctx); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("cleared %d entries", n)), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}

func (s *Server) readHistoryResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(s.svc.Summaries(ctx), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      historyURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
