/*
Package mcp exposes describo to AI agents over the Model Context Protocol.

The server uses stdio transport and exposes these tools:
  - start_session: Open a trust session
  - search_products: Natural-language product search
  - record_interaction: Log a browsing interaction
  - trust_status: Current score and recent activity
  - checkout: Ask the gate whether a challenge is needed
  - list_examples: Suggested example queries
  - end_session: Discard a session
*/
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/khanglvm/describo/internal/app"
	"github.com/khanglvm/describo/internal/search"
)

// Server wraps an MCP server bound to a describo service.
type Server struct {
	svc *app.Service
	mcp *server.MCPServer
}

// NewServer creates an MCP server with all describo tools registered.
func NewServer(svc *app.Service, version string) *Server {
	s := &Server{
		svc: svc,
		mcp: server.NewMCPServer("describo", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Run serves stdio until ctx is cancelled or stdin closes.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	log.Info("mcp server listening on stdio")
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) registerTools() {
	sessionArg := mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session ID returned by start_session"),
	)

	s.mcp.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription(`Open a new browsing session with a trust score of 0.

WHEN TO USE: Call this first. Every other session tool needs the returned session_id.`),
	), s.handleStartSession)

	s.mcp.AddTool(mcp.NewTool("search_products",
		mcp.WithDescription(fmt.Sprintf(`Search the product catalog using a natural-language description.

WHEN TO USE: When the user describes a product without knowing its name.

The query is logged as an interaction and raises the session's trust score.

Example queries:
%s`, bulletList(search.Examples()))),
		sessionArg,
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What the user is looking for, in their own words"),
		),
		mcp.WithString("input_type",
			mcp.Description("How the query was entered"),
			mcp.Enum("text", "voice"),
		),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool("record_interaction",
		mcp.WithDescription(`Log a browsing interaction such as "scroll", "hover" or "voice_start".

Distinct actions add variety points. Names starting with "voice" earn the voice bonus.`),
		sessionArg,
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Interaction name"),
		),
		mcp.WithObject("metadata",
			mcp.Description("Optional key/value details stored with the interaction"),
		),
	), s.handleRecord)

	s.mcp.AddTool(mcp.NewTool("trust_status",
		mcp.WithDescription("Get the session's trust score, its breakdown and the last interactions."),
		sessionArg,
	), s.handleTrust)

	s.mcp.AddTool(mcp.NewTool("checkout",
		mcp.WithDescription(`Attempt checkout. Returns whether a verification challenge is still required.

A session scoring at or above the human threshold skips the challenge.`),
		sessionArg,
	), s.handleCheckout)

	s.mcp.AddTool(mcp.NewTool("list_examples",
		mcp.WithDescription("List the suggested example queries."),
	), s.handleExamples)

	s.mcp.AddTool(mcp.NewTool("end_session",
		mcp.WithDescription("Discard a session and its interaction log."),
		sessionArg,
	), s.handleEndSession)
}

func (s *Server) handleStartSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.StartSession())
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := s.svc.Search(id, query, req.GetString("input_type", "text"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

func (s *Server) handleRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var metadata map[string]any
	if m, ok := req.GetArguments()["metadata"].(map[string]any); ok {
		metadata = m
	}
	view, err := s.svc.Record(id, action, metadata)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (s *Server) handleTrust(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.Trust(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (s *Server) handleCheckout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.Checkout(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (s *Server) handleExamples(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(bulletList(s.svc.Examples())), nil
}

func (s *Server) handleEndSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.EndSession(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("session %s ended", id)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  • %s", item)
	}
	return b.String()
}
