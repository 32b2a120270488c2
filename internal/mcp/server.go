package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"notepad/internal/models"
	"notepad/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes read-only note search to MCP clients.
type Server struct {
	store store.Store
	mcp   *server.MCPServer
}

func NewMCPServer(s store.Store) *Server {
	srv := &Server{store: s, mcp: server.NewMCPServer("Notepad", "1.0.0")}

	tool := mcp.NewTool("search_notes",
		mcp.WithDescription("List an account's notes, newest first, optionally filtered by a substring of the title or content."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email of the account whose notes to search")),
		mcp.WithString("query", mcp.Description("Case-insensitive substring to match; empty returns every note")),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	srv.mcp.AddTool(tool, srv.searchNotesHandler)

	return srv
}

func (s *Server) searchNotesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := request.RequireString("email")
	email = models.NormalizeEmail(email)
	if err != nil || email == "" {
		return mcp.NewToolResultError("email is required"), nil
	}
	query := request.GetString("query", "")

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError("user not found"), nil
	} else if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}

	notes, err := s.store.SearchNotes(ctx, user.ID, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}

	if len(notes) == 0 {
		return mcp.NewToolResultText("No notes found."), nil
	}

	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", n.UpdatedAt.Format(time.RFC3339), n.Title, n.Content))
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d notes:\n%s", len(notes), strings.Join(lines, "\n"))), nil
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}
