package mcp

import (
	"context"
	"strings"
	"testing"

	"notepad/internal/store/sqlstore"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func callSearch(t *testing.T, srv *Server, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "search_notes", Arguments: args}}
	result, err := srv.searchNotesHandler(context.Background(), req)
	require.NoError(t, err)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return text.Text
}

func TestSearchNotesTool(t *testing.T) {
	ctx := context.Background()
	store, err := sqlstore.New("sqlite3", ":memory:")
	require.NoError(t, err)
	defer store.Close()

	srv := NewMCPServer(store)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user, err := store.CreateUser(ctx, "mcp@example.com", string(hash))
	require.NoError(t, err)
	other, err := store.CreateUser(ctx, "other@example.com", string(hash))
	require.NoError(t, err)

	_, err = store.CreateNote(ctx, user.ID, "Shopping", "milk")
	require.NoError(t, err)
	_, err = store.CreateNote(ctx, user.ID, "Todo", "call mom")
	require.NoError(t, err)
	_, err = store.CreateNote(ctx, other.ID, "Secret", "milk run")
	require.NoError(t, err)

	t.Run("all notes", func(t *testing.T) {
		result := callSearch(t, srv, map[string]interface{}{"email": "mcp@example.com"})
		require.False(t, result.IsError)
		text := resultText(t, result)
		assert.Contains(t, text, "Found 2 notes")
		assert.Contains(t, text, "Shopping: milk")
		assert.Contains(t, text, "Todo: call mom")
		assert.NotContains(t, text, "Secret")
	})

	t.Run("filtered", func(t *testing.T) {
		result := callSearch(t, srv, map[string]interface{}{"email": "mcp@example.com", "query": "MILK"})
		require.False(t, result.IsError)
		text := resultText(t, result)
		assert.Contains(t, text, "Found 1 notes")
		assert.False(t, strings.Contains(text, "Todo"))
	})

	t.Run("no match", func(t *testing.T) {
		result := callSearch(t, srv, map[string]interface{}{"email": "mcp@example.com", "query": "zebra"})
		require.False(t, result.IsError)
		assert.Equal(t, "No notes found.", resultText(t, result))
	})

	t.Run("email casing", func(t *testing.T) {
		result := callSearch(t, srv, map[string]interface{}{"email": " MCP@Example.com "})
		require.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Found 2 notes")
	})

	t.Run("unknown user", func(t *testing.T) {
		result := callSearch(t, srv, map[string]interface{}{"email": "nobody@example.com"})
		assert.True(t, result.IsError)
	})

	t.Run("missing email", func(t *testing.T) {
		result := callSearch(t, srv, map[string]interface{}{})
		assert.True(t, result.IsError)
	})
}
