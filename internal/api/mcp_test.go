package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"notepad/internal/mcp"
	"notepad/internal/store/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMCP(cfg *RouterConfig, st *sqlstore.SQLStore) {
	cfg.MCP = mcp.NewMCPServer(st).Handler()
}

func postRPC(t *testing.T, env *testEnv, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/mcp", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestMCPOverHTTP(t *testing.T) {
	env := newTestEnv(t, withMCP)
	ctx := context.Background()

	user, err := env.store.CreateUser(ctx, "mcp@example.com", "hash")
	require.NoError(t, err)
	_, err = env.store.CreateNote(ctx, user.ID, "Shopping", "milk")
	require.NoError(t, err)

	code, body := postRPC(t, env, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, `"Notepad"`)

	code, body = postRPC(t, env, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"search_notes","arguments":{"email":"mcp@example.com","query":"milk"}}}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, "Found 1 notes")
	assert.Contains(t, body, "Shopping: milk")
}

func TestMCPStreamingThroughMiddleware(t *testing.T) {
	env := newTestEnv(t, withMCP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.server.URL+"/mcp", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, http.StatusBadRequest)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	cancel()
}
