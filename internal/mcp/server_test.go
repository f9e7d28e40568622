package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracescope/internal/config"
)

func testServer(t *testing.T, input string) (*Server, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer("test", Deps{Config: cfg}, logger)

	out := &bytes.Buffer{}
	s.stdin = strings.NewReader(input)
	s.stdout = out
	return s, out
}

func responses(t *testing.T, out *bytes.Buffer) []Message {
	t.Helper()
	var msgs []Message
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var msg Message
		require.NoError(t, json.Unmarshal([]byte(line), &msg))
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestServer_Initialize(t *testing.T) {
	s, out := testServer(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`+"\n")
	require.NoError(t, s.Run(context.Background()))

	msgs := responses(t, out)
	require.Len(t, msgs, 1)

	result := msgs[0].Result.(map[string]any)
	assert.Equal(t, protocolVersion, result["protocolVersion"])
	info := result["serverInfo"].(map[string]any)
	assert.Equal(t, "tracescope", info["name"])
}

func TestServer_ToolsList(t *testing.T) {
	s, out := testServer(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`+"\n")
	require.NoError(t, s.Run(context.Background()))

	msgs := responses(t, out)
	require.Len(t, msgs, 1)

	result := msgs[0].Result.(map[string]any)
	tools := result["tools"].([]any)
	require.Len(t, tools, 4)

	names := make([]string, 0, len(tools))
	for _, tl := range tools {
		names = append(names, tl.(map[string]any)["name"].(string))
	}
	assert.Contains(t, names, "investigate_error")
	assert.Contains(t, names, "analyze_codebase")
	assert.Contains(t, names, "fetch_issue")
	assert.Contains(t, names, "create_ticket")
}

func TestServer_InvestigateErrorTool(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "user.rb"),
		[]byte("class User\n  def show\n    render\n  end\nend\n"), 0o644))

	call := map[string]any{
		"jsonrpc": "2.0",
		"id":      3,
		"method":  "tools/call",
		"params": map[string]any{
			"name": "investigate_error",
			"arguments": map[string]any{
				"trace_text": "from app/user.rb:3:in `show'",
				"root":       root,
			},
		},
	}
	data, err := json.Marshal(call)
	require.NoError(t, err)

	s, out := testServer(t, string(data)+"\n")
	require.NoError(t, s.Run(context.Background()))

	msgs := responses(t, out)
	require.Len(t, msgs, 1)
	require.Nil(t, msgs[0].Error)

	result := msgs[0].Result.(map[string]any)
	assert.Equal(t, false, result["isError"])
	content := result["content"].([]any)
	text := content[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "# Error Investigation")
	assert.Contains(t, text, "Containing function: `show`")
}

func TestServer_ToolErrorIsInBand(t *testing.T) {
	// fetch_issue without a configured tracker must produce an isError
	// tool result, not a transport error.
	input := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"fetch_issue","arguments":{"number":1}}}` + "\n"
	s, out := testServer(t, input)
	require.NoError(t, s.Run(context.Background()))

	msgs := responses(t, out)
	require.Len(t, msgs, 1)
	require.Nil(t, msgs[0].Error)

	result := msgs[0].Result.(map[string]any)
	assert.Equal(t, true, result["isError"])
}

func TestServer_UnknownMethod(t *testing.T) {
	s, out := testServer(t, `{"jsonrpc":"2.0","id":5,"method":"bogus/method"}`+"\n")
	require.NoError(t, s.Run(context.Background()))

	msgs := responses(t, out)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Error)
	assert.Equal(t, MethodNotFound, msgs[0].Error.Code)
}

func TestServer_UnknownTool(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"nope","arguments":{}}}` + "\n"
	s, out := testServer(t, input)
	require.NoError(t, s.Run(context.Background()))

	msgs := responses(t, out)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Error)
}

func TestServer_NotificationHasNoResponse(t *testing.T) {
	s, out := testServer(t, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Empty(t, strings.TrimSpace(out.String()))
}
