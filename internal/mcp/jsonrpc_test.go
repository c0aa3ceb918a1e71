package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/store"
)

// newEmptyServer creates a Server over an empty in-memory database.
func newEmptyServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewServer(db, "gamma", "test")
}

// stdio is a running server wired to in-process pipes.
type stdio struct {
	t    *testing.T
	in   *io.PipeWriter
	out  *bufio.Reader
	done chan error
}

// startStdio runs s until the test ends. Closing the input pipe is EOF.
func startStdio(t *testing.T, s *Server) *stdio {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	sr, sw := io.Pipe()

	c := &stdio{t: t, in: pw, out: bufio.NewReader(sr), done: make(chan error, 1)}
	go func() { c.done <- s.Run(ctx, pr, sw) }()

	t.Cleanup(func() {
		cancel()
		_ = pw.Close()
		_ = sr.Close()
		select {
		case <-c.done:
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})
	return c
}

// send writes one request line and decodes the response line.
func (c *stdio) send(line string) rpcReply {
	c.t.Helper()
	_, err := io.WriteString(c.in, line+"\n")
	require.NoError(c.t, err)
	raw, err := c.out.ReadBytes('\n')
	require.NoError(c.t, err)

	var reply rpcReply
	require.NoError(c.t, json.Unmarshal(raw, &reply), string(raw))
	return reply
}

type rpcReply struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

// toolText decodes a tools/call reply into its single text block.
func (r rpcReply) toolText(t *testing.T) (string, bool) {
	t.Helper()
	require.Nil(t, r.Error)
	var res toolsCallResult
	require.NoError(t, json.Unmarshal(r.Result, &res))
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	return res.Content[0].Text, res.IsError
}

func TestRun_Initialize(t *testing.T) {
	c := startStdio(t, newEmptyServer(t))
	reply := c.send(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	require.Nil(t, reply.Error)
	assert.JSONEq(t, `1`, string(reply.ID))
	var init struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(reply.Result, &init))
	assert.Equal(t, protocolVersion, init.ProtocolVersion)
	assert.Equal(t, "chapterdesk", init.ServerInfo.Name)
	assert.Equal(t, "test", init.ServerInfo.Version)
}

func TestRun_ToolsList(t *testing.T) {
	s := newEmptyServer(t)
	s.registerTool(toolDef{
		Name:        "echo",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(context.Context, json.RawMessage) (any, error) {
			return map[string]bool{"ok": true}, nil
		},
	})
	c := startStdio(t, s)

	var list struct {
		Tools []toolListEntry `json:"tools"`
	}
	reply := c.send(`{"jsonrpc":"2.0","id":"list","method":"tools/list"}`)
	require.NoError(t, json.Unmarshal(reply.Result, &list))

	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.InputSchema, tool.Name)
	}
	assert.Equal(t, []string{"get_dashboard", "get_budget", "get_overdue_dues", "search_members", "echo"}, names)
}

func TestRun_ToolsCallBudget(t *testing.T) {
	c := startStdio(t, newDemoServer(t))
	reply := c.send(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"get_budget"}}`)

	text, isErr := reply.toolText(t)
	require.False(t, isErr, text)
	var budget analyzer.BudgetSummary
	require.NoError(t, json.Unmarshal([]byte(text), &budget))
	assert.Equal(t, 4000.0, budget.TotalBudget)
	assert.Equal(t, 3375.0, budget.TotalSpent)
}

func TestRun_ToolsCallSequence(t *testing.T) {
	c := startStdio(t, newDemoServer(t))

	text, isErr := c.send(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search_members","arguments":{"query":"globex"}}}`).toolText(t)
	require.False(t, isErr, text)
	assert.Contains(t, text, `"u02"`)

	text, isErr = c.send(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_dashboard","arguments":{"role":"treasurer"}}}`).toolText(t)
	require.False(t, isErr, text)
	var dash DashboardResult
	require.NoError(t, json.Unmarshal([]byte(text), &dash))
	assert.Equal(t, "Gamma Chapter", dash.Chapter)

	text, isErr = c.send(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_dashboard","arguments":{"role":"janitor"}}}`).toolText(t)
	assert.True(t, isErr)
	assert.Contains(t, text, "janitor")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		code int
	}{
		{"unknown method", `{"jsonrpc":"2.0","id":3,"method":"resources/list"}`, codeMethodNotFound},
		{"missing params", `{"jsonrpc":"2.0","id":4,"method":"tools/call"}`, codeInvalidParams},
		{"malformed json", `{"jsonrpc":`, codeParseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := startStdio(t, newEmptyServer(t))
			reply := c.send(tt.line)
			require.NotNil(t, reply.Error)
			assert.Equal(t, tt.code, reply.Error.Code)
		})
	}
}

func TestRun_NotificationGetsNoReply(t *testing.T) {
	c := startStdio(t, newEmptyServer(t))
	_, err := io.WriteString(c.in, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n")
	require.NoError(t, err)

	// The next reply on the wire must belong to the request, not the
	// notification.
	reply := c.send(`{"jsonrpc":"2.0","id":9,"method":"tools/list"}`)
	assert.JSONEq(t, `9`, string(reply.ID))
}

func TestRun_StopsCleanly(t *testing.T) {
	tests := []struct {
		name string
		stop func(cancel context.CancelFunc, in *io.PipeWriter)
	}{
		{"eof", func(_ context.CancelFunc, in *io.PipeWriter) { _ = in.Close() }},
		{"cancel", func(cancel context.CancelFunc, _ *io.PipeWriter) { cancel() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newEmptyServer(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pr, pw := io.Pipe()
			defer pw.Close()

			done := make(chan error, 1)
			go func() { done <- s.Run(ctx, pr, io.Discard) }()
			tt.stop(cancel, pw)

			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not return")
			}
		})
	}
}
