package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *switchboard.Router) {
	t.Helper()
	router := switchboard.New()
	require.NoError(t, router.DefineIntent(
		domain.Definition{Address: "menu", Text: "/menu"},
		domain.Definition{Address: "order", Text: "/order", Children: []domain.Definition{
			{Address: "item", Text: "/item"},
		}},
		domain.Definition{Address: "unknown"},
	))
	router.RegisterAction("menu", func(context.Context, domain.Message, ports.Conversation) (any, error) {
		return "1. pizza", nil
	})
	router.RegisterAction("order", func(context.Context, domain.Message, ports.Conversation) (any, error) {
		return map[string]int{"items": 0}, nil
	})
	require.NoError(t, router.FinalizeTraining(context.Background()))
	return NewServer(router, opts...), router
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestHandleDispatch(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	out, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Sender: "ana", Text: " /menu "})
	require.NoError(t, err)
	assert.Equal(t, DispatchResponse{
		Address:    "menu",
		Target:     "menu",
		Action:     "menu",
		Source:     "literal",
		Confidence: 1,
		Executed:   true,
		Output:     "1. pizza",
	}, out)

	out, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Sender: "ana", Text: "/order"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":0}`, out.Output)

	out, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Sender: "bia", Text: "thanks, great service"})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Sentiment)
}

func TestHandleDispatch_Rejects(t *testing.T) {
	s, _ := newTestServer(t, WithMaxInputSize(4))
	ctx := context.Background()

	_, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Text: "/menu"})
	assert.ErrorContains(t, err, "sender is required")

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Sender: "ana", Text: "/menu is too long"})
	assert.ErrorContains(t, err, "input rejected")
}

func TestHandleDispatch_NotTrained(t *testing.T) {
	s := NewServer(switchboard.New())

	_, err := s.handleDispatch(context.Background(), mcp.CallToolRequest{}, DispatchArgs{Sender: "ana", Text: "hi"})
	assert.ErrorContains(t, err, "not trained")
}

func TestConversationTools(t *testing.T) {
	s, router := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, router.SetContext(ctx, "ana", "order"))

	res, err := s.handleGetConversation(ctx, mcp.CallToolRequest{}, SenderArgs{Sender: "ana"})
	require.NoError(t, err)
	var conv domain.Conversation
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &conv))
	assert.Equal(t, "order", conv.Current)

	res, err = s.handleResetConversation(ctx, mcp.CallToolRequest{}, SenderArgs{Sender: "ana"})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	after, err := router.Conversation(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, after.Current)

	res, err = s.handleGetConversation(ctx, mcp.CallToolRequest{}, SenderArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListIntents(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleListIntents(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	var nodes []domain.IntentNode
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &nodes))
	assert.Len(t, nodes, 4)
}

func TestReadIntents(t *testing.T) {
	s, _ := newTestServer(t)

	contents, err := s.readIntents(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, intentsURI, text.URI)
	assert.Contains(t, text.Text, `"address":"order.item"`)
}
