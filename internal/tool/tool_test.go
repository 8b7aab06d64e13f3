package tool_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-assistant/internal/assistant"
	"github.com/hal9000y/mail-assistant/internal/auth"
	"github.com/hal9000y/mail-assistant/internal/gservice"
	"github.com/hal9000y/mail-assistant/internal/tool"
)

type mailboxMock struct {
	token   string
	trashed []string
}

func (m *mailboxMock) ListMessages(context.Context, int64, string) ([]gservice.MessageSummary, error) {
	return []gservice.MessageSummary{
		{ID: "m1", Subject: "Invoice", From: "billing@acme.com", Snippet: "Please pay", Date: "Mon, 1 Sep 2025"},
		{ID: "m2", Subject: "Lunch", From: "john@example.com", Snippet: "Friday?", Date: "Mon, 1 Sep 2025"},
	}, nil
}

func (m *mailboxMock) GetMessage(_ context.Context, id string) (*gservice.Message, error) {
	return &gservice.Message{ID: id, Subject: "Subject " + id, From: "sender@example.com", Body: "Body " + id}, nil
}

func (m *mailboxMock) TrashMessage(_ context.Context, id string) error {
	m.trashed = append(m.trashed, id)
	return nil
}

func (m *mailboxMock) SendReply(context.Context, string, string) (string, error) {
	return "sent", nil
}

type offlineGen struct{}

func (offlineGen) Generate(context.Context, string) (string, error) {
	return "", errors.New("offline")
}

type testEnv struct {
	ctx     context.Context
	client  *mcp.ClientSession
	token   string
	mailbox *mailboxMock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sessions := auth.NewSessions("secret")
	token, err := sessions.Issue(auth.Session{AccessToken: "gmail-access"})
	require.NoError(t, err)

	mb := &mailboxMock{}
	server := tool.NewServer(assistant.New(offlineGen{}), sessions, func(accessToken string) assistant.Mailbox {
		mb.token = accessToken
		return mb
	})
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })

	return &testEnv{ctx: ctx, client: clientSession, token: token, mailbox: mb}
}

func (e *testEnv) call(t *testing.T, name string, args any) (*mcp.CallToolResult, assistant.Response) {
	t.Helper()

	result, err := e.client.CallTool(e.ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	var resp assistant.Response
	if !result.IsError {
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &resp))
	}

	return result, resp
}

func TestChatMessage(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name     string
		req      tool.ChatMessageRequest
		expected assistant.Response
	}{
		{
			name: "listing for selection",
			req:  tool.ChatMessageRequest{SessionToken: env.token, Message: "delete & organize"},
			expected: assistant.Response{
				Reply: "Click the email you want to delete:",
				Emails: []assistant.EmailItem{
					{ID: "m1", Subject: "Invoice", From: "billing@acme.com", Snippet: "Please pay", Date: "Mon, 1 Sep 2025"},
					{ID: "m2", Subject: "Lunch", From: "john@example.com", Snippet: "Friday?", Date: "Mon, 1 Sep 2025"},
				},
				ActionType:    "delete",
				ShowEmailList: true,
			},
		},
		{
			name: "explicit selection",
			req: tool.ChatMessageRequest{
				SessionToken: env.token,
				Action:       &assistant.ActionPayload{Type: "selection", EmailID: "m2", ActionType: "delete"},
			},
			expected: assistant.Response{
				Reply:          "I found this email:\n\nFrom: sender@example.com\nSubject: Subject m2\n\nAre you sure you want to delete it? (Say 'yes' or 'confirm' to delete, or 'no' to cancel)",
				EmailID:        "m2",
				ActionRequired: assistant.ConfirmDelete,
				PendingAction:  &assistant.PendingAction{Action: assistant.ActionDelete, EmailID: "m2"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, resp := env.call(t, "chat_message", tc.req)
			require.False(t, result.IsError)
			assert.Equal(t, tc.expected, resp)
			assert.Equal(t, "gmail-access", env.mailbox.token)
			assert.Empty(t, env.mailbox.trashed)
		})
	}
}

func TestConfirmAction(t *testing.T) {
	env := newTestEnv(t)

	result, resp := env.call(t, "confirm_action", tool.ConfirmActionRequest{
		SessionToken: env.token,
		Action:       "delete",
		EmailID:      "m1",
		Confirmation: "nope",
	})
	require.False(t, result.IsError)
	assert.Equal(t, assistant.StatusCancelled, resp.Status)
	assert.Empty(t, env.mailbox.trashed)

	result, resp = env.call(t, "confirm_action", tool.ConfirmActionRequest{
		SessionToken: env.token,
		Action:       "delete",
		EmailID:      "m1",
		Confirmation: "yes",
	})
	require.False(t, result.IsError)
	assert.Equal(t, assistant.StatusSuccess, resp.Status)
	assert.Equal(t, []string{"m1"}, env.mailbox.trashed)
}

func TestInvalidSessionToken(t *testing.T) {
	env := newTestEnv(t)

	result, _ := env.call(t, "chat_message", tool.ChatMessageRequest{SessionToken: "forged", Message: "hello"})
	require.True(t, result.IsError)
	assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, "invalid token")

	result, _ = env.call(t, "confirm_action", tool.ConfirmActionRequest{
		SessionToken: "forged", Action: "delete", EmailID: "m1", Confirmation: "yes",
	})
	require.True(t, result.IsError)
	assert.Empty(t, env.mailbox.trashed)
}
